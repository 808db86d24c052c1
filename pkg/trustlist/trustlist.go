// Package trustlist normalizes a local JSON allow-list and the EU List of
// Trusted Lists (LOTL) XML into ordered, deduplicated sets of 32-byte
// certificate fingerprints ready for Merkle tree construction.
package trustlist

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// Fingerprint is the 64-hex-character, SHA-256-of-DER identity of a
// certificate within a trust list.
type Fingerprint [32]byte

// allowListFile covers both JSON shapes §4.4 allows: the plain
// cert_fingerprints array, or the richer signers array.
type allowListFile struct {
	CertFingerprints []string       `json:"cert_fingerprints"`
	Signers          []signerRecord `json:"signers"`
}

type signerRecord struct {
	Fingerprint string `json:"fingerprint"`
}

// LoadAllowList parses a local JSON allow-list file's raw contents into an
// ordered, deduplicated list of fingerprints, preserving source order so
// the resulting tree is reproducible.
func LoadAllowList(raw []byte) ([]Fingerprint, error) {
	var file allowListFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "parse allow-list JSON")
	}

	var hexValues []string
	hexValues = append(hexValues, file.CertFingerprints...)
	for _, s := range file.Signers {
		hexValues = append(hexValues, s.Fingerprint)
	}

	return dedupeFingerprints(hexValues)
}

// dedupeFingerprints validates each hex string is a 64-char SHA-256
// fingerprint and returns them in first-seen order with duplicates
// dropped.
func dedupeFingerprints(hexValues []string) ([]Fingerprint, error) {
	seen := make(map[Fingerprint]struct{}, len(hexValues))
	out := make([]Fingerprint, 0, len(hexValues))
	for _, h := range hexValues {
		fpr, err := ParseFingerprint(h)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[fpr]; dup {
			continue
		}
		seen[fpr] = struct{}{}
		out = append(out, fpr)
	}
	return out, nil
}

// ParseFingerprint validates and decodes a 64-hex-character fingerprint.
func ParseFingerprint(h string) (Fingerprint, error) {
	var fpr Fingerprint
	if len(h) != 64 {
		return fpr, apperrors.Newf(apperrors.CodeInvalidFingerprint, "fingerprint %q is not 64 hex characters", h)
	}
	decoded, err := hex.DecodeString(h)
	if err != nil {
		return fpr, apperrors.Wrapf(err, apperrors.CodeInvalidFingerprint, "fingerprint %q is not valid hex", h)
	}
	copy(fpr[:], decoded)
	return fpr, nil
}

// Hex returns the 64-character hex encoding of the fingerprint.
func (f Fingerprint) Hex() string { return hex.EncodeToString(f[:]) }

// trustServiceStatusList is a simplified ETSI TS 119 612 decode: only the
// fields needed to recover qualified-certificate-issuing service
// certificates are modeled.
type trustServiceStatusList struct {
	XMLName          xml.Name         `xml:"TrustServiceStatusList"`
	TrustServiceList trustServiceList `xml:"TrustServiceProviderList"`
}

type trustServiceList struct {
	Providers []trustServiceProvider `xml:"TrustServiceProvider"`
}

type trustServiceProvider struct {
	Services []trustService `xml:"TSPServices>TSPService"`
}

type trustService struct {
	Information trustServiceInformation `xml:"ServiceInformation"`
}

type trustServiceInformation struct {
	ServiceTypeIdentifier string             `xml:"ServiceTypeIdentifier"`
	DigitalIdentity       []digitalIdentity  `xml:"ServiceDigitalIdentity>DigitalId"`
}

type digitalIdentity struct {
	X509Certificate string `xml:"X509Certificate"`
}

// qualifiedCertServiceType is the ETSI service-type URI used for
// qualified-certificate-issuing CAs; other service types (e.g. OCSP, time
// stamping) are not trust anchors for this pipeline and are skipped.
const qualifiedCertServiceType = "http://uri.etsi.org/TrstSvc/Svctype/CA/QC"

// Snapshot is the reproducible summary of one LOTL ingestion: the hash of
// the source document, when it was taken, and the resulting fingerprint
// set.
type Snapshot struct {
	LOTLHash      [32]byte      `json:"lotl_hash"`
	SnapshotDate  time.Time     `json:"snapshot_date"`
	QualifiedCAs  []Fingerprint `json:"qualified_cas"`
}

// LoadLOTL parses a raw ETSI LOTL XML document into a Snapshot, extracting
// every embedded X509Certificate leaf under a qualified-certificate
// service entry and hashing its DER form. Signature verification of the
// LOTL itself is a collaborator's responsibility (§4.4, §7 Non-goals).
func LoadLOTL(raw []byte, now time.Time) (*Snapshot, error) {
	var list trustServiceStatusList
	if err := xml.Unmarshal(raw, &list); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "parse LOTL XML")
	}

	var hexValues []string
	for _, provider := range list.TrustServiceList.Providers {
		for _, svc := range provider.Services {
			if svc.Information.ServiceTypeIdentifier != qualifiedCertServiceType {
				continue
			}
			for _, id := range svc.Information.DigitalIdentity {
				fpr, err := fingerprintOfBase64Cert(id.X509Certificate)
				if err != nil {
					return nil, err
				}
				hexValues = append(hexValues, fpr.Hex())
			}
		}
	}

	fingerprints, err := dedupeFingerprints(hexValues)
	if err != nil {
		return nil, err
	}

	lotlHash := sha256.Sum256(raw)
	return &Snapshot{
		LOTLHash:     lotlHash,
		SnapshotDate: now,
		QualifiedCAs: fingerprints,
	}, nil
}

func fingerprintOfBase64Cert(b64 string) (Fingerprint, error) {
	var fpr Fingerprint
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fpr, apperrors.Wrap(err, apperrors.CodeMalformedInput, "decode X509Certificate base64")
	}
	digest := sha256.Sum256(der)
	return Fingerprint(digest), nil
}

// MarshalJSON renders the snapshot with an ISO-8601 snapshot_date and hex
// lotl_hash/fingerprints, matching the manifest's canonical JSON
// conventions.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type alias struct {
		LOTLHash     string   `json:"lotl_hash"`
		SnapshotDate string   `json:"snapshot_date"`
		QualifiedCAs []string `json:"qualified_cas"`
	}

	cas := make([]string, len(s.QualifiedCAs))
	for i, fpr := range s.QualifiedCAs {
		cas[i] = fpr.Hex()
	}

	return json.Marshal(alias{
		LOTLHash:     hex.EncodeToString(s.LOTLHash[:]),
		SnapshotDate: s.SnapshotDate.UTC().Format(time.RFC3339),
		QualifiedCAs: cas,
	})
}

// String implements fmt.Stringer for diagnostic logging.
func (s Snapshot) String() string {
	return fmt.Sprintf("lotl_hash=%x snapshot_date=%s qualified_cas=%d",
		s.LOTLHash, s.SnapshotDate.Format(time.RFC3339), len(s.QualifiedCAs))
}
