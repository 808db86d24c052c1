// Package manifest defines the deterministic JSON record (§4.8, §3) that
// ties a document digest, a signer, a trust-list root, and a ZK proof
// together into one immutable, append-only artifact.
package manifest

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/commitment"
)

// SchemaVersion is the only manifest schema version this module emits or
// accepts. Consumers MUST reject any other value (§4.8).
const SchemaVersion = 1

// Manifest is the immutable, append-only per-proof record. Field names and
// shapes follow §3's Manifest data-model entry exactly.
type Manifest struct {
	Version   int          `json:"version"`
	ProofID   string       `json:"proof_id"`
	DocHash   string       `json:"doc_hash"`
	Artifact  ArtifactInfo `json:"artifact"`
	Signer    SignerInfo   `json:"signer"`
	TLRoot    string       `json:"tl_root"`
	EUTrust   EUTrustInfo  `json:"eu_trust"`
	Proof     string       `json:"proof"`
	Timestamp string       `json:"timestamp"`
}

// ArtifactInfo identifies the binder variant and binds to one ciphertext
// package by its digest.
type ArtifactInfo struct {
	Type         string `json:"type"`
	ArtifactHash string `json:"artifact_hash"`
}

// SignerInfo carries the public key coordinates and certificate
// fingerprint the proof was built against.
type SignerInfo struct {
	PubX        string `json:"pub_x"`
	PubY        string `json:"pub_y"`
	Fingerprint string `json:"fingerprint"`
}

// EUTrustInfo is the conditional EU trust-list branch. TLRootEU and
// EUIndex are only populated (and only meaningful) when Enabled is true.
type EUTrustInfo struct {
	Enabled  bool    `json:"enabled"`
	TLRootEU *string `json:"tl_root_eu,omitempty"`
	EUIndex  *int    `json:"eu_index,omitempty"`
}

// New builds a Manifest from already-computed component outputs,
// rendering binary values as hex/base64 per §3 and stamping an RFC-3339
// timestamp. messageForSig is the CAdES signed-attributes digest, not the
// PDF byte-range digest — it is the only document-derived value the proof
// actually binds, so it is what the doc_hash field carries (see
// pkg/witness's ByteWitness/FieldWitness doc comment).
func New(messageForSig [32]byte, artifactType string, artifactHash [32]byte, pubX, pubY, fingerprint [32]byte, tlRoot string, euTrust EUTrustInfo, proof []byte, now time.Time) *Manifest {
	return &Manifest{
		Version: SchemaVersion,
		ProofID: uuid.NewString(),
		DocHash: hex.EncodeToString(messageForSig[:]),
		Artifact: ArtifactInfo{
			Type:         artifactType,
			ArtifactHash: hex.EncodeToString(artifactHash[:]),
		},
		Signer: SignerInfo{
			PubX:        hex.EncodeToString(pubX[:]),
			PubY:        hex.EncodeToString(pubY[:]),
			Fingerprint: hex.EncodeToString(fingerprint[:]),
		},
		TLRoot:    tlRoot,
		EUTrust:   euTrust,
		Proof:     base64.StdEncoding.EncodeToString(proof),
		Timestamp: now.UTC().Format(time.RFC3339),
	}
}

// MarshalCanonical renders the manifest as canonical JSON (stable key
// order, no trailing whitespace) followed by exactly one LF.
func MarshalCanonical(m *Manifest) ([]byte, error) {
	body, err := commitment.MarshalCanonical(m)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "canonicalize manifest JSON")
	}
	return append(body, '\n'), nil
}

// Parse decodes and validates a manifest's raw JSON bytes per §4.9 step 1:
// schema version, required fields, hex lengths, and timestamp format.
func Parse(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "parse manifest JSON")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks everything §4.9 step 1 requires of a loaded manifest.
func (m *Manifest) Validate() error {
	if m.Version != SchemaVersion {
		return apperrors.Newf(apperrors.CodeMalformedInput, "unsupported manifest schema version %d (want %d)", m.Version, SchemaVersion)
	}

	if _, err := uuid.Parse(m.ProofID); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "proof_id is not a valid UUID")
	}
	if err := checkHex32(m.DocHash, "doc_hash"); err != nil {
		return err
	}
	if err := checkHex32(m.Artifact.ArtifactHash, "artifact.artifact_hash"); err != nil {
		return err
	}
	if err := checkHex32(m.Signer.PubX, "signer.pub_x"); err != nil {
		return err
	}
	if err := checkHex32(m.Signer.PubY, "signer.pub_y"); err != nil {
		return err
	}
	if err := checkHex32(m.Signer.Fingerprint, "signer.fingerprint"); err != nil {
		return err
	}
	if m.TLRoot == "" {
		return apperrors.New(apperrors.CodeMalformedInput, "tl_root is empty")
	}
	if m.Artifact.Type == "" {
		return apperrors.New(apperrors.CodeMalformedInput, "artifact.type is empty")
	}

	if m.EUTrust.Enabled {
		if m.EUTrust.TLRootEU == nil || *m.EUTrust.TLRootEU == "" {
			return apperrors.New(apperrors.CodeMalformedInput, "eu_trust.enabled is true but tl_root_eu is missing")
		}
		if m.EUTrust.EUIndex == nil {
			return apperrors.New(apperrors.CodeMalformedInput, "eu_trust.enabled is true but eu_index is missing")
		}
	} else {
		if m.EUTrust.TLRootEU != nil && !isZeroValueString(*m.EUTrust.TLRootEU) {
			return apperrors.New(apperrors.CodeMalformedInput, "eu_trust.enabled is false but tl_root_eu is neither absent nor all-zero")
		}
		if m.EUTrust.EUIndex != nil && *m.EUTrust.EUIndex != 0 {
			return apperrors.New(apperrors.CodeMalformedInput, "eu_trust.enabled is false but eu_index is neither absent nor zero")
		}
	}

	if _, err := base64.StdEncoding.DecodeString(m.Proof); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "proof is not valid base64")
	}

	if _, err := time.Parse(time.RFC3339, m.Timestamp); err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "timestamp is not RFC-3339")
	}

	return nil
}

// DecodedProof base64-decodes the manifest's proof field.
func (m *Manifest) DecodedProof() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(m.Proof)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "decode proof base64")
	}
	return raw, nil
}

// Commitment returns the content-addressed SHA-256 commitment of the
// manifest's canonical JSON encoding. Unlike ProofID (a random UUID
// assigned at issuance), Commitment is derived entirely from the
// manifest's content, so re-deriving it from a stored manifest and
// comparing against a separately recorded value detects any post-issuance
// tampering with the manifest file itself.
func (m *Manifest) Commitment() ([32]byte, error) {
	body, err := MarshalCanonical(m)
	if err != nil {
		return [32]byte{}, err
	}
	return commitment.Hash(body), nil
}

func checkHex32(s, field string) error {
	if len(s) != 64 {
		return apperrors.Newf(apperrors.CodeMalformedInput, "%s must be 64 hex characters, got %d", field, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		return apperrors.Wrapf(err, apperrors.CodeMalformedInput, "%s is not valid hex", field)
	}
	return nil
}

// isZeroValueString reports whether s is empty or consists entirely of '0'
// characters, covering both the hex (byte-Merkle) and decimal
// (field-Merkle) tl_root_eu representations' zero form.
func isZeroValueString(s string) bool {
	if s == "" {
		return true
	}
	for _, c := range s {
		if c != '0' {
			return false
		}
	}
	return true
}
