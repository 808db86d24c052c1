// Package cms parses the CAdES/PKCS#7 SignedData embedded in a signed PDF's
// /Contents and extracts the values the statement needs: signer certificate,
// public key, ECDSA signature, and the digest the signature actually covers.
package cms

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"math/big"

	"github.com/digitorus/pkcs7"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

var oidMessageDigest = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}

// Result carries everything the witness assembler needs from one
// SignerInfo: the signer certificate, its fingerprint, the ECDSA P-256
// public key coordinates, the 64-byte (r‖s) signature, and the digest of
// the re-encoded signedAttributes (the bytes the signature is actually
// over).
type Result struct {
	Certificate       *x509.Certificate
	Fingerprint       [32]byte
	PubKeyX           [32]byte
	PubKeyY           [32]byte
	Signature         [64]byte
	SignedAttrsDigest [32]byte
}

// Extract parses raw (the DER bytes found inside /Contents) as a PKCS#7
// SignedData, validates it carries exactly the shape a CAdES-BES ECDSA
// P-256 signature should, and checks that the messageDigest signed
// attribute matches docDigest (the byte-range digest from §4.1).
func Extract(raw []byte, docDigest [32]byte) (*Result, error) {
	p7, err := pkcs7.Parse(raw)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeNotSignedData, "parse PKCS#7 SignedData")
	}

	if len(p7.Signers) == 0 {
		return nil, apperrors.New(apperrors.CodeNotSignedData, "SignedData has no SignerInfos")
	}
	signerInfo := p7.Signers[0]

	cert, err := findSignerCertificate(p7.Certificates, signerInfo)
	if err != nil {
		return nil, err
	}

	pubKey, ok := cert.PublicKey.(*ecdsa.PublicKey)
	if !ok || pubKey.Curve != elliptic.P256() {
		return nil, apperrors.New(apperrors.CodeUnsupportedAlgorithm, "signer public key is not ECDSA P-256")
	}

	var pubX, pubY [32]byte
	pubKey.X.FillBytes(pubX[:])
	pubKey.Y.FillBytes(pubY[:])

	sigBytes, err := normalizeSignature(signerInfo.EncryptedDigest)
	if err != nil {
		return nil, err
	}

	signedAttrsDER, err := marshalAttributesAsSet(signerInfo.AuthenticatedAttributes)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedASN1, "re-encode signedAttributes as SET-OF")
	}
	signedAttrsDigest := sha256.Sum256(signedAttrsDER)

	if err := checkMessageDigest(signerInfo.AuthenticatedAttributes, docDigest); err != nil {
		return nil, err
	}

	fingerprint := sha256.Sum256(cert.Raw)

	return &Result{
		Certificate:       cert,
		Fingerprint:       fingerprint,
		PubKeyX:           pubX,
		PubKeyY:           pubY,
		Signature:         sigBytes,
		SignedAttrsDigest: signedAttrsDigest,
	}, nil
}

// findSignerCertificate matches the serial number from
// signerInfo.IssuerAndSerialNumber against the embedded non-CA
// certificates (the issuer is not compared), falling back to the first
// embedded certificate when none matches.
func findSignerCertificate(certs []*x509.Certificate, signerInfo pkcs7.SignerInfo) (*x509.Certificate, error) {
	for _, cert := range certs {
		if cert.IsCA && cert.BasicConstraintsValid {
			continue
		}
		if cert.SerialNumber == nil {
			continue
		}
		if cert.SerialNumber.Cmp(signerInfo.IssuerAndSerialNumber.SerialNumber) == 0 {
			return cert, nil
		}
	}
	if len(certs) > 0 {
		return certs[0], nil
	}
	return nil, apperrors.New(apperrors.CodeMalformedASN1, "no signer certificate present in SignedData")
}

// normalizeSignature parses the DER-encoded ECDSA SEQUENCE{r,s} from
// EncryptedDigest and packs r and s into a fixed 64-byte big-endian
// concatenation, stripping any ASN.1 sign-padding byte.
func normalizeSignature(der []byte) ([64]byte, error) {
	var sig struct{ R, S *big.Int }
	if _, err := asn1.Unmarshal(der, &sig); err != nil {
		return [64]byte{}, apperrors.Wrap(err, apperrors.CodeMalformedASN1, "parse ECDSA signature SEQUENCE")
	}

	var out [64]byte
	if sig.R.BitLen() > 256 || sig.S.BitLen() > 256 {
		return out, apperrors.New(apperrors.CodeMalformedASN1, "ECDSA signature integer exceeds 256 bits")
	}
	sig.R.FillBytes(out[:32])
	sig.S.FillBytes(out[32:])
	return out, nil
}

// marshalAttributesAsSet re-encodes a parsed signedAttributes slice as a
// definite-length SET-OF (tag 0x31) — the canonical CAdES form the ECDSA
// signature is computed over — rather than the context-[0] IMPLICIT (tag
// 0xA0) form the attributes carry on the wire inside SignerInfo.
func marshalAttributesAsSet(attrs []pkcs7.Attribute) ([]byte, error) {
	encoded, err := asn1.Marshal(struct {
		Attributes []pkcs7.Attribute `asn1:"set"`
	}{Attributes: attrs})
	if err != nil {
		return nil, err
	}

	var raw asn1.RawValue
	if _, err := asn1.Unmarshal(encoded, &raw); err != nil {
		return nil, err
	}
	return raw.Bytes, nil
}

// checkMessageDigest locates the messageDigest attribute (OID
// 1.2.840.113549.1.9.4) inside signedAttributes and compares its value to
// docDigest.
func checkMessageDigest(attrs []pkcs7.Attribute, docDigest [32]byte) error {
	for _, attr := range attrs {
		if !attr.Type.Equal(oidMessageDigest) {
			continue
		}
		var digest []byte
		if _, err := asn1.Unmarshal(attr.Value.Bytes, &digest); err != nil {
			return apperrors.Wrap(err, apperrors.CodeMalformedASN1, "parse messageDigest attribute")
		}
		if len(digest) != 32 || [32]byte(digest) != docDigest {
			return apperrors.New(apperrors.CodeDigestMismatch,
				"messageDigest attribute does not match the byte-range digest")
		}
		return nil
	}
	return apperrors.New(apperrors.CodeMalformedASN1, "signedAttributes has no messageDigest attribute")
}
