package manifest

import (
	"strings"
	"testing"
	"time"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

func sampleManifest(t *testing.T) *Manifest {
	t.Helper()
	var docHash, artifactHash, pubX, pubY, fpr [32]byte
	docHash[0] = 0x01
	artifactHash[0] = 0x02
	pubX[0] = 0x03
	pubY[0] = 0x04
	fpr[0] = 0x05

	return New(docHash, "aes-256-gcm", artifactHash, pubX, pubY, fpr,
		"deadbeef", EUTrustInfo{Enabled: false}, []byte("proof-bytes"),
		time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestMarshalCanonical_StableKeyOrderAndLFEnding(t *testing.T) {
	m := sampleManifest(t)

	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	if !strings.HasSuffix(string(body), "\n") {
		t.Errorf("expected manifest to end with a single LF")
	}
	if strings.Contains(string(body), "\r") {
		t.Errorf("expected no CR in manifest output")
	}

	// Marshal twice; canonical output must be byte-identical.
	body2, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("second MarshalCanonical failed: %v", err)
	}
	if string(body) != string(body2) {
		t.Errorf("expected deterministic canonical output")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	m := sampleManifest(t)
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	parsed, err := Parse(body)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.DocHash != m.DocHash || parsed.TLRoot != m.TLRoot {
		t.Errorf("round-trip mismatch: got %+v", parsed)
	}
}

func TestParse_WrongSchemaVersionRejected(t *testing.T) {
	m := sampleManifest(t)
	m.Version = 2
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	_, err = Parse(body)
	if err == nil {
		t.Fatalf("expected error for unsupported schema version, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeMalformedInput) {
		t.Errorf("expected MalformedInput code, got %v", err)
	}
}

func TestParse_BadHexLengthRejected(t *testing.T) {
	m := sampleManifest(t)
	m.DocHash = "deadbeef" // too short
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	_, err = Parse(body)
	if err == nil {
		t.Fatalf("expected error for short doc_hash, got nil")
	}
}

func TestParse_EUEnabledWithoutRootRejected(t *testing.T) {
	m := sampleManifest(t)
	m.EUTrust = EUTrustInfo{Enabled: true}
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	_, err = Parse(body)
	if err == nil {
		t.Fatalf("expected error for eu_trust.enabled without tl_root_eu, got nil")
	}
}

func TestParse_EUDisabledWithNonZeroRootRejected(t *testing.T) {
	m := sampleManifest(t)
	root := strings.Repeat("ab", 32)
	m.EUTrust = EUTrustInfo{Enabled: false, TLRootEU: &root}
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	_, err = Parse(body)
	if err == nil {
		t.Fatalf("expected error for eu_trust.enabled=false with non-zero tl_root_eu, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeMalformedInput) {
		t.Errorf("expected MalformedInput code, got %v", err)
	}
}

func TestParse_EUDisabledWithZeroRootAccepted(t *testing.T) {
	m := sampleManifest(t)
	zeroRoot := strings.Repeat("0", 64)
	zeroIndex := 0
	m.EUTrust = EUTrustInfo{Enabled: false, TLRootEU: &zeroRoot, EUIndex: &zeroIndex}
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	if _, err := Parse(body); err != nil {
		t.Errorf("expected all-zero tl_root_eu to be tolerated when eu_trust is disabled, got %v", err)
	}
}

func TestParse_BadTimestampRejected(t *testing.T) {
	m := sampleManifest(t)
	m.Timestamp = "not-a-timestamp"
	body, err := MarshalCanonical(m)
	if err != nil {
		t.Fatalf("MarshalCanonical failed: %v", err)
	}

	_, err = Parse(body)
	if err == nil {
		t.Fatalf("expected error for malformed timestamp, got nil")
	}
}
