// Package verifier implements the six-step, fail-fast verification
// protocol of §4.9: load manifest, check artifact binding, check the local
// and (conditionally) EU trust-list roots, load the proof and verification
// key, and verify the ZK proof itself. Unlike the teacher's
// UnifiedVerifier, which aggregates every level's errors into one combined
// VerificationResult, this verifier returns on the first failing step —
// the spec requires all six steps to pass and gives each one a distinct
// terminal error code, so there is nothing useful left to check once one
// has failed.
package verifier

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"os"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/manifest"
	"github.com/certen/pdf-zk-proof/pkg/merkle"
	"github.com/certen/pdf-zk-proof/pkg/prover"
	"github.com/certen/pdf-zk-proof/pkg/statement"
)

// defaultMaxProofBytes and defaultMaxVKBytes bound step 5's "reject absurd
// inputs before handing to the backend" requirement. Groth16 BN254 proofs
// and verification keys are small (low kilobytes); anything past a
// megabyte is not a proof this system ever produced.
const (
	defaultMaxProofBytes = 1 << 20
	defaultMaxVKBytes    = 1 << 20
)

// Config names the local artefacts a verifier checks the manifest against.
// Every path is read fresh on each Verify call; the verifier holds no
// state between calls.
type Config struct {
	// ArtifactPath is the local ciphertext package (§3's "ciphertext
	// package") whose SHA-256 must equal manifest.artifact.artifact_hash.
	ArtifactPath string

	// LocalTLRootPath is a file holding the verifier's own locally-built
	// trust-list root, in the same representation (hex or decimal field
	// string) as manifest.tl_root.
	LocalTLRootPath string

	// LocalEUTLRootPath is LocalTLRootPath's EU-list counterpart. Only
	// read when the manifest's eu_trust.enabled is true.
	LocalEUTLRootPath string

	// VKPath is the cached Groth16 verification key for the statement
	// variant this manifest's proof was produced against.
	VKPath string

	// MaxProofBytes and MaxVKBytes bound step 5's sanity check. Zero
	// means "use the package default."
	MaxProofBytes int
	MaxVKBytes    int
}

func (c Config) maxProofBytes() int {
	if c.MaxProofBytes > 0 {
		return c.MaxProofBytes
	}
	return defaultMaxProofBytes
}

func (c Config) maxVKBytes() int {
	if c.MaxVKBytes > 0 {
		return c.MaxVKBytes
	}
	return defaultMaxVKBytes
}

// Result is returned only when all six steps pass; it carries the verified
// manifest, for callers that want to log a successful verification.
type Result struct {
	Manifest *manifest.Manifest
	Verified bool
}

// Verify runs the ordered, fail-fast six-step protocol of §4.9 against a
// manifest's raw bytes. It returns a populated Result only when every step
// passes; any failure returns a nil Result and a typed apperrors error
// whose code identifies which step failed.
func Verify(manifestRaw []byte, cfg Config) (*Result, error) {
	// Step 1: load and validate the manifest.
	m, err := manifest.Parse(manifestRaw)
	if err != nil {
		return nil, err
	}

	// Step 2: verify artifact binding.
	if err := verifyArtifactBinding(m, cfg.ArtifactPath); err != nil {
		return nil, err
	}

	// Step 3: verify the local trust-list root.
	if err := verifyLocalRoot(cfg.LocalTLRootPath, m.TLRoot, apperrors.CodeTrustListDivergence, "tl_root"); err != nil {
		return nil, err
	}

	// Step 4: verify the EU trust-list root, conditionally.
	if m.EUTrust.Enabled {
		if m.EUTrust.TLRootEU == nil {
			return nil, apperrors.New(apperrors.CodeEUTrustListDivergence, "eu_trust.enabled is true but manifest carries no tl_root_eu")
		}
		if err := verifyLocalRoot(cfg.LocalEUTLRootPath, *m.EUTrust.TLRootEU, apperrors.CodeEUTrustListDivergence, "tl_root_eu"); err != nil {
			return nil, err
		}
	}

	// Step 5: load the proof and verification key, with size sanity checks.
	proofBytes, err := m.DecodedProof()
	if err != nil {
		return nil, err
	}
	if len(proofBytes) == 0 || len(proofBytes) > cfg.maxProofBytes() {
		return nil, apperrors.Newf(apperrors.CodeMalformedInput, "proof size %d outside sane bounds [1, %d]", len(proofBytes), cfg.maxProofBytes())
	}

	vkBytes, err := os.ReadFile(cfg.VKPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "read verification key file")
	}
	if len(vkBytes) == 0 || len(vkBytes) > cfg.maxVKBytes() {
		return nil, apperrors.Newf(apperrors.CodeMalformedInput, "verification key size %d outside sane bounds [1, %d]", len(vkBytes), cfg.maxVKBytes())
	}

	proof, err := prover.DeserializeProof(proofBytes)
	if err != nil {
		return nil, err
	}

	// Step 6: verify the ZK proof against the manifest's public inputs,
	// reconstructed in the statement's declared order.
	publicAssignment, err := publicAssignmentFor(m)
	if err != nil {
		return nil, err
	}

	ok, err := prover.Verify(vkBytes, proof, publicAssignment)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.New(apperrors.CodeProofInvalid, "groth16 proof did not verify against the manifest's public inputs")
	}

	return &Result{Manifest: m, Verified: true}, nil
}

func verifyArtifactBinding(m *manifest.Manifest, artifactPath string) error {
	raw, err := os.ReadFile(artifactPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "read local ciphertext package")
	}
	sum := sha256.Sum256(raw)
	want, err := hex.DecodeString(m.Artifact.ArtifactHash)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "decode manifest artifact_hash")
	}
	if !bytes.Equal(sum[:], want) {
		return apperrors.Newf(apperrors.CodeArtifactMismatch, "local ciphertext package SHA-256 %x does not match manifest artifact_hash %x", sum, want)
	}
	return nil
}

// verifyLocalRoot compares a locally-held root file's trimmed contents
// against the manifest's root string, reporting code if they differ.
func verifyLocalRoot(localPath, manifestRoot string, code apperrors.Code, field string) error {
	raw, err := os.ReadFile(localPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "read local "+field+" file")
	}
	local := strings.TrimSpace(string(raw))
	want := strings.TrimSpace(manifestRoot)
	if !strings.EqualFold(local, want) {
		return apperrors.Newf(code, "local %s %q does not match manifest %s %q", field, local, field, want)
	}
	return nil
}

// publicAssignmentFor reconstructs the statement's public-input-only
// circuit assignment from a manifest, selecting the byte-Merkle or
// field-Merkle variant by the shape of tl_root: a 64-hex-character string
// is the byte variant, anything else is parsed as a decimal field element
// (§3's "tl_root (hex or decimal field string depending on variant)").
//
// manifest.doc_hash is read as the circuit's public doc_hash input
// directly: per §9's naming clash, the value this step must reconstruct
// is message_for_sig (the signed-attributes digest), which is exactly
// what the manifest's doc_hash field holds — the true byte-range digest
// is a separate artefact (doc_hash.bin/.hex, §6) that never enters the
// manifest or the circuit.
func publicAssignmentFor(m *manifest.Manifest) (frontend.Circuit, error) {
	docHash, err := decodeHex32(m.DocHash, "doc_hash")
	if err != nil {
		return nil, err
	}
	pubX, err := decodeHex32(m.Signer.PubX, "signer.pub_x")
	if err != nil {
		return nil, err
	}
	pubY, err := decodeHex32(m.Signer.PubY, "signer.pub_y")
	if err != nil {
		return nil, err
	}
	signerFpr, err := decodeHex32(m.Signer.Fingerprint, "signer.fingerprint")
	if err != nil {
		return nil, err
	}

	if isHex64(m.TLRoot) {
		tlRoot, err := decodeHex32(m.TLRoot, "tl_root")
		if err != nil {
			return nil, err
		}
		var tlRootEU [32]byte
		if m.EUTrust.Enabled {
			tlRootEU, err = decodeHex32(*m.EUTrust.TLRootEU, "tl_root_eu")
			if err != nil {
				return nil, err
			}
		}
		return statement.NewBytePublicAssignment(docHash, pubX, pubY, signerFpr, tlRoot, tlRootEU, m.EUTrust.Enabled), nil
	}

	tlRoot, err := decodeDecimalField(m.TLRoot, "tl_root")
	if err != nil {
		return nil, err
	}
	var tlRootEU fr.Element
	if m.EUTrust.Enabled {
		tlRootEU, err = decodeDecimalField(*m.EUTrust.TLRootEU, "tl_root_eu")
		if err != nil {
			return nil, err
		}
	}
	signerFprField := merkle.FingerprintToField(merkle.Digest(signerFpr))
	return statement.NewFieldPublicAssignment(docHash, pubX, pubY, signerFprField, tlRoot, tlRootEU, m.EUTrust.Enabled), nil
}

func isHex64(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func decodeHex32(s, field string) ([32]byte, error) {
	var out [32]byte
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return out, apperrors.Newf(apperrors.CodeMalformedInput, "%s is not a 32-byte hex value", field)
	}
	copy(out[:], raw)
	return out, nil
}

func decodeDecimalField(s, field string) (fr.Element, error) {
	var el fr.Element
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return el, apperrors.Newf(apperrors.CodeMalformedInput, "%s is not a valid decimal field string", field)
	}
	el.SetBigInt(v)
	return el, nil
}
