package verifier

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/manifest"
	"github.com/certen/pdf-zk-proof/pkg/merkle"
	"github.com/certen/pdf-zk-proof/pkg/prover"
	"github.com/certen/pdf-zk-proof/pkg/statement"
	"github.com/certen/pdf-zk-proof/pkg/witness"
)

// fixture bundles everything one end-to-end test needs: a manifest produced
// by a compiled field-Merkle prover, and the Config naming the local files
// a verifier checks it against.
type fixture struct {
	manifestBytes []byte
	cfg           Config
}

// buildFixture runs the real pipeline components (ECDSA signing, field
// Merkle tree, witness assembly, Groth16 proving) to produce a manifest a
// verifier.Verify call should accept, plus the local artefacts it reads.
func buildFixture(t *testing.T, euEnabled bool) fixture {
	t.Helper()
	dir := t.TempDir()

	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	// messageForSig is the CAdES signed-attributes digest: the value the
	// ECDSA signature actually covers, and what the manifest's doc_hash
	// field and the circuit's public doc_hash input both carry. docHash
	// is a different value (the byte-range digest) that would only ever
	// appear in the standalone doc_hash.bin/.hex output files, never in
	// the manifest or the proof — kept distinct here to make the naming
	// clash explicit rather than accidentally making the two equal.
	var docHash, messageForSig [32]byte
	copy(docHash[:], sha256Sum([]byte("scenario byte-range digest")))
	copy(messageForSig[:], sha256Sum([]byte("scenario signed-attributes digest")))

	r, s, err := ecdsa.Sign(rand.Reader, priv, messageForSig[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	var sig [64]byte
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])

	var pubX, pubY [32]byte
	priv.PublicKey.X.FillBytes(pubX[:])
	priv.PublicKey.Y.FillBytes(pubY[:])

	var signerFpr [32]byte
	copy(signerFpr[:], sha256Sum([]byte("signer certificate DER")))

	leaf := merkle.FingerprintToField(merkle.Digest(signerFpr))
	tree, err := merkle.BuildFieldTree([]fr.Element{leaf})
	if err != nil {
		t.Fatalf("build field tree: %v", err)
	}
	path, err := tree.Path(0)
	if err != nil {
		t.Fatalf("tree path: %v", err)
	}

	fieldWitness, err := witness.AssembleFieldWitness(witness.FieldInputs{
		DocHash:       docHash,
		MessageForSig: messageForSig,
		PubKeyX:       pubX,
		PubKeyY:       pubY,
		Signature:     sig,
		SignerFpr:     leaf,
		TLRoot:        tree.Root(),
		MerklePath:    path,
		Index:         0,
		EUEnabled:     euEnabled,
		TLRootEU:      tree.Root(),
		EUMerklePath:  path,
		EUIndex:       0,
	})
	if err != nil {
		t.Fatalf("assemble field witness: %v", err)
	}

	p := prover.New()
	if err := p.Compile(&statement.FieldMerkleStatement{}); err != nil {
		t.Fatalf("compile: %v", err)
	}
	assignment := statement.NewFieldAssignment(fieldWitness)
	fullWitness, err := p.ExecuteWitness(assignment)
	if err != nil {
		t.Fatalf("execute witness: %v", err)
	}
	proof, err := p.Prove(fullWitness)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	proofBytes, err := prover.SerializeProof(proof)
	if err != nil {
		t.Fatalf("serialize proof: %v", err)
	}
	vkBytes, err := p.VerificationKeyBytes()
	if err != nil {
		t.Fatalf("vk bytes: %v", err)
	}

	ciphertext := []byte("ciphertext package bytes for this scenario")
	artifactHash := sha256.Sum256(ciphertext)

	var euInfo manifest.EUTrustInfo
	if euEnabled {
		rootStr := tree.Root().String()
		idx := 0
		euInfo = manifest.EUTrustInfo{Enabled: true, TLRootEU: &rootStr, EUIndex: &idx}
	}

	// manifest.New's first argument becomes the manifest's doc_hash field,
	// which per the resolved naming clash holds message_for_sig — not the
	// byte-range docHash computed above.
	m := manifest.New(messageForSig, "aes-256-gcm", artifactHash, pubX, pubY, signerFpr,
		tree.Root().String(), euInfo, proofBytes, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	manifestBytes, err := manifest.MarshalCanonical(m)
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}

	artifactPath := filepath.Join(dir, "encrypted-file.bin")
	if err := os.WriteFile(artifactPath, ciphertext, 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	rootPath := filepath.Join(dir, "tl_root_poseidon.txt")
	if err := os.WriteFile(rootPath, []byte(tree.Root().String()), 0o600); err != nil {
		t.Fatalf("write root: %v", err)
	}
	vkPath := filepath.Join(dir, "vkey.bin")
	if err := os.WriteFile(vkPath, vkBytes, 0o600); err != nil {
		t.Fatalf("write vk: %v", err)
	}

	cfg := Config{
		ArtifactPath:    artifactPath,
		LocalTLRootPath: rootPath,
		VKPath:          vkPath,
	}

	if euEnabled {
		euRootPath := filepath.Join(dir, "tl_root_eu_poseidon.txt")
		if err := os.WriteFile(euRootPath, []byte(tree.Root().String()), 0o600); err != nil {
			t.Fatalf("write eu root: %v", err)
		}
		cfg.LocalEUTLRootPath = euRootPath
	}

	return fixture{manifestBytes: manifestBytes, cfg: cfg}
}

func sha256Sum(b []byte) []byte {
	sum := sha256.Sum256(b)
	return sum[:]
}

func TestVerify_FullRoundTrip_Succeeds(t *testing.T) {
	fx := buildFixture(t, false)
	result, err := Verify(fx.manifestBytes, fx.cfg)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Verified {
		t.Errorf("expected Verified=true")
	}
}

func TestVerify_FullRoundTrip_EUEnabled_Succeeds(t *testing.T) {
	fx := buildFixture(t, true)
	result, err := Verify(fx.manifestBytes, fx.cfg)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !result.Verified {
		t.Errorf("expected Verified=true")
	}
}

func TestVerify_MalformedManifestRejectedAtStep1(t *testing.T) {
	_, err := Verify([]byte("not json"), Config{})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeMalformedInput) {
		t.Errorf("expected MalformedInput, got %v", err)
	}
}

func TestVerify_ArtifactMismatchRejectedAtStep2(t *testing.T) {
	fx := buildFixture(t, false)
	if err := os.WriteFile(fx.cfg.ArtifactPath, []byte("tampered ciphertext"), 0o600); err != nil {
		t.Fatalf("tamper artifact: %v", err)
	}

	_, err := Verify(fx.manifestBytes, fx.cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeArtifactMismatch) {
		t.Errorf("expected ArtifactMismatch, got %v", err)
	}
}

func TestVerify_TrustListDivergenceRejectedAtStep3(t *testing.T) {
	fx := buildFixture(t, false)
	if err := os.WriteFile(fx.cfg.LocalTLRootPath, []byte("999999999999999999999999999999"), 0o600); err != nil {
		t.Fatalf("tamper root: %v", err)
	}

	_, err := Verify(fx.manifestBytes, fx.cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeTrustListDivergence) {
		t.Errorf("expected TrustListDivergence, got %v", err)
	}
}

func TestVerify_EUTrustListDivergenceRejectedAtStep4(t *testing.T) {
	fx := buildFixture(t, true)
	if err := os.WriteFile(fx.cfg.LocalEUTLRootPath, []byte("111111111111111111111111111111"), 0o600); err != nil {
		t.Fatalf("tamper eu root: %v", err)
	}

	_, err := Verify(fx.manifestBytes, fx.cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeEUTrustListDivergence) {
		t.Errorf("expected EUTrustListDivergence, got %v", err)
	}
}

func TestVerify_MissingVKRejectedAtStep5(t *testing.T) {
	fx := buildFixture(t, false)
	fx.cfg.VKPath = filepath.Join(t.TempDir(), "does-not-exist.bin")

	_, err := Verify(fx.manifestBytes, fx.cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeEnvironment) {
		t.Errorf("expected Environment, got %v", err)
	}
}

func TestVerify_WrongPublicKeyRejectedAtStep6(t *testing.T) {
	fx := buildFixture(t, false)

	m, err := manifest.Parse(fx.manifestBytes)
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	// Flip the leading hex digit of pub_x so the public input no longer
	// matches the key the proof was actually built for, without touching
	// its length or hex validity.
	corrupted := []byte(m.Signer.PubX)
	if corrupted[0] == '0' {
		corrupted[0] = '1'
	} else {
		corrupted[0] = '0'
	}
	m.Signer.PubX = string(corrupted)

	body, err := manifest.MarshalCanonical(m)
	if err != nil {
		t.Fatalf("remarshal manifest: %v", err)
	}

	_, err = Verify(body, fx.cfg)
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeProofInvalid) {
		t.Errorf("expected ProofInvalid, got %v", err)
	}
}
