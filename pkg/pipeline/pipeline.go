// Package pipeline orchestrates components 1-8 into one prove run: extract
// the signed byte range, parse the CMS signature, build trust-list Merkle
// trees, bind an encrypted payload to the document, assemble the ZK
// witness, drive the prover, and emit a manifest. Orchestration is
// single-threaded cooperative (§5): each stage runs to completion before
// the next starts, and the only suspension points are I/O and proving.
package pipeline

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/binder"
	"github.com/certen/pdf-zk-proof/pkg/byterange"
	"github.com/certen/pdf-zk-proof/pkg/cms"
	"github.com/certen/pdf-zk-proof/pkg/config"
	"github.com/certen/pdf-zk-proof/pkg/logging"
	"github.com/certen/pdf-zk-proof/pkg/manifest"
	"github.com/certen/pdf-zk-proof/pkg/merkle"
	"github.com/certen/pdf-zk-proof/pkg/prover"
	"github.com/certen/pdf-zk-proof/pkg/statement"
	"github.com/certen/pdf-zk-proof/pkg/trustlist"
	"github.com/certen/pdf-zk-proof/pkg/witness"
)

// ProveResult names what a prove run produced.
type ProveResult struct {
	Manifest     *manifest.Manifest
	ManifestPath string
}

// Prove runs components 1-8 against cfg and writes the doc-hash, signature,
// public-key, certificate, ciphertext, trust-list root and inclusion-path
// artefacts under cfg.Output.Dir, finishing with an atomically written
// manifest.json. No proof.bin is written (the proof is carried base64-encoded
// in the manifest), and the verification key is written only when
// cfg.Prover.VerifyKeyPath is set. ctx is checked before the run and after
// byte-range extraction, trust-list ingestion, artifact binding and
// proving; a canceled context aborts before the next stage starts.
func Prove(ctx context.Context, cfg *config.PipelineConfig, log *logging.Logger) (*ProveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "prove run canceled before start")
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "create output directory")
	}

	pdfBytes, err := os.ReadFile(cfg.Paths.PDF)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "read signed PDF")
	}

	// Component 1: Byte-Range Digest.
	br, err := byterange.Extract(pdfBytes)
	if err != nil {
		return nil, err
	}
	log.WithComponent("byterange").Info("extracted signed byte range", logging.Field{Key: "doc_hash", Value: hex.EncodeToString(br.DocHash[:])})
	if err := writeDocHashArtefacts(cfg.Output.Dir, br.DocHash); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "prove run canceled after byte-range extraction")
	}

	// Component 2: CMS Extractor.
	cmsDER, err := hex.DecodeString(br.ContentHex)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedASN1, "decode /Contents hex string")
	}
	sig, err := cms.Extract(cmsDER, br.DocHash)
	if err != nil {
		return nil, err
	}
	log.WithComponent("cms").Info("extracted CAdES signature", logging.Field{Key: "fingerprint", Value: hex.EncodeToString(sig.Fingerprint[:])})
	if err := writeCMSArtefacts(cfg.Output.Dir, sig); err != nil {
		return nil, err
	}

	// Components 3-4: Trust-List Ingestor + Merkle Engine, local list.
	allowListRaw, err := os.ReadFile(cfg.Paths.AllowList)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "read local allow-list")
	}
	fingerprints, err := trustlist.LoadAllowList(allowListRaw)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "prove run canceled after trust-list ingestion")
	}

	var euFingerprints []trustlist.Fingerprint
	if cfg.EUTrust.Enabled {
		lotlRaw, err := os.ReadFile(cfg.Paths.LOTL)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "read EU LOTL")
		}
		snapshot, err := trustlist.LoadLOTL(lotlRaw, time.Now())
		if err != nil {
			return nil, err
		}
		euFingerprints = snapshot.QualifiedCAs
	}

	// Component 5: Artifact Binder.
	plaintext, err := os.ReadFile(cfg.Paths.CiphertextPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "read plaintext payload")
	}
	recipientPub, err := loadRecipientKey(cfg.Paths.RecipientKey)
	if err != nil {
		return nil, err
	}
	pkg, err := binder.EncryptP256(plaintext, recipientPub, br.DocHash)
	if err != nil {
		return nil, err
	}
	log.WithComponent("binder").Info("bound ciphertext package to document digest", logging.Field{Key: "artifact_hash", Value: hex.EncodeToString(pkg.ArtifactHash[:])})
	if err := writeBinderArtefacts(cfg.Output.Dir, pkg); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "prove run canceled after artifact binding")
	}

	// Component 6: Witness Assembler, Component 7: Prover Bridge.
	var (
		tlRootString    string
		euTLRootString  string
		proofBytes      []byte
		vkBytes         []byte
		resolvedEUIndex int
	)
	switch cfg.Statement.Variant {
	case config.VariantSHA256:
		tree, err := merkle.BuildByteTree(toByteDigests(fingerprints))
		if err != nil {
			return nil, err
		}
		euTree := tree
		if cfg.EUTrust.Enabled {
			euTree, err = merkle.BuildByteTree(toByteDigests(euFingerprints))
			if err != nil {
				return nil, err
			}
		}
		index, ok := indexOfByteLeaf(fingerprints, sig.Fingerprint)
		if !ok {
			return nil, apperrors.New(apperrors.CodeTrustListDivergence, "signer fingerprint not present in local allow-list")
		}
		path, err := tree.Path(index)
		if err != nil {
			return nil, err
		}
		euIndex := 0
		euPath, err := euTree.Path(0)
		if err != nil {
			return nil, err
		}
		if cfg.EUTrust.Enabled {
			if found, ok := indexOfByteLeaf(euFingerprints, sig.Fingerprint); ok {
				euIndex = found
				euPath, err = euTree.Path(euIndex)
				if err != nil {
					return nil, err
				}
			}
			// Absent from the EU list: euIndex/euPath stay pinned at leaf 0,
			// which reconstruct_merkle_root will not resolve to euTree.Root()
			// unless the signer happens to occupy that slot - witness
			// execution fails at constraint (4), exactly as §8 Scenario D
			// requires, with no proof emitted.
		}

		w, err := witness.AssembleByteWitness(witness.ByteInputs{
			DocHash:       br.DocHash,
			MessageForSig: sig.SignedAttrsDigest,
			PubKeyX:       sig.PubKeyX,
			PubKeyY:       sig.PubKeyY,
			Signature:     sig.Signature,
			SignerFpr:     sig.Fingerprint,
			TLRoot:        tree.Root(),
			MerklePath:    path,
			Index:         index,
			EUEnabled:     cfg.EUTrust.Enabled,
			TLRootEU:      euTree.Root(),
			EUMerklePath:  euPath,
			EUIndex:       euIndex,
		})
		if err != nil {
			return nil, err
		}

		p := prover.New()
		if err := p.Compile(&statement.ByteMerkleStatement{}); err != nil {
			return nil, err
		}
		assignment := statement.NewByteAssignment(w)
		fullWitness, err := p.ExecuteWitness(assignment)
		if err != nil {
			return nil, err
		}
		proof, err := p.Prove(fullWitness)
		if err != nil {
			return nil, err
		}
		if proofBytes, err = prover.SerializeProof(proof); err != nil {
			return nil, err
		}
		if vkBytes, err = p.VerificationKeyBytes(); err != nil {
			return nil, err
		}
		tlRootString = hex.EncodeToString(tree.Root()[:])
		euTLRootString = hex.EncodeToString(euTree.Root()[:])
		resolvedEUIndex = euIndex

		if err := writeByteTreeArtefacts(cfg.Output.Dir, sig.Fingerprint, index, path, tree.Root(), cfg.EUTrust.Enabled, euIndex, euPath, euTree.Root()); err != nil {
			return nil, err
		}

	default:
		leaves := toFieldElements(fingerprints)
		tree, err := merkle.BuildFieldTree(leaves)
		if err != nil {
			return nil, err
		}
		euTree := tree
		if cfg.EUTrust.Enabled {
			euTree, err = merkle.BuildFieldTree(toFieldElements(euFingerprints))
			if err != nil {
				return nil, err
			}
		}
		signerLeaf := merkle.FingerprintToField(merkle.Digest(sig.Fingerprint))
		index, ok := indexOfFieldLeaf(leaves, signerLeaf)
		if !ok {
			return nil, apperrors.New(apperrors.CodeTrustListDivergence, "signer fingerprint not present in local allow-list")
		}
		path, err := tree.Path(index)
		if err != nil {
			return nil, err
		}
		euIndex := 0
		euPath, err := euTree.Path(0)
		if err != nil {
			return nil, err
		}
		if cfg.EUTrust.Enabled {
			euLeaves := toFieldElements(euFingerprints)
			if found, ok := indexOfFieldLeaf(euLeaves, signerLeaf); ok {
				euIndex = found
				euPath, err = euTree.Path(euIndex)
				if err != nil {
					return nil, err
				}
			}
			// Absent from the EU list: same zero-padding as the byte variant
			// above - constraint (4) fails at witness execution.
		}

		w, err := witness.AssembleFieldWitness(witness.FieldInputs{
			DocHash:       br.DocHash,
			MessageForSig: sig.SignedAttrsDigest,
			PubKeyX:       sig.PubKeyX,
			PubKeyY:       sig.PubKeyY,
			Signature:     sig.Signature,
			SignerFpr:     signerLeaf,
			TLRoot:        tree.Root(),
			MerklePath:    path,
			Index:         index,
			EUEnabled:     cfg.EUTrust.Enabled,
			TLRootEU:      euTree.Root(),
			EUMerklePath:  euPath,
			EUIndex:       euIndex,
		})
		if err != nil {
			return nil, err
		}

		p := prover.New()
		if err := p.Compile(&statement.FieldMerkleStatement{}); err != nil {
			return nil, err
		}
		assignment := statement.NewFieldAssignment(w)
		fullWitness, err := p.ExecuteWitness(assignment)
		if err != nil {
			return nil, err
		}
		proof, err := p.Prove(fullWitness)
		if err != nil {
			return nil, err
		}
		if proofBytes, err = prover.SerializeProof(proof); err != nil {
			return nil, err
		}
		if vkBytes, err = p.VerificationKeyBytes(); err != nil {
			return nil, err
		}
		tlRootString = tree.Root().String()
		euTLRootString = euTree.Root().String()
		resolvedEUIndex = euIndex

		if err := writeFieldTreeArtefacts(cfg.Output.Dir, sig.Fingerprint, index, path, tree.Root(), cfg.EUTrust.Enabled, euIndex, euPath, euTree.Root()); err != nil {
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "prove run canceled after proving")
	}

	if cfg.Prover.VerifyKeyPath != "" {
		if err := os.WriteFile(cfg.Prover.VerifyKeyPath, vkBytes, 0o600); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "persist verification key")
		}
	}

	euInfo := manifest.EUTrustInfo{Enabled: cfg.EUTrust.Enabled}
	if cfg.EUTrust.Enabled {
		euInfo.TLRootEU = &euTLRootString
		euInfo.EUIndex = &resolvedEUIndex
	}

	// Component 8: Manifest. doc_hash carries the signed-attributes digest
	// (message_for_sig), not the byte-range digest - see pkg/witness's
	// ByteWitness/FieldWitness doc comment for why the two are kept
	// distinct everywhere upstream of this call.
	m := manifest.New(sig.SignedAttrsDigest, "aes-256-gcm", pkg.ArtifactHash, sig.PubKeyX, sig.PubKeyY, sig.Fingerprint, tlRootString, euInfo, proofBytes, time.Now())

	manifestBytes, err := manifest.MarshalCanonical(m)
	if err != nil {
		return nil, err
	}
	manifestPath := filepath.Join(cfg.Output.Dir, "manifest.json")
	if err := writeAtomic(manifestPath, manifestBytes); err != nil {
		return nil, err
	}
	manifestCommitment, err := m.Commitment()
	if err != nil {
		return nil, err
	}
	log.WithComponent("manifest").Info("wrote manifest",
		logging.Field{Key: "path", Value: manifestPath},
		logging.Field{Key: "commitment", Value: hex.EncodeToString(manifestCommitment[:])},
	)

	return &ProveResult{Manifest: m, ManifestPath: manifestPath}, nil
}

func writeDocHashArtefacts(dir string, docHash [32]byte) error {
	if err := os.WriteFile(filepath.Join(dir, "doc_hash.bin"), docHash[:], 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write doc_hash.bin")
	}
	hexLine := hex.EncodeToString(docHash[:]) + "\n"
	if err := os.WriteFile(filepath.Join(dir, "doc_hash.hex"), []byte(hexLine), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write doc_hash.hex")
	}
	return nil
}

func writeCMSArtefacts(dir string, sig *cms.Result) error {
	sigJSON, err := json.Marshal(struct {
		Algorithm string `json:"algorithm"`
		R         string `json:"r"`
		S         string `json:"s"`
		Signature string `json:"signature"`
	}{
		Algorithm: "ECDSA-SHA256",
		R:         hex.EncodeToString(sig.Signature[:32]),
		S:         hex.EncodeToString(sig.Signature[32:]),
		Signature: hex.EncodeToString(sig.Signature[:]),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "marshal VERIFIED_sig.json")
	}
	if err := os.WriteFile(filepath.Join(dir, "VERIFIED_sig.json"), sigJSON, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write VERIFIED_sig.json")
	}

	pubkeyJSON, err := json.Marshal(struct {
		Algorithm string `json:"algorithm"`
		Curve     string `json:"curve"`
		X         string `json:"x"`
		Y         string `json:"y"`
	}{
		Algorithm: "EC",
		Curve:     "P-256",
		X:         hex.EncodeToString(sig.PubKeyX[:]),
		Y:         hex.EncodeToString(sig.PubKeyY[:]),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "marshal VERIFIED_pubkey.json")
	}
	if err := os.WriteFile(filepath.Join(dir, "VERIFIED_pubkey.json"), pubkeyJSON, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write VERIFIED_pubkey.json")
	}

	if err := os.WriteFile(filepath.Join(dir, "VERIFIED_signed_attrs_hash.bin"), sig.SignedAttrsDigest[:], 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write VERIFIED_signed_attrs_hash.bin")
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: sig.Certificate.Raw})
	if err := os.WriteFile(filepath.Join(dir, "cms_embedded_cert.pem"), certPEM, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write cms_embedded_cert.pem")
	}
	return nil
}

func writeBinderArtefacts(dir string, pkg *binder.Package) error {
	if err := os.WriteFile(filepath.Join(dir, "encrypted-file.bin"), pkg.CiphertextPackage, 0o600); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write encrypted-file.bin")
	}
	if err := os.WriteFile(filepath.Join(dir, "cipher_hash.bin"), pkg.ArtifactHash[:], 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write cipher_hash.bin")
	}
	metaJSON, err := json.Marshal(struct {
		IV              string `json:"iv"`
		EphemeralPubKey string `json:"ephemeral_pub_key"`
		ArtifactHash    string `json:"artifact_hash"`
	}{
		IV:              hex.EncodeToString(pkg.IV[:]),
		EphemeralPubKey: hex.EncodeToString(pkg.EphemeralPubKey),
		ArtifactHash:    hex.EncodeToString(pkg.ArtifactHash[:]),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "marshal encrypted-metadata.json")
	}
	if err := os.WriteFile(filepath.Join(dir, "encrypted-metadata.json"), metaJSON, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write encrypted-metadata.json")
	}
	return nil
}

// writeByteTreeArtefacts emits the byte-Merkle variant's §6 outputs:
// tl_root.hex and the signer's inclusion path under paths/<fpr>.json, plus
// the EU-list counterparts when euEnabled.
func writeByteTreeArtefacts(dir string, fpr [32]byte, index int, path [merkle.Depth]merkle.Digest, root merkle.Digest, euEnabled bool, euIndex int, euPath [merkle.Depth]merkle.Digest, euRoot merkle.Digest) error {
	if err := os.WriteFile(filepath.Join(dir, "tl_root.hex"), []byte(hex.EncodeToString(root[:])+"\n"), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write tl_root.hex")
	}
	if err := writeByteInclusionProof(filepath.Join(dir, "paths"), fpr, index, path, root); err != nil {
		return err
	}
	if euEnabled {
		if err := os.WriteFile(filepath.Join(dir, "tl_root_eu.hex"), []byte(hex.EncodeToString(euRoot[:])+"\n"), 0o644); err != nil {
			return apperrors.Wrap(err, apperrors.CodeEnvironment, "write tl_root_eu.hex")
		}
		if err := writeByteInclusionProof(filepath.Join(dir, "paths-eu"), fpr, euIndex, euPath, euRoot); err != nil {
			return err
		}
	}
	return nil
}

func writeByteInclusionProof(dir string, fpr [32]byte, index int, path [merkle.Depth]merkle.Digest, root merkle.Digest) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "create inclusion-path directory")
	}
	hexPath := make([]string, merkle.Depth)
	for i, sibling := range path {
		hexPath[i] = hex.EncodeToString(sibling[:])
	}
	proof := merkle.InclusionProof{
		Fingerprint: hex.EncodeToString(fpr[:]),
		Index:       index,
		Path:        hexPath,
		Root:        hex.EncodeToString(root[:]),
	}
	raw, err := json.Marshal(proof)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "marshal inclusion proof")
	}
	name := filepath.Join(dir, proof.Fingerprint+".json")
	if err := os.WriteFile(name, raw, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write inclusion proof")
	}
	return nil
}

// writeFieldTreeArtefacts is writeByteTreeArtefacts's Poseidon2 counterpart:
// roots and paths are rendered as decimal field strings.
func writeFieldTreeArtefacts(dir string, fpr [32]byte, index int, path [merkle.Depth]fr.Element, root fr.Element, euEnabled bool, euIndex int, euPath [merkle.Depth]fr.Element, euRoot fr.Element) error {
	if err := os.WriteFile(filepath.Join(dir, "tl_root_poseidon.txt"), []byte(root.String()), 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write tl_root_poseidon.txt")
	}
	if err := writeFieldInclusionProof(filepath.Join(dir, "paths-poseidon"), fpr, index, path, root); err != nil {
		return err
	}
	if euEnabled {
		if err := os.WriteFile(filepath.Join(dir, "tl_root_eu_poseidon.txt"), []byte(euRoot.String()), 0o644); err != nil {
			return apperrors.Wrap(err, apperrors.CodeEnvironment, "write tl_root_eu_poseidon.txt")
		}
		if err := writeFieldInclusionProof(filepath.Join(dir, "paths-eu-poseidon"), fpr, euIndex, euPath, euRoot); err != nil {
			return err
		}
	}
	return nil
}

func writeFieldInclusionProof(dir string, fpr [32]byte, index int, path [merkle.Depth]fr.Element, root fr.Element) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "create inclusion-path directory")
	}
	decimalPath := make([]string, merkle.Depth)
	for i, sibling := range path {
		decimalPath[i] = sibling.String()
	}
	fprHex := hex.EncodeToString(fpr[:])
	raw, err := json.Marshal(struct {
		Fingerprint       string   `json:"fingerprint"`
		Index             int      `json:"index"`
		MerklePathDecimal []string `json:"merkle_path_decimal"`
		Root              string   `json:"root"`
	}{
		Fingerprint:       fprHex,
		Index:             index,
		MerklePathDecimal: decimalPath,
		Root:              root.String(),
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeMalformedInput, "marshal Poseidon2 inclusion proof")
	}
	name := filepath.Join(dir, fprHex+".json")
	if err := os.WriteFile(name, raw, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write Poseidon2 inclusion proof")
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write temporary manifest")
	}
	if err := os.Rename(tmp, path); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "rename temporary manifest into place")
	}
	return nil
}

func toByteDigests(fprs []trustlist.Fingerprint) []merkle.Digest {
	out := make([]merkle.Digest, len(fprs))
	for i, f := range fprs {
		out[i] = merkle.Digest(f)
	}
	return out
}

func toFieldElements(fprs []trustlist.Fingerprint) []fr.Element {
	out := make([]fr.Element, len(fprs))
	for i, f := range fprs {
		out[i] = merkle.FingerprintToField(merkle.Digest(f))
	}
	return out
}

// indexOfByteLeaf returns the position of target within fprs and whether it
// was found at all; callers distinguish "absent" from "found at index 0".
func indexOfByteLeaf(fprs []trustlist.Fingerprint, target [32]byte) (int, bool) {
	for i, f := range fprs {
		if merkle.Digest(f) == merkle.Digest(target) {
			return i, true
		}
	}
	return 0, false
}

func indexOfFieldLeaf(leaves []fr.Element, target fr.Element) (int, bool) {
	for i, l := range leaves {
		if l.Equal(&target) {
			return i, true
		}
	}
	return 0, false
}

// loadRecipientKey reads a PEM-encoded PKIX public key and requires it be
// an ECDSA P-256 key, the only curve the Artifact Binder's P-256 path
// accepts.
func loadRecipientKey(path string) (*ecdsa.PublicKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "read recipient public key")
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, apperrors.New(apperrors.CodeMalformedInput, "recipient key is not PEM-encoded")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMalformedInput, "parse recipient public key")
	}
	ecdsaPub, ok := pub.(*ecdsa.PublicKey)
	if !ok || ecdsaPub.Curve != elliptic.P256() {
		return nil, apperrors.New(apperrors.CodeUnsupportedAlgorithm, "recipient public key is not ECDSA P-256")
	}
	return ecdsaPub, nil
}
