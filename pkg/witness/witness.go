// Package witness assembles components 1-5's outputs into the complete
// public/private input tuple for the ZK statement (§4.10), validating index
// ranges and zero-padding the disabled EU branch. It performs no byte↔field
// conversion itself: the field variant takes values already converted by
// merkle.FingerprintToField, which the pipeline and verifier call directly.
package witness

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/merkle"
)

// ByteWitness is the complete input tuple for the byte-Merkle statement
// variant: every Merkle-shaped value is a 32-byte digest.
//
// DocHash and MessageForSig are kept distinct on purpose (§9's
// doc_hash/message_for_sig naming clash): DocHash is the byte-range
// digest carried through for the doc_hash.bin/.hex output artefacts,
// while MessageForSig — the CAdES signed-attributes digest — is the
// value actually fed to the circuit's public "doc_hash" input and stored
// under the manifest's doc_hash field. The two are equal only by
// coincidence; never conflate them.
type ByteWitness struct {
	// Public inputs.
	DocHash        [32]byte
	MessageForSig  [32]byte
	PubKeyX        [32]byte
	PubKeyY        [32]byte
	SignerFpr      [32]byte
	TLRoot         [32]byte
	EUTrustEnabled bool
	TLRootEU       [32]byte

	// Private inputs.
	Signature    [64]byte
	MerklePath   [merkle.Depth][32]byte
	Index        int
	EUMerklePath [merkle.Depth][32]byte
	EUIndex      int
}

// FieldWitness is the complete input tuple for the field-Merkle statement
// variant: Merkle-shaped values are BN254 scalar-field elements.
type FieldWitness struct {
	// Public inputs.
	DocHash        [32]byte
	MessageForSig  [32]byte
	PubKeyX        [32]byte
	PubKeyY        [32]byte
	SignerFpr      fr.Element
	TLRoot         fr.Element
	EUTrustEnabled bool
	TLRootEU       fr.Element

	// Private inputs.
	Signature    [64]byte
	MerklePath   [merkle.Depth]fr.Element
	Index        int
	EUMerklePath [merkle.Depth]fr.Element
	EUIndex      int
}

// ByteInputs is everything the Assembler needs to build a ByteWitness,
// gathered from components 1-5.
type ByteInputs struct {
	DocHash       [32]byte
	MessageForSig [32]byte
	PubKeyX       [32]byte
	PubKeyY       [32]byte
	Signature     [64]byte
	SignerFpr     [32]byte
	TLRoot        [32]byte
	MerklePath    [merkle.Depth][32]byte
	Index         int
	EUEnabled     bool
	TLRootEU      [32]byte
	EUMerklePath  [merkle.Depth][32]byte
	EUIndex       int
}

// AssembleByteWitness validates lengths and ranges, then builds the
// byte-Merkle witness. When EUEnabled is false, the EU branch (tl_root_eu
// and the EU path) is padded with zero digests and eu_index = 0 regardless
// of what was supplied, per §4.6's normalization rule.
func AssembleByteWitness(in ByteInputs) (*ByteWitness, error) {
	if in.Index < 0 || in.Index >= merkle.Capacity {
		return nil, apperrors.Newf(apperrors.CodeInvalidWitness, "index %d out of range [0, %d)", in.Index, merkle.Capacity)
	}

	w := &ByteWitness{
		DocHash:        in.DocHash,
		MessageForSig:  in.MessageForSig,
		PubKeyX:        in.PubKeyX,
		PubKeyY:        in.PubKeyY,
		SignerFpr:      in.SignerFpr,
		TLRoot:         in.TLRoot,
		EUTrustEnabled: in.EUEnabled,
		Signature:      in.Signature,
		MerklePath:     in.MerklePath,
		Index:          in.Index,
	}

	if in.EUEnabled {
		if in.EUIndex < 0 || in.EUIndex >= merkle.Capacity {
			return nil, apperrors.Newf(apperrors.CodeInvalidWitness, "eu_index %d out of range [0, %d)", in.EUIndex, merkle.Capacity)
		}
		w.TLRootEU = in.TLRootEU
		w.EUMerklePath = in.EUMerklePath
		w.EUIndex = in.EUIndex
	}
	// EUEnabled == false: w.TLRootEU, w.EUMerklePath and w.EUIndex stay
	// zero-valued, satisfying the "zero padding" normalization rule.

	return w, nil
}

// FieldInputs mirrors ByteInputs but with Merkle-shaped values already
// reduced to field elements (by the field-Merkle Merkle Engine variant).
type FieldInputs struct {
	DocHash       [32]byte
	MessageForSig [32]byte
	PubKeyX       [32]byte
	PubKeyY       [32]byte
	Signature     [64]byte
	SignerFpr     fr.Element
	TLRoot        fr.Element
	MerklePath    [merkle.Depth]fr.Element
	Index         int
	EUEnabled     bool
	TLRootEU      fr.Element
	EUMerklePath  [merkle.Depth]fr.Element
	EUIndex       int
}

// AssembleFieldWitness is AssembleByteWitness's field-Merkle counterpart.
func AssembleFieldWitness(in FieldInputs) (*FieldWitness, error) {
	if in.Index < 0 || in.Index >= merkle.Capacity {
		return nil, apperrors.Newf(apperrors.CodeInvalidWitness, "index %d out of range [0, %d)", in.Index, merkle.Capacity)
	}

	w := &FieldWitness{
		DocHash:        in.DocHash,
		MessageForSig:  in.MessageForSig,
		PubKeyX:        in.PubKeyX,
		PubKeyY:        in.PubKeyY,
		SignerFpr:      in.SignerFpr,
		TLRoot:         in.TLRoot,
		EUTrustEnabled: in.EUEnabled,
		Signature:      in.Signature,
		MerklePath:     in.MerklePath,
		Index:          in.Index,
	}

	if in.EUEnabled {
		if in.EUIndex < 0 || in.EUIndex >= merkle.Capacity {
			return nil, apperrors.Newf(apperrors.CodeInvalidWitness, "eu_index %d out of range [0, %d)", in.EUIndex, merkle.Capacity)
		}
		w.TLRootEU = in.TLRootEU
		w.EUMerklePath = in.EUMerklePath
		w.EUIndex = in.EUIndex
	}
	// else: w.TLRootEU and w.EUMerklePath stay field zero, w.EUIndex stays
	// 0 - the field-variant zero padding.

	return w, nil
}
