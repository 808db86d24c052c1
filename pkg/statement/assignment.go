package statement

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/certen/pdf-zk-proof/pkg/witness"
)

// digestToU8Array converts a 32-byte digest to the fixed-size array shape
// gnark's in-circuit byte types expect.
func digestToU8Array(d [32]byte) [32]uints.U8 {
	var out [32]uints.U8
	copy(out[:], uints.NewU8Array(d[:]))
	return out
}

// p256Element builds an emulated P-256 field element from a big-endian
// 32-byte coordinate.
func p256Element(b [32]byte) emulated.Element[emulated.P256Fp] {
	v := new(big.Int).SetBytes(b[:])
	return emulated.ValueOf[emulated.P256Fp](v)
}

// p256ScalarElement builds an emulated P-256 scalar-field element (used for
// the signature's R, S components) from a big-endian 32-byte value.
func p256ScalarElement(b [32]byte) emulated.Element[emulated.P256Fr] {
	v := new(big.Int).SetBytes(b[:])
	return emulated.ValueOf[emulated.P256Fr](v)
}

// NewByteAssignment builds the full (public + private) circuit assignment
// for ByteMerkleStatement from an assembled witness, ready to pass to
// pkg/prover's ExecuteWitness. The circuit's public DocHash field is bound
// to w.MessageForSig, not w.DocHash — see ByteWitness's doc comment for
// why the two are kept distinct.
func NewByteAssignment(w *witness.ByteWitness) *ByteMerkleStatement {
	var sigR, sigS [32]byte
	copy(sigR[:], w.Signature[:32])
	copy(sigS[:], w.Signature[32:])

	var merklePath, euMerklePath [Depth][32]uints.U8
	for i := 0; i < Depth; i++ {
		merklePath[i] = digestToU8Array(w.MerklePath[i])
		euMerklePath[i] = digestToU8Array(w.EUMerklePath[i])
	}

	euEnabled := 0
	if w.EUTrustEnabled {
		euEnabled = 1
	}

	return &ByteMerkleStatement{
		DocHash:        digestToU8Array(w.MessageForSig),
		PubKeyX:        p256Element(w.PubKeyX),
		PubKeyY:        p256Element(w.PubKeyY),
		SignerFpr:      digestToU8Array(w.SignerFpr),
		TLRoot:         digestToU8Array(w.TLRoot),
		EUTrustEnabled: euEnabled,
		TLRootEU:       digestToU8Array(w.TLRootEU),
		SignatureR:     p256ScalarElement(sigR),
		SignatureS:     p256ScalarElement(sigS),
		MerklePath:     merklePath,
		Index:          w.Index,
		EUMerklePath:   euMerklePath,
		EUIndex:        w.EUIndex,
	}
}

// NewBytePublicAssignment builds a public-inputs-only assignment, matching
// the shape §4.9 step 6 needs to call pkg/prover.Verify without any of the
// private witness data. Private fields are left at their zero value; they
// are not part of the public witness and frontend.PublicOnly() ignores
// them.
func NewBytePublicAssignment(docHash, pubKeyX, pubKeyY, signerFpr, tlRoot, tlRootEU [32]byte, euEnabled bool) *ByteMerkleStatement {
	euFlag := 0
	if euEnabled {
		euFlag = 1
	}
	return &ByteMerkleStatement{
		DocHash:        digestToU8Array(docHash),
		PubKeyX:        p256Element(pubKeyX),
		PubKeyY:        p256Element(pubKeyY),
		SignerFpr:      digestToU8Array(signerFpr),
		TLRoot:         digestToU8Array(tlRoot),
		EUTrustEnabled: euFlag,
		TLRootEU:       digestToU8Array(tlRootEU),
	}
}

// NewFieldAssignment is NewByteAssignment's field-Merkle counterpart.
func NewFieldAssignment(w *witness.FieldWitness) *FieldMerkleStatement {
	var sigR, sigS [32]byte
	copy(sigR[:], w.Signature[:32])
	copy(sigS[:], w.Signature[32:])

	var merklePath, euMerklePath [Depth]fr.Element
	copy(merklePath[:], w.MerklePath[:])
	copy(euMerklePath[:], w.EUMerklePath[:])

	euEnabled := 0
	if w.EUTrustEnabled {
		euEnabled = 1
	}

	return &FieldMerkleStatement{
		DocHash:        digestToU8Array(w.MessageForSig),
		PubKeyX:        p256Element(w.PubKeyX),
		PubKeyY:        p256Element(w.PubKeyY),
		SignerFpr:      w.SignerFpr,
		TLRoot:         w.TLRoot,
		EUTrustEnabled: euEnabled,
		TLRootEU:       w.TLRootEU,
		SignatureR:     p256ScalarElement(sigR),
		SignatureS:     p256ScalarElement(sigS),
		MerklePath:     merklePath,
		Index:          w.Index,
		EUMerklePath:   euMerklePath,
		EUIndex:        w.EUIndex,
	}
}

// NewFieldPublicAssignment mirrors NewBytePublicAssignment for the
// field-Merkle variant.
func NewFieldPublicAssignment(docHash, pubKeyX, pubKeyY [32]byte, signerFpr, tlRoot, tlRootEU fr.Element, euEnabled bool) *FieldMerkleStatement {
	euFlag := 0
	if euEnabled {
		euFlag = 1
	}
	return &FieldMerkleStatement{
		DocHash:        digestToU8Array(docHash),
		PubKeyX:        p256Element(pubKeyX),
		PubKeyY:        p256Element(pubKeyY),
		SignerFpr:      signerFpr,
		TLRoot:         tlRoot,
		EUTrustEnabled: euFlag,
		TLRootEU:       tlRootEU,
	}
}
