package statement

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/algebra/emulated/sw_emulated"
	"github.com/consensys/gnark/std/math/emulated"
	"github.com/consensys/gnark/std/math/uints"
	"github.com/consensys/gnark/std/permutation/poseidon2"
	"github.com/consensys/gnark/std/signature/ecdsa"
)

// poseidon2Width/poseidon2FullRounds/poseidon2PartialRounds mirror
// pkg/merkle's native Poseidon2 parameters so in-circuit and off-circuit
// hashing agree bit-for-bit.
const (
	poseidon2Width         = 3
	poseidon2FullRounds    = 8
	poseidon2PartialRounds = 56
)

// FieldMerkleStatement is the Poseidon2 Merkle variant of the predicate:
// doc_hash stays byte-shaped (it feeds the P-256 ECDSA verifier
// regardless of variant), but every Merkle-shaped value is a single BN254
// scalar-field element, matching pkg/merkle's FieldTree.
type FieldMerkleStatement struct {
	// Public inputs.
	DocHash        [32]uints.U8                      `gnark:",public"`
	PubKeyX        emulated.Element[emulated.P256Fp] `gnark:",public"`
	PubKeyY        emulated.Element[emulated.P256Fp] `gnark:",public"`
	SignerFpr      frontend.Variable                 `gnark:",public"`
	TLRoot         frontend.Variable                 `gnark:",public"`
	EUTrustEnabled frontend.Variable                 `gnark:",public"`
	TLRootEU       frontend.Variable                 `gnark:",public"`

	// Private inputs.
	SignatureR   emulated.Element[emulated.P256Fr]
	SignatureS   emulated.Element[emulated.P256Fr]
	MerklePath   [Depth]frontend.Variable
	Index        frontend.Variable
	EUMerklePath [Depth]frontend.Variable
	EUIndex      frontend.Variable
}

// Define implements the predicate of §4.10 for the field-Merkle variant.
func (c *FieldMerkleStatement) Define(api frontend.API) error {
	scalarField, err := emulated.NewField[emulated.P256Fr](api)
	if err != nil {
		return err
	}

	pubKey := ecdsa.PublicKey[emulated.P256Fp, emulated.P256Fr]{
		X: c.PubKeyX,
		Y: c.PubKeyY,
	}
	sig := &ecdsa.Signature[emulated.P256Fr]{
		R: c.SignatureR,
		S: c.SignatureS,
	}
	msgScalar := bytesToP256Scalar(api, scalarField, c.DocHash)
	pubKey.Verify(api, sw_emulated.GetP256Params(), &msgScalar, sig)

	computedRoot := reconstructFieldRoot(api, c.SignerFpr, c.Index, c.MerklePath)
	api.AssertIsEqual(computedRoot, c.TLRoot)

	computedEURoot := reconstructFieldRoot(api, c.SignerFpr, c.EUIndex, c.EUMerklePath)
	selected := api.Select(c.EUTrustEnabled, computedEURoot, c.TLRootEU)
	api.AssertIsEqual(selected, c.TLRootEU)

	return nil
}

// reconstructFieldRoot mirrors reconstructByteRoot but compresses siblings
// with the in-circuit Poseidon2 permutation instead of SHA-256.
func reconstructFieldRoot(api frontend.API, leaf frontend.Variable, index frontend.Variable, path [Depth]frontend.Variable) frontend.Variable {
	indexBits := api.ToBinary(index, Depth)
	cur := leaf
	for d := 0; d < Depth; d++ {
		bit := indexBits[d]
		left := api.Select(bit, path[d], cur)
		right := api.Select(bit, cur, path[d])
		cur = compressCircuit(api, left, right)
	}
	return cur
}

// compressCircuit folds two field elements via Poseidon2(left, right, 0),
// taking the first output limb, matching pkg/merkle's native compress.
func compressCircuit(api frontend.API, left, right frontend.Variable) frontend.Variable {
	perm := poseidon2.NewPermutation(poseidon2Width, poseidon2FullRounds, poseidon2PartialRounds)
	state := []frontend.Variable{left, right, 0}
	if err := perm.Permutation(api, state); err != nil {
		panic(err)
	}
	return state[0]
}
