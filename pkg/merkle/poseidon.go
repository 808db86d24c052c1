package merkle

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/poseidon2"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// poseidon2Width/poseidon2FullRounds/poseidon2PartialRounds match the
// standard BN254 Poseidon2 instantiation gnark's circuit-side permutation
// gadget uses, so native and in-circuit hashing agree bit-for-bit.
const (
	poseidon2Width         = 3
	poseidon2FullRounds    = 8
	poseidon2PartialRounds = 56
)

// compress folds two field elements into one via Poseidon2(left, right):
// permute the state [left, right, 0] and take the first element.
func compress(left, right fr.Element) fr.Element {
	perm := poseidon2.NewPermutation(poseidon2Width, poseidon2FullRounds, poseidon2PartialRounds)
	state := []fr.Element{left, right, fr.NewElement(0)}
	if err := perm.Permutation(state); err != nil {
		panic("poseidon2 permutation: " + err.Error())
	}
	return state[0]
}

// FingerprintToField folds a 32-byte fingerprint into a BN254 scalar-field
// element by big-endian interpretation modulo the field prime. This is
// lossy (the two high bits are effectively masked by the reduction) but
// tolerated: leaves are opaque to the predicate.
func FingerprintToField(fpr Digest) fr.Element {
	var e fr.Element
	e.SetBigInt(new(big.Int).SetBytes(fpr[:]))
	return e
}

// FieldTree is the Poseidon2 Merkle variant used by the field-Merkle
// statement.
type FieldTree struct {
	leaves [Capacity]fr.Element
	levels [Depth + 1][]fr.Element
	root   fr.Element
	size   int
}

// BuildFieldTree builds a fixed-depth-8 Poseidon2 tree from leaves already
// folded into field elements (see FingerprintToField), padding with the
// field zero up to Capacity.
func BuildFieldTree(leaves []fr.Element) (*FieldTree, error) {
	if len(leaves) > Capacity {
		return nil, apperrors.Newf(apperrors.CodeCapacityExceeded,
			"allow-list has %d entries, capacity is %d", len(leaves), Capacity)
	}

	var zero fr.Element
	seen := make(map[fr.Element]struct{}, len(leaves))
	for _, l := range leaves {
		if l.Equal(&zero) {
			continue
		}
		if _, dup := seen[l]; dup {
			return nil, apperrors.New(apperrors.CodeDuplicateLeaf, "duplicate fingerprint in allow-list")
		}
		seen[l] = struct{}{}
	}

	t := &FieldTree{size: len(leaves)}
	for i, l := range leaves {
		t.leaves[i] = l
	}

	level := t.leaves[:]
	t.levels[0] = append([]fr.Element(nil), level...)
	for d := 0; d < Depth; d++ {
		next := make([]fr.Element, len(level)/2)
		for i := range next {
			next[i] = compress(level[2*i], level[2*i+1])
		}
		t.levels[d+1] = next
		level = next
	}
	t.root = level[0]
	return t, nil
}

// Root returns the tree's Poseidon2 root.
func (t *FieldTree) Root() fr.Element { return t.root }

// Size returns the number of non-padding leaves the tree was built from.
func (t *FieldTree) Size() int { return t.size }

// Path returns the depth-8 sibling path for the leaf at index.
func (t *FieldTree) Path(index int) ([Depth]fr.Element, error) {
	var path [Depth]fr.Element
	if index < 0 || index >= Capacity {
		return path, apperrors.Newf(apperrors.CodeInvalidFingerprint, "leaf index %d out of range", index)
	}
	idx := index
	for level := 0; level < Depth; level++ {
		nodes := t.levels[level]
		var siblingIndex int
		if idx%2 == 0 {
			siblingIndex = idx + 1
		} else {
			siblingIndex = idx - 1
		}
		path[level] = nodes[siblingIndex]
		idx /= 2
	}
	return path, nil
}

// VerifyFieldInclusion reconstructs a root from leaf, index and path and
// compares it to root.
func VerifyFieldInclusion(leaf fr.Element, index int, path [Depth]fr.Element, root fr.Element) bool {
	if index < 0 || index >= Capacity {
		return false
	}
	current := leaf
	for level := 0; level < Depth; level++ {
		sibling := path[level]
		if (index>>uint(level))&1 == 0 {
			current = compress(current, sibling)
		} else {
			current = compress(sibling, current)
		}
	}
	return current.Equal(&root)
}
