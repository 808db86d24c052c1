// Package merkle builds fixed-depth-8 inclusion trees over certificate
// fingerprints, in two parallel hash variants (byte-level SHA-256 and
// field-level Poseidon2) sharing one shape of interface.
package merkle

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/config"
)

// Depth is the fixed tree depth; Capacity = 2^Depth leaves. Both are pinned
// to config.TreeDepth / config.TreeCapacity so every package in the module
// agrees on one number.
const (
	Depth    = config.TreeDepth
	Capacity = config.TreeCapacity
)

// Digest is the canonical 32-byte leaf/node width for the byte variant.
type Digest [32]byte

var zeroDigest Digest

// ByteTree is the SHA-256 Merkle variant: node = SHA256(left || right).
type ByteTree struct {
	leaves [Capacity]Digest
	levels [Depth + 1][]Digest
	root   Digest
	size   int
}

// BuildByteTree builds a fixed-depth-8 tree from the given leaves, padding
// with the zero digest up to Capacity. Duplicate non-zero leaves are
// rejected; more than Capacity leaves are rejected.
func BuildByteTree(leaves []Digest) (*ByteTree, error) {
	if len(leaves) > Capacity {
		return nil, apperrors.Newf(apperrors.CodeCapacityExceeded,
			"allow-list has %d entries, capacity is %d", len(leaves), Capacity)
	}

	seen := make(map[Digest]struct{}, len(leaves))
	for _, l := range leaves {
		if l == zeroDigest {
			continue
		}
		if _, dup := seen[l]; dup {
			return nil, apperrors.New(apperrors.CodeDuplicateLeaf, "duplicate fingerprint in allow-list")
		}
		seen[l] = struct{}{}
	}

	t := &ByteTree{size: len(leaves)}
	for i, l := range leaves {
		t.leaves[i] = l
	}

	level := t.leaves[:]
	t.levels[0] = append([]Digest(nil), level...)
	for d := 0; d < Depth; d++ {
		next := make([]Digest, len(level)/2)
		for i := range next {
			next[i] = hashPair(level[2*i], level[2*i+1])
		}
		t.levels[d+1] = next
		level = next
	}
	t.root = level[0]
	return t, nil
}

func hashPair(left, right Digest) Digest {
	var buf [64]byte
	copy(buf[:32], left[:])
	copy(buf[32:], right[:])
	return sha256.Sum256(buf[:])
}

// Root returns the tree's Merkle root.
func (t *ByteTree) Root() Digest { return t.root }

// Size returns the number of non-padding leaves the tree was built from.
func (t *ByteTree) Size() int { return t.size }

// Leaf returns the leaf at index (including zero-padding leaves).
func (t *ByteTree) Leaf(index int) (Digest, error) {
	if index < 0 || index >= Capacity {
		return Digest{}, apperrors.Newf(apperrors.CodeInvalidFingerprint, "leaf index %d out of range", index)
	}
	return t.leaves[index], nil
}

// Path returns the depth-8 sibling path for the leaf at index, ordered from
// leaf level upward. At level i, if (index>>i)&1 == 0 the current node is
// the left child and the sibling is the node to its right, else the left
// neighbor.
func (t *ByteTree) Path(index int) ([Depth]Digest, error) {
	var path [Depth]Digest
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

// VerifyByteInclusion reconstructs a root from leaf, index and path and
// compares it to root in constant time.
func VerifyByteInclusion(leaf Digest, index int, path [Depth]Digest, root Digest) bool {
	if index < 0 || index >= Capacity {
		return false
	}
	current := leaf
	for level := 0; level < Depth; level++ {
		sibling := path[level]
		if (index>>uint(level))&1 == 0 {
			current = hashPair(current, sibling)
		} else {
			current = hashPair(sibling, current)
		}
	}
	return subtle.ConstantTimeCompare(current[:], root[:]) == 1
}

// InclusionProof is the JSON shape written to paths/<fpr>.json.
type InclusionProof struct {
	Fingerprint string   `json:"fingerprint"`
	Index       int      `json:"index"`
	Path        []string `json:"path"`
	Root        string   `json:"root"`
}
