package merkle

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestBuildFieldTree_InclusionRoundTrip(t *testing.T) {
	leaves := make([]fr.Element, 3)
	leaves[0] = FingerprintToField(digestOf(0x01))
	leaves[1] = FingerprintToField(digestOf(0x02))
	leaves[2] = FingerprintToField(digestOf(0x03))

	tree, err := BuildFieldTree(leaves)
	if err != nil {
		t.Fatalf("BuildFieldTree failed: %v", err)
	}

	for i, leaf := range leaves {
		path, err := tree.Path(i)
		if err != nil {
			t.Fatalf("Path(%d) failed: %v", i, err)
		}
		if !VerifyFieldInclusion(leaf, i, path, tree.Root()) {
			t.Errorf("field inclusion proof for leaf %d did not verify", i)
		}
	}
}

func TestFingerprintToField_Deterministic(t *testing.T) {
	d := digestOf(0x77)
	a := FingerprintToField(d)
	b := FingerprintToField(d)
	if !a.Equal(&b) {
		t.Errorf("FingerprintToField is not deterministic for identical input")
	}
}

func TestBuildFieldTree_DuplicateLeafRejected(t *testing.T) {
	dup := FingerprintToField(digestOf(0x09))
	_, err := BuildFieldTree([]fr.Element{dup, dup})
	if err == nil {
		t.Fatalf("expected DuplicateLeaf error, got nil")
	}
}
