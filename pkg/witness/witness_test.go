package witness

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
	"github.com/certen/pdf-zk-proof/pkg/merkle"
)

func TestAssembleByteWitness_EUDisabledZeroPads(t *testing.T) {
	in := ByteInputs{
		Index:     3,
		EUEnabled: false,
		EUIndex:   200, // must be ignored and zeroed out
	}
	in.EUMerklePath[0] = [32]byte{0xFF} // must also be ignored

	w, err := AssembleByteWitness(in)
	if err != nil {
		t.Fatalf("AssembleByteWitness failed: %v", err)
	}
	if w.EUIndex != 0 {
		t.Errorf("expected eu_index zeroed when EU trust disabled, got %d", w.EUIndex)
	}
	for i, sib := range w.EUMerklePath {
		if sib != ([32]byte{}) {
			t.Errorf("expected eu_merkle_path[%d] zeroed when EU trust disabled, got %x", i, sib)
		}
	}
}

func TestAssembleByteWitness_EUEnabledCarriesPath(t *testing.T) {
	in := ByteInputs{
		Index:     3,
		EUEnabled: true,
		EUIndex:   7,
	}
	in.EUMerklePath[0] = [32]byte{0xAB}

	w, err := AssembleByteWitness(in)
	if err != nil {
		t.Fatalf("AssembleByteWitness failed: %v", err)
	}
	if w.EUIndex != 7 {
		t.Errorf("expected eu_index carried through, got %d", w.EUIndex)
	}
	if w.EUMerklePath[0] != ([32]byte{0xAB}) {
		t.Errorf("expected eu_merkle_path carried through")
	}
}

func TestAssembleByteWitness_IndexOutOfRangeRejected(t *testing.T) {
	_, err := AssembleByteWitness(ByteInputs{Index: merkle.Capacity})
	if err == nil {
		t.Fatalf("expected InvalidWitness error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeInvalidWitness) {
		t.Errorf("expected InvalidWitness code, got %v", err)
	}
}

func TestAssembleByteWitness_NegativeIndexRejected(t *testing.T) {
	_, err := AssembleByteWitness(ByteInputs{Index: -1})
	if err == nil {
		t.Fatalf("expected InvalidWitness error, got nil")
	}
}

func TestAssembleByteWitness_EUIndexOutOfRangeRejected(t *testing.T) {
	_, err := AssembleByteWitness(ByteInputs{Index: 0, EUEnabled: true, EUIndex: merkle.Capacity})
	if err == nil {
		t.Fatalf("expected InvalidWitness error for out-of-range eu_index, got nil")
	}
}

func TestAssembleFieldWitness_EUDisabledZeroPads(t *testing.T) {
	in := FieldInputs{
		Index:     1,
		EUEnabled: false,
		EUIndex:   42,
	}
	in.EUMerklePath[0] = fr.NewElement(99)

	w, err := AssembleFieldWitness(in)
	if err != nil {
		t.Fatalf("AssembleFieldWitness failed: %v", err)
	}
	if w.EUIndex != 0 {
		t.Errorf("expected eu_index zeroed, got %d", w.EUIndex)
	}
	var zero fr.Element
	if !w.EUMerklePath[0].Equal(&zero) {
		t.Errorf("expected eu_merkle_path zeroed when EU trust disabled")
	}
}

func TestAssembleFieldWitness_IndexOutOfRangeRejected(t *testing.T) {
	_, err := AssembleFieldWitness(FieldInputs{Index: -1})
	if err == nil {
		t.Fatalf("expected InvalidWitness error, got nil")
	}
}
