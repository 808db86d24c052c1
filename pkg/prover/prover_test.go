package prover

import (
	"testing"

	"github.com/consensys/gnark/frontend"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// multiplyCircuit is a minimal circuit (A*B == C) used to exercise the
// Prover Bridge's compile/execute/prove/verify cycle without depending on
// pkg/statement's much heavier ECDSA+Merkle predicate.
type multiplyCircuit struct {
	A, B frontend.Variable
	C    frontend.Variable `gnark:",public"`
}

func (c *multiplyCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(api.Mul(c.A, c.B), c.C)
	return nil
}

func TestProver_CompileExecuteProveVerify_RoundTrip(t *testing.T) {
	p := New()
	if err := p.Compile(&multiplyCircuit{}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	assignment := &multiplyCircuit{A: 3, B: 5, C: 15}
	fullWitness, err := p.ExecuteWitness(assignment)
	if err != nil {
		t.Fatalf("ExecuteWitness failed: %v", err)
	}

	proof, err := p.Prove(fullWitness)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	vkBytes, err := p.VerificationKeyBytes()
	if err != nil {
		t.Fatalf("VerificationKeyBytes failed: %v", err)
	}

	publicAssignment := &multiplyCircuit{C: 15}
	ok, err := Verify(vkBytes, proof, publicAssignment)
	if err != nil {
		t.Fatalf("Verify returned an error: %v", err)
	}
	if !ok {
		t.Errorf("expected proof to verify")
	}
}

func TestProver_ExecuteWitness_UnsatisfiedConstraintRejected(t *testing.T) {
	p := New()
	if err := p.Compile(&multiplyCircuit{}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	// 3 * 5 != 16: the constraint cannot be satisfied.
	_, err := p.ExecuteWitness(&multiplyCircuit{A: 3, B: 5, C: 16})
	if err == nil {
		t.Fatalf("expected InvalidWitness error, got nil")
	}
	if !apperrors.HasCode(err, apperrors.CodeInvalidWitness) {
		t.Errorf("expected InvalidWitness code, got %v", err)
	}
}

func TestVerify_WrongPublicInputRejected(t *testing.T) {
	p := New()
	if err := p.Compile(&multiplyCircuit{}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	fullWitness, err := p.ExecuteWitness(&multiplyCircuit{A: 3, B: 5, C: 15})
	if err != nil {
		t.Fatalf("ExecuteWitness failed: %v", err)
	}
	proof, err := p.Prove(fullWitness)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}
	vkBytes, err := p.VerificationKeyBytes()
	if err != nil {
		t.Fatalf("VerificationKeyBytes failed: %v", err)
	}

	ok, err := Verify(vkBytes, proof, &multiplyCircuit{C: 16})
	if err != nil {
		t.Fatalf("Verify returned an unexpected error: %v", err)
	}
	if ok {
		t.Errorf("expected verification to fail for the wrong public input")
	}
}

func TestSerializeDeserializeProof_RoundTrip(t *testing.T) {
	p := New()
	if err := p.Compile(&multiplyCircuit{}); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	fullWitness, err := p.ExecuteWitness(&multiplyCircuit{A: 3, B: 5, C: 15})
	if err != nil {
		t.Fatalf("ExecuteWitness failed: %v", err)
	}
	proof, err := p.Prove(fullWitness)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	proofBytes, err := SerializeProof(proof)
	if err != nil {
		t.Fatalf("SerializeProof failed: %v", err)
	}
	roundTripped, err := DeserializeProof(proofBytes)
	if err != nil {
		t.Fatalf("DeserializeProof failed: %v", err)
	}

	vkBytes, err := p.VerificationKeyBytes()
	if err != nil {
		t.Fatalf("VerificationKeyBytes failed: %v", err)
	}
	ok, err := Verify(vkBytes, roundTripped, &multiplyCircuit{C: 15})
	if err != nil {
		t.Fatalf("Verify returned an error: %v", err)
	}
	if !ok {
		t.Errorf("expected round-tripped proof to verify")
	}
}
