// Package prover implements the opaque Prover Bridge (§4.7): circuit
// compilation, witness execution, Groth16 proving/verification, and key
// persistence, generalized from a fixed BLS circuit to either of
// pkg/statement's two predicate variants.
package prover

import (
	"bytes"
	"io"
	"os"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	gnarkwitness "github.com/consensys/gnark/backend/witness"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// curveID is pinned to BN254: both Groth16 and the statement circuits
// (P-256 ECDSA and Poseidon2 emulated/native over BN254's scalar field)
// target this curve exclusively.
var curveID = ecc.BN254

// Prover holds one compiled circuit's artefact (constraint system, proving
// key, verification key) and serializes access the way the teacher's
// BLSZKProver does, since groth16 keys are not safe for concurrent
// mutation during load/save.
type Prover struct {
	mu sync.RWMutex

	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey

	compiled bool
}

// New returns an uninitialized Prover; call Compile or LoadArtefact before
// using it.
func New() *Prover {
	return &Prover{}
}

// Compile implements compile(statement) -> artefact: builds the R1CS
// constraint system for circuit and runs the Groth16 trusted setup. The
// result is cached on the Prover so later Compile calls on an equivalent
// circuit can be skipped by the caller (compilation is deterministic
// given the same circuit type).
func (p *Prover) Compile(circuit frontend.Circuit) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cs, err := frontend.Compile(curveID.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCircuitError, "compile circuit to R1CS")
	}
	p.cs = cs

	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeCircuitError, "groth16 trusted setup")
	}
	p.pk = pk
	p.vk = vk
	p.compiled = true
	return nil
}

// LoadArtefact loads a previously compiled-and-set-up artefact from disk,
// skipping the (expensive) compile/setup step.
func (p *Prover) LoadArtefact(csPath, pkPath, vkPath string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	csFile, err := os.Open(csPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "open constraint system file")
	}
	defer csFile.Close()
	p.cs = groth16.NewCS(curveID)
	if _, err := p.cs.ReadFrom(csFile); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "read constraint system")
	}

	pkFile, err := os.Open(pkPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "open proving key file")
	}
	defer pkFile.Close()
	p.pk = groth16.NewProvingKey(curveID)
	if _, err := p.pk.ReadFrom(pkFile); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "read proving key")
	}

	vkFile, err := os.Open(vkPath)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "open verification key file")
	}
	defer vkFile.Close()
	p.vk = groth16.NewVerifyingKey(curveID)
	if _, err := p.vk.ReadFrom(vkFile); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "read verification key")
	}

	p.compiled = true
	return nil
}

// SaveArtefact persists the compiled constraint system and keys so a later
// process can LoadArtefact instead of recompiling.
func (p *Prover) SaveArtefact(csPath, pkPath, vkPath string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.compiled {
		return apperrors.New(apperrors.CodeEnvironment, "prover has no compiled artefact to save")
	}

	if err := writeTo(csPath, p.cs); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write constraint system")
	}
	if err := writeTo(pkPath, p.pk); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write proving key")
	}
	if err := writeTo(vkPath, p.vk); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEnvironment, "write verification key")
	}
	return nil
}

func writeTo(path string, w io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = w.WriteTo(f)
	return err
}

// ExecuteWitness implements execute_witness(artefact, inputs) -> witness.
// assignment must be a fully-populated circuit (the same Go type Compile
// was called with). Before returning, the witness is checked against the
// compiled constraint system so a bad input surfaces here rather than
// later inside Prove.
func (p *Prover) ExecuteWitness(assignment frontend.Circuit) (gnarkwitness.Witness, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.compiled {
		return nil, apperrors.New(apperrors.CodeEnvironment, "prover has no compiled artefact")
	}

	fullWitness, err := frontend.NewWitness(assignment, curveID.ScalarField())
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidWitness, "build full witness from assignment")
	}

	if err := p.cs.IsSolved(fullWitness); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidWitness, "witness does not satisfy circuit constraints")
	}

	return fullWitness, nil
}

// Prove implements prove(artefact, witness_bytes) -> proof_bytes. Per
// §4.7, a prove failure is retryable at most once; Prove performs that
// one retry internally so callers see either a proof or a terminal error.
func (p *Prover) Prove(fullWitness gnarkwitness.Witness) (groth16.Proof, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.compiled {
		return nil, apperrors.New(apperrors.CodeEnvironment, "prover has no compiled artefact")
	}

	proof, err := groth16.Prove(p.cs, p.pk, fullWitness)
	if err != nil {
		proof, err = groth16.Prove(p.cs, p.pk, fullWitness)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeProofInvalid, "generate groth16 proof (after one retry)")
		}
	}
	return proof, nil
}

// VerificationKeyBytes implements verification_key(artefact) -> vk_bytes.
func (p *Prover) VerificationKeyBytes() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.compiled {
		return nil, apperrors.New(apperrors.CodeEnvironment, "prover has no compiled artefact")
	}

	var buf bytes.Buffer
	if _, err := p.vk.WriteTo(&buf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEnvironment, "serialize verification key")
	}
	return buf.Bytes(), nil
}

// Verify implements verify(vk_bytes, proof_bytes, public_inputs) -> bool.
// A verification failure returns (false, nil): a rejected proof is not an
// operational error, matching the teacher's VerifyProofLocally contract.
func Verify(vkBytes []byte, proof groth16.Proof, publicAssignment frontend.Circuit) (bool, error) {
	vk := groth16.NewVerifyingKey(curveID)
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeProofInvalid, "deserialize verification key")
	}

	publicWitness, err := frontend.NewWitness(publicAssignment, curveID.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, apperrors.Wrap(err, apperrors.CodeInvalidWitness, "build public witness")
	}

	if err := groth16.Verify(proof, vk, publicWitness); err != nil {
		return false, nil
	}
	return true, nil
}

// SerializeProof and DeserializeProof round-trip a groth16.Proof to the
// opaque proof_bytes the manifest and verifier pass around.
func SerializeProof(proof groth16.Proof) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProofInvalid, "serialize proof")
	}
	return buf.Bytes(), nil
}

func DeserializeProof(proofBytes []byte) (groth16.Proof, error) {
	proof := groth16.NewProof(curveID)
	if _, err := proof.ReadFrom(bytes.NewReader(proofBytes)); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeProofInvalid, "deserialize proof")
	}
	return proof, nil
}
