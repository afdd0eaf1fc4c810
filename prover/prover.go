// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package prover drives the snark lifecycle of the rollup circuit: compile,
// setup, prove and verify. Groth16 on BN254 is the default backend; a PLONK
// variant is provided for experiments.
package prover

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/aayux/r1cs-tutorial/logger"
	"github.com/aayux/r1cs-tutorial/rollup"
)

// Prover holds the compiled rollup circuit and its Groth16 keys.
type Prover struct {
	ccs constraint.ConstraintSystem
	pk  groth16.ProvingKey
	vk  groth16.VerifyingKey
}

// Compile compiles the rollup circuit to R1CS on BN254.
func Compile() (constraint.ConstraintSystem, error) {
	return frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, rollup.NewCircuit())
}

// New compiles the circuit and runs the Groth16 setup.
//
// The setup is per-process and unceremonial; for anything but a toy
// deployment the keys would come from a trusted setup and be loaded with
// NewFromKeys.
func New() (*Prover, error) {
	log := logger.With("prover")

	start := time.Now()
	ccs, err := Compile()
	if err != nil {
		return nil, err
	}
	log.Info().Dur("took", time.Since(start)).Int("nbConstraints", ccs.GetNbConstraints()).Msg("circuit compiled")

	start = time.Now()
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, err
	}
	log.Info().Dur("took", time.Since(start)).Msg("groth16 setup done")

	return &Prover{ccs: ccs, pk: pk, vk: vk}, nil
}

// NewFromKeys builds a prover from a compiled circuit and existing keys.
func NewFromKeys(ccs constraint.ConstraintSystem, pk groth16.ProvingKey, vk groth16.VerifyingKey) *Prover {
	return &Prover{ccs: ccs, pk: pk, vk: vk}
}

// VerifyingKey returns the Groth16 verifying key.
func (p *Prover) VerifyingKey() groth16.VerifyingKey { return p.vk }

// ProveBatch proves the witness of a processed batch and returns the proof
// together with its public witness (the ledger roots).
func (p *Prover) ProveBatch(witnesses *rollup.Circuit) (groth16.Proof, witness.Witness, error) {
	log := logger.With("prover")

	w, err := frontend.NewWitness(witnesses, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	proof, err := groth16.Prove(p.ccs, p.pk, w)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Dur("took", time.Since(start)).Msg("batch proved")

	public, err := w.Public()
	if err != nil {
		return nil, nil, err
	}
	return proof, public, nil
}

// Verify checks a batch proof against its public witness.
func (p *Prover) Verify(proof groth16.Proof, public witness.Witness) error {
	return groth16.Verify(proof, p.vk, public)
}
