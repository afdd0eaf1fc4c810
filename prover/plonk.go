// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package prover

import (
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"

	"github.com/aayux/r1cs-tutorial/logger"
	"github.com/aayux/r1cs-tutorial/rollup"
)

// PlonkProver proves rollup batches with PLONK instead of Groth16. The KZG
// SRS comes from test/unsafekzg, so this backend is for experiments only.
type PlonkProver struct {
	ccs constraint.ConstraintSystem
	pk  plonk.ProvingKey
	vk  plonk.VerifyingKey
}

// NewPlonk compiles the rollup circuit to a sparse R1CS and runs the PLONK
// setup on an unsafe SRS.
func NewPlonk() (*PlonkProver, error) {
	log := logger.With("prover")

	start := time.Now()
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, rollup.NewCircuit())
	if err != nil {
		return nil, err
	}
	log.Info().Dur("took", time.Since(start)).Int("nbConstraints", ccs.GetNbConstraints()).Msg("circuit compiled (scs)")

	srs, srsLagrange, err := unsafekzg.NewSRS(ccs)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	pk, vk, err := plonk.Setup(ccs, srs, srsLagrange)
	if err != nil {
		return nil, err
	}
	log.Info().Dur("took", time.Since(start)).Msg("plonk setup done")

	return &PlonkProver{ccs: ccs, pk: pk, vk: vk}, nil
}

// ProveBatch proves the witness of a processed batch.
func (p *PlonkProver) ProveBatch(witnesses *rollup.Circuit) (plonk.Proof, witness.Witness, error) {
	w, err := frontend.NewWitness(witnesses, ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, err
	}

	proof, err := plonk.Prove(p.ccs, p.pk, w)
	if err != nil {
		return nil, nil, err
	}

	public, err := w.Public()
	if err != nil {
		return nil, nil, err
	}
	return proof, public, nil
}

// Verify checks a batch proof against its public witness.
func (p *PlonkProver) Verify(proof plonk.Proof, public witness.Witness) error {
	return plonk.Verify(proof, p.vk, public)
}
