// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aayux/r1cs-tutorial/internal/demo"
	"github.com/aayux/r1cs-tutorial/prover"
	"github.com/aayux/r1cs-tutorial/rollup"
)

var proveCmd = &cobra.Command{
	Use:   "prove",
	Short: "proves one demo batch on a seeded ledger",
	Long: `prove seeds a deterministic ledger, applies one batch of transfers
and produces a groth16 proof that the batch was applied honestly. The proof
and its public witness (the ledger roots) are written to disk for verify.`,
	RunE: runProve,
}

var (
	fProofPath   string
	fWitnessPath string
)

func init() {
	rootCmd.AddCommand(proveCmd)
	proveCmd.Flags().StringVar(&fProofPath, "proof", "batch.proof", "output path for the proof")
	proveCmd.Flags().StringVar(&fWitnessPath, "witness", "batch.public", "output path for the public witness")
}

func runProve(cmd *cobra.Command, args []string) error {
	ccs, err := prover.Compile()
	if err != nil {
		return err
	}
	pk, vk, err := prover.LoadKeys(fKeysDir)
	if err != nil {
		return fmt.Errorf("loading keys (run setup first?): %w", err)
	}
	p := prover.NewFromKeys(ccs, pk, vk)

	state, keys, err := demo.NewLedger()
	if err != nil {
		return err
	}
	operator, err := rollup.NewOperator(state)
	if err != nil {
		return err
	}
	transfers, err := demo.Batch(state, keys)
	if err != nil {
		return err
	}

	witnesses, err := operator.ProcessBatch(transfers)
	if err != nil {
		return err
	}

	proof, public, err := p.ProveBatch(witnesses)
	if err != nil {
		return err
	}
	if err := prover.SaveProof(fProofPath, fWitnessPath, proof, public); err != nil {
		return err
	}

	root, err := state.Root()
	if err != nil {
		return err
	}
	fmt.Printf("batch of %d transfers proved\n", rollup.BatchSize)
	fmt.Printf("ledger root %s\n", hex.EncodeToString(root))
	fmt.Printf("proof written to %s, public witness to %s\n", fProofPath, fWitnessPath)
	return nil
}
