// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import (
	"fmt"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/spf13/cobra"

	"github.com/aayux/r1cs-tutorial/prover"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "verifies a proof against its public witness",
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&fProofPath, "proof", "batch.proof", "path to the proof")
	verifyCmd.Flags().StringVar(&fWitnessPath, "witness", "batch.public", "path to the public witness")
}

func runVerify(cmd *cobra.Command, args []string) error {
	_, vk, err := prover.LoadKeys(fKeysDir)
	if err != nil {
		return fmt.Errorf("loading keys (run setup first?): %w", err)
	}
	proof, public, err := prover.LoadProof(fProofPath, fWitnessPath)
	if err != nil {
		return err
	}
	if err := groth16.Verify(proof, vk, public); err != nil {
		return fmt.Errorf("proof rejected: %w", err)
	}
	fmt.Println("proof verified")
	return nil
}
