// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aayux/r1cs-tutorial/prover"
)

var exportCmd = &cobra.Command{
	Use:   "export-solidity",
	Short: "exports the verifying key as a solidity verifier contract",
	RunE:  runExport,
}

var fContractPath string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVar(&fContractPath, "out", "Verifier.sol", "output path for the contract")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, vk, err := prover.LoadKeys(fKeysDir)
	if err != nil {
		return fmt.Errorf("loading keys (run setup first?): %w", err)
	}
	f, err := os.Create(fContractPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := vk.ExportSolidity(f); err != nil {
		return err
	}
	fmt.Printf("verifier contract written to %s\n", fContractPath)
	return nil
}
