// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aayux/r1cs-tutorial/prover"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "compiles the rollup circuit and writes the groth16 key pair",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	p, err := prover.New()
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := os.MkdirAll(fKeysDir, 0o755); err != nil {
		return err
	}
	if err := p.SaveKeys(fKeysDir); err != nil {
		return fmt.Errorf("writing keys: %w", err)
	}
	fmt.Printf("groth16 keys written to %s\n", fKeysDir)
	return nil
}
