// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// rollup is a CLI around the snark lifecycle of the rollup circuit:
// setup, a demo prove run, verification and solidity export.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "rollup",
	Short:         "payments rollup snark toolchain",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// fKeysDir is shared by every subcommand touching the groth16 keys.
var fKeysDir string

func init() {
	rootCmd.PersistentFlags().StringVar(&fKeysDir, "keys", "keys", "directory holding the groth16 key pair")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
