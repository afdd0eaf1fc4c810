// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package prover

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/google/renameio/v2"
)

// Artifact file names inside a key directory.
const (
	ProvingKeyFile   = "rollup.pk"
	VerifyingKeyFile = "rollup.vk"
)

// SaveKeys writes the Groth16 key pair under dir. Writes are atomic so a
// crashed process never leaves a truncated key behind.
func (p *Prover) SaveKeys(dir string) error {
	if err := writeAtomic(filepath.Join(dir, ProvingKeyFile), p.pk); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, VerifyingKeyFile), p.vk)
}

// LoadKeys reads a Groth16 key pair previously written with SaveKeys.
func LoadKeys(dir string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pk := groth16.NewProvingKey(ecc.BN254)
	if err := readFrom(filepath.Join(dir, ProvingKeyFile), pk); err != nil {
		return nil, nil, err
	}
	vk := groth16.NewVerifyingKey(ecc.BN254)
	if err := readFrom(filepath.Join(dir, VerifyingKeyFile), vk); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}

// SaveProof writes a proof and its public witness next to each other, as the
// verify command consumes them.
func SaveProof(proofPath, witnessPath string, proof groth16.Proof, public witness.Witness) error {
	if err := writeAtomic(proofPath, proof); err != nil {
		return err
	}
	buf, err := public.MarshalBinary()
	if err != nil {
		return err
	}
	return renameio.WriteFile(witnessPath, buf, 0o644)
}

// LoadProof reads a proof and its public witness written with SaveProof.
func LoadProof(proofPath, witnessPath string) (groth16.Proof, witness.Witness, error) {
	proof := groth16.NewProof(ecc.BN254)
	if err := readFrom(proofPath, proof); err != nil {
		return nil, nil, err
	}
	public, err := witness.New(ecc.BN254.ScalarField())
	if err != nil {
		return nil, nil, err
	}
	buf, err := os.ReadFile(witnessPath)
	if err != nil {
		return nil, nil, err
	}
	if err := public.UnmarshalBinary(buf); err != nil {
		return nil, nil, err
	}
	return proof, public, nil
}

// ExportSolidity writes an on-chain verifier contract for the verifying key.
func (p *Prover) ExportSolidity(w io.Writer) error {
	return p.vk.ExportSolidity(w)
}

func writeAtomic(path string, wt io.WriterTo) error {
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return err
	}
	return renameio.WriteFile(path, buf.Bytes(), 0o644)
}

func readFrom(path string, rf io.ReaderFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = rf.ReadFrom(f)
	return err
}
