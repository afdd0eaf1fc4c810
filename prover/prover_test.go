// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package prover

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"

	"github.com/aayux/r1cs-tutorial/ledger"
	"github.com/aayux/r1cs-tutorial/rollup"
)

// batchWitness processes one valid batch on a fresh ledger and returns its
// witness.
func batchWitness(t *testing.T) *rollup.Circuit {
	t.Helper()

	state, err := ledger.NewState(rollup.NbAccounts)
	if err != nil {
		t.Fatal(err)
	}
	keys := make([]*eddsa.PrivateKey, rollup.NbAccounts)
	for i := range keys {
		r := rand.New(rand.NewSource(int64(i)))
		keys[i], err = eddsa.GenerateKey(r)
		if err != nil {
			t.Fatal(err)
		}
		pos, err := state.CreateAccount(keys[i].PublicKey)
		if err != nil {
			t.Fatal(err)
		}
		if err := state.Deposit(pos, 100); err != nil {
			t.Fatal(err)
		}
	}

	operator, err := rollup.NewOperator(state)
	if err != nil {
		t.Fatal(err)
	}

	transfers := make([]ledger.Transfer, rollup.BatchSize)
	for i := range transfers {
		from, to := uint64(2*i), uint64(2*i+1)
		sender, err := state.Get(from)
		if err != nil {
			t.Fatal(err)
		}
		receiver, err := state.Get(to)
		if err != nil {
			t.Fatal(err)
		}
		transfers[i] = ledger.NewTransfer(10, sender.PublicKey(), receiver.PublicKey(), sender.Nonce())
		if _, err := transfers[i].Sign(*keys[from], state.HashFunc()); err != nil {
			t.Fatal(err)
		}
	}

	witnesses, err := operator.ProcessBatch(transfers)
	if err != nil {
		t.Fatal(err)
	}
	return witnesses
}

func TestProveAndVerifyBatch(t *testing.T) {

	if testing.Short() {
		t.Skip("skipping groth16 end to end test in short mode")
	}

	witnesses := batchWitness(t)

	p, err := New()
	if err != nil {
		t.Fatal(err)
	}

	proof, public, err := p.ProveBatch(witnesses)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Verify(proof, public); err != nil {
		t.Fatal(err)
	}
}

func TestKeysRoundTrip(t *testing.T) {

	if testing.Short() {
		t.Skip("skipping groth16 setup test in short mode")
	}

	p, err := New()
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	if err := p.SaveKeys(dir); err != nil {
		t.Fatal(err)
	}

	pk, vk, err := LoadKeys(dir)
	if err != nil {
		t.Fatal(err)
	}

	// prove with the reloaded keys
	restored := NewFromKeys(p.ccs, pk, vk)
	witnesses := batchWitness(t)
	proof, public, err := restored.ProveBatch(witnesses)
	if err != nil {
		t.Fatal(err)
	}
	if err := restored.Verify(proof, public); err != nil {
		t.Fatal(err)
	}
}

func TestExportSolidity(t *testing.T) {

	if testing.Short() {
		t.Skip("skipping groth16 setup test in short mode")
	}

	p, err := New()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := p.ExportSolidity(&buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("contract")) {
		t.Fatal("solidity export looks empty")
	}
}
