// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package demo seeds deterministic ledgers for the CLI walkthrough.
package demo

import (
	"math/rand"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"

	"github.com/aayux/r1cs-tutorial/ledger"
	"github.com/aayux/r1cs-tutorial/rollup"
)

// NewLedger returns a full ledger of NbAccounts accounts, each funded with
// balance 100, along with the private keys. Keys are derived from fixed
// seeds, so repeated runs see the same accounts.
func NewLedger() (*ledger.State, []*eddsa.PrivateKey, error) {
	state, err := ledger.NewState(rollup.NbAccounts)
	if err != nil {
		return nil, nil, err
	}

	keys := make([]*eddsa.PrivateKey, rollup.NbAccounts)
	for i := range keys {
		r := rand.New(rand.NewSource(int64(i)))
		priv, err := eddsa.GenerateKey(r)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = priv

		pos, err := state.CreateAccount(priv.PublicKey)
		if err != nil {
			return nil, nil, err
		}
		if err := state.Deposit(pos, 100); err != nil {
			return nil, nil, err
		}
	}
	return state, keys, nil
}

// Batch signs one batch of transfers between consecutive account pairs
// (0 -> 1, 2 -> 3, ...).
func Batch(state *ledger.State, keys []*eddsa.PrivateKey) ([]ledger.Transfer, error) {
	transfers := make([]ledger.Transfer, rollup.BatchSize)
	for i := range transfers {
		from, to := uint64(2*i), uint64(2*i+1)
		sender, err := state.Get(from)
		if err != nil {
			return nil, err
		}
		receiver, err := state.Get(to)
		if err != nil {
			return nil, err
		}
		transfers[i] = ledger.NewTransfer(10, sender.PublicKey(), receiver.PublicKey(), sender.Nonce())
		if _, err := transfers[i].Sign(*keys[from], state.HashFunc()); err != nil {
			return nil, err
		}
	}
	return transfers, nil
}
