// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package ledger implements a toy payments ledger: fixed-capacity accounts
// stored in a Merkle tree of MiMC hashes, moved around by eddsa-signed
// transfers. It is the plain (non snark) half of the rollup, the circuit in
// the rollup package proves that the operator applied transfers on it
// honestly.
package ledger

import (
	"bytes"
	"hash"
	"math/big"
	"math/bits"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// State holds the accounts of the ledger.
//
// Accounts are serialized back to back in accounts, and leaves holds the MiMC
// hash of each serialized account. The Merkle tree of the ledger is built over
// leaves, so s.Root() commits to every account field.
type State struct {
	accounts []byte            // index ∥ nonce ∥ balance ∥ pubkeyX ∥ pubkeyY per account
	leaves   []byte            // H(account) per account, each chunk is h.Size() bytes
	indexOf  map[string]uint64 // account.pubkey.X -> position in the tree
	occupied *bitset.BitSet    // slots holding a registered account
	capacity uint64
	h        hash.Hash // MiMC, hashes leaves and transfer messages
}

// NewState returns an empty ledger with capacity account slots.
// capacity must be a power of two so the tree is full.
func NewState(capacity uint64) (*State, error) {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		return nil, ErrNonPowerOfTwo
	}

	s := &State{
		accounts: make([]byte, SizeAccount*capacity),
		indexOf:  make(map[string]uint64, capacity),
		occupied: bitset.New(uint(capacity)),
		capacity: capacity,
		h:        mimc.NewMiMC(),
	}

	// hash the blank accounts once, empty slots are part of the tree too
	s.leaves = make([]byte, s.h.Size()*int(capacity))
	for i := uint64(0); i < capacity; i++ {
		s.h.Reset()
		_, _ = s.h.Write(s.accounts[i*SizeAccount : (i+1)*SizeAccount])
		copy(s.leaves[i*uint64(s.h.Size()):], s.h.Sum(nil))
	}

	return s, nil
}

// Capacity returns the number of account slots of the ledger.
func (s *State) Capacity() uint64 { return s.capacity }

// Depth returns the length of a Merkle inclusion proof for this tree
// (the leaf hash plus one sibling per level).
func (s *State) Depth() int { return bits.Len64(s.capacity) }

// HashFunc returns the hash function the ledger state is committed with.
func (s *State) HashFunc() hash.Hash { return s.h }

// CreateAccount registers pubKey in the first free slot, with a zero balance
// and a zero nonce, and returns the slot index.
func (s *State) CreateAccount(pubKey eddsa.PublicKey) (uint64, error) {

	b := pubKey.A.X.Bytes()
	if _, ok := s.indexOf[string(b[:])]; ok {
		return 0, ErrAccountExists
	}
	pos, ok := s.occupied.NextClear(0)
	if !ok || uint64(pos) >= s.capacity {
		return 0, ErrLedgerFull
	}

	acc := Account{index: uint64(pos), pubKey: pubKey}
	s.writeAccount(acc)
	s.occupied.Set(pos)
	s.indexOf[string(b[:])] = uint64(pos)
	return uint64(pos), nil
}

// Get returns the account stored at index i.
func (s *State) Get(i uint64) (Account, error) {
	if i >= s.capacity || !s.occupied.Test(uint(i)) {
		return Account{}, ErrNonExistingAccount
	}
	return s.readAccount(i)
}

// Lookup returns the tree position of the account registered for pubKey.
func (s *State) Lookup(pubKey eddsa.PublicKey) (uint64, error) {
	b := pubKey.A.X.Bytes()
	pos, ok := s.indexOf[string(b[:])]
	if !ok {
		return 0, ErrNonExistingAccount
	}
	return pos, nil
}

// Deposit credits amount to the account at index i, without a signature. It
// stands in for the L1 bridge of a real rollup and funds accounts in tests
// and demos.
func (s *State) Deposit(i uint64, amount uint64) error {
	acc, err := s.Get(i)
	if err != nil {
		return err
	}
	var frAmount fr.Element
	frAmount.SetUint64(amount)
	acc.balance.Add(&acc.balance, &frAmount)
	s.writeAccount(acc)
	return nil
}

// Apply validates t against the current state and, if valid, moves the amount
// and bumps the sender's nonce. The state is left untouched on error.
func (s *State) Apply(t Transfer) error {

	posSender, err := s.Lookup(t.senderPubKey)
	if err != nil {
		return err
	}
	sender, err := s.readAccount(posSender)
	if err != nil {
		return err
	}
	if sender.index != posSender {
		return ErrIndexConsistency
	}

	posReceiver, err := s.Lookup(t.receiverPubKey)
	if err != nil {
		return err
	}
	receiver, err := s.readAccount(posReceiver)
	if err != nil {
		return err
	}
	if receiver.index != posReceiver {
		return ErrIndexConsistency
	}

	if _, err := t.Verify(s.h); err != nil {
		return err
	}

	if t.nonce != sender.nonce {
		return ErrNonce
	}

	var bAmount, bBalance big.Int
	sender.balance.BigInt(&bBalance)
	t.amount.BigInt(&bAmount)
	if bAmount.Cmp(&bBalance) == 1 {
		return ErrAmountTooHigh
	}

	sender.balance.Sub(&sender.balance, &t.amount)
	receiver.balance.Add(&receiver.balance, &t.amount)
	sender.nonce++

	s.writeAccount(sender)
	s.writeAccount(receiver)
	return nil
}

// Root returns the Merkle root of the account tree.
func (s *State) Root() ([]byte, error) {
	root, _, _, err := s.Prove(0)
	return root, err
}

// Prove builds the Merkle inclusion proof for the leaf at index i.
// It returns the root, the proof set (leaf hash first) and the number of
// leaves of the tree.
func (s *State) Prove(i uint64) (root []byte, proofSet [][]byte, numLeaves uint64, err error) {
	s.h.Reset()
	return merkletree.BuildReaderProof(bytes.NewReader(s.leaves), s.h, s.h.Size(), i)
}

// Snapshot returns a deep copy of the state, used by the operator to roll a
// batch back when one of its transfers is invalid.
func (s *State) Snapshot() *State {
	cpy := &State{
		accounts: append([]byte(nil), s.accounts...),
		leaves:   append([]byte(nil), s.leaves...),
		indexOf:  make(map[string]uint64, len(s.indexOf)),
		occupied: s.occupied.Clone(),
		capacity: s.capacity,
		h:        mimc.NewMiMC(),
	}
	for k, v := range s.indexOf {
		cpy.indexOf[k] = v
	}
	return cpy
}

// Restore overwrites the state with a snapshot previously taken with Snapshot.
func (s *State) Restore(snap *State) {
	s.accounts = append(s.accounts[:0], snap.accounts...)
	s.leaves = append(s.leaves[:0], snap.leaves...)
	s.indexOf = make(map[string]uint64, len(snap.indexOf))
	for k, v := range snap.indexOf {
		s.indexOf[k] = v
	}
	s.occupied = snap.occupied.Clone()
	s.capacity = snap.capacity
}

func (s *State) readAccount(i uint64) (Account, error) {
	var res Account
	err := Deserialize(&res, s.accounts[i*SizeAccount:(i+1)*SizeAccount])
	return res, err
}

// writeAccount stores acc at its index and refreshes the matching leaf hash.
func (s *State) writeAccount(acc Account) {
	i := acc.index
	copy(s.accounts[i*SizeAccount:], acc.Serialize())
	s.h.Reset()
	_, _ = s.h.Write(s.accounts[i*SizeAccount : (i+1)*SizeAccount])
	copy(s.leaves[i*uint64(s.h.Size()):], s.h.Sum(nil))
}
