// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"bytes"
	"testing"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

func TestNewStateCapacity(t *testing.T) {

	if _, err := NewState(0); err != ErrNonPowerOfTwo {
		t.Fatal("capacity 0 should be rejected")
	}
	if _, err := NewState(12); err != ErrNonPowerOfTwo {
		t.Fatal("non power of two capacity should be rejected")
	}

	s, err := NewState(16)
	if err != nil {
		t.Fatal(err)
	}
	if s.Capacity() != 16 {
		t.Fatal("wrong capacity")
	}
	if s.Depth() != 5 {
		t.Fatal("16 leaves should give proofs of length 5")
	}
}

func TestCreateAccount(t *testing.T) {

	s, err := NewState(4)
	if err != nil {
		t.Fatal(err)
	}

	emptyRoot, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}

	// accounts land in consecutive slots
	for i := int64(0); i < 4; i++ {
		priv := genKey(i)
		pos, err := s.CreateAccount(priv.PublicKey)
		if err != nil {
			t.Fatal(err)
		}
		if pos != uint64(i) {
			t.Fatalf("expected slot %d, got %d", i, pos)
		}
	}

	// registering the same key twice fails
	if _, err := s.CreateAccount(genKey(0).PublicKey); err != ErrAccountExists {
		t.Fatal("duplicate public key should be rejected")
	}

	// the tree is full
	if _, err := s.CreateAccount(genKey(99).PublicKey); err != ErrLedgerFull {
		t.Fatal("full ledger should reject new accounts")
	}

	// the root must have moved
	root, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(root, emptyRoot) {
		t.Fatal("root did not change after account creation")
	}
}

func TestDeposit(t *testing.T) {

	s, err := NewState(4)
	if err != nil {
		t.Fatal(err)
	}
	pos, err := s.CreateAccount(genKey(1).PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Deposit(pos, 42); err != nil {
		t.Fatal(err)
	}
	if err := s.Deposit(pos, 8); err != nil {
		t.Fatal(err)
	}

	acc, err := s.Get(pos)
	if err != nil {
		t.Fatal(err)
	}
	var expected fr.Element
	expected.SetUint64(50)
	if !acc.balance.Equal(&expected) {
		t.Fatal("wrong balance after deposits")
	}

	if err := s.Deposit(3, 1); err != ErrNonExistingAccount {
		t.Fatal("deposit on an empty slot should fail")
	}
}

func TestApplyTransfer(t *testing.T) {

	s, sender, receiver, keys := newTestState(t)

	transfer := NewTransfer(10, sender.pubKey, receiver.pubKey, sender.nonce)
	if _, err := transfer.Sign(*keys[0], s.HashFunc()); err != nil {
		t.Fatal(err)
	}

	rootBefore, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Apply(transfer); err != nil {
		t.Fatal(err)
	}

	newSender, err := s.Get(sender.index)
	if err != nil {
		t.Fatal(err)
	}
	newReceiver, err := s.Get(receiver.index)
	if err != nil {
		t.Fatal(err)
	}

	var frAmount fr.Element
	frAmount.SetUint64(10)
	sender.nonce++
	sender.balance.Sub(&sender.balance, &frAmount)
	receiver.balance.Add(&receiver.balance, &frAmount)

	compareAccount(t, sender, newSender)
	compareAccount(t, receiver, newReceiver)

	rootAfter, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(rootBefore, rootAfter) {
		t.Fatal("root did not change after a transfer")
	}
}

func TestApplyRejections(t *testing.T) {

	s, sender, receiver, keys := newTestState(t)

	// wrong signer
	transfer := NewTransfer(10, sender.pubKey, receiver.pubKey, sender.nonce)
	if _, err := transfer.Sign(*keys[1], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(transfer); err == nil {
		t.Fatal("transfer signed with the wrong key should be rejected")
	}

	// wrong nonce
	transfer = NewTransfer(10, sender.pubKey, receiver.pubKey, sender.nonce+1)
	if _, err := transfer.Sign(*keys[0], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(transfer); err != ErrNonce {
		t.Fatal("transfer with a stale nonce should be rejected")
	}

	// amount bigger than the balance
	transfer = NewTransfer(1000, sender.pubKey, receiver.pubKey, sender.nonce)
	if _, err := transfer.Sign(*keys[0], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(transfer); err != ErrAmountTooHigh {
		t.Fatal("transfer above the balance should be rejected")
	}

	// unknown receiver
	transfer = NewTransfer(10, sender.pubKey, genKey(99).PublicKey, sender.nonce)
	if _, err := transfer.Sign(*keys[0], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(transfer); err != ErrNonExistingAccount {
		t.Fatal("transfer to an unknown account should be rejected")
	}

	// none of the rejected transfers may have touched the state
	acc, err := s.Get(sender.index)
	if err != nil {
		t.Fatal(err)
	}
	compareAccount(t, sender, acc)
}

func TestProveInclusion(t *testing.T) {

	s, sender, _, _ := newTestState(t)

	root, proofSet, numLeaves, err := s.Prove(sender.index)
	if err != nil {
		t.Fatal(err)
	}
	if len(proofSet) != s.Depth() {
		t.Fatalf("expected a proof of length %d, got %d", s.Depth(), len(proofSet))
	}
	if !merkletree.VerifyProof(s.HashFunc(), root, proofSet, sender.index, numLeaves) {
		t.Fatal("inclusion proof does not verify")
	}
}

func TestSnapshotRestore(t *testing.T) {

	s, sender, receiver, keys := newTestState(t)

	snap := s.Snapshot()
	rootBefore, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}

	transfer := NewTransfer(10, sender.pubKey, receiver.pubKey, sender.nonce)
	if _, err := transfer.Sign(*keys[0], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	if err := s.Apply(transfer); err != nil {
		t.Fatal(err)
	}

	s.Restore(snap)
	rootAfter, err := s.Root()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(rootBefore, rootAfter) {
		t.Fatal("restore did not bring the root back")
	}
	acc, err := s.Get(sender.index)
	if err != nil {
		t.Fatal(err)
	}
	compareAccount(t, sender, acc)
}

// newTestState returns a ledger with two funded accounts (balances 100 and 50)
// and the matching private keys.
func newTestState(t *testing.T) (*State, Account, Account, []*eddsa.PrivateKey) {
	t.Helper()

	s, err := NewState(8)
	if err != nil {
		t.Fatal(err)
	}

	keys := make([]*eddsa.PrivateKey, 2)
	for i := range keys {
		keys[i] = genKey(int64(i))
		pos, err := s.CreateAccount(keys[i].PublicKey)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Deposit(pos, uint64(100-50*i)); err != nil {
			t.Fatal(err)
		}
	}

	sender, err := s.Get(0)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := s.Get(1)
	if err != nil {
		t.Fatal(err)
	}
	return s, sender, receiver, keys
}

func compareAccount(t *testing.T, acc1, acc2 Account) {
	t.Helper()

	if acc1.index != acc2.index {
		t.Fatal("incorrect index")
	}
	if acc1.nonce != acc2.nonce {
		t.Fatal("incorrect nonce")
	}
	if !acc1.balance.Equal(&acc2.balance) {
		t.Fatal("incorrect balance")
	}
	if !acc1.pubKey.A.X.Equal(&acc2.pubKey.A.X) {
		t.Fatal("incorrect public key (X)")
	}
	if !acc1.pubKey.A.Y.Equal(&acc2.pubKey.A.Y) {
		t.Fatal("incorrect public key (Y)")
	}
}
