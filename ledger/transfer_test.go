// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"testing"
)

func TestSignTransfer(t *testing.T) {

	s, sender, receiver, keys := newTestState(t)

	// create the transfer and sign it (the hash used for signing is the hash
	// function of the ledger)
	transfer := NewTransfer(10, sender.pubKey, receiver.pubKey, sender.nonce)

	// verify correct signature
	if _, err := transfer.Sign(*keys[0], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	res, err := transfer.Verify(s.HashFunc())
	if err != nil {
		t.Fatal(err)
	}
	if !res {
		t.Fatal("verifying a transfer signed with the correct key should work")
	}

	// verify wrong signature
	if _, err := transfer.Sign(*keys[1], s.HashFunc()); err != nil {
		t.Fatal(err)
	}
	if _, err := transfer.Verify(s.HashFunc()); err == nil {
		t.Fatal("verifying a transfer signed with the wrong key should output an error")
	}
}

func TestSetSignature(t *testing.T) {

	s, sender, receiver, keys := newTestState(t)

	signed := NewTransfer(7, sender.pubKey, receiver.pubKey, sender.nonce)
	sig, err := signed.Sign(*keys[0], s.HashFunc())
	if err != nil {
		t.Fatal(err)
	}

	// rebuild the same transfer and attach the signature bytes, as a wallet
	// submitting over the wire would
	detached := NewTransfer(7, sender.pubKey, receiver.pubKey, sender.nonce)
	if err := detached.SetSignature(sig.Bytes()); err != nil {
		t.Fatal(err)
	}
	res, err := detached.Verify(s.HashFunc())
	if err != nil {
		t.Fatal(err)
	}
	if !res {
		t.Fatal("detached signature should verify")
	}

	if err := detached.SetSignature([]byte{0x01}); err == nil {
		t.Fatal("malformed signature bytes should be rejected")
	}
}
