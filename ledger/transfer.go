// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// Transfer moves amount from the sender's account to the receiver's account.
// The message signed by the sender is
// h(nonce ∥ amount ∥ senderPubKey(x&y) ∥ receiverPubKey(x&y)), h the MiMC hash.
type Transfer struct {
	nonce          uint64
	amount         fr.Element
	senderPubKey   eddsa.PublicKey
	receiverPubKey eddsa.PublicKey
	signature      eddsa.Signature
}

// NewTransfer creates a new transfer (to be signed)
func NewTransfer(amount uint64, from, to eddsa.PublicKey, nonce uint64) Transfer {

	var res Transfer

	res.nonce = nonce
	res.amount.SetUint64(amount)
	res.senderPubKey = from
	res.receiverPubKey = to

	return res
}

// Nonce returns the sender nonce the transfer was built with.
func (t *Transfer) Nonce() uint64 { return t.nonce }

// Amount returns a copy of the transferred amount.
func (t *Transfer) Amount() fr.Element { return t.amount }

// SenderPubKey returns the sender's public key.
func (t *Transfer) SenderPubKey() eddsa.PublicKey { return t.senderPubKey }

// ReceiverPubKey returns the receiver's public key.
func (t *Transfer) ReceiverPubKey() eddsa.PublicKey { return t.receiverPubKey }

// Signature returns the signature currently attached to the transfer.
func (t *Transfer) Signature() eddsa.Signature { return t.signature }

// SetSignature attaches a signature produced elsewhere (typically by a wallet
// that signed the transfer hash offline).
func (t *Transfer) SetSignature(buf []byte) error {
	var sig eddsa.Signature
	if _, err := sig.SetBytes(buf); err != nil {
		return err
	}
	t.signature = sig
	return nil
}

// hash returns the MiMC digest the sender signs:
// nonce ∥ amount ∥ senderPubKey(x&y) ∥ receiverPubKey(x&y)
// (each chunk is 256 bits)
func (t *Transfer) hash(h hash.Hash) []byte {

	h.Reset()
	var frNonce fr.Element

	frNonce.SetUint64(t.nonce)
	b := frNonce.Bytes()
	_, _ = h.Write(b[:])
	b = t.amount.Bytes()
	_, _ = h.Write(b[:])
	b = t.senderPubKey.A.X.Bytes()
	_, _ = h.Write(b[:])
	b = t.senderPubKey.A.Y.Bytes()
	_, _ = h.Write(b[:])
	b = t.receiverPubKey.A.X.Bytes()
	_, _ = h.Write(b[:])
	b = t.receiverPubKey.A.Y.Bytes()
	_, _ = h.Write(b[:])
	return h.Sum(nil)
}

// Sign signs the transfer with the sender's private key. The hash used inside
// eddsa is MiMC, matching what the circuit verifies.
func (t *Transfer) Sign(priv eddsa.PrivateKey, h hash.Hash) (eddsa.Signature, error) {

	msg := t.hash(h)

	sigBin, err := priv.Sign(msg, mimc.NewMiMC())
	if err != nil {
		return eddsa.Signature{}, err
	}
	var sig eddsa.Signature
	if _, err := sig.SetBytes(sigBin); err != nil {
		return eddsa.Signature{}, err
	}
	t.signature = sig
	return sig, nil
}

// Verify checks the signature of the transfer against the sender's public key.
func (t *Transfer) Verify(h hash.Hash) (bool, error) {

	msg := t.hash(h)

	resSig, err := t.senderPubKey.Verify(t.signature.Bytes(), msg, mimc.NewMiMC())
	if err != nil {
		return false, err
	}
	if !resSig {
		return false, ErrWrongSignature
	}
	return true, nil
}
