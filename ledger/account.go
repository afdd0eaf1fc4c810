// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package ledger

import (
	"encoding/binary"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
)

// SizeAccount byte size of a serialized account (5*32bytes)
// index ∥ nonce ∥ balance ∥ pubkeyX ∥ pubkeyY, each chunk is 32 bytes
const SizeAccount = 160

// Account is an entry of the payments ledger.
type Account struct {
	index   uint64 // position of the account in the tree
	nonce   uint64 // nb transfers sent from this account so far
	balance fr.Element
	pubKey  eddsa.PublicKey
}

// Index returns the position of the account in the ledger tree.
func (ac *Account) Index() uint64 { return ac.index }

// Nonce returns the number of transfers sent from this account so far.
func (ac *Account) Nonce() uint64 { return ac.nonce }

// Balance returns a copy of the account balance.
func (ac *Account) Balance() fr.Element { return ac.balance }

// PublicKey returns the account's eddsa public key.
func (ac *Account) PublicKey() eddsa.PublicKey { return ac.pubKey }

// Reset resets an account
func (ac *Account) Reset() {
	ac.index = 0
	ac.nonce = 0
	ac.balance.SetZero()
	ac.pubKey.A.X.SetZero()
	ac.pubKey.A.Y.SetOne()
}

// Serialize serializes the account as a concatenation of 5 chunks of 256 bits
// index ∥ nonce ∥ balance ∥ pubkeyX ∥ pubkeyY. Index and nonce are 64 bits,
// right-aligned in their 256 bits chunk.
func (ac *Account) Serialize() []byte {

	var res [SizeAccount]byte

	binary.BigEndian.PutUint64(res[24:], ac.index)
	binary.BigEndian.PutUint64(res[56:], ac.nonce)

	buf := ac.balance.Bytes()
	copy(res[64:], buf[:])

	buf = ac.pubKey.A.X.Bytes()
	copy(res[96:], buf[:])
	buf = ac.pubKey.A.Y.Bytes()
	copy(res[128:], buf[:])

	return res[:]
}

// Deserialize deserializes a stream of bytes into an account
func Deserialize(res *Account, data []byte) error {

	res.Reset()

	if len(data) != SizeAccount {
		return ErrSizeByteSlice
	}

	res.index = binary.BigEndian.Uint64(data[24:32])
	res.nonce = binary.BigEndian.Uint64(data[56:64])
	res.balance.SetBytes(data[64:96])
	res.pubKey.A.X.SetBytes(data[96:128])
	res.pubKey.A.Y.SetBytes(data[128:])

	return nil
}
