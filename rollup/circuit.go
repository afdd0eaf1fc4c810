// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package rollup proves that batches of signed transfers were correctly
// applied on a payments ledger. The operator applies the transfers in plain
// go (ledger package) while recording a witness, and the circuit re-checks
// every step in-snark: account inclusion, signature, nonce and balance
// updates. The only public inputs are the ledger roots before and after each
// transfer.
package rollup

import (
	tedwards "github.com/consensys/gnark-crypto/ecc/twistededwards"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/accumulator/merkle"
	"github.com/consensys/gnark/std/algebra/native/twistededwards"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/signature/eddsa"
)

const (
	// NbAccounts is the number of accounts of the rolled-up ledger.
	NbAccounts = 16

	// Depth is the length of an inclusion proof for a tree of NbAccounts
	// leaves (leaf hash plus one sibling per level).
	Depth = 5

	// BatchSize is the number of transfers proved by one snark proof.
	BatchSize = 2
)

// Circuit proves that BatchSize transfers were applied on the ledger tree,
// moving its root from RootHashesBefore[i] to RootHashesAfter[i] one transfer
// at a time.
type Circuit struct {
	// ---------------------------------------------------------------------------------------------
	// SECRET INPUTS

	// accounts involved before update and their public keys
	SenderAccountsBefore   [BatchSize]AccountConstraints
	ReceiverAccountsBefore [BatchSize]AccountConstraints
	PublicKeysSender       [BatchSize]eddsa.PublicKey

	// accounts involved after update and their public keys
	SenderAccountsAfter   [BatchSize]AccountConstraints
	ReceiverAccountsAfter [BatchSize]AccountConstraints
	PublicKeysReceiver    [BatchSize]eddsa.PublicKey

	// transfers
	Transfers [BatchSize]TransferConstraints

	// inclusion proofs of the sender and receiver accounts
	MerkleProofReceiverBefore [BatchSize]merkle.MerkleProof
	MerkleProofReceiverAfter  [BatchSize]merkle.MerkleProof
	MerkleProofSenderBefore   [BatchSize]merkle.MerkleProof
	MerkleProofSenderAfter    [BatchSize]merkle.MerkleProof
	LeafReceiver              [BatchSize]frontend.Variable
	LeafSender                [BatchSize]frontend.Variable

	// ---------------------------------------------------------------------------------------------
	// PUBLIC INPUTS

	// ledger roots, per transfer
	RootHashesBefore [BatchSize]frontend.Variable `gnark:",public"`
	RootHashesAfter  [BatchSize]frontend.Variable `gnark:",public"`
}

// AccountConstraints is a ledger account encoded as constraints
type AccountConstraints struct {
	Index   frontend.Variable // index in the tree
	Nonce   frontend.Variable // nb transfers done so far from this account
	Balance frontend.Variable
	PubKey  eddsa.PublicKey `gnark:"-"`
}

// TransferConstraints is a transfer encoded as constraints
type TransferConstraints struct {
	Amount         frontend.Variable
	Nonce          frontend.Variable `gnark:"-"`
	SenderPubKey   eddsa.PublicKey   `gnark:"-"`
	ReceiverPubKey eddsa.PublicKey   `gnark:"-"`
	Signature      eddsa.Signature
}

// NewCircuit returns a circuit with the Merkle path slices allocated, ready
// to be compiled or filled as a witness.
func NewCircuit() *Circuit {
	var c Circuit
	c.AllocateMerkleProofs()
	return &c
}

// AllocateMerkleProofs sizes the Merkle path slices for a tree of depth Depth.
func (circuit *Circuit) AllocateMerkleProofs() {
	for i := 0; i < BatchSize; i++ {
		circuit.MerkleProofReceiverBefore[i].Path = make([]frontend.Variable, Depth)
		circuit.MerkleProofReceiverAfter[i].Path = make([]frontend.Variable, Depth)
		circuit.MerkleProofSenderBefore[i].Path = make([]frontend.Variable, Depth)
		circuit.MerkleProofSenderAfter[i].Path = make([]frontend.Variable, Depth)
	}
}

// postInit wires the unconstrained public keys and nonces into the account
// and transfer constraints.
func (circuit *Circuit) postInit(api frontend.API) error {

	for i := 0; i < BatchSize; i++ {

		circuit.SenderAccountsBefore[i].PubKey = circuit.PublicKeysSender[i]
		circuit.SenderAccountsAfter[i].PubKey = circuit.PublicKeysSender[i]

		circuit.ReceiverAccountsBefore[i].PubKey = circuit.PublicKeysReceiver[i]
		circuit.ReceiverAccountsAfter[i].PubKey = circuit.PublicKeysReceiver[i]

		circuit.Transfers[i].Nonce = circuit.SenderAccountsBefore[i].Nonce
		circuit.Transfers[i].SenderPubKey = circuit.PublicKeysSender[i]
		circuit.Transfers[i].ReceiverPubKey = circuit.PublicKeysReceiver[i]
	}
	return nil
}

// Define declares the circuit's constraints
func (circuit *Circuit) Define(api frontend.API) error {

	if err := circuit.postInit(api); err != nil {
		return err
	}
	// hash function for the merkle proofs and the eddsa signatures
	hFunc, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// the transfers are applied sequentially on the same ledger: the root a
	// transfer starts from is the root the previous transfer ended at
	for i := 0; i < BatchSize-1; i++ {
		api.AssertIsEqual(circuit.RootHashesBefore[i+1], circuit.RootHashesAfter[i])
	}

	// for each transfer, verify the inclusion proofs, the signature and the
	// account updates
	for i := 0; i < BatchSize; i++ {

		// the root hashes of the Merkle paths must match the public ones
		api.AssertIsEqual(circuit.RootHashesBefore[i], circuit.MerkleProofReceiverBefore[i].RootHash)
		api.AssertIsEqual(circuit.RootHashesBefore[i], circuit.MerkleProofSenderBefore[i].RootHash)
		api.AssertIsEqual(circuit.RootHashesAfter[i], circuit.MerkleProofReceiverAfter[i].RootHash)
		api.AssertIsEqual(circuit.RootHashesAfter[i], circuit.MerkleProofSenderAfter[i].RootHash)

		// the leaves of the Merkle proofs must match the index of the accounts
		api.AssertIsEqual(circuit.ReceiverAccountsBefore[i].Index, circuit.LeafReceiver[i])
		api.AssertIsEqual(circuit.ReceiverAccountsAfter[i].Index, circuit.LeafReceiver[i])
		api.AssertIsEqual(circuit.SenderAccountsBefore[i].Index, circuit.LeafSender[i])
		api.AssertIsEqual(circuit.SenderAccountsAfter[i].Index, circuit.LeafSender[i])

		// verify the inclusion proofs
		circuit.MerkleProofReceiverBefore[i].VerifyProof(api, &hFunc, circuit.LeafReceiver[i])
		circuit.MerkleProofSenderBefore[i].VerifyProof(api, &hFunc, circuit.LeafSender[i])
		circuit.MerkleProofReceiverAfter[i].VerifyProof(api, &hFunc, circuit.LeafReceiver[i])
		circuit.MerkleProofSenderAfter[i].VerifyProof(api, &hFunc, circuit.LeafSender[i])

		// verify the transfer signature
		if err := verifyTransferSignature(api, circuit.Transfers[i], hFunc); err != nil {
			return err
		}

		// verify the account updates
		verifyAccountUpdated(api, circuit.SenderAccountsBefore[i], circuit.ReceiverAccountsBefore[i], circuit.SenderAccountsAfter[i], circuit.ReceiverAccountsAfter[i], circuit.Transfers[i].Amount)
	}

	return nil
}

// verifyTransferSignature checks the eddsa signature of the transfer against
// the in-circuit MiMC hash of its fields.
func verifyTransferSignature(api frontend.API, t TransferConstraints, hFunc mimc.MiMC) error {

	// Reset the hash state!
	hFunc.Reset()

	// the signature is on h(nonce ∥ amount ∥ senderpubKey (x&y) ∥ receiverPubkey(x&y))
	hFunc.Write(t.Nonce, t.Amount, t.SenderPubKey.A.X, t.SenderPubKey.A.Y, t.ReceiverPubKey.A.X, t.ReceiverPubKey.A.Y)
	htransfer := hFunc.Sum()

	curve, err := twistededwards.NewEdCurve(api, tedwards.BN254)
	if err != nil {
		return err
	}

	hFunc.Reset()
	return eddsa.Verify(curve, t.Signature, htransfer, t.SenderPubKey, &hFunc)
}

// verifyAccountUpdated constrains the nonce and balance updates of a transfer.
func verifyAccountUpdated(api frontend.API, from, to, fromUpdated, toUpdated AccountConstraints, amount frontend.Variable) {

	// the sender's nonce is bumped, the receiver's is untouched
	nonceUpdated := api.Add(from.Nonce, 1)
	api.AssertIsEqual(nonceUpdated, fromUpdated.Nonce)
	api.AssertIsEqual(to.Nonce, toUpdated.Nonce)

	// the amount fits in the sender's balance
	api.AssertIsLessOrEqual(amount, from.Balance)

	// the amount moved from the sender to the receiver
	fromBalanceUpdated := api.Sub(from.Balance, amount)
	api.AssertIsEqual(fromBalanceUpdated, fromUpdated.Balance)

	toBalanceUpdated := api.Add(to.Balance, amount)
	api.AssertIsEqual(toBalanceUpdated, toUpdated.Balance)
}
