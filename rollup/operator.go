// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package rollup

import (
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"

	"github.com/aayux/r1cs-tutorial/ledger"
)

var (
	// ErrBatchSize a batch must hold exactly BatchSize transfers
	ErrBatchSize = errors.New("a batch must hold exactly BatchSize transfers")

	// ErrTreeSize the ledger capacity must match the circuit constants
	ErrTreeSize = errors.New("ledger capacity does not match the circuit's tree size")

	// ErrRootMismatch plain go verification of an inclusion proof failed
	ErrRootMismatch = errors.New("inclusion proof does not verify against the state root")
)

// Operator applies transfers on the ledger and records the snark witness of
// each batch. The witness holds, per transfer, the touched accounts before
// and after the update and their inclusion proofs, so the circuit can replay
// the batch.
type Operator struct {
	state     *ledger.State
	witnesses Circuit
}

// NewOperator creates an operator over state. The state capacity must match
// the circuit's tree constants.
func NewOperator(state *ledger.State) (*Operator, error) {
	if state.Capacity() != NbAccounts || state.Depth() != Depth {
		return nil, ErrTreeSize
	}
	op := &Operator{state: state}
	op.witnesses.AllocateMerkleProofs()
	return op, nil
}

// State returns the ledger the operator batches transfers on.
func (o *Operator) State() *ledger.State { return o.state }

// Witnesses returns the witness recorded by the last processed batch.
func (o *Operator) Witnesses() *Circuit { return &o.witnesses }

// ProcessBatch applies the transfers one by one, recording the witness. If a
// transfer is invalid the ledger is rolled back to the state before the batch
// and an error is returned.
func (o *Operator) ProcessBatch(transfers []ledger.Transfer) (*Circuit, error) {
	if len(transfers) != BatchSize {
		return nil, ErrBatchSize
	}

	snap := o.state.Snapshot()
	for i, t := range transfers {
		if err := o.updateState(t, i); err != nil {
			o.state.Restore(snap)
			return nil, fmt.Errorf("transfer %d: %w", i, err)
		}
	}
	return &o.witnesses, nil
}

// updateState applies one transfer and fills the witness slot numTransfer.
func (o *Operator) updateState(t ledger.Transfer, numTransfer int) error {

	// locate the two accounts
	posSender, err := o.state.Lookup(t.SenderPubKey())
	if err != nil {
		return err
	}
	senderAccount, err := o.state.Get(posSender)
	if err != nil {
		return err
	}

	posReceiver, err := o.state.Lookup(t.ReceiverPubKey())
	if err != nil {
		return err
	}
	receiverAccount, err := o.state.Get(posReceiver)
	if err != nil {
		return err
	}

	// set witnesses for the leaves
	o.witnesses.LeafReceiver[numTransfer] = posReceiver
	o.witnesses.LeafSender[numTransfer] = posSender

	// set witnesses for the public keys
	senderPubKey := senderAccount.PublicKey()
	receiverPubKey := receiverAccount.PublicKey()
	o.witnesses.PublicKeysSender[numTransfer].A.X = senderPubKey.A.X
	o.witnesses.PublicKeysSender[numTransfer].A.Y = senderPubKey.A.Y
	o.witnesses.PublicKeysReceiver[numTransfer].A.X = receiverPubKey.A.X
	o.witnesses.PublicKeysReceiver[numTransfer].A.Y = receiverPubKey.A.Y

	// set witnesses for the accounts before update
	o.witnesses.SenderAccountsBefore[numTransfer].Index = senderAccount.Index()
	o.witnesses.SenderAccountsBefore[numTransfer].Nonce = senderAccount.Nonce()
	o.witnesses.SenderAccountsBefore[numTransfer].Balance = senderAccount.Balance()

	o.witnesses.ReceiverAccountsBefore[numTransfer].Index = receiverAccount.Index()
	o.witnesses.ReceiverAccountsBefore[numTransfer].Nonce = receiverAccount.Nonce()
	o.witnesses.ReceiverAccountsBefore[numTransfer].Balance = receiverAccount.Balance()

	// set witnesses for the inclusion proofs before update
	merkleRootBefore, proofSender, err := o.prove(posSender)
	if err != nil {
		return err
	}
	_, proofReceiver, err := o.prove(posReceiver)
	if err != nil {
		return err
	}

	o.witnesses.RootHashesBefore[numTransfer] = merkleRootBefore
	o.witnesses.MerkleProofReceiverBefore[numTransfer].RootHash = merkleRootBefore
	o.witnesses.MerkleProofSenderBefore[numTransfer].RootHash = merkleRootBefore
	for i := 0; i < len(proofSender); i++ {
		o.witnesses.MerkleProofReceiverBefore[numTransfer].Path[i] = proofReceiver[i]
		o.witnesses.MerkleProofSenderBefore[numTransfer].Path[i] = proofSender[i]
	}

	// set witnesses for the transfer
	sig := t.Signature()
	o.witnesses.Transfers[numTransfer].Amount = t.Amount()
	o.witnesses.Transfers[numTransfer].Signature.R.X = sig.R.X
	o.witnesses.Transfers[numTransfer].Signature.R.Y = sig.R.Y
	o.witnesses.Transfers[numTransfer].Signature.S = sig.S[:]

	// validate and apply the transfer (signature, nonce, balance)
	if err := o.state.Apply(t); err != nil {
		return err
	}

	// set witnesses for the accounts after update
	senderAccount, err = o.state.Get(posSender)
	if err != nil {
		return err
	}
	receiverAccount, err = o.state.Get(posReceiver)
	if err != nil {
		return err
	}

	o.witnesses.SenderAccountsAfter[numTransfer].Index = senderAccount.Index()
	o.witnesses.SenderAccountsAfter[numTransfer].Nonce = senderAccount.Nonce()
	o.witnesses.SenderAccountsAfter[numTransfer].Balance = senderAccount.Balance()

	o.witnesses.ReceiverAccountsAfter[numTransfer].Index = receiverAccount.Index()
	o.witnesses.ReceiverAccountsAfter[numTransfer].Nonce = receiverAccount.Nonce()
	o.witnesses.ReceiverAccountsAfter[numTransfer].Balance = receiverAccount.Balance()

	// set witnesses for the inclusion proofs after update
	merkleRootAfter, proofSenderAfter, err := o.prove(posSender)
	if err != nil {
		return err
	}
	_, proofReceiverAfter, err := o.prove(posReceiver)
	if err != nil {
		return err
	}

	o.witnesses.RootHashesAfter[numTransfer] = merkleRootAfter
	o.witnesses.MerkleProofReceiverAfter[numTransfer].RootHash = merkleRootAfter
	o.witnesses.MerkleProofSenderAfter[numTransfer].RootHash = merkleRootAfter
	for i := 0; i < len(proofSenderAfter); i++ {
		o.witnesses.MerkleProofReceiverAfter[numTransfer].Path[i] = proofReceiverAfter[i]
		o.witnesses.MerkleProofSenderAfter[numTransfer].Path[i] = proofSenderAfter[i]
	}

	return nil
}

// prove builds the inclusion proof of leaf pos and checks it in plain go
// before it reaches the circuit.
func (o *Operator) prove(pos uint64) ([]byte, [][]byte, error) {
	root, proofSet, numLeaves, err := o.state.Prove(pos)
	if err != nil {
		return nil, nil, err
	}
	if !merkletree.VerifyProof(o.state.HashFunc(), root, proofSet, pos, numLeaves) {
		return nil, nil, ErrRootMismatch
	}
	return root, proofSet, nil
}
