// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

// Package sequencer runs the rollup operator as a service: it queues
// incoming transfers, fills fixed-size batches, proves them and persists the
// proofs. An HTTP API (see api.go) exposes submission and queries.
package sequencer

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/witness"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aayux/r1cs-tutorial/ledger"
	"github.com/aayux/r1cs-tutorial/logger"
	"github.com/aayux/r1cs-tutorial/rollup"
)

var (
	// ErrQueueFull the transfer queue is at capacity
	ErrQueueFull = errors.New("transfer queue is full")
)

// Prover proves processed batches. *prover.Prover is the Groth16
// implementation; tests plug in a fake.
type Prover interface {
	ProveBatch(witnesses *rollup.Circuit) (groth16.Proof, witness.Witness, error)
	Verify(proof groth16.Proof, public witness.Witness) error
}

// Sequencer owns the ledger, batches transfers and proves the batches.
type Sequencer struct {
	mu       sync.Mutex
	operator *rollup.Operator
	prover   Prover
	store    *Store
	queue    chan ledger.Transfer
	log      zerolog.Logger
}

// New creates a sequencer. queueSize bounds the number of pending transfers.
func New(operator *rollup.Operator, prover Prover, store *Store, queueSize int) *Sequencer {
	return &Sequencer{
		operator: operator,
		prover:   prover,
		store:    store,
		queue:    make(chan ledger.Transfer, queueSize),
		log:      logger.With("sequencer"),
	}
}

// Submit validates a transfer and queues it for the next batch. Validation
// here is a cheap pre-check (accounts exist, signature verifies); nonce and
// balance are checked again when the batch is applied.
func (s *Sequencer) Submit(t ledger.Transfer) error {
	s.mu.Lock()
	state := s.operator.State()

	if _, err := state.Lookup(t.SenderPubKey()); err != nil {
		s.mu.Unlock()
		transfersRejected.WithLabelValues("account").Inc()
		return err
	}
	if _, err := state.Lookup(t.ReceiverPubKey()); err != nil {
		s.mu.Unlock()
		transfersRejected.WithLabelValues("account").Inc()
		return err
	}
	if _, err := t.Verify(state.HashFunc()); err != nil {
		s.mu.Unlock()
		transfersRejected.WithLabelValues("signature").Inc()
		return err
	}
	s.mu.Unlock()

	select {
	case s.queue <- t:
		transfersAccepted.Inc()
		return nil
	default:
		transfersRejected.WithLabelValues("queue_full").Inc()
		return ErrQueueFull
	}
}

// CreateAccount registers a public key on the ledger, crediting deposit when
// it is non zero. Registration and deposit are atomic: a failed deposit rolls
// the registration back instead of leaving an unfunded account behind.
func (s *Sequencer) CreateAccount(pubKey eddsa.PublicKey, deposit uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.operator.State()
	snap := state.Snapshot()
	index, err := state.CreateAccount(pubKey)
	if err != nil {
		return 0, err
	}
	if deposit > 0 {
		if err := state.Deposit(index, deposit); err != nil {
			state.Restore(snap)
			return 0, err
		}
	}
	return index, nil
}

// Deposit credits an account, standing in for the L1 bridge.
func (s *Sequencer) Deposit(index, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator.State().Deposit(index, amount)
}

// Account returns the account stored at index.
func (s *Sequencer) Account(index uint64) (ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.operator.State().Get(index)
}

// Batch returns a proved batch by id.
func (s *Sequencer) Batch(id string) (*Batch, error) {
	return s.store.Get(id)
}

// Batches returns every proved batch.
func (s *Sequencer) Batches() ([]*Batch, error) {
	return s.store.List()
}

// Run drains the queue, proving one batch of rollup.BatchSize transfers at a
// time, until ctx is cancelled. Transfers still queued at shutdown are
// dropped; wallets are expected to resubmit anything not yet covered by a
// stored batch.
func (s *Sequencer) Run(ctx context.Context) error {
	batch := make([]ledger.Transfer, 0, rollup.BatchSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-s.queue:
			batch = append(batch, t)
			if len(batch) < rollup.BatchSize {
				continue
			}
			s.processBatch(batch)
			batch = batch[:0]
		}
	}
}

// processBatch applies, proves and stores one batch. A failed batch is
// dropped: the operator already rolled the ledger back.
func (s *Sequencer) processBatch(transfers []ledger.Transfer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	witnesses, err := s.operator.ProcessBatch(transfers)
	if err != nil {
		batchesFailed.Inc()
		s.log.Error().Err(err).Msg("batch rejected")
		return
	}

	start := time.Now()
	proof, public, err := s.prover.ProveBatch(witnesses)
	if err != nil {
		batchesFailed.Inc()
		s.log.Error().Err(err).Msg("proving failed")
		return
	}
	provingDuration.Observe(time.Since(start).Seconds())

	if err := s.prover.Verify(proof, public); err != nil {
		batchesFailed.Inc()
		s.log.Error().Err(err).Msg("proof does not verify")
		return
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		batchesFailed.Inc()
		s.log.Error().Err(err).Msg("proof serialization failed")
		return
	}

	record := &Batch{
		ID:         uuid.NewString(),
		RootBefore: append([]byte(nil), witnesses.RootHashesBefore[0].([]byte)...),
		RootAfter:  append([]byte(nil), witnesses.RootHashesAfter[rollup.BatchSize-1].([]byte)...),
		Transfers:  rollup.BatchSize,
		Proof:      buf.Bytes(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Put(record); err != nil {
		batchesFailed.Inc()
		s.log.Error().Err(err).Msg("storing batch failed")
		return
	}

	batchesProven.Inc()
	s.log.Info().
		Str("batch", record.ID).
		Dur("proving", time.Since(start)).
		Msg("batch proved")
}
