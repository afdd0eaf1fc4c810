// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sequencer

import (
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Batch is the persisted record of a proved batch: the ledger roots the proof
// commits to, and the serialized proof itself.
type Batch struct {
	ID         string    `cbor:"id"`
	RootBefore []byte    `cbor:"rootBefore"`
	RootAfter  []byte    `cbor:"rootAfter"`
	Transfers  int       `cbor:"transfers"`
	Proof      []byte    `cbor:"proof"`
	CreatedAt  time.Time `cbor:"createdAt"`
}

// batchRecord is a method-less alias of Batch so the CBOR encoder uses plain
// struct encoding instead of calling back into MarshalBinary/UnmarshalBinary.
type batchRecord Batch

// MarshalBinary encodes the batch record with CBOR.
func (b *Batch) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*batchRecord)(b))
}

// UnmarshalBinary decodes a batch record written with MarshalBinary.
func (b *Batch) UnmarshalBinary(data []byte) error {
	return cbor.Unmarshal(data, (*batchRecord)(b))
}
