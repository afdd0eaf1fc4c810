// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sequencer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transfersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollup_transfers_accepted_total",
		Help: "Transfers accepted into the queue",
	})

	transfersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollup_transfers_rejected_total",
		Help: "Transfers rejected at submission by reason",
	}, []string{"reason"}) // reason=signature|account|queue_full

	batchesProven = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollup_batches_proven_total",
		Help: "Batches successfully proved and stored",
	})

	batchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollup_batches_failed_total",
		Help: "Batches dropped because processing or proving failed",
	})

	provingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollup_proving_duration_seconds",
		Help:    "Wall time spent proving a batch",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
