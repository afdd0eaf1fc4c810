// Copyright 2020-2025 Consensys Software Inc.
// Licensed under the Apache License, Version 2.0. See the LICENSE file for details.

package sequencer

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aayux/r1cs-tutorial/ledger"
)

// NewRouter exposes the sequencer over HTTP.
//
//	POST /v1/accounts        register a public key (optionally with a deposit)
//	GET  /v1/accounts/{index}
//	POST /v1/transfers       submit a signed transfer
//	GET  /v1/batches         list proved batches
//	GET  /v1/batches/{id}
//	GET  /healthz
//	GET  /metrics            prometheus metrics
func NewRouter(s *Sequencer) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts", s.handleCreateAccount)
		r.Get("/accounts/{index}", s.handleGetAccount)
		r.Post("/transfers", s.handleSubmitTransfer)
		r.Get("/batches", s.handleListBatches)
		r.Get("/batches/{id}", s.handleGetBatch)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

type createAccountRequest struct {
	PublicKey string `json:"publicKey"` // hex, 32 bytes compressed
	Deposit   uint64 `json:"deposit,omitempty"`
}

type accountResponse struct {
	Index     uint64 `json:"index"`
	Nonce     uint64 `json:"nonce"`
	Balance   string `json:"balance"`
	PublicKey string `json:"publicKey"`
}

type transferRequest struct {
	From      string `json:"from"` // hex, 32 bytes compressed
	To        string `json:"to"`
	Amount    uint64 `json:"amount"`
	Nonce     uint64 `json:"nonce"`
	Signature string `json:"signature"` // hex
}

type batchResponse struct {
	ID         string    `json:"id"`
	RootBefore string    `json:"rootBefore"`
	RootAfter  string    `json:"rootAfter"`
	Transfers  int       `json:"transfers"`
	Proof      string    `json:"proof,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (s *Sequencer) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	pubKey, err := parsePubKey(req.PublicKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	index, err := s.CreateAccount(pubKey, req.Deposit)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ledger.ErrAccountExists) {
			status = http.StatusConflict
		}
		writeError(w, status, err)
		return
	}

	acc, err := s.Account(index)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (s *Sequencer) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(chi.URLParam(r, "index"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	acc, err := s.Account(index)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (s *Sequencer) handleSubmitTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	from, err := parsePubKey(req.From)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := parsePubKey(req.To)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sig, err := hex.DecodeString(req.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	transfer := ledger.NewTransfer(req.Amount, from, to, req.Nonce)
	if err := transfer.SetSignature(sig); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.Submit(transfer); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Sequencer) handleListBatches(w http.ResponseWriter, _ *http.Request) {
	batches, err := s.Batches()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]batchResponse, 0, len(batches))
	for _, b := range batches {
		resp := toBatchResponse(b)
		resp.Proof = "" // listings stay small, fetch one batch for the proof
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Sequencer) handleGetBatch(w http.ResponseWriter, r *http.Request) {
	b, err := s.Batch(chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrBatchNotFound) {
			status = http.StatusNotFound
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, toBatchResponse(b))
}

func toAccountResponse(acc ledger.Account) accountResponse {
	pubKey := acc.PublicKey()
	balance := acc.Balance()
	return accountResponse{
		Index:     acc.Index(),
		Nonce:     acc.Nonce(),
		Balance:   balance.String(),
		PublicKey: hex.EncodeToString(pubKey.Bytes()),
	}
}

func toBatchResponse(b *Batch) batchResponse {
	return batchResponse{
		ID:         b.ID,
		RootBefore: hex.EncodeToString(b.RootBefore),
		RootAfter:  hex.EncodeToString(b.RootAfter),
		Transfers:  b.Transfers,
		Proof:      hex.EncodeToString(b.Proof),
		CreatedAt:  b.CreatedAt,
	}
}

func parsePubKey(s string) (eddsa.PublicKey, error) {
	var pubKey eddsa.PublicKey
	buf, err := hex.DecodeString(s)
	if err != nil {
		return pubKey, err
	}
	if _, err := pubKey.SetBytes(buf); err != nil {
		return pubKey, err
	}
	return pubKey, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
