// SPDX-License-Identifier: BSD-3-Clause

// Package agenthttp implements the agent's single-route HTTP endpoint on
// stdlib net/http. The upstream framework reaches for a Connect/gRPC
// surface (service/websrv) for its browser-facing admin console, but that
// entire surface — TLS, vhosting, authentication, gRPC-Web routing —
// serves remote administration, an explicit non-goal here; a single
// unauthenticated exact-match route needs no router library.
package agenthttp

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/ktsol/pirig/internal/snapshot"
)

// rejectionBody is returned for any request path other than "/".
const rejectionBody = "unknown route\n"

// Assembler produces a fresh health snapshot on demand.
type Assembler interface {
	Assemble(ctx context.Context) snapshot.Snapshot
}

// Handler serves the agent's single route.
//
// Open question (a) from the design notes: the original agent answers
// every request, including the rejection path, with HTTP 200. That
// behavior is preserved here for compatibility with existing supervisor
// deployments rather than switched to 404, even though 404 would be the
// more idiomatic net/http response for an unmatched path.
type Handler struct {
	Assembler Assembler
	Logger    *slog.Logger
}

// NewHandler builds a Handler around the given snapshot assembler.
func NewHandler(assembler Assembler, logger *slog.Logger) *Handler {
	return &Handler{Assembler: assembler, Logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.Logger.Warn("rejected request", "remote_addr", r.RemoteAddr, "method", r.Method, "path", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(rejectionBody))
		return
	}

	snap := h.Assembler.Assemble(r.Context())
	body, err := snap.Encode()
	if err != nil {
		h.Logger.Error("failed to encode snapshot", "error", err)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(rejectionBody))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ListenAndServe binds addr and serves forever, processing requests
// serially per spec.md §4.4/§5: net/http serves each connection on its
// own goroutine, so a mutex admits one request at a time and no two
// snapshots are ever assembled concurrently.
func ListenAndServe(addr string, handler *Handler) error {
	var mu sync.Mutex
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		handler.ServeHTTP(w, r)
	}))
}
