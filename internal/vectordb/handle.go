package vectordb

import (
	"context"
	"errors"
	"sync"
)

// ErrHandleClosed is returned by Get after Close.
var ErrHandleClosed = errors.New("vector store handle is closed")

// Opener creates a VectorStore. It is called at most once per
// initialisation of a Handle.
type Opener func(ctx context.Context) (VectorStore, error)

// Handle is the process-wide, lazily opened store connection. The first
// Get opens the store and the outcome, success or failure, is kept until
// Invalidate is called.
type Handle struct {
	mu     sync.Mutex
	open   Opener
	store  VectorStore
	err    error
	ready  bool
	closed bool
}

// NewHandle returns a handle that opens its store with open on first use.
func NewHandle(open Opener) *Handle {
	return &Handle{open: open}
}

// Get returns the shared store, opening it on the first call.
func (h *Handle) Get(ctx context.Context) (VectorStore, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHandleClosed
	}
	if !h.ready {
		h.store, h.err = h.open(ctx)
		h.ready = true
	}
	return h.store, h.err
}

// Invalidate closes the current store, if any, so the next Get reopens it.
func (h *Handle) Invalidate() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reset()
}

// Close releases the store. Further Get calls fail with ErrHandleClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return h.reset()
}

func (h *Handle) reset() error {
	var err error
	if h.store != nil {
		err = h.store.Close()
	}
	h.store, h.err, h.ready = nil, nil, false
	return err
}
