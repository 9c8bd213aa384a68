// Package idpromise correlates asynchronous results with small integer ids
// that can be handed across the WASM boundary.
package idpromise

import (
	"errors"
	"fmt"
)

// ID identifies a pending operation. IDs are dense and recycled.
type ID uint32

// ErrUnknownID is returned when completing an id that is not pending.
var ErrUnknownID = errors.New("unknown promise id")

// Callbacks are invoked when the operation with the matching id completes.
// Either may be nil.
type Callbacks struct {
	Resolve func(data uint32)
	Reject  func(errno uint32)
}

// Registry tracks pending operations. It is not safe for concurrent use; all
// calls are expected to come from the single guest execution context.
type Registry struct {
	pending map[ID]Callbacks
	open    []ID
}

func NewRegistry() *Registry {
	return &Registry{
		pending: make(map[ID]Callbacks),
	}
}

// Call allocates an id, registers cb under it and invokes fn with the id.
// The operation completes when Resolve or Reject is later called with the
// same id.
func (r *Registry) Call(fn func(id ID), cb Callbacks) ID {
	id := ID(len(r.pending))
	if n := len(r.open); n > 0 {
		id = r.open[n-1]
		r.open = r.open[:n-1]
	}
	r.pending[id] = cb
	fn(id)
	return id
}

// Resolve completes the operation successfully.
func (r *Registry) Resolve(id ID, data uint32) error {
	cb, err := r.complete(id)
	if err != nil {
		return err
	}
	if cb.Resolve != nil {
		cb.Resolve(data)
	}
	return nil
}

// Reject completes the operation with an error number.
func (r *Registry) Reject(id ID, errno uint32) error {
	cb, err := r.complete(id)
	if err != nil {
		return err
	}
	if cb.Reject != nil {
		cb.Reject(errno)
	}
	return nil
}

// Pending returns the number of operations awaiting completion.
func (r *Registry) Pending() int {
	return len(r.pending)
}

// complete releases id before the callback runs so that a callback starting
// a new operation can reuse it.
func (r *Registry) complete(id ID) (Callbacks, error) {
	cb, ok := r.pending[id]
	if !ok {
		return Callbacks{}, fmt.Errorf("completing %d: %w", id, ErrUnknownID)
	}
	delete(r.pending, id)
	r.open = append(r.open, id)
	return cb, nil
}
