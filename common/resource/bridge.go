package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/hulkholden/webglhost/common/eventloop"
	"github.com/hulkholden/webglhost/common/wasmmem"
	"go.uber.org/zap"
)

// Errnos are the guest's error numbers, read from its memory at startup.
type Errnos struct {
	OutOfMemory uint32
	NotFound    uint32
	Unknown     uint32
}

// Request identifies a fetch and the guest continuation that receives it.
// Callback and Context are opaque to the host and passed back unchanged.
type Request struct {
	Name      string
	Callback  uint32
	Context   uint32
	Allocator uint32
}

// Guest is the part of the guest module a fetch completes into.
type Guest interface {
	Memory() wasmmem.Memory
	// Alloc asks allocator for size bytes. It returns 0 when out of memory.
	Alloc(ctx context.Context, allocator, size uint32) (uint32, error)
	FailFetch(ctx context.Context, callback, fetchCtx, errno uint32) error
	FinalizeFetch(ctx context.Context, callback, fetchCtx, ptr, length uint32) error
}

// Bridge runs fetches off the guest's execution context and delivers each
// result back onto it. Every request ends in exactly one FailFetch or
// FinalizeFetch call.
type Bridge struct {
	fetcher Fetcher
	poster  eventloop.Poster
	logger  *zap.Logger

	guest  Guest
	errnos Errnos
}

func NewBridge(fetcher Fetcher, poster eventloop.Poster, logger *zap.Logger) *Bridge {
	return &Bridge{
		fetcher: fetcher,
		poster:  poster,
		logger:  logger,
	}
}

// Bind sets the guest and error numbers used by later completions.
func (b *Bridge) Bind(guest Guest, errnos Errnos) {
	b.guest = guest
	b.errnos = errnos
}

// Fetch starts req in the background and returns immediately.
func (b *Bridge) Fetch(ctx context.Context, req Request) {
	go func() {
		data, err := b.fetcher.Fetch(ctx, req.Name)
		posted := b.poster.Post(func(ctx context.Context) error {
			return b.complete(ctx, req, data, err)
		})
		if !posted {
			b.logger.Debug("dropping fetch result, loop stopped", zap.String("name", req.Name))
		}
	}()
}

func (b *Bridge) complete(ctx context.Context, req Request, data []byte, fetchErr error) error {
	if fetchErr != nil {
		errno := b.errnos.Unknown
		if errors.Is(fetchErr, ErrNotFound) {
			errno = b.errnos.NotFound
		}
		b.logger.Warn("fetch failed", zap.String("name", req.Name), zap.Uint32("errno", errno), zap.Error(fetchErr))
		return b.fail(ctx, req, errno)
	}

	size := uint32(len(data))
	ptr, err := b.guest.Alloc(ctx, req.Allocator, size)
	if err != nil {
		return fmt.Errorf("allocating %d bytes for %q: %w", size, req.Name, err)
	}
	if ptr == 0 {
		b.logger.Warn("guest allocation failed", zap.String("name", req.Name), zap.Uint32("size", size))
		return b.fail(ctx, req, b.errnos.OutOfMemory)
	}
	if err := wasmmem.WriteBytes(b.guest.Memory(), ptr, data); err != nil {
		b.logger.Error("copying fetch result", zap.String("name", req.Name), zap.Error(err))
		return b.fail(ctx, req, b.errnos.Unknown)
	}
	if err := b.guest.FinalizeFetch(ctx, req.Callback, req.Context, ptr, size); err != nil {
		return fmt.Errorf("finalizing fetch of %q: %w", req.Name, err)
	}
	return nil
}

func (b *Bridge) fail(ctx context.Context, req Request, errno uint32) error {
	if err := b.guest.FailFetch(ctx, req.Callback, req.Context, errno); err != nil {
		return fmt.Errorf("failing fetch of %q: %w", req.Name, err)
	}
	return nil
}
