package resource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hulkholden/webglhost/common/eventloop"
	"github.com/hulkholden/webglhost/common/wasmmem"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testErrnos = Errnos{OutOfMemory: 11, NotFound: 22, Unknown: 33}

type failCall struct {
	Callback, Context, Errno uint32
}

type finalizeCall struct {
	Callback, Context, Ptr, Length uint32
}

type fakeGuest struct {
	mem       wasmmem.Buffer
	allocPtr  uint32
	allocs    []uint32
	fails     []failCall
	finalizes []finalizeCall
	onDone    func()
}

func (g *fakeGuest) Memory() wasmmem.Memory { return g.mem }

func (g *fakeGuest) Alloc(ctx context.Context, allocator, size uint32) (uint32, error) {
	g.allocs = append(g.allocs, size)
	return g.allocPtr, nil
}

func (g *fakeGuest) FailFetch(ctx context.Context, callback, fetchCtx, errno uint32) error {
	g.fails = append(g.fails, failCall{callback, fetchCtx, errno})
	g.onDone()
	return nil
}

func (g *fakeGuest) FinalizeFetch(ctx context.Context, callback, fetchCtx, ptr, length uint32) error {
	g.finalizes = append(g.finalizes, finalizeCall{callback, fetchCtx, ptr, length})
	g.onDone()
	return nil
}

// runFetch performs one fetch through a Bridge and waits for its completion.
func runFetch(t *testing.T, fetcher Fetcher, guest *fakeGuest, name string) {
	t.Helper()
	loop := eventloop.New()
	guest.onDone = loop.Stop
	b := NewBridge(fetcher, loop, zap.NewNop())
	b.Bind(guest, testErrnos)

	loop.Post(func(ctx context.Context) error {
		b.Fetch(ctx, Request{Name: name, Callback: 5, Context: 6, Allocator: 7})
		return nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := loop.Run(ctx)
	require.ErrorIs(t, err, eventloop.ErrStopped)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/assets/level.bin", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("LEVELDATA"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func httpFetcher(t *testing.T, srv *httptest.Server) HTTPFetcher {
	t.Helper()
	base, err := url.Parse(srv.URL + "/index.html")
	require.NoError(t, err)
	return HTTPFetcher{Base: base, Client: srv.Client()}
}

func TestFetchSuccess(t *testing.T) {
	srv := newServer(t)
	guest := &fakeGuest{mem: make(wasmmem.Buffer, 64), allocPtr: 16}
	runFetch(t, httpFetcher(t, srv), guest, "assets/level.bin")

	require.Empty(t, guest.fails)
	want := []finalizeCall{{Callback: 5, Context: 6, Ptr: 16, Length: 9}}
	if diff := cmp.Diff(want, guest.finalizes); diff != "" {
		t.Errorf("finalize calls mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "LEVELDATA", string(guest.mem[16:25]))
	require.Equal(t, []uint32{9}, guest.allocs)
}

func TestFetchNotFound(t *testing.T) {
	srv := newServer(t)
	guest := &fakeGuest{mem: make(wasmmem.Buffer, 64), allocPtr: 16}
	runFetch(t, httpFetcher(t, srv), guest, "assets/missing.bin")

	want := []failCall{{Callback: 5, Context: 6, Errno: testErrnos.NotFound}}
	if diff := cmp.Diff(want, guest.fails); diff != "" {
		t.Errorf("fail calls mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, guest.finalizes)
	require.Empty(t, guest.allocs)
}

func TestFetchOutOfMemory(t *testing.T) {
	srv := newServer(t)
	guest := &fakeGuest{mem: make(wasmmem.Buffer, 64), allocPtr: 0}
	runFetch(t, httpFetcher(t, srv), guest, "assets/level.bin")

	want := []failCall{{Callback: 5, Context: 6, Errno: testErrnos.OutOfMemory}}
	if diff := cmp.Diff(want, guest.fails); diff != "" {
		t.Errorf("fail calls mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, guest.finalizes)
}

func TestFetchTransportError(t *testing.T) {
	srv := newServer(t)
	fetcher := httpFetcher(t, srv)
	srv.Close()
	guest := &fakeGuest{mem: make(wasmmem.Buffer, 64), allocPtr: 16}
	runFetch(t, fetcher, guest, "assets/level.bin")

	want := []failCall{{Callback: 5, Context: 6, Errno: testErrnos.Unknown}}
	if diff := cmp.Diff(want, guest.fails); diff != "" {
		t.Errorf("fail calls mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, guest.finalizes)
}

func TestFetchCopyOutOfRange(t *testing.T) {
	srv := newServer(t)
	guest := &fakeGuest{mem: make(wasmmem.Buffer, 20), allocPtr: 16}
	runFetch(t, httpFetcher(t, srv), guest, "assets/level.bin")

	want := []failCall{{Callback: 5, Context: 6, Errno: testErrnos.Unknown}}
	if diff := cmp.Diff(want, guest.fails); diff != "" {
		t.Errorf("fail calls mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, guest.finalizes)
}

func TestFSFetcher(t *testing.T) {
	f := FSFetcher{FS: fstest.MapFS{
		"sprites.png": {Data: []byte{1, 2, 3}},
	}}
	for _, name := range []string{"sprites.png", "./sprites.png", "/sprites.png"} {
		data, err := f.Fetch(context.Background(), name)
		require.NoError(t, err, name)
		require.Equal(t, []byte{1, 2, 3}, data)
	}

	_, err := f.Fetch(context.Background(), "missing.png")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Fetch(missing) = %v, want ErrNotFound", err)
	}
}
