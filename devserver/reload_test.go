package devserver

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReloaderNotifiesClients(t *testing.T) {
	dir := t.TempDir()
	r, err := NewReloader(dir, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	s := New(Config{StaticDir: dir, Index: testIndex, Reloader: r})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	res := get(t, srv.URL+"/", nil)
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(string(body), "reload:/"), "index = %q", body)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/reload"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return r.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "game.wasm"), []byte("new build"), 0o644))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, reloadMessage, string(msg))

	conn.Close()
	require.Eventually(t, func() bool { return r.Clients() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestNewReloaderMissingDir(t *testing.T) {
	_, err := NewReloader(filepath.Join(t.TempDir(), "missing"), time.Millisecond, zap.NewNop())
	require.Error(t, err)
}
