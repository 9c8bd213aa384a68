package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/hulkholden/webglhost/common/gameloop"
	"github.com/hulkholden/webglhost/common/resource"
)

const minigamePath = "../common/platform/testdata/minigame.wasm"

func TestFrameMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := newFrameMetrics(reg)

	m.observe(gameloop.Frame{Delta: 0.016, Updates: 1, Alpha: 0.25})
	m.observe(gameloop.Frame{Delta: 0.25, Clamped: true, Updates: 15, Alpha: 0.5})

	require.Equal(t, 2.0, testutil.ToFloat64(m.frames))
	require.Equal(t, 16.0, testutil.ToFloat64(m.updates))
	require.Equal(t, 1.0, testutil.ToFloat64(m.clampedFrames))
	require.Equal(t, 0.5, testutil.ToFloat64(m.alpha))
	require.Equal(t, 1, testutil.CollectAndCount(m.frameDelta))
}

func TestLoadWasm(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.wasm")
	require.NoError(t, os.WriteFile(path, []byte("\x00asm"), 0o644))

	data, err := loadWasm(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []byte("\x00asm"), data)

	_, err = loadWasm(context.Background(), filepath.Join(dir, "missing.wasm"))
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/game.wasm" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("\x00asm"))
	}))
	defer srv.Close()

	data, err = loadWasm(context.Background(), srv.URL+"/game.wasm")
	require.NoError(t, err)
	require.Equal(t, []byte("\x00asm"), data)

	_, err = loadWasm(context.Background(), srv.URL+"/other.wasm")
	require.ErrorIs(t, err, resource.ErrNotFound)
}

func TestRunUntilQuit(t *testing.T) {
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "level.bin"), []byte("LEVELDATA"), 0o644))

	err := newApp().Run([]string{"headless", "--wasm", minigamePath, "--assets", assets, "--fps", "500", "--log_level", "error"})
	require.NoError(t, err)
}

func TestRunFrameLimit(t *testing.T) {
	assets := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(assets, "level.bin"), []byte("LEVELDATA"), 0o644))

	err := newApp().Run([]string{"headless", "--wasm", minigamePath, "--assets", assets, "--fps", "500", "--frames", "2", "--jitter", "--stall", "5ms", "--log_level", "error"})
	require.NoError(t, err)
}

func TestRunGameTrap(t *testing.T) {
	// Without level.bin the fetch fails and the game traps on its next update.
	err := newApp().Run([]string{"headless", "--wasm", minigamePath, "--assets", t.TempDir(), "--fps", "500", "--log_level", "error"})
	require.ErrorContains(t, err, "unreachable")
}

func TestRunRequiresWasm(t *testing.T) {
	err := newApp().Run([]string{"headless"})
	require.Error(t, err)
}
