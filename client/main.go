//go:build js && wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/hulkholden/webglhost/client/browser"
	"github.com/hulkholden/webglhost/common/gameloop"
	"github.com/hulkholden/webglhost/common/logger"
	"github.com/hulkholden/webglhost/common/platform"
	"github.com/hulkholden/webglhost/common/resource"
)

const (
	canvasID        = "game-canvas"
	defaultGameWasm = "game.wasm"
)

// waitForCanvas waits until the page has created the game canvas.
func waitForCanvas(ctx context.Context, w browser.HTMLWindow, log *zap.Logger) (js.Value, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.RetryNotifyWithData(func() (js.Value, error) {
		canvas, ok := w.ElementByID(canvasID)
		if !ok {
			return js.Value{}, fmt.Errorf("no element with id %q", canvasID)
		}
		return canvas, nil
	}, backoff.WithContext(b, ctx), func(err error, next time.Duration) {
		log.Info("waiting for canvas", zap.Error(err), zap.Duration("retry_in", next))
	})
}

func run(ctx context.Context, w browser.HTMLWindow, log *zap.Logger) error {
	canvas, err := waitForCanvas(ctx, w, log)
	if err != nil {
		return err
	}
	gl, err := browser.NewWebGL2Context(canvas)
	if err != nil {
		return err
	}

	location, err := w.Location()
	if err != nil {
		return err
	}
	gameWasm := defaultGameWasm
	if name := location.Query().Get("wasm"); name != "" {
		gameWasm = name
	}

	fetcher := resource.HTTPFetcher{Base: location}
	wasm, err := fetcher.Fetch(ctx, gameWasm)
	if err != nil {
		return fmt.Errorf("loading %s: %w", gameWasm, err)
	}
	log.Info("loaded game", zap.String("name", gameWasm), zap.Int("bytes", len(wasm)))

	var sched gameloop.Scheduler = browser.NewFrameScheduler(w)
	env := platform.New(platform.Config{
		Logger:    log,
		GL:        gl,
		Fetcher:   fetcher,
		Scheduler: sched,
	})
	host := &platform.Host{Env: env, Logger: log}
	return host.Run(ctx, wasm)
}

func main() {
	log, err := logger.New(logger.Config{Service: "client", Encoding: "console"})
	if err != nil {
		panic(err)
	}
	log.Info("Started client!")

	w := browser.Window()
	if err := run(context.Background(), w, log); err != nil {
		log.Error("run failed", zap.Error(err))
		msg := "Run error: " + err.Error()
		if errors.Is(err, browser.ErrWebGL2Unsupported) {
			msg = "This browser does not support WebGL2."
		}
		w.ShowError(msg)
	}

	<-make(chan bool)
}
