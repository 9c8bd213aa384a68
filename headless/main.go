// Command headless runs a game against a recording GL context, for smoke and
// soak testing without a browser.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hulkholden/webglhost/common/gameloop"
	"github.com/hulkholden/webglhost/common/logger"
	"github.com/hulkholden/webglhost/common/platform"
	"github.com/hulkholden/webglhost/common/resource"
	"github.com/hulkholden/webglhost/common/webgl/glrecord"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "headless",
		Usage: "run a game module without a browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "wasm",
				Usage:    "path or URL of the game module",
				Required: true,
				EnvVars:  []string{"HEADLESS_WASM"},
			},
			&cli.StringFlag{
				Name:    "assets",
				Value:   ".",
				Usage:   "directory resources are fetched from",
				EnvVars: []string{"HEADLESS_ASSETS"},
			},
			&cli.IntFlag{
				Name:  "fps",
				Value: 60,
				Usage: "frames per second to drive the game at",
			},
			&cli.BoolFlag{
				Name:  "jitter",
				Usage: "randomly drop frames and stall to exercise catch-up",
			},
			&cli.DurationFlag{
				Name:  "stall",
				Value: 250 * time.Millisecond,
				Usage: "length of a stall when --jitter is set",
			},
			&cli.IntFlag{
				Name:  "frames",
				Usage: "stop after this many frames, 0 to run until the game quits",
			},
			&cli.IntFlag{
				Name:  "width",
				Value: 800,
				Usage: "drawing buffer width",
			},
			&cli.IntFlag{
				Name:  "height",
				Value: 600,
				Usage: "drawing buffer height",
			},
			&cli.StringFlag{
				Name:    "metrics_addr",
				Usage:   "address to serve Prometheus metrics on, e.g. ':9090'",
				EnvVars: []string{"HEADLESS_METRICS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "log_level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: run,
	}
}

func run(c *cli.Context) error {
	log, err := logger.New(logger.Config{
		Environment: "development",
		Level:       c.String("log_level"),
		Service:     "headless",
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	wasm, err := loadWasm(ctx, c.String("wasm"))
	if err != nil {
		return err
	}

	if c.Int("fps") <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", c.Int("fps"))
	}
	period := time.Second / time.Duration(c.Int("fps"))
	var sched gameloop.Scheduler = gameloop.NewTickerScheduler(period)
	if c.Bool("jitter") {
		sched, err = gameloop.NewJitterScheduler(period, c.Duration("stall"))
		if err != nil {
			return fmt.Errorf("creating jitter scheduler: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	metrics := newFrameMetrics(reg)
	maxFrames := c.Int("frames")
	frames := 0

	gl := glrecord.New(c.Int("width"), c.Int("height"))
	env := platform.New(platform.Config{
		Logger:    log,
		GL:        gl,
		Fetcher:   resource.FSFetcher{FS: os.DirFS(c.String("assets"))},
		Scheduler: sched,
		Observer: func(f gameloop.Frame) {
			metrics.observe(f)
			frames++
			if maxFrames > 0 && frames >= maxFrames {
				log.Info("frame limit reached", zap.Int("frames", frames))
				cancel()
			}
			// Only the current frame's calls are kept.
			gl.Reset()
		},
		OnQuit: func() {
			log.Info("game quit")
			cancel()
		},
	})
	host := &platform.Host{Env: env, Logger: log}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		err := host.Run(gctx, wasm)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if addr := c.String("metrics_addr"); addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		g.Go(func() error {
			log.Info("serving metrics", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			return srv.Shutdown(shutdownCtx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("finished", zap.Int("frames", frames))
	return nil
}

// loadWasm reads the game module from a local path or an http(s) URL.
func loadWasm(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return resource.HTTPFetcher{}.Fetch(ctx, src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("reading game module: %w", err)
	}
	return data, nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
