package main

import (
	"context"
	"crypto/tls"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/template"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hulkholden/webglhost/common/logger"
	"github.com/hulkholden/webglhost/devserver"
)

var (
	//go:embed templates/*
	templatesFS embed.FS
	indexTmpl   = template.Must(template.ParseFS(templatesFS, "templates/index.html"))
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "webglhost",
		Usage: "serve the browser build of the game host",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   80,
				Usage:   "http port to listen on",
				EnvVars: []string{"PORT"},
			},
			&cli.BoolFlag{
				Name:  "tls",
				Usage: "enable HTTPS with a self-signed certificate",
			},
			&cli.StringSliceFlag{
				Name:  "tls_hosts",
				Value: cli.NewStringSlice(devserver.DefaultCertHosts...),
				Usage: "DNS names and IP addresses the self-signed certificate covers",
			},
			&cli.StringFlag{
				Name:  "base_path",
				Usage: "base path to serve on, e.g. '/foo/'",
			},
			&cli.StringFlag{
				Name:    "static_dir",
				Value:   "static",
				Usage:   "directory with client.wasm, wasm_exec.js and the game files",
				EnvVars: []string{"STATIC_DIR"},
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "reload open pages when files in --static_dir change",
			},
			&cli.StringFlag{
				Name:    "log_level",
				Value:   "info",
				Usage:   "debug, info, warn or error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	log, err := logger.New(logger.Config{
		Environment: "development",
		Level:       c.String("log_level"),
		Service:     "devserver",
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var reloader *devserver.Reloader
	if c.Bool("watch") {
		reloader, err = devserver.NewReloader(c.String("static_dir"), 200*time.Millisecond, log)
		if err != nil {
			return err
		}
		g.Go(func() error { return reloader.Run(gctx) })
	}

	srv := devserver.New(devserver.Config{
		BasePath:  c.String("base_path"),
		StaticDir: c.String("static_dir"),
		Index:     indexTmpl,
		Logger:    log,
		Reloader:  reloader,
	})
	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", c.Int("port")),
		Handler: srv.Handler(),
	}
	scheme := "http"
	if c.Bool("tls") {
		tlsCert, err := devserver.GenerateSelfSignedCert(devserver.CertConfig{Hosts: c.StringSlice("tls_hosts")})
		if err != nil {
			return fmt.Errorf("generating self-signed certificate: %w", err)
		}
		httpSrv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{tlsCert}}
		scheme = "https"
	}

	g.Go(func() error {
		log.Info("listening", zap.String("url", fmt.Sprintf("%s://0.0.0.0%s", scheme, httpSrv.Addr)))
		var err error
		if httpSrv.TLSConfig != nil {
			err = httpSrv.ListenAndServeTLS("", "")
		} else {
			err = httpSrv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		return httpSrv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
