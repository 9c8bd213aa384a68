// Package devserver serves the browser build of the host during development.
package devserver

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strings"
	"text/template"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"
)

// Config configures a Server.
type Config struct {
	// BasePath is the path the page is served on, e.g. "/foo/".
	BasePath string
	// StaticDir holds client.wasm, wasm_exec.js, the game module and its
	// assets.
	StaticDir string
	Index     *template.Template
	Logger    *zap.Logger
	// Reloader, if set, is served at "reload" below the base path.
	Reloader *Reloader
}

type Server struct {
	basePath  string
	staticDir string
	index     *template.Template
	logger    *zap.Logger
	reloader  *Reloader
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		basePath:  CanonicalizeBasePath(cfg.BasePath),
		staticDir: cfg.StaticDir,
		index:     cfg.Index,
		logger:    logger,
		reloader:  cfg.Reloader,
	}
}

// servePage serves the index at the base path and files from the static dir
// for every other path below it, so the game and its assets resolve relative
// to the page.
func (s *Server) servePage(files http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != s.basePath {
			files.ServeHTTP(w, r)
			return
		}
		s.serveIndex(w, r)
	}
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"BasePath":   s.basePath,
		"LiveReload": s.reloader != nil,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		s.logger.Error("rendering index", zap.Error(err))
	}
}

// Handler returns the handler for all of the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	files := noCache(gzhttp.GzipHandler(http.FileServer(http.Dir(s.staticDir))))
	pageFiles := files
	if prefix := strings.TrimSuffix(s.basePath, "/"); prefix != "" {
		pageFiles = http.StripPrefix(prefix, files)
	}
	mux.HandleFunc(s.basePath, s.servePage(pageFiles))
	mux.Handle(s.basePath+"static/", http.StripPrefix(s.basePath+"static/", files))

	if s.reloader != nil {
		mux.Handle(s.basePath+"reload", s.reloader)
	}
	return s.logRequest(mux)
}

// noCache stops the browser from holding on to stale builds.
func noCache(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		h.ServeHTTP(w, r)
	})
}

func (s *Server) logRequest(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{
			ResponseWriter: w,
			Status:         200,
		}
		handler.ServeHTTP(sr, r)
		s.logger.Info("request",
			zap.String("remote", r.RemoteAddr),
			zap.String("method", r.Method),
			zap.Int("status", sr.Status),
			zap.Stringer("url", r.URL),
			zap.Duration("took", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer for websocket upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func CanonicalizeBasePath(s string) string {
	bp := s
	if !strings.HasSuffix(bp, "/") {
		bp = bp + "/"
	}
	if !strings.HasPrefix(bp, "/") {
		bp = "/" + bp
	}
	return bp
}
