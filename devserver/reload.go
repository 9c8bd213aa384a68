package devserver

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// reloadMessage is sent to every connected page when the static files change.
const reloadMessage = "reload"

// Reloader watches a directory tree and tells connected pages to reload when
// anything in it changes.
type Reloader struct {
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	upgrader websocket.Upgrader
	debounce time.Duration

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewReloader starts watching dir and all directories below it.
func NewReloader(dir string, debounce time.Duration, logger *zap.Logger) (*Reloader, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			logger.Debug("watching directory", zap.String("path", path))
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	return &Reloader{
		logger:   logger,
		watcher:  watcher,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
		debounce: debounce,
		clients:  make(map[*websocket.Conn]struct{}),
	}, nil
}

// Run forwards file changes to clients until ctx is done.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.closeAll()
	defer r.watcher.Close()

	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			r.logger.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if event.Op&fsnotify.Create != 0 {
				r.watchIfDir(event.Name)
			}
			debounceTimer.Reset(r.debounce)

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("watcher error", zap.Error(err))

		case <-debounceTimer.C:
			n := r.broadcast(reloadMessage)
			r.logger.Info("static files changed", zap.Int("clients", n))

		case <-ctx.Done():
			return nil
		}
	}
}

func (r *Reloader) watchIfDir(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := r.watcher.Add(path); err != nil {
		r.logger.Warn("watching new directory", zap.String("path", path), zap.Error(err))
	}
}

// ServeHTTP upgrades the request to a websocket and keeps it registered until
// the page goes away.
func (r *Reloader) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Warn("upgrading reload connection", zap.Error(err))
		return
	}
	r.mu.Lock()
	r.clients[conn] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.clients, conn)
		r.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected pages.
func (r *Reloader) Clients() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

func (r *Reloader) broadcast(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn := range r.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			r.logger.Debug("sending reload", zap.Error(err))
		}
	}
	return len(r.clients)
}

func (r *Reloader) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for conn := range r.clients {
		conn.Close()
	}
}
