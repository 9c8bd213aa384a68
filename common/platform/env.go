// Package platform implements the "env" import module a game is linked
// against and drives the game through it.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hulkholden/webglhost/common/eventloop"
	"github.com/hulkholden/webglhost/common/gameloop"
	"github.com/hulkholden/webglhost/common/idpromise"
	"github.com/hulkholden/webglhost/common/resource"
	"github.com/hulkholden/webglhost/common/wasmmem"
	"github.com/hulkholden/webglhost/common/webgl"
)

// GuestModule is the view of the game the env calls into.
type GuestModule interface {
	gameloop.Game
	resource.Guest
	OnInit(ctx context.Context, id uint32) error
	Errnos() (resource.Errnos, error)
}

// Config configures an Env.
type Config struct {
	Logger    *zap.Logger
	GL        webgl.Context
	Fetcher   resource.Fetcher
	Scheduler gameloop.Scheduler

	// Observer, if set, receives every frame the loop runs.
	Observer func(gameloop.Frame)
	// OnQuit, if set, is called when the game asks to quit.
	OnQuit func()
}

// Env holds all host state for one game instance. Every method must be called
// on the env's event loop.
type Env struct {
	logger      *zap.Logger
	guestLogger *zap.Logger
	loop        *eventloop.Loop
	sched       gameloop.Scheduler
	observer    func(gameloop.Frame)
	onQuit      func()

	promises *idpromise.Registry
	fetch    *resource.Bridge
	gl       *webgl.Bridge

	guest  GuestModule
	driver *gameloop.Driver
	errnos resource.Errnos
	logBuf strings.Builder
}

func New(cfg Config) *Env {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loop := eventloop.New()
	e := &Env{
		logger:      logger,
		guestLogger: logger.With(zap.String("source", "guest")),
		loop:        loop,
		sched:       cfg.Scheduler,
		observer:    cfg.Observer,
		onQuit:      cfg.OnQuit,
		promises:    idpromise.NewRegistry(),
		fetch:       resource.NewBridge(cfg.Fetcher, loop, logger),
	}
	e.gl = webgl.NewBridge(cfg.GL, e.memory)
	return e
}

// Loop returns the event loop every guest call runs on.
func (e *Env) Loop() *eventloop.Loop { return e.loop }

// GL returns the bridge backing the GL imports.
func (e *Env) GL() *webgl.Bridge { return e.gl }

// Bind attaches the instantiated game. It must be called before the game's
// entry point runs.
func (e *Env) Bind(guest GuestModule) {
	e.guest = guest
	var opts []gameloop.DriverOption
	if e.observer != nil {
		opts = append(opts, gameloop.WithObserver(e.observer))
	}
	e.driver = gameloop.NewDriver(guest, e.sched, e.loop, opts...)
}

func (e *Env) memory() wasmmem.Memory {
	if e.guest == nil {
		return wasmmem.Buffer(nil)
	}
	return e.guest.Memory()
}

// Run loads the error numbers, calls the game's onInit and starts the frame
// loop once the init promise resolves.
func (e *Env) Run(ctx context.Context, maxDelta, tickDelta float64) error {
	if e.guest == nil {
		return errors.New("platform_run before a game was bound")
	}
	errnos, err := e.guest.Errnos()
	if err != nil {
		return fmt.Errorf("loading errnos: %w", err)
	}
	e.errnos = errnos
	e.fetch.Bind(e.guest, errnos)

	var initErr error
	e.promises.Call(func(id idpromise.ID) {
		initErr = e.guest.OnInit(ctx, uint32(id))
	}, idpromise.Callbacks{
		Resolve: func(uint32) {
			if err := e.driver.Start(maxDelta, tickDelta); err != nil {
				e.logger.Error("starting game loop", zap.Error(err))
			}
		},
		Reject: func(errno uint32) {
			e.logger.Error("game init failed", zap.Uint32("errno", errno))
		},
	})
	if initErr != nil {
		return fmt.Errorf("calling onInit: %w", initErr)
	}
	return nil
}

// Quit stops the frame loop after the current frame.
func (e *Env) Quit() {
	if e.driver != nil {
		e.driver.Quit()
	}
	if e.onQuit != nil {
		e.onQuit()
	}
}

// Running reports whether the frame loop will schedule another frame.
func (e *Env) Running() bool {
	return e.driver != nil && e.driver.Running()
}

func (e *Env) LogWrite(ptr, length uint32) error {
	text, err := wasmmem.ReadString(e.memory(), ptr, length)
	if err != nil {
		return err
	}
	e.logBuf.WriteString(text)
	return nil
}

// LogFlush emits the buffered text as one log line.
func (e *Env) LogFlush() {
	e.guestLogger.Info(e.logBuf.String())
	e.logBuf.Reset()
}

func (e *Env) ResolvePromise(id, data uint32) {
	if err := e.promises.Resolve(idpromise.ID(id), data); err != nil {
		e.logger.Warn("resolving promise", zap.Uint32("id", id), zap.Error(err))
	}
}

func (e *Env) RejectPromise(id, errno uint32) {
	if err := e.promises.Reject(idpromise.ID(id), errno); err != nil {
		e.logger.Warn("rejecting promise", zap.Uint32("id", id), zap.Error(err))
	}
}

// Fetch starts loading the resource named by (ptr, length). The result is
// delivered to the game's callback from a later loop task.
func (e *Env) Fetch(ctx context.Context, ptr, length, callback, fetchCtx, allocator uint32) error {
	name, err := wasmmem.ReadString(e.memory(), ptr, length)
	if err != nil {
		return err
	}
	e.logger.Debug("fetch", zap.String("name", name))
	e.fetch.Fetch(ctx, resource.Request{
		Name:      name,
		Callback:  callback,
		Context:   fetchCtx,
		Allocator: allocator,
	})
	return nil
}
