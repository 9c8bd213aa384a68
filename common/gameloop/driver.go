package gameloop

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hulkholden/webglhost/common/eventloop"
)

// ErrInvalidTiming is returned by Start for non-positive tick durations.
var ErrInvalidTiming = errors.New("invalid loop timing")

// Scheduler delivers display frames, like the browser's requestAnimationFrame.
// Each RequestFrame call results in at most one callback.
type Scheduler interface {
	Now() time.Duration
	RequestFrame(fn func(now time.Duration))
}

// Driver runs a Stepper once per scheduled frame.
type Driver struct {
	game    Game
	sched   Scheduler
	poster  eventloop.Poster
	stepper Stepper

	running  atomic.Bool
	observer func(Frame)
}

type DriverOption func(d *Driver)

// WithObserver registers fn to receive every processed frame.
func WithObserver(fn func(Frame)) DriverOption {
	return func(d *Driver) {
		d.observer = fn
	}
}

func NewDriver(game Game, sched Scheduler, poster eventloop.Poster, opts ...DriverOption) *Driver {
	d := &Driver{
		game:   game,
		sched:  sched,
		poster: poster,
	}
	d.running.Store(true)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start resets the timing state and schedules the first frame.
func (d *Driver) Start(maxDelta, tickDelta float64) error {
	if tickDelta <= 0 || maxDelta < 0 {
		return fmt.Errorf("maxDelta=%v tickDelta=%v: %w", maxDelta, tickDelta, ErrInvalidTiming)
	}
	d.stepper = Stepper{MaxDelta: maxDelta, TickDelta: tickDelta}
	d.stepper.Reset(d.sched.Now())
	d.sched.RequestFrame(d.onFrame)
	return nil
}

// Quit stops the loop. A frame already scheduled still runs, including its
// render; no frame is scheduled after it.
func (d *Driver) Quit() {
	d.running.Store(false)
}

func (d *Driver) Running() bool {
	return d.running.Load()
}

func (d *Driver) onFrame(now time.Duration) {
	d.poster.Post(func(ctx context.Context) error {
		f, err := d.stepper.Step(ctx, d.game, now)
		if err != nil {
			return fmt.Errorf("frame at %v: %w", now, err)
		}
		if d.observer != nil {
			d.observer(f)
		}
		if d.running.Load() {
			d.sched.RequestFrame(d.onFrame)
		}
		return nil
	})
}
