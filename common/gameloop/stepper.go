// Package gameloop drives a fixed-timestep simulation from display frames.
package gameloop

import (
	"context"
	"time"
)

// Game receives the simulation and render calls.
type Game interface {
	// Update advances the simulation by one tick. tickTime is the cumulative
	// simulated time before the tick, in seconds.
	Update(ctx context.Context, tickTime, tickDelta float64) error
	// Render draws a frame. alpha in [0,1) is how far the frame falls between
	// the last simulated tick and the next one.
	Render(ctx context.Context, alpha float64) error
}

// Frame describes one processed display frame.
type Frame struct {
	// Delta is the elapsed wall time in seconds after clamping.
	Delta float64
	// Clamped is set when the raw delta exceeded MaxDelta.
	Clamped  bool
	Updates  int
	Alpha    float64
	TickTime float64
}

// Stepper holds the accumulator state. MaxDelta and TickDelta are in seconds.
type Stepper struct {
	MaxDelta  float64
	TickDelta float64

	prev        time.Duration
	accumulator float64
	tickTime    float64
}

// Reset starts timing from now.
func (s *Stepper) Reset(now time.Duration) {
	s.prev = now
	s.accumulator = 0
	s.tickTime = 0
}

// Step runs the updates owed since the previous step and then renders.
func (s *Stepper) Step(ctx context.Context, g Game, now time.Duration) (Frame, error) {
	var f Frame
	delta := (now - s.prev).Seconds()
	switch {
	case delta < 0:
		// rAF timestamps can predate the clock reading taken at Reset.
		delta = 0
	case delta > s.MaxDelta:
		// Bound the catch-up work when a frame arrives very late.
		delta = s.MaxDelta
		f.Clamped = true
	}
	s.prev = max(s.prev, now)
	f.Delta = delta

	s.accumulator += delta
	for s.accumulator >= s.TickDelta {
		if err := g.Update(ctx, s.tickTime, s.TickDelta); err != nil {
			return f, err
		}
		s.accumulator -= s.TickDelta
		s.tickTime += s.TickDelta
		f.Updates++
	}

	f.Alpha = s.accumulator / s.TickDelta
	f.TickTime = s.tickTime
	if err := g.Render(ctx, f.Alpha); err != nil {
		return f, err
	}
	return f, nil
}
