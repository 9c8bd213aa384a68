//go:build js && wasm

package browser

import (
	"syscall/js"
	"time"
)

// FrameScheduler delivers frames with requestAnimationFrame.
type FrameScheduler struct {
	window HTMLWindow
}

func NewFrameScheduler(w HTMLWindow) *FrameScheduler {
	return &FrameScheduler{window: w}
}

func (s *FrameScheduler) Now() time.Duration {
	return durationFromMillis(s.window.PerformanceNow())
}

func (s *FrameScheduler) RequestFrame(fn func(now time.Duration)) {
	var frame js.Func
	frame = js.FuncOf(func(this js.Value, args []js.Value) any {
		frame.Release()
		fn(durationFromMillis(args[0].Float()))
		return nil
	})
	s.window.RequestAnimationFrame(frame)
}
