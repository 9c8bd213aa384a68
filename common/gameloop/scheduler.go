package gameloop

import (
	"time"

	"github.com/mroth/weightedrand/v2"
)

// TickerScheduler delivers frames at a fixed period using timers. It is the
// native stand-in for requestAnimationFrame.
type TickerScheduler struct {
	Period time.Duration
	start  time.Time
}

func NewTickerScheduler(period time.Duration) *TickerScheduler {
	return &TickerScheduler{Period: period, start: time.Now()}
}

func (s *TickerScheduler) Now() time.Duration {
	return time.Since(s.start)
}

func (s *TickerScheduler) RequestFrame(fn func(now time.Duration)) {
	time.AfterFunc(s.Period, func() {
		fn(s.Now())
	})
}

// JitterScheduler delivers frames with randomly varying delays so the
// catch-up and clamping paths get exercised without a real display.
type JitterScheduler struct {
	start   time.Time
	chooser *weightedrand.Chooser[time.Duration, int]
}

// NewJitterScheduler returns a scheduler that is usually on time, sometimes
// drops a frame and occasionally stalls for stall.
func NewJitterScheduler(period, stall time.Duration) (*JitterScheduler, error) {
	chooser, err := weightedrand.NewChooser(
		weightedrand.NewChoice(period, 90),
		weightedrand.NewChoice(2*period, 8),
		weightedrand.NewChoice(stall, 2),
	)
	if err != nil {
		return nil, err
	}
	return &JitterScheduler{start: time.Now(), chooser: chooser}, nil
}

func (s *JitterScheduler) Now() time.Duration {
	return time.Since(s.start)
}

func (s *JitterScheduler) RequestFrame(fn func(now time.Duration)) {
	time.AfterFunc(s.chooser.Pick(), func() {
		fn(s.Now())
	})
}
