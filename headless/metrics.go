package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hulkholden/webglhost/common/gameloop"
)

type frameMetrics struct {
	frames        prometheus.Counter
	updates       prometheus.Counter
	clampedFrames prometheus.Counter
	frameDelta    prometheus.Histogram
	alpha         prometheus.Gauge
}

func newFrameMetrics(reg prometheus.Registerer) *frameMetrics {
	m := &frameMetrics{
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_frames_total",
			Help: "Frames rendered by the game",
		}),
		updates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_updates_total",
			Help: "Fixed timestep updates run by the game",
		}),
		clampedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "game_clamped_frames_total",
			Help: "Frames whose delta was clamped to the maximum",
		}),
		frameDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "game_frame_delta_seconds",
			Help:    "Time between frames after clamping",
			Buckets: []float64{0.004, 0.008, 0.016, 0.033, 0.066, 0.1, 0.25, 0.5},
		}),
		alpha: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "game_render_alpha",
			Help: "Interpolation factor passed to the last render",
		}),
	}
	reg.MustRegister(m.frames, m.updates, m.clampedFrames, m.frameDelta, m.alpha)
	return m
}

func (m *frameMetrics) observe(f gameloop.Frame) {
	m.frames.Inc()
	m.updates.Add(float64(f.Updates))
	if f.Clamped {
		m.clampedFrames.Inc()
	}
	m.frameDelta.Observe(f.Delta)
	m.alpha.Set(f.Alpha)
}
