// Package button samples the pairing button and reports press events.
package button

import (
	"context"
	"log/slog"
	"time"

	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/timex"
)

type Input interface {
	Pressed() bool
}

// Hub is the part of the state hub the monitor talks to.
type Hub interface {
	RequestPairing() bool
	SendButtonEvent(types.ButtonEvent) bool
}

type Monitor struct {
	in     Input
	hub    Hub
	det    *Detector
	pollMs uint32
	log    *slog.Logger
}

func NewMonitor(in Input, hub Hub, pollMs, longPressMs uint32, log *slog.Logger) *Monitor {
	d := NewDetector(pollMs, longPressMs)
	return &Monitor{
		in:     in,
		hub:    hub,
		det:    d,
		pollMs: d.pollMs,
		log:    logx.Component(log, "button"),
	}
}

// Step samples the input once and forwards any resulting event.
func (m *Monitor) Step() {
	evt, ok := m.det.Step(m.in.Pressed())
	if !ok {
		return
	}
	m.log.Info("press", "event", evt.String())
	if evt == types.LongPress {
		m.hub.RequestPairing()
	}
	m.hub.SendButtonEvent(evt)
}

// Run polls until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("monitor started", "poll_ms", m.pollMs, "long_press_ms", m.det.longPressMs)
	tick := time.NewTicker(timex.Ms(m.pollMs))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			m.log.Info("monitor stopped")
			return
		case <-tick.C:
			m.Step()
		}
	}
}
