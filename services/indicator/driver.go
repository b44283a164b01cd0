// Package indicator drives the status light from indicator commands.
package indicator

import (
	"context"
	"log/slog"
	"time"

	"pairlink-go/errcode"
	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/mathx"
	"pairlink-go/x/queue"
	"pairlink-go/x/timex"
)

const (
	DefaultPollMs = 20
	MinBlinkMs    = 20
	queueLen      = 8
)

type Output interface {
	Set(on bool) error
}

type mode uint8

const (
	modeOff mode = iota
	modeOn
	modeBlink
)

type Driver struct {
	out    Output
	q      *queue.Queue[types.IndicatorCommand]
	pollMs uint32
	log    *slog.Logger

	mode       mode
	intervalMs uint32
	elapsedMs  uint32
	phase      bool // current blink level
	fresh      bool // blink started this tick
	lit        bool // last level written
	written    bool
	stopped    bool
}

func New(out Output, pollMs uint32, log *slog.Logger) *Driver {
	if pollMs == 0 {
		pollMs = DefaultPollMs
	}
	return &Driver{
		out:    out,
		q:      queue.New[types.IndicatorCommand](queueLen),
		pollMs: pollMs,
		log:    logx.Component(log, "indicator"),
	}
}

// Queue is the handle registered on the hub.
func (d *Driver) Queue() *queue.Queue[types.IndicatorCommand] { return d.q }

// Lit reports the last level written to the output.
func (d *Driver) Lit() bool { return d.lit }

// Step drains every pending command, then advances the output once.
// It returns false once the driver has shut down.
func (d *Driver) Step() bool {
	if d.stopped {
		return false
	}
	d.q.Drain(func(c types.IndicatorCommand) bool {
		d.apply(c)
		return !d.stopped
	})
	if d.stopped {
		return false
	}
	d.advance()
	return true
}

func (d *Driver) apply(c types.IndicatorCommand) {
	d.log.Debug("command", "cmd", c.String())
	switch c.Kind {
	case types.IndicatorCmdOn:
		d.mode = modeOn
		d.write(true)
	case types.IndicatorCmdOff:
		d.mode = modeOff
		d.write(false)
	case types.IndicatorCmdBlink:
		iv := mathx.AtLeast(c.IntervalMs, MinBlinkMs)
		if d.mode == modeBlink && d.intervalMs == iv {
			return
		}
		d.mode = modeBlink
		d.intervalMs = iv
		d.elapsedMs = 0
		d.phase = true
		d.fresh = true
		d.write(true)
	case types.IndicatorCmdShutdown:
		d.stop("shutdown command")
	}
}

func (d *Driver) advance() {
	if d.mode != modeBlink {
		return
	}
	if d.fresh {
		d.fresh = false
		return
	}
	d.elapsedMs = mathx.AddSat(d.elapsedMs, d.pollMs, d.intervalMs)
	if d.elapsedMs >= d.intervalMs {
		d.elapsedMs = 0
		d.phase = !d.phase
		d.write(d.phase)
	}
}

func (d *Driver) write(on bool) {
	if d.written && d.lit == on {
		return
	}
	if err := d.out.Set(on); err != nil {
		d.log.Error("output write failed", "err", errcode.Wrap(errcode.InvalidState, "indicator.set", err))
		return
	}
	d.lit = on
	d.written = true
}

// stop leaves the output off and refuses further commands.
func (d *Driver) stop(reason string) {
	if d.stopped {
		return
	}
	d.mode = modeOff
	d.written = false
	d.write(false)
	d.stopped = true
	d.q.Close()
	d.log.Info("driver stopped", "reason", reason)
}

// Run steps every poll interval until shutdown or ctx cancellation.
func (d *Driver) Run(ctx context.Context) {
	d.log.Info("driver started", "poll_ms", d.pollMs)
	tick := time.NewTicker(timex.Ms(d.pollMs))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			d.stop("context done")
			return
		case <-tick.C:
			if !d.Step() {
				return
			}
		}
	}
}
