// Package router maps button and radio events to radio and indicator
// commands.
//
// With the default status strategy, every radio lifecycle event triggers a
// status query and only the reply decides the indicator, so the light always
// reflects the radio's ground truth regardless of how events interleave.
package router

import (
	"context"
	"log/slog"
	"time"

	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/queue"
	"pairlink-go/x/timex"
)

const queueLen = 8

// Hub is the part of the state hub the router drives.
type Hub interface {
	SendRadioCommand(types.RadioCommand) bool
	SendIndicatorCommand(types.IndicatorCommand) bool
	SetIndicatorState(types.IndicatorState, types.IndicatorCommand)
}

type Options struct {
	Strategy        string
	PollMs          uint32
	PairingWindowMs uint32
	BlinkFastMs     uint32
	BlinkSlowMs     uint32
	BlinkErrorMs    uint32
}

// DefaultOptions match the stock firmware.
func DefaultOptions() Options {
	return Options{
		Strategy:        types.StrategyStatus,
		PollMs:          20,
		PairingWindowMs: 60000,
		BlinkFastMs:     500,
		BlinkSlowMs:     1000,
		BlinkErrorMs:    100,
	}
}

// OptionsFrom lifts the router's settings out of the device config.
func OptionsFrom(cfg types.Config) Options {
	return Options{
		Strategy:        cfg.Router.Strategy,
		PollMs:          cfg.Timing.RouterPollMs,
		PairingWindowMs: cfg.Timing.PairingWindowMs,
		BlinkFastMs:     cfg.Timing.BlinkFastMs,
		BlinkSlowMs:     cfg.Timing.BlinkSlowMs,
		BlinkErrorMs:    cfg.Timing.BlinkErrorMs,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Strategy == "" {
		o.Strategy = d.Strategy
	}
	if o.PollMs == 0 {
		o.PollMs = d.PollMs
	}
	if o.PairingWindowMs == 0 {
		o.PairingWindowMs = d.PairingWindowMs
	}
	if o.BlinkFastMs == 0 {
		o.BlinkFastMs = d.BlinkFastMs
	}
	if o.BlinkSlowMs == 0 {
		o.BlinkSlowMs = d.BlinkSlowMs
	}
	if o.BlinkErrorMs == 0 {
		o.BlinkErrorMs = d.BlinkErrorMs
	}
	return o
}

type Router struct {
	hub      Hub
	opts     Options
	strategy strategy
	log      *slog.Logger

	buttons *queue.Queue[types.ButtonEvent]
	radio   *queue.Queue[types.RadioEvent]

	last    types.IndicatorCommand
	hasLast bool
}

func New(hub Hub, opts Options, log *slog.Logger) *Router {
	opts = opts.withDefaults()
	r := &Router{
		hub:     hub,
		opts:    opts,
		log:     logx.Component(log, "router"),
		buttons: queue.New[types.ButtonEvent](queueLen),
		radio:   queue.New[types.RadioEvent](queueLen),
	}
	r.strategy = strategyFor(opts.Strategy)
	return r
}

// ButtonEvents and RadioEvents are the sinks registered on the hub.
func (r *Router) ButtonEvents() *queue.Queue[types.ButtonEvent] { return r.buttons }
func (r *Router) RadioEvents() *queue.Queue[types.RadioEvent]   { return r.radio }

// LastCommand reports the most recent indicator command delivered.
func (r *Router) LastCommand() (types.IndicatorCommand, bool) { return r.last, r.hasLast }

// Step drains both event queues once.
func (r *Router) Step() {
	r.buttons.Drain(func(e types.ButtonEvent) bool {
		r.onButton(e)
		return true
	})
	r.radio.Drain(func(e types.RadioEvent) bool {
		r.onRadio(e)
		return true
	})
}

func (r *Router) onButton(e types.ButtonEvent) {
	switch e {
	case types.LongPress:
		r.log.Info("long press, opening pairing window", "window_ms", r.opts.PairingWindowMs)
		r.hub.SendRadioCommand(types.StartAdvertise(r.opts.PairingWindowMs))
	case types.ShortPress:
		r.log.Debug("short press ignored")
	}
}

func (r *Router) onRadio(e types.RadioEvent) {
	r.log.Debug("radio event", "event", e.String())
	if e.Kind == types.RadioStatusResponse {
		r.indicate(r.fromStatus(e.Status))
		return
	}
	if cmd, ok := r.strategy.onLifecycle(r, e); ok {
		r.indicate(cmd)
	}
}

// fromStatus applies the fixed precedence error > connected > advertising.
func (r *Router) fromStatus(s types.RadioStatus) types.IndicatorCommand {
	switch {
	case s.Error:
		return types.Blink(r.opts.BlinkErrorMs)
	case s.Connected:
		return types.LEDOn
	case s.Advertising:
		return types.Blink(r.opts.BlinkFastMs)
	default:
		return types.LEDOff
	}
}

// indicate sends cmd unless it repeats the last delivered command.
func (r *Router) indicate(cmd types.IndicatorCommand) {
	if r.hasLast && r.last == cmd {
		return
	}
	if !r.hub.SendIndicatorCommand(cmd) {
		return
	}
	r.last, r.hasLast = cmd, true
	r.hub.SetIndicatorState(r.stateFor(cmd), cmd)
}

func (r *Router) stateFor(cmd types.IndicatorCommand) types.IndicatorState {
	switch cmd.Kind {
	case types.IndicatorCmdOn:
		return types.IndicatorOn
	case types.IndicatorCmdBlink:
		switch {
		case cmd.IntervalMs <= r.opts.BlinkErrorMs:
			return types.IndicatorError
		case cmd.IntervalMs <= r.opts.BlinkFastMs:
			return types.IndicatorBlinkingFast
		default:
			return types.IndicatorBlinkingSlow
		}
	default:
		return types.IndicatorOff
	}
}

// Run steps every poll interval until ctx is cancelled.
func (r *Router) Run(ctx context.Context) {
	r.log.Info("router started", "strategy", r.opts.Strategy, "poll_ms", r.opts.PollMs)
	tick := time.NewTicker(timex.Ms(r.opts.PollMs))
	defer tick.Stop()
	defer r.buttons.Close()
	defer r.radio.Close()
	for {
		select {
		case <-ctx.Done():
			r.log.Info("router stopped")
			return
		case <-tick.C:
			r.Step()
		}
	}
}
