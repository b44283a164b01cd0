// Package hub holds the state shared by every task and routes commands and
// events between their queues.
//
// Status cells are atomics so any goroutine, including radio callbacks, can
// read them without locking. Queue handles sit behind a mutex that is held
// only for the get or set itself, never across a send or a radio call.
// Every send is best-effort: an unset handle or a rejected send is logged and
// the message dropped.
package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"pairlink-go/bus"
	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/queue"
	"pairlink-go/x/timex"
)

type Hub struct {
	conn      atomic.Uint32 // types.ConnectionState
	indicator atomic.Uint32 // types.IndicatorState

	mu           sync.Mutex
	indicatorQ   *queue.Queue[types.IndicatorCommand]
	radioQ       *queue.Queue[types.RadioCommand]
	buttonEvents *queue.Queue[types.ButtonEvent]
	radioEvents  *queue.Queue[types.RadioEvent]

	pub *bus.Connection // optional diagnostics
	log *slog.Logger

	// Drop warnings are rate limited; the rest are only counted.
	warn       *rate.Limiter
	suppressed atomic.Uint32
}

const (
	warnBurst = 8
	warnEvery = time.Second
)

// New returns a hub in the Idle/Off state. pub may be nil.
func New(pub *bus.Connection, log *slog.Logger) *Hub {
	h := &Hub{
		pub:  pub,
		log:  logx.Component(log, "hub"),
		warn: rate.NewLimiter(rate.Every(warnEvery), warnBurst),
	}
	h.conn.Store(uint32(types.ConnIdle))
	h.indicator.Store(uint32(types.IndicatorOff))
	h.publishConn(types.ConnIdle)
	return h
}

// ---- Handle cells ----

func (h *Hub) SetIndicatorHandle(q *queue.Queue[types.IndicatorCommand]) {
	h.mu.Lock()
	h.indicatorQ = q
	h.mu.Unlock()
}

func (h *Hub) SetRadioHandle(q *queue.Queue[types.RadioCommand]) {
	h.mu.Lock()
	h.radioQ = q
	h.mu.Unlock()
}

func (h *Hub) SetButtonEventSink(q *queue.Queue[types.ButtonEvent]) {
	h.mu.Lock()
	h.buttonEvents = q
	h.mu.Unlock()
}

func (h *Hub) SetRadioEventSink(q *queue.Queue[types.RadioEvent]) {
	h.mu.Lock()
	h.radioEvents = q
	h.mu.Unlock()
}

// ---- Routing ----

// SendIndicatorCommand reports whether the command was queued.
func (h *Hub) SendIndicatorCommand(cmd types.IndicatorCommand) bool {
	h.mu.Lock()
	q := h.indicatorQ
	h.mu.Unlock()
	return send(h, "indicator", q, cmd)
}

// SendRadioCommand reports whether the command was queued.
func (h *Hub) SendRadioCommand(cmd types.RadioCommand) bool {
	h.mu.Lock()
	q := h.radioQ
	h.mu.Unlock()
	return send(h, "radio", q, cmd)
}

func (h *Hub) SendButtonEvent(evt types.ButtonEvent) bool {
	h.mu.Lock()
	q := h.buttonEvents
	h.mu.Unlock()
	ok := send(h, "button_events", q, evt)
	h.publish(topicButtonEvent(), evt, false)
	return ok
}

func (h *Hub) SendRadioEvent(evt types.RadioEvent) bool {
	h.mu.Lock()
	q := h.radioEvents
	h.mu.Unlock()
	ok := send(h, "radio_events", q, evt)
	h.publish(topicRadioEvent(), evt, false)
	return ok
}

type stringer interface{ String() string }

func send[T stringer](h *Hub, target string, q *queue.Queue[T], v T) bool {
	if q == nil {
		h.dropped("handle not set, dropping", target, v)
		return false
	}
	if !q.TrySend(v) {
		if q.Closed() {
			h.dropped("receiver gone, dropping", target, v)
		} else {
			h.dropped("queue full, dropping", target, v)
		}
		return false
	}
	return true
}

func (h *Hub) dropped(reason, target string, v stringer) {
	if !h.warn.Allow() {
		h.suppressed.Add(1)
		return
	}
	if n := h.suppressed.Swap(0); n > 0 {
		h.log.Warn(reason, "target", target, "msg", v.String(), "suppressed", n)
		return
	}
	h.log.Warn(reason, "target", target, "msg", v.String())
}

// SuppressedWarnings counts drop warnings withheld since the last one logged.
func (h *Hub) SuppressedWarnings() uint32 { return h.suppressed.Load() }

// ---- Convenience senders ----

// StartPairing opens a pairing window of timeoutMs.
func (h *Hub) StartPairing(timeoutMs uint32) bool {
	return h.SendRadioCommand(types.StartAdvertise(timeoutMs))
}

func (h *Hub) StopPairing() bool { return h.SendRadioCommand(types.StopAdvertise) }

func (h *Hub) LEDBlink(intervalMs uint32) bool {
	return h.SendIndicatorCommand(types.Blink(intervalMs))
}
func (h *Hub) LEDOn() bool  { return h.SendIndicatorCommand(types.LEDOn) }
func (h *Hub) LEDOff() bool { return h.SendIndicatorCommand(types.LEDOff) }

// Shutdown asks the radio and indicator tasks to terminate. The radio stops
// advertising and the indicator is left off.
func (h *Hub) Shutdown() {
	h.log.Info("shutdown requested")
	h.SendRadioCommand(types.RadioStop)
	h.SendIndicatorCommand(types.LEDShutdown)
}

// ---- Shared status ----

func (h *Hub) ConnState() types.ConnectionState {
	return types.ConnectionStateFrom(h.conn.Load())
}

// SetConnState stores s and returns the previous state.
func (h *Hub) SetConnState(s types.ConnectionState) types.ConnectionState {
	prev := types.ConnectionStateFrom(h.conn.Swap(uint32(s)))
	if prev != s {
		h.log.Info("connection state", "from", prev.String(), "to", s.String())
		h.publishConn(s)
	}
	return prev
}

// RequestPairing moves Idle, Disconnected or Error to Pairing. It never
// overrides Connected or an in-flight Pairing and reports whether it moved.
func (h *Hub) RequestPairing() bool {
	for {
		cur := h.conn.Load()
		switch types.ConnectionStateFrom(cur) {
		case types.ConnConnected, types.ConnPairing:
			return false
		}
		if h.conn.CompareAndSwap(cur, uint32(types.ConnPairing)) {
			h.log.Info("connection state", "from", types.ConnectionStateFrom(cur).String(), "to", "pairing", "by", "button")
			h.publishConn(types.ConnPairing)
			return true
		}
	}
}

func (h *Hub) IndicatorState() types.IndicatorState {
	return types.IndicatorStateFrom(h.indicator.Load())
}

// SetIndicatorState records the indicator mode implied by cmd.
func (h *Hub) SetIndicatorState(s types.IndicatorState, cmd types.IndicatorCommand) {
	if types.IndicatorState(h.indicator.Swap(uint32(s))) == s {
		return
	}
	h.publish(topicIndicatorState(), types.IndicatorStatus{State: s, Command: cmd, TSms: timex.NowMs()}, true)
}

func (h *Hub) Snapshot() types.Snapshot {
	return types.Snapshot{
		Conn:      h.ConnState(),
		Indicator: h.IndicatorState(),
		TSms:      timex.NowMs(),
	}
}

// ---- Diagnostics ----

func (h *Hub) publishConn(s types.ConnectionState) {
	h.publish(topicConnState(), types.ConnectionStatus{State: s, TSms: timex.NowMs()}, true)
}

func (h *Hub) publish(t bus.Topic, payload any, retained bool) {
	if h.pub == nil {
		return
	}
	h.pub.Publish(h.pub.NewMessage(t, payload, retained))
}
