// Package radio owns the radio adapter: it serves radio commands, bounds the
// pairing window and turns link callbacks into radio events.
package radio

import (
	"context"
	"log/slog"
	"sync/atomic"
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
	MinPollMs     = 20
	MaxPollMs     = 50
	queueLen      = 8
	linkQueueLen  = 8
)

type linkEvent struct {
	connected bool
	wasAdv    bool   // connect only: advertising was live when the peer arrived
	gen       uint32 // start generation seen by the callback
}

type Coordinator struct {
	adapter Adapter
	sink    EventSink
	cfg     types.DeviceConfig
	pollMs  uint32
	log     *slog.Logger

	q     *queue.Queue[types.RadioCommand]
	links chan linkEvent

	// Flags are read by GetStatus and written from callbacks.
	advertising atomic.Bool
	failed      atomic.Bool
	linkDrops   atomic.Uint32
	// gen counts successful adapter starts.
	gen atomic.Uint32

	inited   bool
	window   timex.Deadline
	stopped  bool
	observed bool
}

func New(a Adapter, sink EventSink, cfg types.DeviceConfig, pollMs uint32, log *slog.Logger) *Coordinator {
	if pollMs == 0 {
		pollMs = DefaultPollMs
	}
	pollMs = mathx.Clamp(pollMs, MinPollMs, MaxPollMs)
	return &Coordinator{
		adapter: a,
		sink:    sink,
		cfg:     cfg,
		pollMs:  pollMs,
		log:     logx.Component(log, "radio"),
		q:       queue.New[types.RadioCommand](queueLen),
		links:   make(chan linkEvent, linkQueueLen),
	}
}

// Queue is the handle registered on the hub.
func (c *Coordinator) Queue() *queue.Queue[types.RadioCommand] { return c.q }

// Status reports the coordinator's view of the radio.
func (c *Coordinator) Status() types.RadioStatus {
	return types.RadioStatus{
		Connected:   c.adapter.ConnectedCount() > 0,
		Advertising: c.advertising.Load(),
		Error:       c.failed.Load(),
	}
}

// LinkDrops counts callbacks lost because the link queue was full.
func (c *Coordinator) LinkDrops() uint32 { return c.linkDrops.Load() }

// PairingDeadline is zero when no window is open.
func (c *Coordinator) PairingDeadline() time.Time { return c.window.At() }

// ---- ConnectionObserver ----

// OnConnect runs on the radio stack. Advertising stops on connect, so the
// flag is cleared here and the adapter is told on the next tick.
func (c *Coordinator) OnConnect() {
	gen := c.gen.Load()
	wasAdv := c.advertising.Swap(false)
	c.pushLink(linkEvent{connected: true, wasAdv: wasAdv, gen: gen})
}

func (c *Coordinator) OnDisconnect() {
	c.pushLink(linkEvent{connected: false})
}

func (c *Coordinator) pushLink(e linkEvent) {
	select {
	case c.links <- e:
	default:
		c.linkDrops.Add(1)
	}
}

// ---- Loop ----

// Tick serves link callbacks, then pending commands, then callbacks raised
// by those commands, then the pairing window. It returns false once the
// coordinator has shut down.
func (c *Coordinator) Tick(now time.Time) bool {
	if c.stopped {
		return false
	}
	c.drainLinks()
	c.q.Drain(func(cmd types.RadioCommand) bool {
		c.handle(now, cmd)
		return !c.stopped
	})
	if c.stopped {
		return false
	}
	c.drainLinks()
	if c.window.Expired(now) {
		c.log.Info("pairing window elapsed")
		c.window.Disarm()
		if c.advertising.Load() {
			c.stopAdvertising()
		}
	}
	return true
}

// handle serves one command. StartAdvertise while already advertising emits
// nothing but re-arms the window from now with the new timeout.
func (c *Coordinator) handle(now time.Time, cmd types.RadioCommand) {
	c.log.Debug("command", "cmd", cmd.String())
	switch cmd.Kind {
	case types.RadioStartAdvertise:
		c.startAdvertising(now, cmd.TimeoutMs)
	case types.RadioStopAdvertise:
		c.window.Disarm()
		if c.advertising.Load() {
			c.stopAdvertising()
		}
	case types.RadioDisconnectAll:
		if !c.inited {
			return
		}
		if err := c.adapter.DisconnectAll(); err != nil {
			c.fail("radio.disconnect_all", err)
		}
	case types.RadioGetStatus:
		c.sink.SendRadioEvent(types.StatusResponse(c.Status()))
	case types.RadioShutdown:
		c.stop("shutdown command")
	}
}

func (c *Coordinator) ensureInit() error {
	if c.inited {
		return nil
	}
	if !c.observed {
		c.adapter.Observe(c)
		c.observed = true
	}
	if err := c.adapter.Init(c.cfg); err != nil {
		return err
	}
	c.inited = true
	c.log.Info("radio initialised", "name", c.cfg.Name, "service", c.cfg.ServiceUUID)
	return nil
}

func (c *Coordinator) startAdvertising(now time.Time, timeoutMs uint32) {
	if c.advertising.Load() {
		// Already live: only the window moves.
		c.armWindow(now, timeoutMs)
		c.log.Debug("already advertising", "window_remaining_ms", c.window.Remaining(now).Milliseconds())
		return
	}
	if err := c.ensureInit(); err != nil {
		c.fail("radio.init", err)
		return
	}
	if err := c.adapter.StartAdvertising(); err != nil {
		c.fail("radio.start", err)
		return
	}
	c.gen.Add(1)
	c.advertising.Store(true)
	c.failed.Store(false)
	c.armWindow(now, timeoutMs)
	c.log.Info("advertising started", "timeout_ms", timeoutMs)
	c.settle(types.ConnPairing)
	c.sink.SendRadioEvent(types.AdvertisingStarted)
}

func (c *Coordinator) armWindow(now time.Time, timeoutMs uint32) {
	if timeoutMs == 0 {
		c.window.Disarm()
		return
	}
	c.window.Arm(now, timex.Ms(timeoutMs))
}

func (c *Coordinator) stopAdvertising() {
	c.advertising.Store(false)
	c.window.Disarm()
	if err := c.adapter.StopAdvertising(); err != nil {
		c.fail("radio.stop", err)
		return
	}
	c.log.Info("advertising stopped")
	c.settle(types.ConnIdle)
	c.sink.SendRadioEvent(types.AdvertisingStopped)
}

// settle publishes st unless a peer is still linked, in which case the
// state stays Connected.
func (c *Coordinator) settle(st types.ConnectionState) {
	if c.adapter.ConnectedCount() > 0 {
		st = types.ConnConnected
	}
	c.sink.SetConnState(st)
}

func (c *Coordinator) fail(op string, err error) {
	err = errcode.Wrap(errcode.AdapterError, op, err)
	c.log.Error("adapter call failed", "err", err)
	c.failed.Store(true)
	c.sink.SetConnState(types.ConnError)
	c.sink.SendRadioEvent(types.RadioFailed)
}

func (c *Coordinator) drainLinks() {
	for {
		select {
		case e := <-c.links:
			c.onLink(e)
		default:
			return
		}
	}
}

func (c *Coordinator) onLink(e linkEvent) {
	if !e.connected {
		remaining := c.adapter.ConnectedCount()
		c.log.Info("peer disconnected", "remaining", remaining)
		if remaining > 0 {
			c.sink.SetConnState(types.ConnConnected)
		} else {
			c.sink.SetConnState(types.ConnDisconnected)
		}
		c.sink.SendRadioEvent(types.Disconnected)
		return
	}
	c.log.Info("peer connected", "was_advertising", e.wasAdv)
	c.window.Disarm()
	// A start served after the callback owns the adapter now.
	if e.wasAdv && e.gen == c.gen.Load() && !c.advertising.Load() {
		if err := c.adapter.StopAdvertising(); err != nil {
			c.log.Warn("stop advertising on connect failed", "err", errcode.Wrap(errcode.AdapterError, "radio.stop", err))
		}
	}
	c.sink.SetConnState(types.ConnConnected)
	c.sink.SendRadioEvent(types.Connected)
}

// stop withdraws the radio and refuses further commands.
func (c *Coordinator) stop(reason string) {
	if c.stopped {
		return
	}
	c.drainLinks()
	if c.advertising.Load() {
		c.stopAdvertising()
	} else if c.inited {
		// Some stacks keep advertising after a connect.
		if err := c.adapter.StopAdvertising(); err != nil {
			c.log.Warn("stop advertising on shutdown failed", "err", errcode.Wrap(errcode.AdapterError, "radio.stop", err))
		}
	}
	c.window.Disarm()
	c.stopped = true
	c.q.Close()
	c.log.Info("coordinator stopped", "reason", reason, "link_drops", c.linkDrops.Load())
}

// Run ticks every poll interval until shutdown or ctx cancellation.
func (c *Coordinator) Run(ctx context.Context) {
	c.log.Info("coordinator started", "poll_ms", c.pollMs)
	tick := time.NewTicker(timex.Ms(c.pollMs))
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			c.stop("context done")
			return
		case now := <-tick.C:
			if !c.Tick(now) {
				return
			}
		}
	}
}
