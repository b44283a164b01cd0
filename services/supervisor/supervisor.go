// Package supervisor builds the tasks, wires them through the hub and owns
// their lifetimes.
package supervisor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"pairlink-go/bus"
	"pairlink-go/errcode"
	"pairlink-go/services/button"
	"pairlink-go/services/config"
	"pairlink-go/services/heartbeat"
	"pairlink-go/services/hub"
	"pairlink-go/services/indicator"
	"pairlink-go/services/platform"
	"pairlink-go/services/radio"
	"pairlink-go/services/router"
	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/timex"
)

type Deps struct {
	Config types.Config
	Lines  platform.Lines
	Radio  radio.Adapter
	Bus    *bus.Bus // optional diagnostics
	Log    *slog.Logger
}

type Supervisor struct {
	cfg     types.Config
	conn    *bus.Connection
	baseLog *slog.Logger
	log     *slog.Logger

	hub       *hub.Hub
	router    *router.Router
	indicator *indicator.Driver
	radio     *radio.Coordinator
	button    *button.Monitor
	heartbeat *heartbeat.Service

	mu       sync.Mutex
	started  bool
	cancel   context.CancelFunc
	commands sync.WaitGroup // tasks that stop on a Shutdown command
	rest     sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// New builds every task and registers its queues on the hub. Nothing runs
// until Start.
func New(d Deps) (*Supervisor, error) {
	if d.Lines.LED == nil || d.Lines.Button == nil {
		return nil, errcode.New(errcode.Unexpected, "supervisor.new", "peripheral lines missing")
	}
	if d.Radio == nil {
		return nil, errcode.New(errcode.Unexpected, "supervisor.new", "radio adapter missing")
	}
	s := &Supervisor{
		cfg:     d.Config,
		baseLog: d.Log,
		log:     logx.Component(d.Log, "supervisor"),
		done:    make(chan struct{}),
	}
	if d.Bus != nil {
		s.conn = d.Bus.NewConnection("core")
	}
	t := d.Config.Timing

	s.hub = hub.New(s.conn, d.Log)
	s.router = router.New(s.hub, router.OptionsFrom(d.Config), d.Log)
	s.indicator = indicator.New(d.Lines.LED, t.PollMs, d.Log)
	s.radio = radio.New(d.Radio, s.hub, d.Config.Device, t.RadioPollMs, d.Log)
	s.button = button.NewMonitor(d.Lines.Button, s.hub, t.PollMs, t.LongPressMs, d.Log)
	s.heartbeat = heartbeat.New(s.hub, t.HeartbeatMs, d.Log)

	s.hub.SetButtonEventSink(s.router.ButtonEvents())
	s.hub.SetRadioEventSink(s.router.RadioEvents())
	s.hub.SetIndicatorHandle(s.indicator.Queue())
	s.hub.SetRadioHandle(s.radio.Queue())
	return s, nil
}

func (s *Supervisor) Hub() *hub.Hub { return s.hub }

// Radio exposes the coordinator for status queries.
func (s *Supervisor) Radio() *radio.Coordinator { return s.radio }

// Start launches the tasks, consumers before producers. Cancelling ctx
// triggers the same orderly shutdown as Shutdown.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errcode.New(errcode.InvalidState, "supervisor.start", "already started")
	}
	s.started = true

	run, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	if s.conn != nil {
		config.NewConfigService(s.cfg, s.baseLog).Start(run, s.conn)
	}

	s.spawn(&s.rest, "router", func() { s.router.Run(run) })
	s.spawn(&s.commands, "indicator", func() { s.indicator.Run(run) })
	s.spawn(&s.commands, "radio", func() { s.radio.Run(run) })
	s.spawn(&s.rest, "button", func() { s.button.Run(run) })
	s.heartbeat.Start(run, s.conn)

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Shutdown()
		case <-s.done:
		}
	}()
	s.log.Info("tasks started")
	return nil
}

func (s *Supervisor) spawn(wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		fn()
		s.log.Debug("task exited", "task", name)
	}()
}

// Shutdown commands the radio and indicator to stop, waits up to the grace
// period for them, then stops everything else. It returns an Unexpected
// error if the grace period ran out.
func (s *Supervisor) Shutdown() error {
	var err error
	s.stopOnce.Do(func() {
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if !started {
			close(s.done)
			return
		}

		s.hub.Shutdown()
		if !waitTimeout(&s.commands, timex.Ms(s.cfg.Timing.ShutdownGraceMs)) {
			err = errcode.New(errcode.Unexpected, "supervisor.shutdown", "grace period elapsed")
			s.log.Warn("forcing shutdown", "grace_ms", s.cfg.Timing.ShutdownGraceMs)
		}
		s.cancel()
		s.commands.Wait()
		s.rest.Wait()
		close(s.done)
		s.log.Info("shutdown complete")
	})
	return err
}

// Done is closed once shutdown has completed.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	ch := make(chan struct{})
	go func() {
		wg.Wait()
		close(ch)
	}()
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ch:
		return true
	case <-t.C:
		return false
	}
}
