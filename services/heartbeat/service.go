// Package heartbeat periodically logs the hub's status snapshot.
package heartbeat

import (
	"context"
	"log/slog"
	"time"

	"pairlink-go/bus"
	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/timex"
)

var topicConfigTiming = bus.T("config", "timing")

type Snapshotter interface {
	Snapshot() types.Snapshot
}

type Service struct {
	src      Snapshotter
	interval time.Duration
	log      *slog.Logger
	beats    uint32
}

// New returns a heartbeat logging every intervalMs; 0 keeps it quiet until a
// config/timing message sets an interval.
func New(src Snapshotter, intervalMs uint32, log *slog.Logger) *Service {
	return &Service{src: src, interval: timex.Ms(intervalMs), log: logx.Component(log, "heartbeat")}
}

// Beat logs one snapshot.
func (s *Service) Beat() {
	s.beats++
	snap := s.src.Snapshot()
	s.log.Info("heartbeat",
		"seq", s.beats,
		"conn", snap.Conn.String(),
		"indicator", snap.Indicator.String(),
	)
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	var cfgCh <-chan *bus.Message
	if conn != nil {
		cfgSub := conn.Subscribe(topicConfigTiming)
		defer conn.Unsubscribe(cfgSub)
		cfgCh = cfgSub.Channel()
	}

	// A stopped ticker stands in while disabled.
	tick := time.NewTicker(time.Hour)
	tick.Stop()
	defer tick.Stop()
	if s.interval > 0 {
		tick.Reset(s.interval)
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info("heartbeat stopping")
			return
		case <-tick.C:
			s.Beat()
		case msg, ok := <-cfgCh:
			if !ok {
				cfgCh = nil
				continue
			}
			t, ok := msg.Payload.(types.TimingConfig)
			if !ok {
				continue
			}
			iv := timex.Ms(t.HeartbeatMs)
			if iv == s.interval {
				continue
			}
			s.interval = iv
			if iv == 0 {
				tick.Stop()
				s.log.Info("heartbeat disabled")
				continue
			}
			tick.Reset(iv)
			s.log.Info("heartbeat interval set", "ms", t.HeartbeatMs)
		}
	}
}

// Start the heartbeat service. conn may be nil.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
