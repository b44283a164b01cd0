package heartbeat

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairlink-go/bus"
	"pairlink-go/types"
	"pairlink-go/x/logx"
)

type fixedSnap struct{ s types.Snapshot }

func (f fixedSnap) Snapshot() types.Snapshot { return f.s }

type syncBuf struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (w *syncBuf) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *syncBuf) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestBeatLogsSnapshot(t *testing.T) {
	var buf syncBuf
	s := New(fixedSnap{types.Snapshot{Conn: types.ConnConnected, Indicator: types.IndicatorOn}}, 0, logx.New(logx.Config{}, &buf))
	s.Beat()
	out := buf.String()
	assert.Contains(t, out, "conn=connected")
	assert.Contains(t, out, "indicator=on")
	assert.Contains(t, out, "seq=1")
}

func TestIntervalFromConfigTopic(t *testing.T) {
	var buf syncBuf
	s := New(fixedSnap{}, 0, logx.New(logx.Config{}, &buf))
	b := bus.NewBus(4)
	conn := b.NewConnection("heartbeat-test")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx, conn)

	time.Sleep(50 * time.Millisecond)
	assert.NotContains(t, buf.String(), "msg=heartbeat ", "disabled until configured")

	conn.Publish(conn.NewMessage(topicConfigTiming, types.TimingConfig{HeartbeatMs: 10}, true))
	require.Eventually(t, func() bool {
		return strings.Count(buf.String(), "msg=heartbeat ") >= 2
	}, time.Second, 10*time.Millisecond)
}
