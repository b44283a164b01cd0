package radio_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairlink-go/services/radio"
	"pairlink-go/services/radio/simradio"
	"pairlink-go/types"
)

type recSink struct {
	mu     sync.Mutex
	events []types.RadioEvent
	state  types.ConnectionState
}

func (s *recSink) SendRadioEvent(e types.RadioEvent) bool {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
	return true
}

func (s *recSink) SetConnState(st types.ConnectionState) types.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = st
	return prev
}

func (s *recSink) take() []types.RadioEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.events
	s.events = nil
	return out
}

func (s *recSink) conn() types.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func count(evs []types.RadioEvent, k types.RadioEventKind) int {
	n := 0
	for _, e := range evs {
		if e.Kind == k {
			n++
		}
	}
	return n
}

var testDevice = types.DeviceConfig{
	Name:               "pairlink-test",
	ServiceUUID:        "9b574847-f706-436c-bed7-fc01eb0965c1",
	CharacteristicUUID: "681285a6-247f-48c6-80ad-68c3dce18585",
}

func setup() (*radio.Coordinator, *simradio.Adapter, *recSink) {
	a := simradio.New()
	s := &recSink{}
	return radio.New(a, s, testDevice, 50, nil), a, s
}

func send(t *testing.T, c *radio.Coordinator, cmd types.RadioCommand) {
	t.Helper()
	require.True(t, c.Queue().TrySend(cmd))
}

func TestStartAdvertiseIsIdempotent(t *testing.T) {
	c, a, s := setup()
	now := time.Unix(0, 0)

	send(t, c, types.StartAdvertise(60000))
	send(t, c, types.StartAdvertise(60000))
	c.Tick(now)
	send(t, c, types.StartAdvertise(60000))
	c.Tick(now.Add(50 * time.Millisecond))

	evs := s.take()
	assert.Equal(t, 1, count(evs, types.RadioAdvertisingStarted))
	assert.Equal(t, 1, a.Inits(), "init is lazy and one-time")
	assert.Equal(t, 1, a.Starts())
	assert.Equal(t, types.ConnPairing, s.conn())
}

func TestRepeatStartMovesWindow(t *testing.T) {
	c, _, _ := setup()
	t0 := time.Unix(100, 0)
	send(t, c, types.StartAdvertise(1000))
	c.Tick(t0)
	send(t, c, types.StartAdvertise(5000))
	c.Tick(t0.Add(500 * time.Millisecond))
	assert.Equal(t, t0.Add(5500*time.Millisecond), c.PairingDeadline())
}

func TestPairingWindowExpiresWithinOnePoll(t *testing.T) {
	c, a, s := setup()
	const pollMs = 50
	t0 := time.Unix(1000, 0)
	send(t, c, types.StartAdvertise(5000))
	c.Tick(t0)
	s.take()

	var stoppedAt time.Duration
	for ms := pollMs; ms <= 6000; ms += pollMs {
		c.Tick(t0.Add(time.Duration(ms) * time.Millisecond))
		if count(s.take(), types.RadioAdvertisingStopped) > 0 {
			stoppedAt = time.Duration(ms) * time.Millisecond
			break
		}
	}
	require.NotZero(t, stoppedAt, "window never closed")
	assert.InDelta(t, 5000, stoppedAt.Milliseconds(), pollMs)
	assert.False(t, a.Advertising())
	assert.False(t, c.Status().Advertising)
	assert.Equal(t, types.ConnIdle, s.conn())
	assert.True(t, c.PairingDeadline().IsZero())
}

func TestZeroTimeoutAdvertisesUntilStopped(t *testing.T) {
	c, a, s := setup()
	t0 := time.Unix(0, 0)
	send(t, c, types.StartAdvertise(0))
	c.Tick(t0)
	c.Tick(t0.Add(time.Hour))
	assert.True(t, a.Advertising())

	send(t, c, types.StopAdvertise)
	c.Tick(t0.Add(time.Hour + time.Second))
	evs := s.take()
	assert.Equal(t, 1, count(evs, types.RadioAdvertisingStopped))
	assert.False(t, a.Advertising())
}

func TestGetStatusAfterStart(t *testing.T) {
	c, _, s := setup()
	send(t, c, types.StartAdvertise(5000))
	send(t, c, types.GetStatus)
	c.Tick(time.Unix(0, 0))

	evs := s.take()
	require.Len(t, evs, 2)
	assert.Equal(t, types.AdvertisingStarted, evs[0])
	assert.Equal(t, types.StatusResponse(types.RadioStatus{Connected: false, Advertising: true, Error: false}), evs[1])
}

func TestStopWhenIdleEmitsNothing(t *testing.T) {
	c, a, s := setup()
	send(t, c, types.StopAdvertise)
	c.Tick(time.Unix(0, 0))
	assert.Empty(t, s.take())
	assert.Zero(t, a.Stops())
}

func TestConnectStopsAdvertising(t *testing.T) {
	c, a, s := setup()
	t0 := time.Unix(0, 0)
	send(t, c, types.StartAdvertise(60000))
	c.Tick(t0)
	s.take()

	a.Connect()
	assert.False(t, c.Status().Advertising, "flag flips in the callback")
	c.Tick(t0.Add(10 * time.Second))

	evs := s.take()
	assert.Equal(t, []types.RadioEvent{types.Connected}, evs)
	assert.Equal(t, types.ConnConnected, s.conn())
	assert.True(t, c.Status().Connected)
	assert.True(t, c.PairingDeadline().IsZero())

	// The window no longer applies.
	c.Tick(t0.Add(2 * time.Minute))
	assert.Empty(t, s.take())
}

func TestDisconnectDoesNotReadvertise(t *testing.T) {
	c, a, s := setup()
	t0 := time.Unix(0, 0)
	send(t, c, types.StartAdvertise(60000))
	c.Tick(t0)
	a.Connect()
	c.Tick(t0.Add(time.Second))
	s.take()

	a.Disconnect()
	c.Tick(t0.Add(2 * time.Second))
	assert.Equal(t, []types.RadioEvent{types.Disconnected}, s.take())
	assert.Equal(t, types.ConnDisconnected, s.conn())
	assert.False(t, a.Advertising())
	assert.Equal(t, types.RadioStatus{}, c.Status())
}

func TestConnectAndStartInSameTick(t *testing.T) {
	c, a, s := setup()
	t0 := time.Unix(0, 0)
	send(t, c, types.StartAdvertise(60000))
	c.Tick(t0)
	s.take()

	a.Connect()
	send(t, c, types.StartAdvertise(60000))
	c.Tick(t0.Add(time.Second))

	assert.Equal(t, []types.RadioEvent{types.Connected, types.AdvertisingStarted}, s.take())
	assert.True(t, a.Advertising())
	assert.Equal(t, types.RadioStatus{Connected: true, Advertising: true}, c.Status())
	assert.Equal(t, types.ConnConnected, s.conn())
}

func TestAdvertisingWhileConnectedKeepsConnectedState(t *testing.T) {
	c, a, s := setup()
	t0 := time.Unix(0, 0)
	send(t, c, types.StartAdvertise(1000))
	c.Tick(t0)
	a.Connect()
	c.Tick(t0.Add(100 * time.Millisecond))
	require.Equal(t, types.ConnConnected, s.conn())

	send(t, c, types.StartAdvertise(1000))
	c.Tick(t0.Add(time.Second))
	assert.Equal(t, types.ConnConnected, s.conn())
	assert.True(t, a.Advertising())
	s.take()

	c.Tick(t0.Add(3 * time.Second))
	assert.Equal(t, 1, count(s.take(), types.RadioAdvertisingStopped))
	assert.False(t, a.Advertising())
	assert.Equal(t, 1, a.ConnectedCount())
	assert.Equal(t, types.ConnConnected, s.conn())
}

func TestDisconnectWithPeersLeftStaysConnected(t *testing.T) {
	c, a, s := setup()
	send(t, c, types.StartAdvertise(0))
	c.Tick(time.Unix(0, 0))
	a.Connect()
	a.Connect()
	c.Tick(time.Unix(1, 0))

	a.Disconnect()
	c.Tick(time.Unix(2, 0))
	assert.Equal(t, 1, count(s.take(), types.RadioDisconnected))
	assert.Equal(t, types.ConnConnected, s.conn())
	assert.True(t, c.Status().Connected)
}

func TestDisconnectAll(t *testing.T) {
	c, a, s := setup()
	send(t, c, types.StartAdvertise(0))
	c.Tick(time.Unix(0, 0))
	a.Connect()
	a.Connect()
	c.Tick(time.Unix(1, 0))
	s.take()

	send(t, c, types.DisconnectAll)
	c.Tick(time.Unix(2, 0))
	assert.Zero(t, a.ConnectedCount())
	// Callbacks raised by the command are drained in the same tick.
	assert.Equal(t, 2, count(s.take(), types.RadioDisconnected))
}

func TestStartFailureSurfacesError(t *testing.T) {
	c, a, s := setup()
	a.FailStart = true
	send(t, c, types.StartAdvertise(60000))
	send(t, c, types.GetStatus)
	c.Tick(time.Unix(0, 0))

	evs := s.take()
	require.Len(t, evs, 2)
	assert.Equal(t, types.RadioFailed, evs[0])
	assert.True(t, evs[1].Status.Error)
	assert.Equal(t, types.ConnError, s.conn())

	// A later successful start clears the error.
	a.FailStart = false
	send(t, c, types.StartAdvertise(60000))
	c.Tick(time.Unix(1, 0))
	assert.False(t, c.Status().Error)
}

func TestInitFailureIsRetriedOnNextStart(t *testing.T) {
	c, a, s := setup()
	a.FailInit = true
	send(t, c, types.StartAdvertise(1000))
	c.Tick(time.Unix(0, 0))
	assert.Equal(t, []types.RadioEvent{types.RadioFailed}, s.take())

	a.FailInit = false
	send(t, c, types.StartAdvertise(1000))
	c.Tick(time.Unix(1, 0))
	assert.Equal(t, []types.RadioEvent{types.AdvertisingStarted}, s.take())
	assert.Equal(t, testDevice, a.Config())
}

func TestStopFailureSurfacesError(t *testing.T) {
	c, a, s := setup()
	send(t, c, types.StartAdvertise(0))
	c.Tick(time.Unix(0, 0))
	s.take()
	a.FailStop = true
	send(t, c, types.StopAdvertise)
	c.Tick(time.Unix(1, 0))

	assert.Equal(t, []types.RadioEvent{types.RadioFailed}, s.take())
	st := c.Status()
	assert.False(t, st.Advertising)
	assert.True(t, st.Error)
}

func TestShutdownStopsAdvertising(t *testing.T) {
	c, a, s := setup()
	send(t, c, types.StartAdvertise(60000))
	c.Tick(time.Unix(0, 0))
	send(t, c, types.RadioStop)
	send(t, c, types.StartAdvertise(60000)) // ignored after shutdown

	assert.False(t, c.Tick(time.Unix(1, 0)))
	assert.False(t, a.Advertising())
	assert.False(t, c.Status().Advertising)
	assert.True(t, c.Queue().Closed())
	assert.Equal(t, 1, a.Starts())
	assert.Equal(t, 1, count(s.take(), types.RadioAdvertisingStopped))
}

func TestShutdownAfterConnectStopsStickyAdvertising(t *testing.T) {
	c, a, _ := setup()
	a.KeepAdvertisingOnConnect = true
	send(t, c, types.StartAdvertise(60000))
	c.Tick(time.Unix(0, 0))

	a.Connect()
	require.True(t, a.Advertising())
	assert.False(t, c.Status().Advertising)

	send(t, c, types.RadioStop)
	assert.False(t, c.Tick(time.Unix(1, 0)))
	assert.False(t, a.Advertising())
}

func TestCancelAfterConnectStopsStickyAdvertising(t *testing.T) {
	c, a, _ := setup()
	a.KeepAdvertisingOnConnect = true
	send(t, c, types.StartAdvertise(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { c.Run(ctx); close(done) }()
	require.Eventually(t, a.Advertising, time.Second, 10*time.Millisecond)

	a.Connect()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("coordinator did not stop")
	}
	assert.False(t, a.Advertising())
}

func TestShutdownWhenIdle(t *testing.T) {
	c, a, _ := setup()
	send(t, c, types.RadioStop)
	assert.False(t, c.Tick(time.Unix(0, 0)))
	assert.False(t, a.Advertising())
	assert.Zero(t, a.Inits())
}

func TestRunStopsOnCancel(t *testing.T) {
	c, a, _ := setup()
	send(t, c, types.StartAdvertise(0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { c.Run(ctx); close(done) }()

	require.Eventually(t, a.Advertising, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("coordinator did not stop")
	}
	assert.False(t, a.Advertising())
}
