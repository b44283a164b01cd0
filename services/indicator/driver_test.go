package indicator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairlink-go/types"
)

type recOutput struct {
	mu     sync.Mutex
	levels []bool
	fail   bool
}

func (o *recOutput) Set(on bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fail {
		return errors.New("bus fault")
	}
	o.levels = append(o.levels, on)
	return nil
}

func (o *recOutput) last() (bool, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.levels) == 0 {
		return false, false
	}
	return o.levels[len(o.levels)-1], true
}

func (o *recOutput) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.levels)
}

func TestOnOffImmediate(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)

	require.True(t, d.Queue().TrySend(types.LEDOn))
	require.True(t, d.Step())
	assert.True(t, d.Lit())

	require.True(t, d.Queue().TrySend(types.LEDOff))
	require.True(t, d.Step())
	assert.False(t, d.Lit())
}

func TestDrainAllLastCommandWins(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.LEDOn)
	d.Queue().TrySend(types.Blink(500))
	d.Queue().TrySend(types.LEDOff)
	d.Step()

	assert.Zero(t, d.Queue().Len())
	assert.False(t, d.Lit())
	for i := 0; i < 100; i++ {
		d.Step()
	}
	assert.False(t, d.Lit(), "off cancels blink")
}

func TestBlinkFlipsEachInterval(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.Blink(100))

	d.Step() // start: lit immediately
	assert.True(t, d.Lit())

	var flips []int
	prev := d.Lit()
	for tick := 1; tick <= 20; tick++ {
		d.Step()
		if d.Lit() != prev {
			flips = append(flips, tick)
			prev = d.Lit()
		}
	}
	// 100 ms at 20 ms per tick: a flip every 5 ticks.
	assert.Equal(t, []int{5, 10, 15, 20}, flips)
}

func TestBlinkIntervalClamped(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.Blink(1))
	d.Step()
	assert.Equal(t, uint32(MinBlinkMs), d.intervalMs)

	d.Step()
	assert.False(t, d.Lit(), "flips every tick at the floor")
	d.Step()
	assert.True(t, d.Lit())
}

func TestBlinkChangeTakesEffectNextTick(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.Blink(1000))
	for i := 0; i < 10; i++ {
		d.Step()
	}
	d.Queue().TrySend(types.Blink(100))
	d.Step()
	assert.Equal(t, uint32(100), d.intervalMs)
	assert.Zero(t, d.elapsedMs)
}

func TestSameBlinkKeepsPhase(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.Blink(100))
	d.Step()
	d.Step()
	d.Step()
	before := d.elapsedMs
	d.Queue().TrySend(types.Blink(100))
	d.Step()
	assert.Equal(t, before+20, d.elapsedMs)
}

func TestShutdownLeavesOutputOff(t *testing.T) {
	for _, prior := range []types.IndicatorCommand{types.LEDOn, types.Blink(500), types.LEDOff} {
		out := &recOutput{}
		d := New(out, 20, nil)
		d.Queue().TrySend(prior)
		d.Step()
		d.Queue().TrySend(types.LEDShutdown)
		d.Queue().TrySend(types.LEDOn) // ignored after shutdown

		assert.False(t, d.Step())
		last, ok := out.last()
		require.True(t, ok)
		assert.False(t, last, prior.String())
		assert.True(t, d.Queue().Closed())
		assert.False(t, d.Queue().TrySend(types.LEDOn))
	}
}

func TestRedundantWritesSuppressed(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.LEDOn)
	d.Queue().TrySend(types.LEDOn)
	d.Step()
	d.Queue().TrySend(types.LEDOn)
	d.Step()
	assert.Equal(t, 1, out.count())
}

func TestOutputErrorIsNotFatal(t *testing.T) {
	out := &recOutput{fail: true}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.LEDOn)
	assert.True(t, d.Step())
	assert.False(t, d.Lit())
}

func TestRunStopsOnCancelWithOutputOff(t *testing.T) {
	out := &recOutput{}
	d := New(out, 20, nil)
	d.Queue().TrySend(types.LEDOn)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { d.Run(ctx); close(done) }()

	require.Eventually(t, func() bool {
		l, ok := out.last()
		return ok && l
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
	last, _ := out.last()
	assert.False(t, last)
}
