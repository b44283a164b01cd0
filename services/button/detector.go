package button

import (
	"pairlink-go/types"
	"pairlink-go/x/mathx"
)

const (
	DefaultPollMs      = 20
	DefaultLongPressMs = 3000
)

// Detector turns a sampled pressed/released level into press events.
// pressedMs saturates rather than wrapping on very long holds.
type Detector struct {
	pollMs      uint32
	longPressMs uint32

	pressedMs uint32
	fired     bool
}

func NewDetector(pollMs, longPressMs uint32) *Detector {
	if pollMs == 0 {
		pollMs = DefaultPollMs
	}
	if longPressMs == 0 {
		longPressMs = DefaultLongPressMs
	}
	return &Detector{pollMs: pollMs, longPressMs: longPressMs}
}

// Step consumes one sample. It yields LongPress exactly once per hold, when
// the accumulated time first reaches the threshold, and ShortPress on release
// of a hold that never got there.
func (d *Detector) Step(pressed bool) (types.ButtonEvent, bool) {
	if !pressed {
		short := d.pressedMs > 0 && !d.fired
		d.pressedMs = 0
		d.fired = false
		if short {
			return types.ShortPress, true
		}
		return 0, false
	}
	d.pressedMs = mathx.AddSat(d.pressedMs, d.pollMs, ^uint32(0))
	if d.pressedMs >= d.longPressMs && !d.fired {
		d.fired = true
		return types.LongPress, true
	}
	return 0, false
}

// PressedMs reports how long the current hold has lasted.
func (d *Detector) PressedMs() uint32 { return d.pressedMs }
