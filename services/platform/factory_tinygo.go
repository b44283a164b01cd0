//go:build tinygo

package platform

import "machine"

// DefaultPinFactory maps logical numbers directly to machine.Pin(n).
func DefaultPinFactory() PinFactory { return mcuPinFactory{} }

type mcuPinFactory struct{}

func (mcuPinFactory) ByNumber(n int) (GPIOPin, bool) {
	if n < 0 || n > 255 {
		return nil, false
	}
	return &mcuPin{p: machine.Pin(n), n: n}, true
}

type mcuPin struct {
	p machine.Pin
	n int
}

func (m *mcuPin) ConfigureInput(pull Pull) error {
	var mode machine.PinMode
	switch pull {
	case PullUp:
		mode = machine.PinInputPullup
	case PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	m.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (m *mcuPin) ConfigureOutput(initial bool) error {
	m.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	m.p.Set(initial)
	return nil
}

func (m *mcuPin) Set(level bool) { m.p.Set(level) }
func (m *mcuPin) Get() bool      { return m.p.Get() }
func (m *mcuPin) Number() int    { return m.n }
