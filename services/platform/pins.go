// Package platform supplies the two lines the coordination layer drives: an
// output for the status indicator and a pulled-up input for the button.
// Acquisition failures are returned to the caller and never retried.
package platform

import (
	"strconv"
	"sync"

	"pairlink-go/errcode"
	"pairlink-go/types"
)

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	ConfigureOutput(initial bool) error
	Set(level bool)
	Get() bool
	Number() int
}

// PinFactory supplies GPIO pins by the board's number scheme.
type PinFactory interface {
	ByNumber(n int) (GPIOPin, bool)
}

// ---- Lines handed to the tasks ----

// OutputLine is the indicator's view of its output: logical on/off.
type OutputLine interface {
	Set(on bool) error
}

// InputLine is the button's view of its input: logical pressed.
type InputLine interface {
	Pressed() bool
}

type Lines struct {
	LED    OutputLine
	Button InputLine
}

// ---- Claims ----

// Registry tracks which device owns which pin.
type Registry struct {
	mu     sync.Mutex
	owners map[int]string
}

func NewRegistry() *Registry { return &Registry{owners: map[int]string{}} }

func (r *Registry) Claim(devID string, pin int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.owners[pin]; ok && owner != devID {
		return &errcode.E{C: errcode.PinInUse, Op: "claim " + devID, Msg: "pin " + strconv.Itoa(pin) + " owned by " + owner}
	}
	r.owners[pin] = devID
	return nil
}

func (r *Registry) Release(devID string, pin int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owners[pin] == devID {
		delete(r.owners, pin)
	}
}

// Acquire claims and configures the indicator output and the button input.
func Acquire(f PinFactory, reg *Registry, cfg types.PinsConfig) (Lines, error) {
	if reg == nil {
		reg = NewRegistry()
	}
	led, err := acquireLED(f, reg, cfg)
	if err != nil {
		return Lines{}, err
	}
	btn, err := acquireButton(f, reg, cfg)
	if err != nil {
		reg.Release("led", cfg.LED)
		return Lines{}, err
	}
	return Lines{LED: led, Button: btn}, nil
}

func acquireLED(f PinFactory, reg *Registry, cfg types.PinsConfig) (OutputLine, error) {
	if err := reg.Claim("led", cfg.LED); err != nil {
		return nil, err
	}
	if cfg.LEDPixel {
		l, err := newPixelLine(cfg.LED)
		if err != nil {
			reg.Release("led", cfg.LED)
			return nil, errcode.Wrap(errcode.AdapterError, "led pixel", err)
		}
		return l, nil
	}
	p, ok := f.ByNumber(cfg.LED)
	if !ok {
		reg.Release("led", cfg.LED)
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "led", Msg: "pin " + strconv.Itoa(cfg.LED)}
	}
	// Start dark regardless of polarity.
	if err := p.ConfigureOutput(cfg.LEDActiveLow); err != nil {
		reg.Release("led", cfg.LED)
		return nil, errcode.Wrap(errcode.AdapterError, "led configure", err)
	}
	return &gpioOutput{pin: p, activeLow: cfg.LEDActiveLow}, nil
}

func acquireButton(f PinFactory, reg *Registry, cfg types.PinsConfig) (InputLine, error) {
	if err := reg.Claim("button", cfg.Button); err != nil {
		return nil, err
	}
	p, ok := f.ByNumber(cfg.Button)
	if !ok {
		reg.Release("button", cfg.Button)
		return nil, &errcode.E{C: errcode.UnknownPin, Op: "button", Msg: "pin " + strconv.Itoa(cfg.Button)}
	}
	pull := PullDown
	if cfg.ButtonActiveLow {
		pull = PullUp
	}
	if err := p.ConfigureInput(pull); err != nil {
		reg.Release("button", cfg.Button)
		return nil, errcode.Wrap(errcode.AdapterError, "button configure", err)
	}
	return &gpioInput{pin: p, activeLow: cfg.ButtonActiveLow}, nil
}

// ---- GPIO-backed lines ----

type gpioOutput struct {
	pin       GPIOPin
	activeLow bool
}

func (o *gpioOutput) Set(on bool) error {
	level := on
	if o.activeLow {
		level = !level
	}
	o.pin.Set(level)
	return nil
}

type gpioInput struct {
	pin       GPIOPin
	activeLow bool
}

func (i *gpioInput) Pressed() bool {
	l := i.pin.Get()
	if i.activeLow {
		return !l
	}
	return l
}
