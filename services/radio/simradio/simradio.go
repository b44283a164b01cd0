// Package simradio is an in-memory radio adapter for host builds and tests.
// Peers are attached and detached explicitly; callbacks fire synchronously on
// the caller's goroutine, standing in for the radio stack's context.
package simradio

import (
	"errors"
	"sync"

	"pairlink-go/services/radio"
	"pairlink-go/types"
)

var (
	ErrNotInitialised = errors.New("simradio: not initialised")
	ErrInjected       = errors.New("simradio: injected failure")
)

type Adapter struct {
	mu          sync.Mutex
	cfg         types.DeviceConfig
	inits       int
	advertising bool
	peers       int
	starts      int
	stops       int
	obs         radio.ConnectionObserver

	// Failure injection; each flag applies to every later call until cleared.
	FailInit  bool
	FailStart bool
	FailStop  bool

	// KeepAdvertisingOnConnect mimics stacks that leave advertising on
	// after a central connects.
	KeepAdvertisingOnConnect bool
}

var _ radio.Adapter = (*Adapter)(nil)

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Init(cfg types.DeviceConfig) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailInit {
		return ErrInjected
	}
	a.cfg = cfg
	a.inits++
	return nil
}

func (a *Adapter) StartAdvertising() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inits == 0 {
		return ErrNotInitialised
	}
	if a.FailStart {
		return ErrInjected
	}
	a.advertising = true
	a.starts++
	return nil
}

func (a *Adapter) StopAdvertising() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailStop {
		return ErrInjected
	}
	a.advertising = false
	a.stops++
	return nil
}

func (a *Adapter) DisconnectAll() error {
	a.mu.Lock()
	n := a.peers
	a.peers = 0
	obs := a.obs
	a.mu.Unlock()
	for i := 0; i < n; i++ {
		if obs != nil {
			obs.OnDisconnect()
		}
	}
	return nil
}

func (a *Adapter) ConnectedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.peers
}

func (a *Adapter) Observe(o radio.ConnectionObserver) {
	a.mu.Lock()
	a.obs = o
	a.mu.Unlock()
}

// ---- Peer simulation ----

// Connect attaches a peer. Like most peripherals, the stack stops
// advertising once a central connects unless KeepAdvertisingOnConnect is set.
func (a *Adapter) Connect() {
	a.mu.Lock()
	a.peers++
	if !a.KeepAdvertisingOnConnect {
		a.advertising = false
	}
	obs := a.obs
	a.mu.Unlock()
	if obs != nil {
		obs.OnConnect()
	}
}

// Disconnect detaches one peer; it is a no-op with none attached.
func (a *Adapter) Disconnect() {
	a.mu.Lock()
	if a.peers == 0 {
		a.mu.Unlock()
		return
	}
	a.peers--
	obs := a.obs
	a.mu.Unlock()
	if obs != nil {
		obs.OnDisconnect()
	}
}

// ---- Inspection ----

func (a *Adapter) Advertising() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.advertising
}

func (a *Adapter) Inits() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inits
}

// Starts counts successful StartAdvertising calls.
func (a *Adapter) Starts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.starts
}

func (a *Adapter) Stops() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stops
}

func (a *Adapter) Config() types.DeviceConfig {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg
}
