package radio

import "pairlink-go/types"

// ConnectionObserver receives link callbacks from the adapter. Both methods
// run on the radio stack's context and must return promptly.
type ConnectionObserver interface {
	OnConnect()
	OnDisconnect()
}

// Adapter is the radio stack as seen by the coordinator.
type Adapter interface {
	Init(cfg types.DeviceConfig) error
	StartAdvertising() error
	StopAdvertising() error
	DisconnectAll() error
	ConnectedCount() int
	Observe(o ConnectionObserver)
}

// EventSink is where the coordinator reports lifecycle changes; the hub
// implements it.
type EventSink interface {
	SendRadioEvent(types.RadioEvent) bool
	SetConnState(types.ConnectionState) types.ConnectionState
}
