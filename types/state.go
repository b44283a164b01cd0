package types

// ------------------------
// Connection state (shared, atomically stored)
// ------------------------

// ConnectionState is numerically encoded so it fits a single atomic word.
type ConnectionState uint8

const (
	ConnIdle         ConnectionState = 0
	ConnPairing      ConnectionState = 1
	ConnConnected    ConnectionState = 2
	ConnDisconnected ConnectionState = 3
	ConnError        ConnectionState = 255
)

// ConnectionStateFrom decodes a stored word. Unknown values read as Idle.
func ConnectionStateFrom(v uint32) ConnectionState {
	switch ConnectionState(v) {
	case ConnPairing, ConnConnected, ConnDisconnected, ConnError:
		return ConnectionState(v)
	default:
		return ConnIdle
	}
}

func (s ConnectionState) String() string {
	switch s {
	case ConnIdle:
		return "idle"
	case ConnPairing:
		return "pairing"
	case ConnConnected:
		return "connected"
	case ConnDisconnected:
		return "disconnected"
	case ConnError:
		return "error"
	default:
		return "unknown"
	}
}

// ------------------------
// Indicator state (derived, never set by hardware)
// ------------------------

type IndicatorState uint8

const (
	IndicatorOff IndicatorState = iota
	IndicatorOn
	IndicatorBlinkingFast
	IndicatorBlinkingSlow
	IndicatorError
)

func IndicatorStateFrom(v uint32) IndicatorState {
	if v > uint32(IndicatorError) {
		return IndicatorOff
	}
	return IndicatorState(v)
}

func (s IndicatorState) String() string {
	switch s {
	case IndicatorOff:
		return "off"
	case IndicatorOn:
		return "on"
	case IndicatorBlinkingFast:
		return "blinking_fast"
	case IndicatorBlinkingSlow:
		return "blinking_slow"
	case IndicatorError:
		return "error"
	default:
		return "unknown"
	}
}
