package types

import "strconv"

// ------------------------
// Radio commands (to the radio coordinator only)
// ------------------------

type RadioCommandKind uint8

const (
	RadioStartAdvertise RadioCommandKind = iota
	RadioStopAdvertise
	RadioDisconnectAll
	RadioGetStatus
	RadioShutdown
)

// RadioCommand is a tagged variant; TimeoutMs is only meaningful for
// RadioStartAdvertise (0 => advertise until stopped).
type RadioCommand struct {
	Kind      RadioCommandKind
	TimeoutMs uint32
}

func StartAdvertise(timeoutMs uint32) RadioCommand {
	return RadioCommand{Kind: RadioStartAdvertise, TimeoutMs: timeoutMs}
}

var (
	StopAdvertise = RadioCommand{Kind: RadioStopAdvertise}
	DisconnectAll = RadioCommand{Kind: RadioDisconnectAll}
	GetStatus     = RadioCommand{Kind: RadioGetStatus}
	RadioStop     = RadioCommand{Kind: RadioShutdown}
)

func (c RadioCommand) String() string {
	switch c.Kind {
	case RadioStartAdvertise:
		return "start_advertise(" + strconv.FormatUint(uint64(c.TimeoutMs), 10) + "ms)"
	case RadioStopAdvertise:
		return "stop_advertise"
	case RadioDisconnectAll:
		return "disconnect_all"
	case RadioGetStatus:
		return "get_status"
	case RadioShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// ------------------------
// Radio events (from the radio coordinator only)
// ------------------------

type RadioEventKind uint8

const (
	RadioAdvertisingStarted RadioEventKind = iota
	RadioAdvertisingStopped
	RadioConnected
	RadioDisconnected
	RadioError
	RadioStatusResponse
)

// RadioStatus is the ground-truth snapshot carried by a status response.
type RadioStatus struct {
	Connected   bool `json:"connected"`
	Advertising bool `json:"advertising"`
	Error       bool `json:"error"`
}

type RadioEvent struct {
	Kind   RadioEventKind
	Status RadioStatus // set for RadioStatusResponse only
}

func StatusResponse(s RadioStatus) RadioEvent {
	return RadioEvent{Kind: RadioStatusResponse, Status: s}
}

var (
	AdvertisingStarted = RadioEvent{Kind: RadioAdvertisingStarted}
	AdvertisingStopped = RadioEvent{Kind: RadioAdvertisingStopped}
	Connected          = RadioEvent{Kind: RadioConnected}
	Disconnected       = RadioEvent{Kind: RadioDisconnected}
	RadioFailed        = RadioEvent{Kind: RadioError}
)

func (e RadioEvent) String() string {
	switch e.Kind {
	case RadioAdvertisingStarted:
		return "advertising_started"
	case RadioAdvertisingStopped:
		return "advertising_stopped"
	case RadioConnected:
		return "connected"
	case RadioDisconnected:
		return "disconnected"
	case RadioError:
		return "error"
	case RadioStatusResponse:
		return "status(connected=" + strconv.FormatBool(e.Status.Connected) +
			" advertising=" + strconv.FormatBool(e.Status.Advertising) +
			" error=" + strconv.FormatBool(e.Status.Error) + ")"
	default:
		return "unknown"
	}
}
