package types

import "strconv"

// ------------------------
// Button
// ------------------------

type ButtonEvent uint8

const (
	ShortPress ButtonEvent = iota
	LongPress
)

func (e ButtonEvent) String() string {
	switch e {
	case ShortPress:
		return "short_press"
	case LongPress:
		return "long_press"
	default:
		return "unknown"
	}
}

// ------------------------
// Indicator commands (to the indicator driver only)
// ------------------------

type IndicatorCommandKind uint8

const (
	IndicatorCmdOff IndicatorCommandKind = iota
	IndicatorCmdOn
	IndicatorCmdBlink
	IndicatorCmdShutdown
)

type IndicatorCommand struct {
	Kind       IndicatorCommandKind
	IntervalMs uint32 // Blink only
}

func Blink(intervalMs uint32) IndicatorCommand {
	return IndicatorCommand{Kind: IndicatorCmdBlink, IntervalMs: intervalMs}
}

var (
	LEDOn       = IndicatorCommand{Kind: IndicatorCmdOn}
	LEDOff      = IndicatorCommand{Kind: IndicatorCmdOff}
	LEDShutdown = IndicatorCommand{Kind: IndicatorCmdShutdown}
)

func (c IndicatorCommand) String() string {
	switch c.Kind {
	case IndicatorCmdOff:
		return "off"
	case IndicatorCmdOn:
		return "on"
	case IndicatorCmdBlink:
		return "blink(" + strconv.FormatUint(uint64(c.IntervalMs), 10) + "ms)"
	case IndicatorCmdShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
