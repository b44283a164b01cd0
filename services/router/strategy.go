package router

import "pairlink-go/types"

// strategy decides what a radio lifecycle event does. Status responses are
// always mapped through the precedence table.
type strategy interface {
	onLifecycle(r *Router, e types.RadioEvent) (types.IndicatorCommand, bool)
}

func strategyFor(name string) strategy {
	if name == types.StrategyDirect {
		return directStrategy{}
	}
	return statusStrategy{}
}

// statusStrategy asks the radio for its status and waits for the reply.
type statusStrategy struct{}

func (statusStrategy) onLifecycle(r *Router, _ types.RadioEvent) (types.IndicatorCommand, bool) {
	r.hub.SendRadioCommand(types.GetStatus)
	return types.IndicatorCommand{}, false
}

// directStrategy maps each lifecycle event straight to a pattern.
type directStrategy struct{}

func (directStrategy) onLifecycle(r *Router, e types.RadioEvent) (types.IndicatorCommand, bool) {
	switch e.Kind {
	case types.RadioAdvertisingStarted:
		return types.Blink(r.opts.BlinkFastMs), true
	case types.RadioAdvertisingStopped:
		return types.LEDOff, true
	case types.RadioConnected:
		return types.LEDOn, true
	case types.RadioDisconnected:
		return types.Blink(r.opts.BlinkSlowMs), true
	case types.RadioError:
		return types.Blink(r.opts.BlinkErrorMs), true
	}
	return types.IndicatorCommand{}, false
}
