package hub

import "pairlink-go/bus"

// Diagnostics topics published by the hub.
//
//	state/connection   retained types.ConnectionStatus
//	state/indicator    retained types.IndicatorStatus
//	event/button       types.ButtonEvent
//	event/radio        types.RadioEvent
func topicConnState() bus.Topic      { return bus.T("state", "connection") }
func topicIndicatorState() bus.Topic { return bus.T("state", "indicator") }
func topicButtonEvent() bus.Topic    { return bus.T("event", "button") }
func topicRadioEvent() bus.Topic     { return bus.T("event", "radio") }

// TopicAll matches every diagnostics topic.
func TopicAll() bus.Topic { return bus.T(bus.WildAll) }
