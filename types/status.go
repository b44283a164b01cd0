package types

// ------------------------
// Retained diagnostics (bus payloads)
// ------------------------

// ConnectionStatus is published retained on state/connection.
type ConnectionStatus struct {
	State ConnectionState `json:"state"`
	TSms  int64           `json:"ts_ms"`
}

// IndicatorStatus is published retained on state/indicator.
type IndicatorStatus struct {
	State   IndicatorState   `json:"state"`
	Command IndicatorCommand `json:"command"`
	TSms    int64            `json:"ts_ms"`
}

// Snapshot is a point-in-time copy of the hub's shared cells.
type Snapshot struct {
	Conn      ConnectionState `json:"conn"`
	Indicator IndicatorState  `json:"indicator"`
	TSms      int64           `json:"ts_ms"`
}
