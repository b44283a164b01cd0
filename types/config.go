package types

// Device configuration, fixed at build time (see services/config).

type Config struct {
	Device DeviceConfig `yaml:"device" json:"device"`
	Pins   PinsConfig   `yaml:"pins" json:"pins"`
	Timing TimingConfig `yaml:"timing" json:"timing"`
	Router RouterConfig `yaml:"router" json:"router"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

// DeviceConfig is the advertised identity.
type DeviceConfig struct {
	Name                string `yaml:"name" json:"name"`
	ServiceUUID         string `yaml:"service_uuid" json:"service_uuid"`
	CharacteristicUUID  string `yaml:"characteristic_uuid" json:"characteristic_uuid"`
	CharacteristicValue string `yaml:"characteristic_value" json:"characteristic_value"`
}

// PinsConfig names the two lines the core needs. Numbers follow the board's
// GPIO numbering.
type PinsConfig struct {
	LED             int  `yaml:"led" json:"led"`
	LEDActiveLow    bool `yaml:"led_active_low" json:"led_active_low"`
	LEDPixel        bool `yaml:"led_pixel" json:"led_pixel"` // drive a WS2812 on the LED pin
	Button          int  `yaml:"button" json:"button"`
	ButtonActiveLow bool `yaml:"button_active_low" json:"button_active_low"` // pressed == low (pull-up)
}

// TimingConfig values are milliseconds.
type TimingConfig struct {
	PollMs          uint32 `yaml:"poll_ms" json:"poll_ms"`
	RouterPollMs    uint32 `yaml:"router_poll_ms" json:"router_poll_ms"`
	RadioPollMs     uint32 `yaml:"radio_poll_ms" json:"radio_poll_ms"`
	LongPressMs     uint32 `yaml:"long_press_ms" json:"long_press_ms"`
	PairingWindowMs uint32 `yaml:"pairing_window_ms" json:"pairing_window_ms"`
	BlinkFastMs     uint32 `yaml:"blink_fast_ms" json:"blink_fast_ms"`
	BlinkSlowMs     uint32 `yaml:"blink_slow_ms" json:"blink_slow_ms"`
	BlinkErrorMs    uint32 `yaml:"blink_error_ms" json:"blink_error_ms"`
	HeartbeatMs     uint32 `yaml:"heartbeat_ms" json:"heartbeat_ms"`
	ShutdownGraceMs uint32 `yaml:"shutdown_grace_ms" json:"shutdown_grace_ms"`
}

// Router strategies.
const (
	StrategyStatus = "status" // react to StatusResponse ground truth
	StrategyDirect = "direct" // map lifecycle events straight to commands
)

type RouterConfig struct {
	Strategy string `yaml:"strategy" json:"strategy"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug | info | warn | error
	Format string `yaml:"format" json:"format"` // text | json
}
