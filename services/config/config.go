// Package config resolves the device configuration at startup and publishes
// it, retained, on the bus.
package config

import (
	"bytes"
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"pairlink-go/bus"
	"pairlink-go/errcode"
	"pairlink-go/types"
	"pairlink-go/x/logx"
	"pairlink-go/x/mathx"
)

const (
	serviceName  = "config"
	configPrefix = "config"

	MinPollMs = 20
	MaxPollMs = 50
)

// Load builds the configuration for board: embedded defaults, then the
// board's overrides, then any link-time identity overrides.
func Load(board string) (types.Config, error) {
	var cfg types.Config
	if err := decode(defaultsYAML, &cfg); err != nil {
		return types.Config{}, errcode.Wrap(errcode.InvalidConfig, "config.defaults", err)
	}
	raw, ok := EmbeddedConfigLookup(board)
	if !ok {
		return types.Config{}, errcode.New(errcode.InvalidConfig, "config.load", "no embedded config for board: "+board)
	}
	if err := decode(raw, &cfg); err != nil {
		return types.Config{}, errcode.Wrap(errcode.InvalidConfig, "config.board "+board, err)
	}
	applyOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// decode overlays doc onto cfg; fields absent from doc keep their values.
func decode(doc []byte, cfg *types.Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(doc))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyOverrides(cfg *types.Config) {
	if DeviceName != "" {
		cfg.Device.Name = DeviceName
	}
	if ServiceUUID != "" {
		cfg.Device.ServiceUUID = ServiceUUID
	}
	if CharacteristicUUID != "" {
		cfg.Device.CharacteristicUUID = CharacteristicUUID
	}
}

// Validate reports the first problem found.
func Validate(cfg types.Config) error {
	bad := func(msg string) error {
		return errcode.New(errcode.InvalidConfig, "config.validate", msg)
	}
	if cfg.Device.Name == "" {
		return bad("device.name is empty")
	}
	if _, err := uuid.Parse(cfg.Device.ServiceUUID); err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config.validate", Msg: "device.service_uuid", Err: err}
	}
	if _, err := uuid.Parse(cfg.Device.CharacteristicUUID); err != nil {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config.validate", Msg: "device.characteristic_uuid", Err: err}
	}
	if cfg.Pins.LED < 0 || cfg.Pins.Button < 0 {
		return bad("pins must be non-negative")
	}
	if cfg.Pins.LED == cfg.Pins.Button {
		return bad("pins.led and pins.button share a pin")
	}
	polls := []struct {
		name string
		v    uint32
	}{
		{"timing.poll_ms", cfg.Timing.PollMs},
		{"timing.router_poll_ms", cfg.Timing.RouterPollMs},
		{"timing.radio_poll_ms", cfg.Timing.RadioPollMs},
	}
	for _, p := range polls {
		if !mathx.Between(p.v, MinPollMs, MaxPollMs) {
			return bad(p.name + " out of range: " + strconv.FormatUint(uint64(p.v), 10))
		}
	}
	if cfg.Timing.LongPressMs < cfg.Timing.PollMs {
		return bad("timing.long_press_ms shorter than one poll")
	}
	if cfg.Timing.BlinkErrorMs == 0 || cfg.Timing.BlinkFastMs == 0 || cfg.Timing.BlinkSlowMs == 0 {
		return bad("blink intervals must be set")
	}
	if !(cfg.Timing.BlinkErrorMs < cfg.Timing.BlinkFastMs && cfg.Timing.BlinkFastMs < cfg.Timing.BlinkSlowMs) {
		return bad("blink intervals must satisfy error < fast < slow")
	}
	switch cfg.Router.Strategy {
	case types.StrategyStatus, types.StrategyDirect:
	default:
		return bad("router.strategy unknown: " + cfg.Router.Strategy)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Config Service
// -----------------------------------------------------------------------------

type ConfigService struct {
	Name string
	cfg  types.Config
	log  *slog.Logger
}

func NewConfigService(cfg types.Config, log *slog.Logger) *ConfigService {
	return &ConfigService{Name: serviceName, cfg: cfg, log: logx.Component(log, serviceName)}
}

// Publish writes each section as a retained message under config/<section>.
func Publish(conn *bus.Connection, cfg types.Config) {
	sections := []struct {
		key string
		val any
	}{
		{"device", cfg.Device},
		{"pins", cfg.Pins},
		{"timing", cfg.Timing},
		{"router", cfg.Router},
		{"log", cfg.Log},
	}
	for _, s := range sections {
		conn.Publish(conn.NewMessage(bus.T(configPrefix, s.key), s.val, true))
	}
}

// Start publishes the configuration once.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	if ctx.Err() != nil {
		return
	}
	Publish(conn, s.cfg)
	s.log.Info("configuration published", "device", s.cfg.Device.Name, "strategy", s.cfg.Router.Strategy)
}
