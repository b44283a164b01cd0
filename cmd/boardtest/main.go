//go:build tinygo

// boardtest is a bring-up check for a new board: it walks the indicator
// through every pattern, reports button presses and, unless built with
// -tags noradio, advertises for a short window so a phone can see the device.
package main

import (
	"context"
	"time"

	"pairlink-go/services/button"
	"pairlink-go/services/config"
	"pairlink-go/services/indicator"
	"pairlink-go/services/platform"
	"pairlink-go/types"
	"pairlink-go/x/logx"
)

// ---------- Configuration ----------

const (
	dwell       = 2 * time.Second
	buttonWatch = 15 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 1
)

var patterns = []types.IndicatorCommand{
	types.LEDOn,
	types.LEDOff,
	types.Blink(100),
	types.Blink(500),
	types.Blink(1000),
	types.LEDOff,
}

// ---------- Helpers ----------

// buttonLog prints presses instead of forwarding them.
type buttonLog struct{ presses int }

func (b *buttonLog) RequestPairing() bool { return false }
func (b *buttonLog) SendButtonEvent(e types.ButtonEvent) bool {
	b.presses++
	println("[boardtest] button:", e.String())
	return true
}

func ledFlashPassFail(led platform.OutputLine, pass bool) {
	if pass {
		// Double short
		for i := 0; i < 2; i++ {
			_ = led.Set(true)
			time.Sleep(120 * time.Millisecond)
			_ = led.Set(false)
			time.Sleep(200 * time.Millisecond)
		}
		return
	}
	// Single long
	_ = led.Set(true)
	time.Sleep(400 * time.Millisecond)
	_ = led.Set(false)
	time.Sleep(200 * time.Millisecond)
}

// ---------- Main ----------

func main() {
	time.Sleep(2 * time.Second)
	ctx := context.Background()

	cfg, err := config.Load(config.Board)
	if err != nil {
		println("[boardtest] config:", err.Error())
		return
	}
	log := logx.New(cfg.Log, nil)

	lines, err := platform.Acquire(platform.DefaultPinFactory(), nil, cfg.Pins)
	if err != nil {
		println("[boardtest] FAIL: pins:", err.Error())
		return
	}
	println("[boardtest] pins ok: led", cfg.Pins.LED, "button", cfg.Pins.Button)

	// Indicator patterns
	drv := indicator.New(lines.LED, cfg.Timing.PollMs, log)
	dctx, stopDrv := context.WithCancel(ctx)
	go drv.Run(dctx)

	for cycle := 0; cyclesToRun == 0 || cycle < cyclesToRun; cycle++ {
		for _, p := range patterns {
			println("[boardtest] indicator:", p.String())
			drv.Queue().TrySend(p)
			time.Sleep(dwell)
		}
	}
	stopDrv()
	time.Sleep(100 * time.Millisecond)

	// Button
	bl := &buttonLog{}
	mon := button.NewMonitor(lines.Button, bl, cfg.Timing.PollMs, cfg.Timing.LongPressMs, log)
	println("[boardtest] press the button (long press too) within", int(buttonWatch/time.Second), "s")
	bctx, stopBtn := context.WithTimeout(ctx, buttonWatch)
	mon.Run(bctx)
	stopBtn()

	// Radio
	radioOK := advertiseCheck(cfg.Device)

	pass := bl.presses > 0 && radioOK
	println("[boardtest] presses:", bl.presses, "radio:", radioOK, "pass:", pass)
	for {
		ledFlashPassFail(lines.LED, pass)
		time.Sleep(time.Second)
	}
}
