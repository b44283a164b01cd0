package main

import (
	"context"
	"time"

	"pairlink-go/bus"
	"pairlink-go/services/config"
	"pairlink-go/services/platform"
	"pairlink-go/services/radio/bleadapter"
	"pairlink-go/services/supervisor"
	"pairlink-go/x/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	cfg, err := config.Load(config.Board)
	if err != nil {
		halt("config: " + err.Error())
	}
	log := logx.New(cfg.Log, nil)
	log.Info("boot", "board", config.Board, "device", cfg.Device.Name)

	lines, err := platform.Acquire(platform.DefaultPinFactory(), nil, cfg.Pins)
	if err != nil {
		log.Error("peripheral acquisition failed", "err", err)
		halt("pins")
	}

	sup, err := supervisor.New(supervisor.Deps{
		Config: cfg,
		Lines:  lines,
		Radio:  bleadapter.New(nil),
		Bus:    bus.NewBus(4),
		Log:    log,
	})
	if err != nil {
		log.Error("supervisor", "err", err)
		halt("supervisor")
	}
	if err := sup.Start(context.Background()); err != nil {
		log.Error("start", "err", err)
		halt("start")
	}

	select {}
}

// halt parks the firmware after a startup failure; there is nothing to
// return to.
func halt(reason string) {
	println("[main] fatal:", reason)
	for {
		time.Sleep(time.Hour)
	}
}
