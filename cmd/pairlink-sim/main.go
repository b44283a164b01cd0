//go:build !tinygo

// pairlink-sim runs the full coordination stack on the host with fake pins
// and an in-memory radio, scripting a pair/connect/disconnect session while
// a bus monitor prints every diagnostic message.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"pairlink-go/bus"
	"pairlink-go/services/config"
	"pairlink-go/services/hub"
	"pairlink-go/services/platform"
	"pairlink-go/services/radio/simradio"
	"pairlink-go/services/supervisor"
	"pairlink-go/x/logx"
)

func main() {
	board := flag.String("board", "host", "embedded board configuration")
	strategy := flag.String("strategy", "", "router strategy override (status|direct)")
	hold := flag.Duration("hold", 3200*time.Millisecond, "button hold time")
	connectAfter := flag.Duration("connect-after", 10*time.Second, "peer connects this long after the press")
	disconnectAfter := flag.Duration("disconnect-after", 20*time.Second, "peer disconnects this long after connecting")
	flag.Parse()

	cfg, err := config.Load(*board)
	if err != nil {
		println("config:", err.Error())
		os.Exit(2)
	}
	if *strategy != "" {
		cfg.Router.Strategy = *strategy
		if err := config.Validate(cfg); err != nil {
			println("config:", err.Error())
			os.Exit(2)
		}
	}
	log := logx.New(cfg.Log, os.Stderr)

	pins := &platform.HostPinFactory{}
	lines, err := platform.Acquire(pins, nil, cfg.Pins)
	if err != nil {
		log.Error("pins", "err", err)
		os.Exit(1)
	}
	btn, _ := pins.Get(cfg.Pins.Button)
	led, _ := pins.Get(cfg.Pins.LED)

	b := bus.NewBus(32)
	mon := b.NewConnection("monitor").Subscribe(hub.TopicAll())
	go func() {
		for m := range mon.Channel() {
			log.Info("bus", "topic", m.Topic.String(), "retained", m.Retained, "payload", m.Payload)
		}
	}()

	sim := simradio.New()
	sup, err := supervisor.New(supervisor.Deps{Config: cfg, Lines: lines, Radio: sim, Bus: b, Log: log})
	if err != nil {
		log.Error("supervisor", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := sup.Start(ctx); err != nil {
		log.Error("start", "err", err)
		os.Exit(1)
	}

	script(ctx, log, cfg.Pins.ButtonActiveLow, btn, sim, *hold, *connectAfter, *disconnectAfter)
	log.Info("script done", "led", led.Get(), "conn", sup.Hub().ConnState().String())

	if err := sup.Shutdown(); err != nil {
		log.Warn("shutdown", "err", err)
	}
	log.Info("final", "led", led.Get(), "advertising", sim.Advertising())
}
