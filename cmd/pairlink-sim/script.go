//go:build !tinygo

package main

import (
	"context"
	"log/slog"
	"time"

	"pairlink-go/services/platform"
	"pairlink-go/services/radio/simradio"
)

// script plays one session: hold the button, let a peer connect, then drop it.
func script(ctx context.Context, log *slog.Logger, activeLow bool, btn *platform.FakePin, sim *simradio.Adapter, hold, connectAfter, disconnectAfter time.Duration) {
	pressed, released := true, false
	if activeLow {
		pressed, released = false, true
	}

	log.Info("script: press", "hold", hold)
	btn.Drive(pressed)
	if !sleep(ctx, hold) {
		return
	}
	btn.Drive(released)

	if !sleep(ctx, connectAfter-hold) {
		return
	}
	log.Info("script: peer connects")
	sim.Connect()

	if !sleep(ctx, disconnectAfter) {
		return
	}
	log.Info("script: peer disconnects")
	sim.Disconnect()

	sleep(ctx, 2*time.Second)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
