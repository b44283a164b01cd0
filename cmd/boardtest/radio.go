//go:build tinygo && !noradio

package main

import (
	"time"

	"pairlink-go/services/radio/bleadapter"
	"pairlink-go/types"
)

const advertiseFor = 10 * time.Second

func advertiseCheck(dev types.DeviceConfig) bool {
	a := bleadapter.New(nil)
	if err := a.Init(dev); err != nil {
		println("[boardtest] FAIL: radio init:", err.Error())
		return false
	}
	if err := a.StartAdvertising(); err != nil {
		println("[boardtest] FAIL: advertise:", err.Error())
		return false
	}
	println("[boardtest] advertising as", dev.Name, "for", int(advertiseFor/time.Second), "s")
	time.Sleep(advertiseFor)
	if err := a.StopAdvertising(); err != nil {
		println("[boardtest] FAIL: stop advertising:", err.Error())
		return false
	}
	return true
}
