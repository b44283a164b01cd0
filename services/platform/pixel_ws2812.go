//go:build tinygo && ws2812

package platform

import (
	"image/color"
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// Boards whose only status light is an addressable pixel drive it white/black.
var pixelOn = color.RGBA{R: 0x20, G: 0x20, B: 0x20}

type pixelLine struct {
	dev ws2812.Device
	buf [1]color.RGBA
}

func newPixelLine(n int) (OutputLine, error) {
	pin := machine.Pin(n)
	pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l := &pixelLine{dev: ws2812.New(pin)}
	return l, l.Set(false)
}

func (l *pixelLine) Set(on bool) error {
	if on {
		l.buf[0] = pixelOn
	} else {
		l.buf[0] = color.RGBA{}
	}
	return l.dev.WriteColors(l.buf[:])
}
