//go:build !(tinygo && ws2812)

package platform

import "pairlink-go/errcode"

func newPixelLine(int) (OutputLine, error) {
	return nil, errcode.New(errcode.Unsupported, "led pixel", "built without ws2812 support")
}
