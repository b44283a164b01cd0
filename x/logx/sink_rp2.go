//go:build rp2040 || rp2350

package logx

import (
	"io"
	"machine"
	"sync"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

const consoleBaud = 115200

var (
	consoleOnce sync.Once
	console     *uartx.UART
)

// DefaultWriter routes logs to UART0 so USB CDC stays free for flashing.
func DefaultWriter() io.Writer {
	consoleOnce.Do(func() {
		console = uartx.UART0
		_ = console.Configure(uartx.UARTConfig{
			BaudRate: consoleBaud,
			TX:       machine.UART0_TX_PIN,
			RX:       machine.UART0_RX_PIN,
		})
	})
	return console
}
