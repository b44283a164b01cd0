//go:build !rp2040 && !rp2350

package logx

import (
	"io"
	"os"
)

// DefaultWriter is stderr on hosts and non-RP2 targets.
func DefaultWriter() io.Writer { return os.Stderr }
