//go:build !linux

package serialport

import (
	"os"
	"time"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
)

func openPort(string, uint32, uint8, diagserial.Parity, uint8, time.Duration) (*os.File, error) {
	return nil, ErrUnsupported
}

func inq(*os.File) int { return 0 }
