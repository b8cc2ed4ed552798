//go:build stm32f103

// diag-counter brings up USART1 on a Blue Pill and prints an incrementing 32-bit
// counter, one "XXXXXXXX\r\n" line per value, wrapping at 0xFFFFFFFF.
//
//	tinygo flash -target=bluepill -serial=none ./cmd/diag-counter
//	diagmon check --port /dev/ttyUSB0
package main

import (
	"machine"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
	"github.com/jangala-dev/tinygo-diagserial/internal/board"
)

func main() {
	cfg := diagserial.Config{
		BaudRate: diagserial.DefaultBaudRate,
		ClockHz:  machine.CPUFrequency(),
	}
	if err := diagserial.Run(diagserial.USART1, cfg, diagserial.NewCounterProducer(0)); err != nil {
		board.Fail(err)
	}
}
