//go:build stm32f103

// diag-string brings up USART1 on a Blue Pill and repeats a fixed line forever.
//
//	tinygo flash -target=bluepill -serial=none ./cmd/diag-string
//
// Wiring: PA9 (TX) -> adapter RX, GND -> GND. 9600 8N1.
package main

import (
	"machine"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
	"github.com/jangala-dev/tinygo-diagserial/internal/board"
)

var message = diagserial.NewStringProducer("Hello from USART1\r\n")

func main() {
	cfg := diagserial.Config{
		BaudRate: diagserial.DefaultBaudRate,
		ClockHz:  machine.CPUFrequency(),
	}
	if err := diagserial.Run(diagserial.USART1, cfg, message); err != nil {
		board.Fail(err)
	}
}
