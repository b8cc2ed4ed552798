// Package diagserial drives USART1 of an STM32F103 as a polled, transmit-only
// diagnostic console. Configure brings the peripheral up once; WriteByte busy-waits on
// the transmission-complete flag before every byte; PrintSequence and PrintHex format
// output on top of it. There is no buffering and no interrupt: every call returns only
// after the previous byte has left the shift register.
package diagserial

import (
	"errors"

	"github.com/jangala-dev/tinygo-diagserial/mmio"
)

// Defaults for a zero Config: 9600 baud from the 8 MHz internal oscillator.
const (
	DefaultBaudRate = 9600
	DefaultClockHz  = 8_000_000
)

var (
	errBaudRate = errors.New("diagserial: invalid baud rate")
	errClock    = errors.New("diagserial: invalid peripheral clock")
	errDivisor  = errors.New("diagserial: baud divisor out of range")
	errSettings = errors.New("diagserial: only 8N1 is supported")
)

// Config holds the line parameters chosen by the caller.
type Config struct {
	BaudRate uint32 // 0 selects DefaultBaudRate
	ClockHz  uint32 // APB2 clock feeding USART1; 0 selects DefaultClockHz
}

// UART is the transmit side of USART1.
type UART struct {
	Bus mmio.Bus // register access path

	line  LineConfig // applied by the last successful Configure
	stats Stats
}

// Line returns the line configuration applied by the last Configure.
func (uart *UART) Line() LineConfig { return uart.line }
