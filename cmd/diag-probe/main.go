//go:build stm32f103

// diag-probe snapshots the USART1 bring-up registers, configures the port and then
// prints the before/after values over USART1 itself once a second. Built with
// -tags=diagdebug it also prints the transmitter's busy-wait counters.
//
//	tinygo flash -target=bluepill -serial=none ./cmd/diag-probe
package main

import (
	"machine"
	"time"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
	"github.com/jangala-dev/tinygo-diagserial/internal/board"
	"github.com/jangala-dev/tinygo-diagserial/mmio"
	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

var probed = []mmio.Register{
	stm32f1.RCC_APB2ENR,
	stm32f1.GPIOA_CRH,
	stm32f1.USART1_SR,
	stm32f1.USART1_BRR,
	stm32f1.USART1_CR1,
	stm32f1.USART1_CR2,
}

func main() {
	time.Sleep(500 * time.Millisecond)

	bus := mmio.Device
	before := make([]uint32, len(probed))
	for i, r := range probed {
		before[i] = r.Get(bus)
	}

	u := diagserial.USART1
	if err := u.Configure(diagserial.Config{ClockHz: machine.CPUFrequency()}); err != nil {
		board.Fail(err)
	}

	for {
		report(u, bus, before)
		time.Sleep(time.Second)
	}
}

func report(u *diagserial.UART, bus mmio.Bus, before []uint32) {
	u.WriteString("-----------------------------\r\n")
	u.WriteString("line        ")
	u.WriteString(u.Line().String())
	u.WriteString("\r\n")
	for i, r := range probed {
		u.WriteString(r.Name)
		pad(u, 12-len(r.Name))
		u.WriteString("0x")
		u.PrintHex(before[i])
		u.WriteString(" -> 0x")
		u.PrintHex(r.Get(bus))
		u.WriteString("\r\n")
	}
	u.WriteString("TE ")
	printBool(u, stm32f1.USART1_CR1_TE.IsSet(bus))
	u.WriteString("  M ")
	printBool(u, stm32f1.USART1_CR1_M.IsSet(bus))
	u.WriteString("  BRR ")
	u.PrintHex(stm32f1.USART1_BRR_MANTISSA.Get(bus))
	u.WriteByte('.')
	u.PrintHex(stm32f1.USART1_BRR_FRACTION.Get(bus))
	u.WriteString("\r\n")
	printStats(u)
}

func pad(u *diagserial.UART, n int) {
	for ; n > 0; n-- {
		u.WriteByte(' ')
	}
	u.WriteByte(' ')
}

func printBool(u *diagserial.UART, b bool) {
	if b {
		u.WriteString("true")
	} else {
		u.WriteString("false")
	}
}
