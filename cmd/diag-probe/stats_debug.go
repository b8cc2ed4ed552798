//go:build stm32f103 && diagdebug

package main

import "github.com/jangala-dev/tinygo-diagserial/diagserial"

// printStats reports the transmitter counters accumulated by the previous report.
func printStats(u *diagserial.UART) {
	s := u.DebugStats()
	u.DebugReset()
	u.WriteString("sends 0x")
	u.PrintHex(s.Sends)
	u.WriteString(" polls 0x")
	u.PrintHex(s.Polls)
	u.WriteString(" maxpolls 0x")
	u.PrintHex(s.MaxPolls)
	u.WriteString("\r\n")
}
