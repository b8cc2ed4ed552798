//go:build diagdebug

package diagserial

import (
	"sync/atomic"

	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

// Stats holds transmitter counters since the last reset.
type Stats struct {
	Sends    uint32 // bytes written to DR
	Polls    uint32 // SR reads that found TC clear
	MaxPolls uint32 // longest wait for a single byte, in SR reads
	Busy     uint32 // TryWriteByte calls that found the transmitter busy
	Timeouts uint32 // WriteByteContext calls that gave up
}

func (u *UART) DebugReset() {
	u.stats = Stats{}
}

func (u *UART) DebugStats() Stats {
	return Stats{
		Sends:    atomic.LoadUint32(&u.stats.Sends),
		Polls:    atomic.LoadUint32(&u.stats.Polls),
		MaxPolls: atomic.LoadUint32(&u.stats.MaxPolls),
		Busy:     atomic.LoadUint32(&u.stats.Busy),
		Timeouts: atomic.LoadUint32(&u.stats.Timeouts),
	}
}

// Regs is a snapshot of the registers touched by Configure and WriteByte.
type Regs struct {
	APB2ENR uint32
	CRH     uint32
	SR      uint32
	CR1     uint32
	CR2     uint32
	BRR     uint32
}

func (u *UART) DebugRegs() Regs {
	return Regs{
		APB2ENR: stm32f1.RCC_APB2ENR.Get(u.Bus),
		CRH:     stm32f1.GPIOA_CRH.Get(u.Bus),
		SR:      stm32f1.USART1_SR.Get(u.Bus),
		CR1:     stm32f1.USART1_CR1.Get(u.Bus),
		CR2:     stm32f1.USART1_CR2.Get(u.Bus),
		BRR:     stm32f1.USART1_BRR.Get(u.Bus),
	}
}
