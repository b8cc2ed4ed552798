package sim

import (
	"runtime"

	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

var (
	srTC  = stm32f1.USART1_SR_TC.Mask()
	srTXE = stm32f1.USART1_SR_TXE.Mask()
)

// storeUSART applies a store to a clocked USART1 register.
func (b *Bus) storeUSART(addr uintptr, v uint32) {
	switch addr {
	case stm32f1.USART1_SR.Addr:
		// TC is rc_w0: writing 0 clears it, everything else is read-only.
		b.regs[addr] &^= srTC &^ v
	case stm32f1.USART1_DR.Addr:
		b.regs[addr] = v & stm32f1.USART1_DR_DR.Mask()
		b.startFrame(v)
	case stm32f1.USART1_CR1.Addr:
		old := b.regs[addr]
		b.regs[addr] = v
		te := stm32f1.USART1_CR1_TE.Mask()
		if old&te == 0 && v&te != 0 && v&stm32f1.USART1_CR1_UE.Mask() != 0 {
			b.idleFrames++
		}
	default:
		b.regs[addr] = v
	}
}

func (b *Bus) startFrame(v uint32) {
	cr1 := b.regs[stm32f1.USART1_CR1.Addr]
	if cr1&stm32f1.USART1_CR1_UE.Mask() == 0 || cr1&stm32f1.USART1_CR1_TE.Mask() == 0 {
		b.fault(stm32f1.USART1_DR.Addr, v, "transmitter disabled")
		return
	}
	sr := stm32f1.USART1_SR.Addr
	if b.regs[sr]&srTC == 0 {
		b.fault(stm32f1.USART1_DR.Addr, v, "DR written before TC")
		return
	}
	b.regs[sr] &^= srTC | srTXE
	b.inflight = true
	b.remaining = b.Latency
	b.shifting = v & stm32f1.USART1_DR_DR.Mask()
	if b.remaining <= 0 {
		b.finishFrame()
	}
}

// tick advances an in-flight frame by one SR read.
func (b *Bus) tick() {
	if !b.inflight {
		return
	}
	b.remaining--
	if b.remaining <= 0 {
		b.finishFrame()
	}
}

// finishFrame completes the in-flight frame unless flow control holds it. A held frame
// keeps TC clear and is retried on the next SR read.
func (b *Bus) finishFrame() {
	if b.FlowControl && b.term != nil && b.term.holding() {
		b.stalls++
		runtime.Gosched()
		return
	}
	b.completeFrame()
}

func (b *Bus) completeFrame() {
	b.inflight = false
	b.regs[stm32f1.USART1_SR.Addr] |= srTC | srTXE
	if b.term != nil {
		b.term.frame(byte(b.shifting), b.Line())
	}
}

// Line describes the frame format the programmed registers put on the wire.
type Line struct {
	BaudRate uint32
	DataBits uint8
	StopCode uint8 // CR2.STOP: 0 = 1 bit, 1 = 0.5, 2 = 2, 3 = 1.5
	Parity   bool
}

// Line decodes BRR, CR1 and CR2 against ClockHz.
func (b *Bus) Line() Line {
	l := Line{DataBits: 8}
	if brr := b.regs[stm32f1.USART1_BRR.Addr] & 0xFFFF; brr != 0 {
		l.BaudRate = b.ClockHz / brr
	}
	cr1 := b.regs[stm32f1.USART1_CR1.Addr]
	if cr1&stm32f1.USART1_CR1_M.Mask() != 0 {
		l.DataBits = 9
	}
	l.Parity = cr1&stm32f1.USART1_CR1_PCE.Mask() != 0
	f := stm32f1.USART1_CR2_STOP
	l.StopCode = uint8((b.regs[f.Reg.Addr] & f.Mask()) >> f.Pos)
	return l
}
