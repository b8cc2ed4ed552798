// Package sim is a host model of the STM32F103 registers the diagnostic firmware
// touches, plus the terminal at the far end of the serial line.
//
// Address map:
//
//	RCC_APB2ENR  0x4002_1018  plain storage, gates GPIOA and USART1
//	GPIOA_CRH    0x4001_0804  plain storage, needs IOPAEN
//	USART1       0x4001_3800  SR/DR/BRR/CR1/CR2/GTPR, needs USART1EN
//
// Any other address is a fault.
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/jangala-dev/tinygo-diagserial/mmio"
	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

// DefaultLatency is the number of SR reads a frame stays in the shift register.
const DefaultLatency = 2

// Access is one store seen by the bus.
type Access struct {
	Reg   string
	Addr  uintptr
	Value uint32
}

func (a Access) String() string {
	return fmt.Sprintf("%s <- %#08x", a.Reg, a.Value)
}

// Fault is a store or load the hardware would ignore or a protocol violation.
type Fault struct {
	Reg    string
	Addr   uintptr
	Value  uint32
	Reason string
}

func (f Fault) String() string {
	return fmt.Sprintf("%s (%#08x) %#08x: %s", f.Reg, f.Addr, f.Value, f.Reason)
}

// RegisterValue is one line of Dump.
type RegisterValue struct {
	Name  string
	Addr  uintptr
	Value uint32
}

// Bus is an mmio.Bus backed by a model of the chip. It is not safe for concurrent use;
// the goroutine running the firmware owns it.
type Bus struct {
	// Latency is the number of SR reads a frame stays in flight. 0 completes frames
	// on the DR write.
	Latency int
	// ClockHz is the APB2 clock used to turn BRR into a bit rate.
	ClockHz uint32
	// Log receives faults.
	Log logrus.FieldLogger
	// FlowControl holds a finished frame in the shift register while the terminal's
	// buffer is full, as a receiver deasserting CTS would. Without it the terminal
	// drops its oldest byte.
	FlowControl bool

	term *Terminal
	regs map[uintptr]uint32

	trace  []Access
	faults []Fault

	inflight  bool
	remaining int
	shifting  uint32

	srReads    int
	idleFrames int
	stalls     int
}

var _ mmio.Bus = (*Bus)(nil)

// NewBus returns a bus in its reset state. Completed frames go to term, which may be nil.
func NewBus(term *Terminal) *Bus {
	b := &Bus{
		Latency: DefaultLatency,
		ClockHz: 8_000_000,
		Log:     logrus.StandardLogger(),
		term:    term,
	}
	b.Reset()
	return b
}

// Reset restores reset values and clears trace, faults and counters.
func (b *Bus) Reset() {
	b.regs = make(map[uintptr]uint32, len(stm32f1.Registers))
	for _, r := range stm32f1.Registers {
		b.regs[r.Addr] = 0
	}
	b.regs[stm32f1.RCC_APB2ENR.Addr] = stm32f1.ResetAPB2ENR
	b.regs[stm32f1.GPIOA_CRH.Addr] = stm32f1.ResetCRH
	b.regs[stm32f1.USART1_SR.Addr] = stm32f1.ResetSR
	b.trace = nil
	b.faults = nil
	b.inflight = false
	b.remaining = 0
	b.srReads = 0
	b.idleFrames = 0
	b.stalls = 0
}

// Load implements mmio.Bus.
func (b *Bus) Load(addr uintptr) uint32 {
	v, ok := b.regs[addr]
	if !ok {
		b.fault(addr, 0, "load from unmapped address")
		return 0
	}
	if addr == stm32f1.USART1_SR.Addr {
		b.srReads++
		b.tick()
		return b.regs[addr]
	}
	return v
}

// Store implements mmio.Bus.
func (b *Bus) Store(addr uintptr, v uint32) {
	if _, ok := b.regs[addr]; !ok {
		b.fault(addr, v, "store to unmapped address")
		return
	}
	b.trace = append(b.trace, Access{Reg: regName(addr), Addr: addr, Value: v})

	switch {
	case addr == stm32f1.RCC_APB2ENR.Addr:
		b.regs[addr] = v
	case addr == stm32f1.GPIOA_CRH.Addr:
		if !b.clocked(stm32f1.RCC_APB2ENR_IOPAEN) {
			b.fault(addr, v, "GPIOA clock gated")
			return
		}
		b.regs[addr] = v
	default:
		if !b.clocked(stm32f1.RCC_APB2ENR_USART1EN) {
			b.fault(addr, v, "USART1 clock gated")
			return
		}
		b.storeUSART(addr, v)
	}
}

// Poke sets a register without side effects or tracing.
func (b *Bus) Poke(addr uintptr, v uint32) { b.regs[addr] = v }

// Peek reads a register without side effects.
func (b *Bus) Peek(addr uintptr) uint32 { return b.regs[addr] }

// Trace returns every store since the last Reset or ResetTrace.
func (b *Bus) Trace() []Access { return append([]Access(nil), b.trace...) }

// ResetTrace forgets recorded stores.
func (b *Bus) ResetTrace() { b.trace = nil }

// Faults returns every fault since the last Reset.
func (b *Bus) Faults() []Fault { return append([]Fault(nil), b.faults...) }

// SRReads is the number of USART1_SR loads.
func (b *Bus) SRReads() int { return b.srReads }

// Stalls is the number of SR reads that found a finished frame held by flow control.
func (b *Bus) Stalls() int { return b.stalls }

// IdleFrames is the number of idle frames queued by enabling the transmitter.
func (b *Bus) IdleFrames() int { return b.idleFrames }

// Dump returns every modelled register ordered by address.
func (b *Bus) Dump() []RegisterValue {
	addrs := maps.Keys(b.regs)
	slices.Sort(addrs)
	out := make([]RegisterValue, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, RegisterValue{Name: regName(a), Addr: a, Value: b.regs[a]})
	}
	return out
}

func (b *Bus) clocked(gate mmio.Field) bool {
	return b.regs[gate.Reg.Addr]&gate.Mask() != 0
}

func (b *Bus) fault(addr uintptr, v uint32, reason string) {
	f := Fault{Reg: regName(addr), Addr: addr, Value: v, Reason: reason}
	b.faults = append(b.faults, f)
	if b.Log != nil {
		b.Log.WithFields(logrus.Fields{
			"reg":   f.Reg,
			"addr":  fmt.Sprintf("%#08x", addr),
			"value": fmt.Sprintf("%#08x", v),
		}).Warn(reason)
	}
}

func regName(addr uintptr) string {
	if r, ok := stm32f1.Lookup(addr); ok {
		return r.Name
	}
	return fmt.Sprintf("%#08x", addr)
}
