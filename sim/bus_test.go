package sim

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

func newTestBus(term *Terminal) *Bus {
	b := NewBus(term)
	b.Log = quietLogger()
	return b
}

// ready puts USART1 in the state Configure leaves it in, without tracing.
func ready(b *Bus) {
	b.Poke(stm32f1.RCC_APB2ENR.Addr, stm32f1.RCC_APB2ENR_USART1EN.Mask()|stm32f1.RCC_APB2ENR_IOPAEN.Mask())
	b.Poke(stm32f1.USART1_BRR.Addr, 0x341)
	b.Poke(stm32f1.USART1_CR1.Addr, stm32f1.USART1_CR1_UE.Mask()|stm32f1.USART1_CR1_TE.Mask())
}

func TestResetValues(t *testing.T) {
	b := newTestBus(nil)
	assert.Equal(t, uint32(0), b.Peek(stm32f1.RCC_APB2ENR.Addr))
	assert.Equal(t, uint32(0x4444_4444), b.Peek(stm32f1.GPIOA_CRH.Addr))
	assert.Equal(t, uint32(0xC0), b.Peek(stm32f1.USART1_SR.Addr))
}

func TestUnmappedAccessFaults(t *testing.T) {
	b := newTestBus(nil)
	assert.Equal(t, uint32(0), b.Load(0x2000_0000))
	b.Store(0x2000_0004, 1)

	faults := b.Faults()
	require.Len(t, faults, 2)
	assert.Equal(t, "load from unmapped address", faults[0].Reason)
	assert.Equal(t, "store to unmapped address", faults[1].Reason)
}

func TestClockGating(t *testing.T) {
	b := newTestBus(nil)

	b.Store(stm32f1.USART1_BRR.Addr, 0x341)
	b.Store(stm32f1.GPIOA_CRH.Addr, 0x4444_48B4)

	assert.Equal(t, uint32(0), b.Peek(stm32f1.USART1_BRR.Addr), "write ignored while gated")
	assert.Equal(t, uint32(0x4444_4444), b.Peek(stm32f1.GPIOA_CRH.Addr))
	require.Len(t, b.Faults(), 2)
	assert.Equal(t, "USART1 clock gated", b.Faults()[0].Reason)
	assert.Equal(t, "GPIOA clock gated", b.Faults()[1].Reason)
}

func TestFrameCompletesAfterLatency(t *testing.T) {
	term := NewTerminal(9600, 16)
	b := newTestBus(term)
	b.Latency = 3
	ready(b)

	b.Store(stm32f1.USART1_DR.Addr, 'Q')
	assert.Equal(t, uint32(0), b.Peek(stm32f1.USART1_SR.Addr)&srTC, "TC cleared by DR write")

	b.Load(stm32f1.USART1_SR.Addr)
	b.Load(stm32f1.USART1_SR.Addr)
	assert.Equal(t, 0, term.Buffered())

	sr := b.Load(stm32f1.USART1_SR.Addr)
	assert.NotZero(t, sr&srTC)
	assert.NotZero(t, sr&srTXE)
	got, err := term.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('Q'), got)
	assert.Equal(t, 3, b.SRReads())
}

func TestZeroLatencyCompletesOnWrite(t *testing.T) {
	term := NewTerminal(9600, 16)
	b := newTestBus(term)
	b.Latency = 0
	ready(b)

	b.Store(stm32f1.USART1_DR.Addr, 'a')
	assert.Equal(t, 1, term.Buffered())
	assert.NotZero(t, b.Peek(stm32f1.USART1_SR.Addr)&srTC)
}

func TestDRWriteBeforeTCFaults(t *testing.T) {
	term := NewTerminal(9600, 16)
	b := newTestBus(term)
	ready(b)

	b.Store(stm32f1.USART1_DR.Addr, 'a')
	b.Store(stm32f1.USART1_DR.Addr, 'b')

	require.Len(t, b.Faults(), 1)
	assert.Equal(t, "DR written before TC", b.Faults()[0].Reason)
	assert.Equal(t, uint32('b'), b.Faults()[0].Value)
}

func TestDRWriteWithTransmitterDisabledFaults(t *testing.T) {
	b := newTestBus(nil)
	ready(b)
	b.Poke(stm32f1.USART1_CR1.Addr, stm32f1.USART1_CR1_UE.Mask())

	b.Store(stm32f1.USART1_DR.Addr, 'a')
	require.Len(t, b.Faults(), 1)
	assert.Equal(t, "transmitter disabled", b.Faults()[0].Reason)
}

func TestIdleFrameOnTERisingEdge(t *testing.T) {
	b := newTestBus(nil)
	b.Poke(stm32f1.RCC_APB2ENR.Addr, stm32f1.RCC_APB2ENR_USART1EN.Mask())

	ue := stm32f1.USART1_CR1_UE.Mask()
	te := stm32f1.USART1_CR1_TE.Mask()
	b.Store(stm32f1.USART1_CR1.Addr, ue)
	b.Store(stm32f1.USART1_CR1.Addr, ue|te)
	b.Store(stm32f1.USART1_CR1.Addr, ue|te)
	assert.Equal(t, 1, b.IdleFrames())
}

func TestSRWriteOnlyClearsTC(t *testing.T) {
	b := newTestBus(nil)
	ready(b)
	b.Store(stm32f1.USART1_SR.Addr, 0)
	assert.Equal(t, uint32(srTXE), b.Peek(stm32f1.USART1_SR.Addr))
}

func TestLineDecode(t *testing.T) {
	b := newTestBus(nil)
	ready(b)
	l := b.Line()
	assert.Equal(t, uint32(9603), l.BaudRate)
	assert.Equal(t, uint8(8), l.DataBits)
	assert.Equal(t, uint8(0), l.StopCode)
	assert.False(t, l.Parity)

	b.Poke(stm32f1.USART1_CR1.Addr, stm32f1.USART1_CR1_M.Mask())
	b.Poke(stm32f1.USART1_CR2.Addr, 2<<12)
	l = b.Line()
	assert.Equal(t, uint8(9), l.DataBits)
	assert.Equal(t, uint8(2), l.StopCode)
}

func TestDumpOrderedByAddress(t *testing.T) {
	b := newTestBus(nil)
	d := b.Dump()
	require.Len(t, d, len(stm32f1.Registers))
	for i := 1; i < len(d); i++ {
		assert.Less(t, d[i-1].Addr, d[i].Addr)
	}
	assert.Equal(t, "GPIOA_CRH", d[0].Name)
	assert.Equal(t, "RCC_APB2ENR", d[len(d)-1].Name)
}

func TestTraceAndReset(t *testing.T) {
	b := newTestBus(nil)
	b.Store(stm32f1.RCC_APB2ENR.Addr, 4)
	require.Len(t, b.Trace(), 1)
	assert.Equal(t, "RCC_APB2ENR <- 0x000004", b.Trace()[0].String())

	b.ResetTrace()
	assert.Empty(t, b.Trace())

	b.Reset()
	assert.Equal(t, uint32(0), b.Peek(stm32f1.RCC_APB2ENR.Addr))
}

func TestFlowControlHoldsFrameWhileTerminalFull(t *testing.T) {
	term := NewTerminal(9600, 2)
	b := newTestBus(term)
	b.Latency = 1
	b.FlowControl = true
	ready(b)

	for _, c := range []byte("ab") {
		b.Store(stm32f1.USART1_DR.Addr, uint32(c))
		require.NotZero(t, b.Load(stm32f1.USART1_SR.Addr)&srTC)
	}

	b.Store(stm32f1.USART1_DR.Addr, 'c')
	for i := 0; i < 5; i++ {
		assert.Zero(t, b.Load(stm32f1.USART1_SR.Addr)&srTC, "frame held while full")
	}
	assert.Equal(t, 5, b.Stalls())

	got, err := term.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), got)

	assert.NotZero(t, b.Load(stm32f1.USART1_SR.Addr)&srTC)
	buf := make([]byte, 4)
	n, _ := term.Read(buf)
	assert.Equal(t, "bc", string(buf[:n]))
	assert.Zero(t, term.Overruns())
	assert.Empty(t, b.Faults())
}

func TestFlowControlReleasedByClose(t *testing.T) {
	term := NewTerminal(9600, 1)
	b := newTestBus(term)
	b.Latency = 0
	b.FlowControl = true
	ready(b)

	b.Store(stm32f1.USART1_DR.Addr, 'x')
	b.Store(stm32f1.USART1_DR.Addr, 'y')
	assert.Zero(t, b.Load(stm32f1.USART1_SR.Addr)&srTC)

	term.Close()
	assert.NotZero(t, b.Load(stm32f1.USART1_SR.Addr)&srTC)
	assert.Equal(t, 1, term.Overruns())
}

func TestWithoutFlowControlTerminalOverruns(t *testing.T) {
	term := NewTerminal(9600, 1)
	b := newTestBus(term)
	b.Latency = 0
	ready(b)

	b.Store(stm32f1.USART1_DR.Addr, 'x')
	b.Store(stm32f1.USART1_DR.Addr, 'y')
	assert.Equal(t, 1, term.Overruns())
	assert.Zero(t, b.Stalls())
}
