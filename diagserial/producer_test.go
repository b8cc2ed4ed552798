package diagserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringProducer(t *testing.T) {
	p := NewStringProducer("Hello\r\n")
	assert.Equal(t, byte(0), p.Seq[len(p.Seq)-1])

	got := capture(t, func(uart *UART) {
		for i := 0; i < 3; i++ {
			p.Produce(uart)
		}
	})
	assert.Equal(t, "Hello\r\nHello\r\nHello\r\n", got)
}

func TestCounterProducer(t *testing.T) {
	p := NewCounterProducer(0)
	got := capture(t, func(uart *UART) {
		for i := 0; i < 3; i++ {
			p.Produce(uart)
		}
	})
	assert.Equal(t, "00000000\r\n00000001\r\n00000002\r\n", got)
	assert.Equal(t, uint32(3), p.Value())
}

func TestCounterProducerWraps(t *testing.T) {
	p := NewCounterProducer(0xFFFF_FFFF)
	got := capture(t, func(uart *UART) {
		p.Produce(uart)
		p.Produce(uart)
	})
	assert.Equal(t, "FFFFFFFF\r\n00000000\r\n", got)
	assert.Equal(t, uint32(1), p.Value())
}

func TestRunN(t *testing.T) {
	uart, bus, term := newSimUART(t, 256)
	require.NoError(t, RunN(uart, Config{}, NewCounterProducer(0x0F), 2))
	require.NoError(t, uart.Flush())

	buf := make([]byte, 64)
	n, _ := term.Read(buf)
	assert.Equal(t, "0000000F\r\n00000010\r\n", string(buf[:n]))
	assert.Empty(t, bus.Faults())
	assert.Equal(t, 1, bus.IdleFrames(), "configured once")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	uart, bus, _ := newSimUART(t, 16)
	err := Run(uart, Config{BaudRate: 4_000_000}, NewStringProducer("x"))
	assert.ErrorIs(t, err, errDivisor)
	assert.Empty(t, bus.Trace())

	err = RunN(uart, Config{BaudRate: 4_000_000}, NewStringProducer("x"), 1)
	assert.ErrorIs(t, err, errDivisor)
}
