package diagserial

import (
	"context"

	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

// WriteByte transmits c. It spins on SR.TC until the previous frame has left the
// shift register, then writes c to DR; the DR write clears TC in hardware. There is no
// timeout: a peripheral that never raises TC blocks forever. The error is always nil.
func (uart *UART) WriteByte(c byte) error {
	polls := 0
	for !stm32f1.USART1_SR_TC.IsSet(uart.Bus) {
		polls++
	}
	stm32f1.USART1_DR.Set(uart.Bus, uint32(c))
	uart.dbgSend(polls)
	return nil
}

// Write implements io.Writer. Each byte goes through WriteByte, so Write returns only
// after the last byte is in the shift register.
func (uart *UART) Write(p []byte) (int, error) {
	for _, c := range p {
		uart.WriteByte(c)
	}
	return len(p), nil
}

// WriteString is Write for a string.
func (uart *UART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		uart.WriteByte(s[i])
	}
	return len(s), nil
}

// TryWriteByte checks SR.TC once. If the transmitter is idle it writes c and returns
// true; otherwise it returns false without touching DR.
func (uart *UART) TryWriteByte(c byte) bool {
	if !stm32f1.USART1_SR_TC.IsSet(uart.Bus) {
		uart.dbgBusy()
		return false
	}
	stm32f1.USART1_DR.Set(uart.Bus, uint32(c))
	uart.dbgSend(0)
	return true
}

// WriteByteContext is WriteByte with a bound: it polls SR.TC until set or until ctx is
// done, in which case c is not written and ctx.Err() is returned.
func (uart *UART) WriteByteContext(ctx context.Context, c byte) error {
	polls := 0
	for !stm32f1.USART1_SR_TC.IsSet(uart.Bus) {
		select {
		case <-ctx.Done():
			uart.dbgTimeout()
			return ctx.Err()
		default:
		}
		polls++
	}
	stm32f1.USART1_DR.Set(uart.Bus, uint32(c))
	uart.dbgSend(polls)
	return nil
}

// Flush blocks until the last written frame is on the wire (SR.TC set).
func (uart *UART) Flush() error {
	for !stm32f1.USART1_SR_TC.IsSet(uart.Bus) {
	}
	return nil
}
