package diagserial

import (
	"github.com/jangala-dev/tinygo-diagserial/stm32f1"
)

// Configure brings USART1 up for 8N1 transmission at cfg's baud rate.
//
// The only error is an invalid cfg, reported before any register is touched. The
// register sequence itself cannot fail. Each write depends on the previous ones being
// in effect: the peripheral is clocked before it is written, pins are routed before the
// transmitter starts, and TE comes last. Setting TE queues an idle frame.
//
// Configure is safe to repeat; a second call rewrites the same bit patterns.
func (uart *UART) Configure(cfg Config) error {
	line, err := NewLineConfig(cfg)
	if err != nil {
		return err
	}
	b := uart.Bus

	// 1) Clock gates: USART1, then the GPIO port carrying its pins.
	stm32f1.RCC_APB2ENR_USART1EN.Enable(b)
	stm32f1.RCC_APB2ENR_IOPAEN.Enable(b)

	// 2) PA9 alternate-function push-pull, PA10 input with bias.
	stm32f1.GPIOA_CRH_PA9_PA10.Set(b, stm32f1.USART1Pins)

	// 3) Enable the USART, then format: M=0 is 8 data bits, STOP=00 is 1 stop bit.
	stm32f1.USART1_CR1_UE.Enable(b)
	stm32f1.USART1_CR1_M.Clear(b)
	stm32f1.USART1_CR2_STOP.Clear(b)

	// 4) BRR has no other fields, so a plain write.
	stm32f1.USART1_BRR.Set(b, uint32(line.Divisor))

	// 5) Transmitter on.
	stm32f1.USART1_CR1_TE.Enable(b)

	uart.line = line
	return nil
}
