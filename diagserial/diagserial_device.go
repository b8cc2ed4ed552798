//go:build stm32f103

package diagserial

import "github.com/jangala-dev/tinygo-diagserial/mmio"

// USART1 on the running chip.
var USART1 = &UART{Bus: mmio.Device}
