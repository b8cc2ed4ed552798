//go:build stm32f103

package board

import (
	"machine"
	"time"
)

// Fail reports a configuration error and blinks the LED forever; USART1 is not usable,
// so the LED is the only output left.
func Fail(err error) {
	println("diagserial configure error:", err.Error())
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	Blink(led, FailPeriod, -1, time.Sleep)
}
