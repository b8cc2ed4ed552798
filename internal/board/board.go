// Package board holds the Blue Pill helpers shared by the firmware images.
package board

import "time"

// FailPeriod is the half-period of the configuration-error blink.
const FailPeriod = 100 * time.Millisecond

// Pin is the part of machine.Pin the helpers drive.
type Pin interface {
	High()
	Low()
}

// Blink lights led for d, darkens it for d, n times; n < 0 repeats forever. PC13 is
// active low, so Low lights it.
func Blink(led Pin, d time.Duration, n int, sleep func(time.Duration)) {
	for i := 0; n < 0 || i < n; i++ {
		led.Low()
		sleep(d)
		led.High()
		sleep(d)
	}
}
