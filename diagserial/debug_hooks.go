//go:build diagdebug

package diagserial

import "sync/atomic"

// Called after each DR write with the number of SR reads that found TC clear.
func (u *UART) dbgSend(polls int) {
	atomic.AddUint32(&u.stats.Sends, 1)
	atomic.AddUint32(&u.stats.Polls, uint32(polls))
	for {
		max := atomic.LoadUint32(&u.stats.MaxPolls)
		if uint32(polls) <= max {
			break
		}
		if atomic.CompareAndSwapUint32(&u.stats.MaxPolls, max, uint32(polls)) {
			break
		}
	}
}

func (u *UART) dbgBusy() {
	atomic.AddUint32(&u.stats.Busy, 1)
}

func (u *UART) dbgTimeout() {
	atomic.AddUint32(&u.stats.Timeouts, 1)
}
