//go:build !diagdebug

package diagserial

func (u *UART) dbgSend(int) {}
func (u *UART) dbgBusy()    {}
func (u *UART) dbgTimeout() {}
