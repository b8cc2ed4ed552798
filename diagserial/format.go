package diagserial

// PrintSequence transmits seq up to, not including, its first zero byte. A slice with
// no zero byte is sent whole. Each call starts again from seq[0].
func (uart *UART) PrintSequence(seq []byte) {
	for _, c := range seq {
		if c == 0 {
			return
		}
		uart.WriteByte(c)
	}
}

// PrintHex transmits v as exactly eight uppercase hex digits, most significant first.
func (uart *UART) PrintHex(v uint32) {
	for shift := 28; shift >= 0; shift -= 4 {
		uart.WriteByte(hexDigit(v >> uint(shift) & 0xF))
	}
}

func hexDigit(n uint32) byte {
	if n < 10 {
		return '0' + byte(n)
	}
	return 'A' + byte(n-10)
}
