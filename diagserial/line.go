package diagserial

import (
	"fmt"
	"strconv"
)

// Parity defines the parity setting of a serial line.
type Parity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone Parity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

// Letter returns the conventional one-letter notation: N, E or O.
func (p Parity) Letter() byte {
	switch p {
	case ParityEven:
		return 'E'
	case ParityOdd:
		return 'O'
	default:
		return 'N'
	}
}

// LineConfig is the derived line configuration of USART1.
type LineConfig struct {
	BaudRate uint32
	ClockHz  uint32
	DataBits uint8
	StopBits uint8
	Parity   Parity

	// Divisor is the BRR value: clock/baud rounded, in sixteenths, so bits 15:4 are
	// the mantissa and bits 3:0 the fraction of clock/(16*baud).
	Divisor uint16
}

// NewLineConfig validates cfg and derives the 8N1 line configuration.
func NewLineConfig(cfg Config) (LineConfig, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.ClockHz == 0 {
		cfg.ClockHz = DefaultClockHz
	}
	div, err := Divisor(cfg.ClockHz, cfg.BaudRate)
	if err != nil {
		return LineConfig{}, err
	}
	return LineConfig{
		BaudRate: cfg.BaudRate,
		ClockHz:  cfg.ClockHz,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
		Divisor:  div,
	}, nil
}

// Divisor returns round(clockHz / (16*baud)) as a 12.4 fixed-point value.
// The mantissa must be at least 1 and the result must fit the 16-bit BRR.
func Divisor(clockHz, baud uint32) (uint16, error) {
	if baud == 0 {
		return 0, errBaudRate
	}
	if clockHz == 0 {
		return 0, errClock
	}
	div := (uint64(clockHz) + uint64(baud)/2) / uint64(baud)
	if div < 0x10 || div > 0xFFFF {
		return 0, fmt.Errorf("%w: %d baud from %d Hz", errDivisor, baud, clockHz)
	}
	return uint16(div), nil
}

// Mantissa is the integer part of the divisor.
func (l LineConfig) Mantissa() uint16 { return l.Divisor >> 4 }

// Fraction is the divisor's fractional part in sixteenths.
func (l LineConfig) Fraction() uint8 { return uint8(l.Divisor & 0xF) }

// ActualBaud is the rate the hardware produces with the rounded divisor.
func (l LineConfig) ActualBaud() uint32 {
	if l.Divisor == 0 {
		return 0
	}
	return l.ClockHz / uint32(l.Divisor)
}

// Settings formats data, parity and stop bits as e.g. "8N1".
func (l LineConfig) Settings() string {
	return string([]byte{'0' + l.DataBits, l.Parity.Letter(), '0' + l.StopBits})
}

// String formats the line as "<baud>,<settings>", e.g. "9600,8N1".
func (l LineConfig) String() string {
	return strconv.FormatUint(uint64(l.BaudRate), 10) + "," + l.Settings()
}

// ParseSettings parses data bits, parity and stop bits in the conventional
// notation, with or without dashes: "8N1", "8-N-1", "7e2".
func ParseSettings(s string) (databits uint8, parity Parity, stopbits uint8, err error) {
	b := make([]byte, 0, 3)
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			b = append(b, s[i])
		}
	}
	if len(b) != 3 {
		return 0, 0, 0, ErrParse("diagserial.ParseSettings: want <data><parity><stop>")
	}
	if b[0] < '5' || b[0] > '8' {
		return 0, 0, 0, ErrParse("diagserial.ParseSettings: invalid databits")
	}
	databits = b[0] - '0'
	switch b[1] {
	case 'N', 'n':
		parity = ParityNone
	case 'E', 'e':
		parity = ParityEven
	case 'O', 'o':
		parity = ParityOdd
	default:
		return 0, 0, 0, ErrParse("diagserial.ParseSettings: invalid parity")
	}
	if b[2] != '1' && b[2] != '2' {
		return 0, 0, 0, ErrParse("diagserial.ParseSettings: invalid stopbits")
	}
	stopbits = b[2] - '0'
	return databits, parity, stopbits, nil
}

// CheckSettings reports whether s names the only format the transmitter produces.
func CheckSettings(s string) error {
	d, p, st, err := ParseSettings(s)
	if err != nil {
		return err
	}
	if d != 8 || p != ParityNone || st != 1 {
		return errSettings
	}
	return nil
}

// ErrParse is the error returned if ParseSettings fails.
type ErrParse string

func (e ErrParse) Error() string { return string(e) }
