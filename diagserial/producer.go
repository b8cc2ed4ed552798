package diagserial

// Producer emits one unit of diagnostic output per call.
type Producer interface {
	Produce(uart *UART)
}

// StringProducer prints a fixed NUL-terminated sequence.
type StringProducer struct {
	Seq []byte
}

// NewStringProducer returns a producer for s, terminated with a zero byte.
func NewStringProducer(s string) *StringProducer {
	seq := make([]byte, len(s)+1)
	copy(seq, s)
	return &StringProducer{Seq: seq}
}

func (p *StringProducer) Produce(uart *UART) { uart.PrintSequence(p.Seq) }

// CounterProducer prints a 32-bit counter in hex followed by CRLF, then increments it.
// The counter wraps from 0xFFFFFFFF to 0 and is never reset.
type CounterProducer struct {
	n uint32
}

// NewCounterProducer returns a counter starting at start.
func NewCounterProducer(start uint32) *CounterProducer {
	return &CounterProducer{n: start}
}

// Value is the next value to be printed.
func (p *CounterProducer) Value() uint32 { return p.n }

func (p *CounterProducer) Produce(uart *UART) {
	uart.PrintHex(p.n)
	uart.WriteByte('\r')
	uart.WriteByte('\n')
	p.n++
}

// Run configures uart once and then calls p forever. It returns only if cfg is invalid.
func Run(uart *UART, cfg Config, p Producer) error {
	if err := uart.Configure(cfg); err != nil {
		return err
	}
	for {
		p.Produce(uart)
	}
}

// RunN is Run limited to n calls of p.
func RunN(uart *UART, cfg Config, p Producer, n int) error {
	if err := uart.Configure(cfg); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		p.Produce(uart)
	}
	return nil
}
