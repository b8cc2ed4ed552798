package sim

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// Terminal is the receiving end of the simulated serial line: an 8N1 receiver at a
// fixed baud rate. Frames whose format does not match are counted as framing errors
// instead of being delivered. It is safe for one writer (the bus) and one reader.
type Terminal struct {
	BaudRate uint32

	mu            sync.Mutex
	rx            ring
	framingErrors int
	overruns      int

	notify    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
}

// ErrBufferEmpty is returned by ReadByte when nothing has been received.
var ErrBufferEmpty = errors.New("sim: terminal buffer empty")

var errTerminalTx = errors.New("sim: terminal transmit is not modelled")

var _ drivers.UART = (*Terminal)(nil)

// Tolerance is the largest relative baud mismatch the receiver accepts, in percent.
const Tolerance = 2

// NewTerminal returns a receiver at baud holding up to size unread bytes. When full
// the oldest byte is dropped and counted as an overrun.
func NewTerminal(baud uint32, size int) *Terminal {
	if size <= 0 {
		size = 512
	}
	return &Terminal{
		BaudRate: baud,
		rx:       ring{buf: make([]byte, size+1)},
		notify:   make(chan struct{}, 1),
		closed:   make(chan struct{}),
	}
}

// frame is called by the bus when a frame has been shifted out.
func (t *Terminal) frame(b byte, l Line) {
	if !t.accepts(l) {
		t.mu.Lock()
		t.framingErrors++
		t.mu.Unlock()
		return
	}
	t.Receive(b)
}

func (t *Terminal) accepts(l Line) bool {
	if l.DataBits != 8 || l.Parity || l.StopCode != 0 || l.BaudRate == 0 {
		return false
	}
	diff := int64(l.BaudRate) - int64(t.BaudRate)
	if diff < 0 {
		diff = -diff
	}
	return diff*100 <= int64(t.BaudRate)*Tolerance
}

// Receive inserts one byte into the receive buffer and coalesces a wake-up.
func (t *Terminal) Receive(b byte) {
	t.mu.Lock()
	wasEmpty := t.rx.len() == 0
	if t.rx.put(b) {
		t.overruns++
	}
	t.mu.Unlock()
	if wasEmpty {
		t.tryNotify()
	}
}

// Read copies buffered bytes into p without blocking. It returns 0, nil when nothing
// is buffered and 0, io.EOF once the terminal is closed and drained.
func (t *Terminal) Read(p []byte) (int, error) {
	closed := t.isClosed()
	t.mu.Lock()
	n := t.rx.readInto(p)
	t.mu.Unlock()
	if n == 0 && len(p) > 0 && closed {
		return 0, io.EOF
	}
	return n, nil
}

// ReadByte reads a single buffered byte.
func (t *Terminal) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.rx.len() == 0 {
		return 0, ErrBufferEmpty
	}
	return t.rx.get(), nil
}

// Buffered returns the number of unread bytes.
func (t *Terminal) Buffered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rx.len()
}

// Write implements io.Writer for drivers.UART. The simulated line has no return path.
func (t *Terminal) Write(p []byte) (int, error) {
	return 0, errTerminalTx
}

// FramingErrors counts frames rejected for a format mismatch.
func (t *Terminal) FramingErrors() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.framingErrors
}

// holding reports whether a flow-controlled sender must wait: the buffer is full and
// the terminal is still open.
func (t *Terminal) holding() bool {
	if t.isClosed() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rx.len() == len(t.rx.buf)-1
}

// Overruns counts bytes dropped because the buffer was full.
func (t *Terminal) Overruns() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.overruns
}

// WaitReadable blocks until data is buffered, the terminal is closed, or ctx is done.
func (t *Terminal) WaitReadable(ctx context.Context) error {
	if t.Buffered() > 0 {
		return nil
	}
	for {
		select {
		case <-t.notify:
			if t.Buffered() > 0 {
				return nil
			}
		case <-t.closed:
			if t.Buffered() > 0 {
				return nil
			}
			return io.EOF
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadBlocking blocks until at least one byte is available, then reads up to len(p).
func (t *Terminal) ReadBlocking(ctx context.Context, p []byte) (int, error) {
	for {
		if n, err := t.Read(p); n > 0 || err != nil {
			return n, err
		}
		if err := t.WaitReadable(ctx); err != nil {
			return 0, err
		}
	}
}

// ReadFullBlocking blocks until len(p) bytes have been read.
func (t *Terminal) ReadFullBlocking(ctx context.Context, p []byte) (int, error) {
	read := 0
	for read < len(p) {
		if n, _ := t.Read(p[read:]); n > 0 {
			read += n
			continue
		}
		if err := t.WaitReadable(ctx); err != nil {
			return read, err
		}
	}
	return read, nil
}

// ReadWithTimeout is ReadBlocking bounded by d.
func (t *Terminal) ReadWithTimeout(p []byte, d time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return t.ReadBlocking(ctx, p)
}

// Close marks the line as finished. Buffered bytes stay readable.
func (t *Terminal) Close() error {
	t.closeOnce.Do(func() { close(t.closed) })
	return nil
}

func (t *Terminal) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}

func (t *Terminal) tryNotify() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}
