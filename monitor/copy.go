package monitor

import (
	"context"
	"io"
	"time"

	"tinygo.org/x/drivers"
)

// PollInterval is how long Copy sleeps when src has nothing buffered and cannot signal
// readability itself.
var PollInterval = 5 * time.Millisecond

// readWaiter is implemented by sources that can block until data arrives.
type readWaiter interface {
	WaitReadable(ctx context.Context) error
}

// Copy streams src into dst until src reports io.EOF or ctx is done, and returns the
// number of source bytes consumed. With escape set, bytes other than printable ASCII,
// tab, CR and LF are written as \xHH so control bytes cannot reach a terminal.
func Copy(ctx context.Context, dst io.Writer, src drivers.UART, escape bool) (int64, error) {
	var (
		buf   [256]byte
		esc   []byte
		total int64
	)
	waiter, hasWait := src.(readWaiter)

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := src.Read(buf[:])
		if n > 0 {
			total += int64(n)
			out := buf[:n]
			if escape {
				esc = Escape(esc[:0], out)
				out = esc
			}
			if _, werr := dst.Write(out); werr != nil {
				return total, werr
			}
			continue
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}

		if hasWait {
			if err := waiter.WaitReadable(ctx); err != nil {
				if err == io.EOF {
					// Drained on the next Read.
					continue
				}
				return total, err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}

// Escape appends p to dst with control and non-ASCII bytes replaced by \xHH.
func Escape(dst, p []byte) []byte {
	const digits = "0123456789abcdef"
	for _, b := range p {
		switch {
		case b == '\r', b == '\n', b == '\t', b >= 0x20 && b < 0x7F:
			dst = append(dst, b)
		default:
			dst = append(dst, '\\', 'x', digits[b>>4], digits[b&0xF])
		}
	}
	return dst
}

// Drain discards everything src has buffered.
func Drain(src drivers.UART) int {
	var buf [64]byte
	total := 0
	for src.Buffered() > 0 {
		n, err := src.Read(buf[:])
		total += n
		if n == 0 || err != nil {
			break
		}
	}
	return total
}
