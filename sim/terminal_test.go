package sim

import (
	"context"
	"io"
	"testing"
	"time"
)

// newTestTerminal returns a 9600 baud terminal with a small buffer.
func newTestTerminal() *Terminal {
	return NewTerminal(9600, 16)
}

// goodLine is what a correctly configured USART1 puts on the wire.
var goodLine = Line{BaudRate: 9603, DataBits: 8}

func TestRead_NonBlockingSemantics(t *testing.T) {
	term := newTestTerminal()
	buf := make([]byte, 8)

	if n, err := term.Read(buf); err != nil || n != 0 {
		t.Fatalf("Read on empty: n=%d err=%v; want 0,nil", n, err)
	}

	term.Receive('A')
	term.Receive('B')
	term.Receive('C')

	n, err := term.Read(buf)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 3 || string(buf[:n]) != "ABC" {
		t.Fatalf("got n=%d data=%q; want 3, \"ABC\"", n, string(buf[:n]))
	}

	if n, _ := term.Read(buf); n != 0 {
		t.Fatalf("expected empty after drain, got n=%d", n)
	}
}

func TestRead_EOFAfterCloseAndDrain(t *testing.T) {
	term := newTestTerminal()
	term.Receive('x')
	term.Close()

	buf := make([]byte, 4)
	if n, err := term.Read(buf); n != 1 || err != nil {
		t.Fatalf("first Read: n=%d err=%v; want 1,nil", n, err)
	}
	if n, err := term.Read(buf); n != 0 || err != io.EOF {
		t.Fatalf("second Read: n=%d err=%v; want 0,EOF", n, err)
	}
}

func TestFrame_AcceptsWithinTolerance(t *testing.T) {
	term := newTestTerminal()
	term.frame('k', goodLine)

	if got, err := term.ReadByte(); err != nil || got != 'k' {
		t.Fatalf("got %q err=%v; want 'k'", got, err)
	}
	if term.FramingErrors() != 0 {
		t.Fatalf("framing errors = %d; want 0", term.FramingErrors())
	}
}

func TestFrame_RejectsMismatchedLine(t *testing.T) {
	cases := []Line{
		{BaudRate: 115200, DataBits: 8},
		{BaudRate: 9600, DataBits: 9},
		{BaudRate: 9600, DataBits: 8, StopCode: 2},
		{BaudRate: 9600, DataBits: 8, Parity: true},
		{BaudRate: 0, DataBits: 8},
	}
	term := newTestTerminal()
	for _, l := range cases {
		term.frame('z', l)
	}
	if term.Buffered() != 0 {
		t.Fatalf("buffered = %d; want 0", term.Buffered())
	}
	if term.FramingErrors() != len(cases) {
		t.Fatalf("framing errors = %d; want %d", term.FramingErrors(), len(cases))
	}
}

func TestReceive_OverrunDropsOldest(t *testing.T) {
	term := NewTerminal(9600, 4)
	for _, c := range []byte("abcdef") {
		term.Receive(c)
	}
	buf := make([]byte, 8)
	n, _ := term.Read(buf)
	if string(buf[:n]) != "cdef" {
		t.Fatalf("got %q; want \"cdef\"", string(buf[:n]))
	}
	if term.Overruns() != 2 {
		t.Fatalf("overruns = %d; want 2", term.Overruns())
	}
}

func TestReadBlocking_UnblocksOnReceive(t *testing.T) {
	term := newTestTerminal()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	buf := make([]byte, 8)
	done := make(chan struct{})
	var n int
	var err error

	go func() {
		defer close(done)
		n, err = term.ReadBlocking(ctx, buf)
	}()

	time.Sleep(20 * time.Millisecond)
	term.Receive('Z')

	select {
	case <-done:
	case <-time.After(300 * time.Millisecond):
		t.Fatal("timeout waiting for ReadBlocking")
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 || buf[0] != 'Z' {
		t.Fatalf("got n=%d data=%q; want 1, \"Z\"", n, string(buf[:n]))
	}
}

func TestReadFullBlocking_ReadsExactLen(t *testing.T) {
	term := newTestTerminal()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	want := []byte("HELLO")
	got := make([]byte, len(want))

	done := make(chan struct{})
	var n int
	var err error

	go func() {
		defer close(done)
		n, err = term.ReadFullBlocking(ctx, got)
	}()

	time.Sleep(10 * time.Millisecond)
	for i := range want {
		term.Receive(want[i])
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(600 * time.Millisecond):
		t.Fatal("timeout waiting for ReadFullBlocking")
	}

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != len(want) || string(got) != string(want) {
		t.Fatalf("got %q (n=%d), want %q", string(got), n, string(want))
	}
}

func TestWaitReadable_RespectsClose(t *testing.T) {
	term := newTestTerminal()

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- term.WaitReadable(ctx) }()

	term.Close()

	select {
	case err := <-done:
		if err != io.EOF {
			t.Fatalf("err = %v; want io.EOF after close", err)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("timeout waiting for WaitReadable to return after close")
	}
}

func TestReadWithTimeout_Expires(t *testing.T) {
	term := newTestTerminal()
	n, err := term.ReadWithTimeout(make([]byte, 4), 20*time.Millisecond)
	if n != 0 || err != context.DeadlineExceeded {
		t.Fatalf("n=%d err=%v; want 0, DeadlineExceeded", n, err)
	}
}

func TestWrite_NotModelled(t *testing.T) {
	term := newTestTerminal()
	if n, err := term.Write([]byte("x")); n != 0 || err == nil {
		t.Fatalf("Write: n=%d err=%v; want 0, non-nil", n, err)
	}
}

func TestNonBlockingReadAfterMultipleNotifies(t *testing.T) {
	term := newTestTerminal()
	term.tryNotify()
	term.tryNotify()
	term.tryNotify() // no data
	if n, err := term.Read(make([]byte, 4)); err != nil || n != 0 {
		t.Fatalf("Read on empty after notifies: n=%d err=%v", n, err)
	}
}
