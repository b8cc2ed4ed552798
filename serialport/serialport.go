// Package serialport opens the host end of the diagnostic line: a USB serial adapter
// wired to PA9/PA10 of the board. Ports are opened raw at an arbitrary baud rate and
// held under an exclusive lock so two monitors never split the byte stream.
package serialport

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"tinygo.org/x/drivers"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
)

var (
	// ErrUnsupported is returned by Open on platforms without a port implementation.
	ErrUnsupported = errors.New("serialport: not supported on this platform")
	// ErrLocked is returned by Open when another process holds the port.
	ErrLocked = errors.New("serialport: port in use")

	errNoName = errors.New("serialport: no port name")
	errBaud   = errors.New("serialport: invalid baud rate")
)

// Config contains the information needed to open a port.
type Config struct {
	Name        string
	Baud        uint32
	Settings    string        // e.g. "8N1"; empty means 8N1
	ReadTimeout time.Duration // 0 blocks until at least one byte arrives
	LockDir     string        // empty means os.TempDir()
}

// Port is an open serial device.
type Port struct {
	name string
	f    *os.File
	lock *flock.Flock
}

var _ drivers.UART = (*Port)(nil)

// Open opens and configures c.Name.
func Open(c Config) (*Port, error) {
	if c.Name == "" {
		return nil, errNoName
	}
	if c.Baud == 0 {
		return nil, errBaud
	}
	settings := c.Settings
	if settings == "" {
		settings = "8N1"
	}
	databits, parity, stopbits, err := diagserial.ParseSettings(settings)
	if err != nil {
		return nil, err
	}

	lock := flock.New(lockPath(c.LockDir, c.Name))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrLocked
	}

	f, err := openPort(c.Name, c.Baud, databits, parity, stopbits, c.ReadTimeout)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	return &Port{name: c.Name, f: f, lock: lock}, nil
}

// Name is the device path.
func (p *Port) Name() string { return p.name }

// Read blocks until at least one byte arrives or the read timeout expires. An expired
// timeout is 0, nil; a tty has no end of file.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.f.Read(b)
	if n == 0 && err == io.EOF {
		return 0, nil
	}
	return n, err
}

func (p *Port) Write(b []byte) (int, error) { return p.f.Write(b) }

// ReadByte blocks until one byte has been read, across read timeouts.
func (p *Port) ReadByte() (byte, error) {
	var b [1]byte
	for {
		n, err := p.Read(b[:])
		if n == 1 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Buffered returns the number of received bytes not yet read.
func (p *Port) Buffered() int { return inq(p.f) }

// Close releases the device and the lock.
func (p *Port) Close() error {
	err := p.f.Close()
	if uerr := p.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}

// lockPath names the lock file guarding port. Device paths contain slashes, so the
// file is named from a short hash of the path instead.
func lockPath(dir, port string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "diagserial-"+shortHash(port)+".lock")
}

// 6 letter hash
func shortHash(str string) string {
	bs := sha256.Sum256([]byte(str))
	return hex.EncodeToString(bs[:])[:6]
}

// posixTimeoutValues converts a read timeout to termios VMIN/VTIME.
func posixTimeoutValues(readTimeout time.Duration) (vmin uint8, vtime uint8) {
	const maxUint8 = 1<<8 - 1
	var minBytesToRead uint8 = 1
	var readTimeoutInDeci int64
	if readTimeout > 0 {
		// EOF on zero read
		minBytesToRead = 0
		readTimeoutInDeci = readTimeout.Milliseconds() / 100
		if readTimeoutInDeci < 1 {
			readTimeoutInDeci = 1
		} else if readTimeoutInDeci > maxUint8 {
			readTimeoutInDeci = maxUint8
		}
	}
	return minBytesToRead, uint8(readTimeoutInDeci)
}
