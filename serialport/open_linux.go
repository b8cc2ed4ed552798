//go:build linux

package serialport

import (
	"errors"
	"os"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
)

var (
	errBadSize     = errors.New("serialport: unsupported databits")
	errBadStopBits = errors.New("serialport: unsupported stopbits")
)

func openPort(name string, baud uint32, databits uint8, parity diagserial.Parity, stopbits uint8, readTimeout time.Duration) (*os.File, error) {
	fh, err := os.OpenFile(name, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, err
	}
	f, err := setupPort(fh, baud, databits, parity, stopbits, readTimeout)
	if err != nil {
		fh.Close()
		return nil, err
	}
	return f, nil
}

func setupPort(f *os.File, baud uint32, databits uint8, parity diagserial.Parity, stopbits uint8, readTimeout time.Duration) (*os.File, error) {
	// BOTHER takes the rate from Ispeed/Ospeed instead of a Bxxx constant.
	var cflag uint32 = unix.CREAD | unix.CLOCAL | unix.BOTHER | unix.HUPCL
	switch databits {
	case 5:
		cflag |= unix.CS5
	case 6:
		cflag |= unix.CS6
	case 7:
		cflag |= unix.CS7
	case 8:
		cflag |= unix.CS8
	default:
		return nil, errBadSize
	}
	switch stopbits {
	case 1:
	case 2:
		cflag |= unix.CSTOPB
	default:
		return nil, errBadStopBits
	}
	switch parity {
	case diagserial.ParityOdd:
		cflag |= unix.PARENB | unix.PARODD
	case diagserial.ParityEven:
		cflag |= unix.PARENB
	}

	vmin, vtime := posixTimeoutValues(readTimeout)
	t := unix.Termios{
		Iflag:  unix.IGNPAR,
		Cflag:  cflag,
		Ispeed: baud,
		Ospeed: baud,
	}
	t.Cc[unix.VMIN] = vmin
	t.Cc[unix.VTIME] = vtime

	fd := f.Fd()

	// Raise DTR; HUPCL drops it again on close, which resets some adapters.
	dtr := unix.TIOCM_DTR
	unix.Syscall(unix.SYS_IOCTL, fd, uintptr(unix.TIOCMBIS), uintptr(unsafe.Pointer(&dtr)))

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, uintptr(unix.TCSETS2), uintptr(unsafe.Pointer(&t))); errno != 0 {
		return nil, errno
	}
	if err := unix.SetNonblock(int(fd), false); err != nil {
		return nil, err
	}
	return f, nil
}

func inq(f *os.File) int {
	n, err := unix.IoctlGetInt(int(f.Fd()), unix.TIOCINQ)
	if err != nil {
		return 0
	}
	return n
}
