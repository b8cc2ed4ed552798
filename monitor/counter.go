// Package monitor reads the diagnostic stream on the host and checks it.
package monitor

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
)

// maxLine bounds the line buffer; a line longer than this is malformed.
const maxLine = 64

// CounterChecker verifies the output of the counter firmware: CRLF-terminated lines of
// eight uppercase hex digits, each one more than the last, modulo 2^32. It is an
// io.Writer, so the stream can be copied into it.
//
// The first line is allowed to be partial, since a monitor usually attaches while the
// board is already running.
type CounterChecker struct {
	Log logrus.FieldLogger

	line      []byte
	overlong  bool
	started   bool
	last      uint32
	lines     int
	gaps      int
	malformed int
}

// NewCounterChecker returns a checker logging to log, which may be nil.
func NewCounterChecker(log logrus.FieldLogger) *CounterChecker {
	return &CounterChecker{Log: log}
}

// Write consumes stream bytes. It never fails.
func (c *CounterChecker) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			c.buffer(p)
			break
		}
		c.buffer(p[:i])
		c.endLine()
		p = p[i+1:]
	}
	return n, nil
}

func (c *CounterChecker) buffer(p []byte) {
	if c.overlong {
		return
	}
	if len(c.line)+len(p) > maxLine {
		c.overlong = true
		c.line = c.line[:0]
		return
	}
	c.line = append(c.line, p...)
}

func (c *CounterChecker) endLine() {
	line := bytes.TrimSuffix(c.line, []byte{'\r'})
	overlong := c.overlong
	c.line = c.line[:0]
	c.overlong = false

	v, ok := parseCounter(line)
	if overlong || !ok {
		if !c.started {
			// Leading fragment from attaching mid-line.
			c.started = true
			return
		}
		c.started = true
		c.malformed++
		c.logger().WithField("line", strconv.Quote(string(line))).Warn("malformed counter line")
		return
	}

	if c.lines > 0 && v != c.last+1 {
		c.gaps++
		c.logger().WithFields(logrus.Fields{
			"want": hex8(c.last + 1),
			"got":  hex8(v),
		}).Warn("counter gap")
	}
	c.started = true
	c.last = v
	c.lines++
}

// Lines is the number of well-formed counter lines seen.
func (c *CounterChecker) Lines() int { return c.lines }

// Gaps is the number of lines that did not follow their predecessor.
func (c *CounterChecker) Gaps() int { return c.gaps }

// Malformed is the number of lines that were not eight uppercase hex digits.
func (c *CounterChecker) Malformed() int { return c.malformed }

// Last is the most recent counter value.
func (c *CounterChecker) Last() uint32 { return c.last }

// OK reports whether at least one line was seen and nothing was wrong.
func (c *CounterChecker) OK() bool {
	return c.lines > 0 && c.gaps == 0 && c.malformed == 0
}

func (c *CounterChecker) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

func parseCounter(line []byte) (uint32, bool) {
	if len(line) != 8 {
		return 0, false
	}
	for _, b := range line {
		if !(b >= '0' && b <= '9' || b >= 'A' && b <= 'F') {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(string(line), 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

func hex8(v uint32) string { return fmt.Sprintf("%08X", v) }
