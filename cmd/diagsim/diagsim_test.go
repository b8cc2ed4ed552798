package main

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jangala-dev/tinygo-diagserial/internal/config"
)

func init() {
	log.Out = io.Discard
}

func TestRunCounter(t *testing.T) {
	p := config.Default()
	p.Iterations = 3
	p.Start = 0xFFFF_FFFF
	runOpts.check = true
	defer func() { runOpts.check = false }()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, p))
	assert.Equal(t, "FFFFFFFF\r\n00000000\r\n00000001\r\n", out.String())
}

func TestRunLongCounterLosesNothing(t *testing.T) {
	p := config.Default()
	p.Iterations = 20000
	runOpts.check = true
	defer func() { runOpts.check = false }()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, p))
	assert.Equal(t, 20000*10, out.Len())
	assert.True(t, strings.HasSuffix(out.String(), "00004E1F\r\n"))
}

func TestRunStringEscapes(t *testing.T) {
	p := config.Default()
	p.Variant = config.VariantString
	p.Message = "a\x1bb\r\n"
	p.Iterations = 2

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, p))
	assert.Equal(t, "a\\x1bb\r\na\\x1bb\r\n", out.String())
}

func TestRunBaudMismatch(t *testing.T) {
	p := config.Default()
	p.Iterations = 1
	runOpts.termBaud = 115200
	defer func() { runOpts.termBaud = 0 }()

	var out bytes.Buffer
	err := run(context.Background(), &out, p)
	assert.ErrorContains(t, err, "framing errors")
	assert.Empty(t, out.String())
}

func TestRegs(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, regs(&out, config.Default()))
	s := out.String()
	assert.Contains(t, s, "9600,8N1")
	assert.Contains(t, s, "USART1_BRR")
	assert.Contains(t, s, "0x000341")
	assert.Contains(t, s, "0x444448b4")
	assert.NotContains(t, s, "fault:")
}
