package diagserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivisor(t *testing.T) {
	cases := []struct {
		clock, baud uint32
		want        uint16
	}{
		{8_000_000, 9600, 0x341},
		{8_000_000, 115200, 0x45},
		{72_000_000, 9600, 0x1D4C},
		{72_000_000, 115200, 0x271},
		{8_000_000, 500_000, 0x10},
	}
	for _, tc := range cases {
		got, err := Divisor(tc.clock, tc.baud)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%d/%d", tc.clock, tc.baud)
	}
}

func TestDivisorErrors(t *testing.T) {
	_, err := Divisor(8_000_000, 0)
	assert.ErrorIs(t, err, errBaudRate)
	_, err = Divisor(0, 9600)
	assert.ErrorIs(t, err, errClock)
	_, err = Divisor(8_000_000, 600_000)
	assert.ErrorIs(t, err, errDivisor)
	_, err = Divisor(72_000_000, 1000)
	assert.ErrorIs(t, err, errDivisor)
}

func TestNewLineConfigDefaults(t *testing.T) {
	l, err := NewLineConfig(Config{})
	require.NoError(t, err)
	assert.Equal(t, uint32(DefaultBaudRate), l.BaudRate)
	assert.Equal(t, uint32(DefaultClockHz), l.ClockHz)
	assert.Equal(t, uint16(0x34), l.Mantissa())
	assert.Equal(t, uint8(0x1), l.Fraction())
	assert.Equal(t, uint32(9603), l.ActualBaud())
	assert.Equal(t, "8N1", l.Settings())
	assert.Equal(t, "9600,8N1", l.String())
}

func TestParseSettings(t *testing.T) {
	d, p, s, err := ParseSettings("8N1")
	require.NoError(t, err)
	assert.Equal(t, uint8(8), d)
	assert.Equal(t, ParityNone, p)
	assert.Equal(t, uint8(1), s)

	d, p, s, err = ParseSettings("7-e-2")
	require.NoError(t, err)
	assert.Equal(t, uint8(7), d)
	assert.Equal(t, ParityEven, p)
	assert.Equal(t, uint8(2), s)

	for _, bad := range []string{"", "8N", "9N1", "8X1", "8N3", "8N1N"} {
		_, _, _, err := ParseSettings(bad)
		var perr ErrParse
		assert.ErrorAs(t, err, &perr, "%q", bad)
	}
}

func TestCheckSettings(t *testing.T) {
	assert.NoError(t, CheckSettings("8n1"))
	assert.NoError(t, CheckSettings("8-N-1"))
	assert.ErrorIs(t, CheckSettings("8E1"), errSettings)
	assert.ErrorIs(t, CheckSettings("7N1"), errSettings)
	assert.Error(t, CheckSettings("junk"))
}

func TestParityLetter(t *testing.T) {
	assert.Equal(t, byte('N'), ParityNone.Letter())
	assert.Equal(t, byte('E'), ParityEven.Letter())
	assert.Equal(t, byte('O'), ParityOdd.Letter())
}
