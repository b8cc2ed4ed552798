// Package config loads board profiles for the host tools. A profile names the clock
// feeding USART1, the line settings, which firmware variant to simulate and the serial
// port a real board is attached to.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/jangala-dev/tinygo-diagserial/diagserial"
)

//go:embed bluepill.yaml
var rawDefault []byte

// Firmware variants.
const (
	VariantString  = "string"
	VariantCounter = "counter"
)

// Profile describes one board and how to exercise it.
type Profile struct {
	ClockHz    uint32 `yaml:"clock_hz"`
	Baud       uint32 `yaml:"baud"`
	Settings   string `yaml:"settings"`
	Variant    string `yaml:"variant"`
	Message    string `yaml:"message"`
	Start      uint32 `yaml:"start"`
	Iterations int    `yaml:"iterations"`
	Latency    int    `yaml:"latency"`
	Port       string `yaml:"port"`
}

// Default returns the built-in Blue Pill profile.
func Default() Profile {
	p, err := Parse(rawDefault)
	if err != nil {
		panic(err)
	}
	return p
}

// Load reads a profile from path. Keys missing from the file keep their defaults.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, err
	}
	p, err := parseOnto(Profile{}, rawDefault)
	if err != nil {
		return Profile{}, err
	}
	p, err = parseOnto(p, data)
	if err != nil {
		return Profile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (Profile, error) {
	return parseOnto(Profile{}, data)
}

func parseOnto(p Profile, data []byte) (Profile, error) {
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, err
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that the firmware could be configured from p.
func (p Profile) Validate() error {
	if _, err := diagserial.NewLineConfig(p.DiagConfig()); err != nil {
		return err
	}
	if p.Settings != "" {
		if err := diagserial.CheckSettings(p.Settings); err != nil {
			return err
		}
	}
	switch p.Variant {
	case VariantString, VariantCounter:
	default:
		return fmt.Errorf("config: unknown variant %q", p.Variant)
	}
	if p.Iterations < 0 {
		return errors.New("config: iterations must not be negative")
	}
	if p.Latency < 0 {
		return errors.New("config: latency must not be negative")
	}
	return nil
}

// DiagConfig is the firmware configuration p describes.
func (p Profile) DiagConfig() diagserial.Config {
	return diagserial.Config{BaudRate: p.Baud, ClockHz: p.ClockHz}
}

// Producer returns a fresh producer for p's variant.
func (p Profile) Producer() diagserial.Producer {
	if p.Variant == VariantString {
		return diagserial.NewStringProducer(p.Message)
	}
	return diagserial.NewCounterProducer(p.Start)
}

// BindFlags registers flags that override fields of p.
func (p *Profile) BindFlags(fs *pflag.FlagSet) {
	fs.Uint32Var(&p.ClockHz, "clock", p.ClockHz, "APB2 clock feeding USART1, in Hz")
	fs.Uint32VarP(&p.Baud, "baud", "b", p.Baud, "line baud rate")
	fs.StringVar(&p.Settings, "settings", p.Settings, "data bits, parity and stop bits")
	fs.StringVar(&p.Variant, "variant", p.Variant, "firmware variant (=string, =counter)")
	fs.StringVarP(&p.Message, "message", "m", p.Message, "string variant payload")
	fs.Uint32Var(&p.Start, "start", p.Start, "counter variant start value")
	fs.IntVarP(&p.Iterations, "iterations", "n", p.Iterations, "number of producer calls")
	fs.IntVar(&p.Latency, "latency", p.Latency, "simulated SR reads per frame")
	fs.StringVarP(&p.Port, "port", "p", p.Port, "serial device")
}

// Override copies into p every field whose flag was set on fs, taking values from
// flags, the profile BindFlags was called on. The result is validated.
func (p *Profile) Override(fs *pflag.FlagSet, flags Profile) error {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "clock":
			p.ClockHz = flags.ClockHz
		case "baud":
			p.Baud = flags.Baud
		case "settings":
			p.Settings = flags.Settings
		case "variant":
			p.Variant = flags.Variant
		case "message":
			p.Message = flags.Message
		case "start":
			p.Start = flags.Start
		case "iterations":
			p.Iterations = flags.Iterations
		case "latency":
			p.Latency = flags.Latency
		case "port":
			p.Port = flags.Port
		}
	})
	return p.Validate()
}
