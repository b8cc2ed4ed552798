package serialport

import (
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/exp/slices"
)

// Device names a USB serial adapter or onboard UART usually shows up under.
var portNameFilter = regexp.MustCompile(`^(ttyS|ttyUSB|ttyACM|ttyAMA|cu\.usbserial|cu\.usbmodem)`)

// List returns the candidate serial devices under /dev, sorted.
func List() ([]string, error) {
	return listPorts("/dev")
}

func listPorts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	ports := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !portNameFilter.MatchString(e.Name()) {
			continue
		}
		ports = append(ports, filepath.Join(dir, e.Name()))
	}
	slices.Sort(ports)
	return ports, nil
}
