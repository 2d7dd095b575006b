package devicelink

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the UART rate agreed with the display firmware. It is
// deliberately high: JPEG frames ride the same link as commands.
const DefaultBaudRate = 921600

type serialTransport struct {
	port serial.Port
	name string
}

// openSerial opens the device's USB serial port. The device resets on open
// and prints non-JSON boot logs for a moment; callers are expected to follow
// up with [Session.DrainBoot] before trusting the stream.
func openSerial(name string, baud int) (*serialTransport, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readSlice); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", name, err)
	}

	return &serialTransport{port: port, name: name}, nil
}

func (t *serialTransport) Write(p []byte) (int, error) {
	if t.port == nil {
		return 0, ErrNotConnected
	}
	n, err := t.port.Write(p)
	if err != nil {
		return n, fmt.Errorf("failed to write to %s: %w", t.name, err)
	}
	return n, nil
}

// ReadAvailable reads at most one chunk. A serial read that times out with no
// data is "nothing buffered", not an error: unlike TCP there is no in-band
// close, an unplugged adapter shows up as a write failure later.
func (t *serialTransport) ReadAvailable() ([]byte, error) {
	if t.port == nil {
		return nil, ErrNotConnected
	}

	buf := make([]byte, readChunkSize)
	n, err := t.port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read from %s: %w", t.name, err)
	}
	if n == 0 {
		return nil, nil
	}
	return buf[:n], nil
}

func (t *serialTransport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}
