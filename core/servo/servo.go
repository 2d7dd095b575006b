// Package servo talks to the arm controller over USB serial. The wire
// protocol is two line commands: S<angle> positions the arm, C<r>,<g>,<b>
// sets the indicator LED. The arm physically expresses interest, so the
// useful range is a narrow slice of the servo's travel.
package servo

import (
	"fmt"
	"io"
	"math"
	"sync"

	goserial "go.bug.st/serial"
)

const (
	// MinAngle and MaxAngle bound the arm's travel. The controller accepts 0
	// to 270 but anything outside this window strains the linkage.
	MinAngle = 120
	MaxAngle = 150

	// InitAngle is the neutral position taken on connect.
	InitAngle = 135

	DefaultBaudRate = 115200
)

type Link struct {
	port io.WriteCloser
	name string
	mu   sync.Mutex
}

type LinkOption func(*linkConfig)

type linkConfig struct {
	baud      int
	initAngle int
}

func WithBaudRate(baud int) LinkOption {
	return func(c *linkConfig) { c.baud = baud }
}

func WithInitAngle(angle int) LinkOption {
	return func(c *linkConfig) { c.initAngle = angle }
}

// Open connects to the servo controller and drives the arm to its starting
// position.
func Open(name string, opts ...LinkOption) (*Link, error) {
	config := linkConfig{baud: DefaultBaudRate, initAngle: InitAngle}
	for _, opt := range opts {
		opt(&config)
	}

	port, err := goserial.Open(name, &goserial.Mode{BaudRate: config.baud})
	if err != nil {
		return nil, fmt.Errorf("failed to open servo port %s: %w", name, err)
	}

	link := &Link{port: port, name: name}
	if err := link.SetAngle(config.initAngle); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to initialize servo angle: %w", err)
	}
	logger.Info("servo connected", "port", name, "init_angle", config.initAngle)
	return link, nil
}

// SetAngle positions the arm, clamping to the safe travel window.
func (l *Link) SetAngle(angle int) error {
	angle = clampAngle(angle)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.port, "S%d\n", angle); err != nil {
		return fmt.Errorf("failed to write servo angle: %w", err)
	}
	return nil
}

// SetColor sets the indicator LED.
func (l *Link) SetColor(r, g, b int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := fmt.Fprintf(l.port, "C%d,%d,%d\n", r, g, b); err != nil {
		return fmt.Errorf("failed to write servo color: %w", err)
	}
	return nil
}

// SetInterest drives the arm from an interest score and returns the love
// value the display expects for the same score.
func (l *Link) SetInterest(interest float64) (float64, error) {
	angle := InterestToAngle(interest)
	if err := l.SetAngle(angle); err != nil {
		return 0, err
	}
	logger.Debug("servo interest applied", "interest", interest, "angle", angle)
	return InterestToLove(interest), nil
}

func (l *Link) Close() error {
	return l.port.Close()
}

// InterestToAngle maps interest 0-10 linearly onto the safe travel window.
func InterestToAngle(interest float64) int {
	t := math.Max(0, math.Min(10, interest)) / 10
	return int(MinAngle + t*(MaxAngle-MinAngle))
}

// InterestToLove maps interest 0-10 onto the display's 0-1 love range.
func InterestToLove(interest float64) float64 {
	return math.Max(0, math.Min(1, interest/10))
}

func clampAngle(angle int) int {
	if angle < MinAngle {
		return MinAngle
	}
	if angle > MaxAngle {
		return MaxAngle
	}
	return angle
}
