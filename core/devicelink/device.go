package devicelink

import (
	"context"
	"math"
	"time"

	"github.com/amielabs/amie-core/core/events"
)

// Device wraps a Session with the firmware's command vocabulary. Confirmed
// calls go through SendCommand and return the device's reply; the notify
// variants skip acknowledgment for traffic where latency beats reliability,
// like per-frame mouth updates.
type Device struct {
	session *Session
}

func NewDevice(session *Session) *Device {
	return &Device{session: session}
}

// Session exposes the underlying link for event collection and image pushes.
func (d *Device) Session() *Session {
	return d.session
}

// Face switches the animated face mode on or off.
func (d *Device) Face(ctx context.Context, on bool) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "face", "on": on})
}

// Mouth sets mouth openness and waits for the acknowledgment.
func (d *Device) Mouth(ctx context.Context, open float64) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "mouth", "open": roundOpenness(open)})
}

// NotifyMouth sets mouth openness fire-and-forget. This is the per-frame
// path of lip sync: it holds no session token, so it can run while the
// conversation flow is mid-command.
func (d *Device) NotifyMouth(open float64) error {
	return d.session.Notify(Command{"cmd": "mouth", "open": roundOpenness(open)})
}

// Love sets the floating-hearts intensity, 0 to 1.
func (d *Device) Love(ctx context.Context, value float64) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "love", "value": clamp01(value)})
}

// Blink triggers a single manual blink.
func (d *Device) Blink(ctx context.Context) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "blink"})
}

// Backlight switches the display backlight.
func (d *Device) Backlight(ctx context.Context, on bool) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "bl", "on": on})
}

// Clear fills the screen with a "#RRGGBB" color and leaves face mode.
func (d *Device) Clear(ctx context.Context, color string) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "clear", "color": color})
}

// Tone plays a buzzer tone of freq hertz for dur milliseconds.
func (d *Device) Tone(ctx context.Context, freq, dur int) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "tone", "freq": freq, "dur": dur})
}

// Melody plays a melody string on the buzzer.
func (d *Device) Melody(ctx context.Context, notes string) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "melody", "notes": notes})
}

// StopAudio stops whatever the buzzer is playing.
func (d *Device) StopAudio(ctx context.Context) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "stop"})
}

// ShowImage displays a JPEG, which implicitly disables face mode.
func (d *Device) ShowImage(ctx context.Context, jpeg []byte, opts ...CallOption) (Response, error) {
	return d.session.SendImage(ctx, jpeg, opts...)
}

// WifiStatus queries the device's network state.
func (d *Device) WifiStatus(ctx context.Context) (Response, error) {
	return d.session.SendCommand(ctx, Command{"cmd": "wifi"})
}

// CollectEvents drains events queued on the underlying session.
func (d *Device) CollectEvents() ([]events.Event, error) {
	return d.session.CollectEvents()
}

// DrainBoot discards the firmware's boot chatter; see Session.DrainBoot.
func (d *Device) DrainBoot(wait time.Duration) error {
	return d.session.DrainBoot(wait)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// roundOpenness clamps to [0,1] and rounds to two decimals so every mouth
// line stays short on the wire.
func roundOpenness(open float64) float64 {
	return math.Round(clamp01(open)*100) / 100
}
