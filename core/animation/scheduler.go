// Package animation plays a mouth envelope against the wall clock. The
// scheduler owns the timing contract of lip sync: frames go out on absolute
// deadlines so jitter never accumulates, and the mouth always ends closed.
package animation

import (
	"context"
	"time"

	"github.com/amielabs/amie-core/core/audio/envelope"
)

// SendFunc delivers one mouth openness value to the device. It is called on
// the scheduler's cadence and must not block; the fire-and-forget notify path
// of a device session is the intended implementation.
type SendFunc func(open float64) error

// Scheduler walks an envelope frame by frame. Each frame's deadline is
// computed from the animation start, never from the previous frame, so a
// slow send or a late wakeup shifts one frame without drifting the rest.
type Scheduler struct{}

// Run sends every frame of env and blocks until the animation completes or
// ctx is cancelled. Whichever way it ends, exactly one closing zero is sent
// afterward. Send failures are logged and skipped: one lost frame is
// invisible, a stalled animation is not.
func (Scheduler) Run(ctx context.Context, env envelope.Envelope, send SendFunc) error {
	start := time.Now()

	for i, frame := range env.Frames {
		if err := ctx.Err(); err != nil {
			closeMouth(send)
			return err
		}

		if err := send(frame); err != nil {
			logger.Debug("dropping mouth frame", "frame", i, "error", err)
		}

		deadline := start.Add(time.Duration(i+1) * env.FrameDuration)
		if err := sleepUntil(ctx, deadline); err != nil {
			closeMouth(send)
			return err
		}
	}

	closeMouth(send)
	return nil
}

func closeMouth(send SendFunc) {
	if err := send(0); err != nil {
		logger.Debug("dropping closing mouth frame", "error", err)
	}
}

func sleepUntil(ctx context.Context, deadline time.Time) error {
	wait := time.Until(deadline)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
