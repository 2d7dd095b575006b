package devicelink

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// SendImage pushes a JPEG to the display with the three-phase image handoff:
// announce the byte count, wait for {"status":"ready"}, stream the raw bytes
// unframed, then wait for the decode verdict. A non-ready reply to the
// announcement (busy, error, timeout) short-circuits the transfer and not a
// single payload byte is written, which keeps the line stream parseable.
//
// The final wait uses the session's decode timeout rather than the response
// timeout: JPEG decode on the device is the slowest operation the protocol
// has.
func (s *Session) SendImage(ctx context.Context, jpeg []byte, opts ...CallOption) (Response, error) {
	ctx, span := tracer.Start(ctx, "send image to device")
	defer span.End()
	span.SetAttributes(attribute.Int("image.bytes", len(jpeg)))

	call := CallOptions{Timeout: s.options.DecodeTimeout}
	for _, opt := range opts {
		opt(&call)
	}

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if err := s.writeLine(Command{"cmd": "image", "len": len(jpeg)}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	ready, err := s.awaitResponse(ctx, s.options.ReadyTimeout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if ready.Status() != StatusReady {
		logger.Warn("device not ready for image transfer", "status", ready.Status())
		return ready, nil
	}

	if len(jpeg) > 0 {
		s.writeMu.Lock()
		_, err = s.transport.Write(jpeg)
		s.writeMu.Unlock()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	final, err := s.awaitResponse(ctx, call.Timeout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return final, nil
}
