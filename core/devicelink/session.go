package devicelink

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/amielabs/amie-core/core/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Session multiplexes synchronous command/response exchanges and unsolicited
// device events over one Transport.
//
// Concurrency contract: cmdMu is the session's exclusive-access token — every
// path that writes a command and then reads for its response (SendCommand,
// SendImage) and every path that reads the transport at all (CollectEvents,
// DrainBoot) holds it. writeMu only guarantees that raw writes are atomic, so
// Notify can interleave whole lines with the primary flow without corrupting
// framing.
type Session struct {
	transport Transport
	options   SessionOptions

	cmdMu   sync.Mutex
	writeMu sync.Mutex

	framer lineFramer

	eventsMu sync.Mutex
	events   []events.Event
}

// NewSession wraps an already-open transport. Most callers want [DialTCP],
// [OpenSerial], or [Connect] instead.
func NewSession(transport Transport, opts ...SessionOption) *Session {
	options := defaultSessionOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Session{transport: transport, options: options}
}

// DialTCP connects to the device over WiFi and consumes the
// {"status":"connected"} greeting the firmware sends on accept, so the first
// real command does not mistake the greeting for its response.
func DialTCP(ctx context.Context, host string, opts ...SessionOption) (*Session, error) {
	ctx, span := tracer.Start(ctx, "dial device over tcp")
	defer span.End()
	span.SetAttributes(attribute.String("device.host", host))

	options := defaultSessionOptions()
	for _, opt := range opts {
		opt(&options)
	}

	transport, err := dialTCP(host, options.port, options.ConnectTimeout)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	session := &Session{transport: transport, options: options}
	greeting, err := session.awaitResponse(ctx, options.ConnectTimeout)
	if err != nil {
		transport.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed reading connect greeting: %w", err)
	}
	if greeting.IsTimeout() {
		logger.Warn("device sent no connect greeting", "host", host)
	}

	return session, nil
}

// OpenSerial opens the device over its USB serial port.
func OpenSerial(name string, opts ...SessionOption) (*Session, error) {
	options := defaultSessionOptions()
	for _, opt := range opts {
		opt(&options)
	}

	transport, err := openSerial(name, options.baud)
	if err != nil {
		return nil, err
	}
	return &Session{transport: transport, options: options}, nil
}

// Connect routes a target string to the right transport: anything that looks
// like a serial device path or COM name opens serial, everything else is
// treated as a hostname or IP.
func Connect(ctx context.Context, target string, opts ...SessionOption) (*Session, error) {
	if strings.HasPrefix(target, "/dev/") || strings.HasPrefix(target, "COM") {
		return OpenSerial(target, opts...)
	}
	return DialTCP(ctx, target, opts...)
}

// SendCommand writes one command and blocks until its response arrives or the
// deadline elapses. Events received while waiting are queued for
// [Session.CollectEvents], never lost. A missing response is returned as the
// {"status":"timeout"} sentinel with a nil error: timeouts are recoverable
// and the caller decides whether to retry.
func (s *Session) SendCommand(ctx context.Context, cmd Command, opts ...CallOption) (Response, error) {
	call := CallOptions{Timeout: s.options.ResponseTimeout}
	for _, opt := range opts {
		opt(&call)
	}

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if err := s.writeLine(cmd); err != nil {
		return nil, err
	}
	return s.awaitResponse(ctx, call.Timeout)
}

// Notify writes one command as a single atomic line and returns without
// reading. It never consumes a response, so it is safe to call while another
// goroutine is blocked in SendCommand or SendImage.
func (s *Session) Notify(cmd Command) error {
	return s.writeLine(cmd)
}

// CollectEvents drains whatever the transport has buffered, classifies it,
// and returns every queued event in arrival order, clearing the queue.
// Stale responses found while draining belong to no outstanding command and
// are discarded. The call does not block beyond the transport's read slice.
func (s *Session) CollectEvents() ([]events.Event, error) {
	s.cmdMu.Lock()
	err := s.drainAvailable()
	s.cmdMu.Unlock()
	if err != nil {
		return nil, err
	}

	s.eventsMu.Lock()
	collected := s.events
	s.events = nil
	s.eventsMu.Unlock()
	return collected, nil
}

// DrainBoot waits out the device's boot chatter and then discards everything
// buffered, unclassified: boot logs are not protocol traffic and must not end
// up in the event queue.
func (s *Session) DrainBoot(wait time.Duration) error {
	time.Sleep(wait)

	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()
	for {
		data, err := s.transport.ReadAvailable()
		if err != nil {
			return err
		}
		if len(data) == 0 {
			break
		}
	}
	s.framer.reset()
	return nil
}

func (s *Session) Close() error {
	if s.transport == nil {
		return nil
	}
	return s.transport.Close()
}

func (s *Session) writeLine(cmd Command) error {
	line, err := cmd.encode()
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.transport.Write(line); err != nil {
		return err
	}
	return nil
}

// awaitResponse reads, frames, and classifies until the first response line
// appears or the deadline passes. The greedy first-response rule is the
// protocol's correctness boundary; it is only sound because cmdMu guarantees
// a single outstanding command. Callers must hold cmdMu.
func (s *Session) awaitResponse(ctx context.Context, timeout time.Duration) (Response, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := s.transport.ReadAvailable()
		if err != nil {
			return nil, err
		}

		for _, line := range s.framer.push(data) {
			switch msg := classify(line); msg.kind {
			case kindEvent:
				s.enqueueEvent(msg.event)
			case kindResponse:
				return msg.response, nil
			}
		}

		if len(data) == 0 {
			// Real transports pace the loop through their read slice; in-memory
			// ones return instantly.
			time.Sleep(2 * time.Millisecond)
		}
	}
	return timeoutResponse(), nil
}

// drainAvailable classifies everything currently buffered without waiting for
// more. Callers must hold cmdMu.
func (s *Session) drainAvailable() error {
	for {
		data, err := s.transport.ReadAvailable()
		if err != nil {
			return err
		}

		for _, line := range s.framer.push(data) {
			if msg := classify(line); msg.kind == kindEvent {
				s.enqueueEvent(msg.event)
			}
		}

		if len(data) == 0 {
			return nil
		}
	}
}

func (s *Session) enqueueEvent(event events.Event) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	if len(s.events) >= s.options.EventQueueCap {
		logger.Warn("event queue full, dropping oldest event",
			"cap", s.options.EventQueueCap, "dropped", s.events[0].Kind())
		s.events = s.events[1:]
	}
	s.events = append(s.events, event)
}
