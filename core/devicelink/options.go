package devicelink

import "time"

type SessionOptions struct {
	// ResponseTimeout bounds the wait for a command response.
	ResponseTimeout time.Duration
	// ReadyTimeout bounds the wait for the image handshake's "ready".
	ReadyTimeout time.Duration
	// DecodeTimeout bounds the wait for the image handshake's final status.
	// It is longer than ResponseTimeout because the device decodes the JPEG
	// before answering.
	DecodeTimeout time.Duration
	// ConnectTimeout bounds both the TCP dial and the wait for the firmware's
	// connected greeting.
	ConnectTimeout time.Duration
	// EventQueueCap caps the pending event queue; beyond it the oldest event
	// is dropped.
	EventQueueCap int

	port int
	baud int
}

func defaultSessionOptions() SessionOptions {
	return SessionOptions{
		ResponseTimeout: 5 * time.Second,
		ReadyTimeout:    3 * time.Second,
		DecodeTimeout:   10 * time.Second,
		ConnectTimeout:  3 * time.Second,
		EventQueueCap:   256,
		port:            DefaultPort,
		baud:            DefaultBaudRate,
	}
}

type SessionOption func(*SessionOptions)

func WithResponseTimeout(timeout time.Duration) SessionOption {
	return func(o *SessionOptions) { o.ResponseTimeout = timeout }
}

func WithReadyTimeout(timeout time.Duration) SessionOption {
	return func(o *SessionOptions) { o.ReadyTimeout = timeout }
}

func WithDecodeTimeout(timeout time.Duration) SessionOption {
	return func(o *SessionOptions) { o.DecodeTimeout = timeout }
}

func WithConnectTimeout(timeout time.Duration) SessionOption {
	return func(o *SessionOptions) { o.ConnectTimeout = timeout }
}

func WithEventQueueCap(cap int) SessionOption {
	return func(o *SessionOptions) {
		if cap > 0 {
			o.EventQueueCap = cap
		}
	}
}

// WithPort overrides the TCP port for [DialTCP].
func WithPort(port int) SessionOption {
	return func(o *SessionOptions) {
		if port > 0 {
			o.port = port
		}
	}
}

// WithBaudRate overrides the serial baud rate for [OpenSerial].
func WithBaudRate(baud int) SessionOption {
	return func(o *SessionOptions) {
		if baud > 0 {
			o.baud = baud
		}
	}
}

type CallOptions struct {
	Timeout time.Duration
}

type CallOption func(*CallOptions)

// WithTimeout overrides the session's default wait for this call only.
func WithTimeout(timeout time.Duration) CallOption {
	return func(o *CallOptions) { o.Timeout = timeout }
}
