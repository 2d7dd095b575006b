package devicelink

import (
	"encoding/json"
	"fmt"

	"github.com/amielabs/amie-core/core/events"
)

// Command is a single request object sent to the device. The "cmd" key names
// the operation; remaining keys are operation arguments. The session treats
// commands opaquely, it only guarantees the framing and response pairing.
type Command map[string]any

func (c Command) encode() ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}
	return append(data, '\n'), nil
}

// Response is the device's reply to a command. The "status" key is always
// present; remaining keys depend on the command.
type Response map[string]any

// Status values the firmware is known to produce. StatusTimeout is never sent
// by the device: it is the sentinel the session returns when no response
// arrived within the deadline.
const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusError     = "error"
	StatusTimeout   = "timeout"
	StatusConnected = "connected"
)

func (r Response) Status() string {
	s, _ := r["status"].(string)
	return s
}

// IsTimeout reports whether r is the session's no-response sentinel.
func (r Response) IsTimeout() bool { return r.Status() == StatusTimeout }

func timeoutResponse() Response { return Response{"status": StatusTimeout} }

type messageKind int

const (
	kindMalformed messageKind = iota
	kindEvent
	kindResponse
)

// message is the tagged classification of one wire line, decided exactly once.
type message struct {
	kind     messageKind
	event    events.Event
	response Response
}

// classify sorts a framed line into event, response, or malformed. An "event"
// key wins over "status" when both are present. Non-JSON lines are malformed
// by definition: the device shares its stream with boot logs and debug
// prints, so they are dropped rather than reported.
func classify(line string) message {
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil {
		return message{kind: kindMalformed}
	}

	if _, ok := fields["event"]; ok {
		return message{kind: kindEvent, event: events.FromWire(fields)}
	}
	if _, ok := fields["status"]; ok {
		return message{kind: kindResponse, response: Response(fields)}
	}
	return message{kind: kindMalformed}
}
