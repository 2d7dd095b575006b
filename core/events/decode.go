package events

// FromWire decodes a device event object into its typed representation.
// fields is the full decoded JSON object; the "event" key names the kind.
// Coordinates default to -1 when the firmware omits them, matching how
// callers treat an off-panel touch.
func FromWire(fields map[string]any) Event {
	name, _ := fields["event"].(string)

	switch Kind(name) {
	case KindTouch:
		return NewTouchEvent(intField(fields, "x", -1), intField(fields, "y", -1))
	case KindButtonPress:
		return NewButtonPressEvent()
	case KindButtonDown:
		return NewButtonDownEvent()
	case KindButtonUp:
		return NewButtonUpEvent()
	}

	rest := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "event" {
			continue
		}
		rest[k] = v
	}
	return NewUnknownEvent(name, rest)
}

func intField(fields map[string]any, key string, fallback int) int {
	// encoding/json decodes every number into float64.
	if v, ok := fields[key].(float64); ok {
		return int(v)
	}
	return fallback
}
