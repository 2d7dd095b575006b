package events

// TouchEvent reports a tap on the touch panel. X and Y are panel coordinates
// in the 0–479 range, origin top-left.
type TouchEvent struct {
	Base
	X int
	Y int
}

func (t TouchEvent) String() string { return "Touch" }

func NewTouchEvent(x, y int) TouchEvent {
	return TouchEvent{Base: NewBase(KindTouch), X: x, Y: y}
}

// ButtonPressEvent is the legacy single press event emitted by firmware that
// predates the down/up pair.
type ButtonPressEvent struct{ Base }

func (b ButtonPressEvent) String() string { return "Button Press" }

func NewButtonPressEvent() ButtonPressEvent {
	return ButtonPressEvent{Base: NewBase(KindButtonPress)}
}

type ButtonDownEvent struct{ Base }

func (b ButtonDownEvent) String() string { return "Button Down" }

func NewButtonDownEvent() ButtonDownEvent {
	return ButtonDownEvent{Base: NewBase(KindButtonDown)}
}

type ButtonUpEvent struct{ Base }

func (b ButtonUpEvent) String() string { return "Button Up" }

func NewButtonUpEvent() ButtonUpEvent {
	return ButtonUpEvent{Base: NewBase(KindButtonUp)}
}

// UnknownEvent carries any event name this build does not recognize. Fields
// holds the raw decoded JSON object minus the "event" key so callers can still
// inspect firmware additions without a library upgrade.
type UnknownEvent struct {
	Base
	Name   string
	Fields map[string]any
}

func (u UnknownEvent) String() string { return "Unknown (" + u.Name + ")" }

func NewUnknownEvent(name string, fields map[string]any) UnknownEvent {
	return UnknownEvent{Base: NewBase(KindUnknown), Name: name, Fields: fields}
}
