// Package events defines the typed device event contract.
//
// Events arrive unsolicited on the device link, interleaved with command
// responses. They are decoded exactly once, at line classification time, into
// the types below; downstream consumers switch on the concrete type instead of
// sniffing JSON keys.
//
// Event kinds:
//
//   - Touch (touch): a tap on the 480×480 touch panel, with panel coordinates.
//   - ButtonDown (button_down): the physical side button was pressed.
//   - ButtonUp (button_up): the physical side button was released.
//   - ButtonPress (button): legacy single press reported by firmware that does
//     not emit the down/up pair.
//   - Unknown: any event name this build does not recognize; the raw fields
//     are preserved so callers can still inspect it.
package events
