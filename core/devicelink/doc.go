// Package devicelink speaks the companion device's line protocol over a
// serial port or a TCP socket.
//
// Every frame on the wire is one JSON object terminated by a newline. The
// device answers each command with exactly one status response, and pushes
// touch/button events unsolicited on the same stream. The protocol carries no
// request identifiers, so a session allows at most one command to be awaiting
// its response at any time; that invariant is enforced by an exclusive
// session token held for the whole of [Session.SendCommand] and
// [Session.SendImage].
//
// Fire-and-forget traffic (mouth animation frames) deliberately bypasses the
// token through [Session.Notify]: it writes a single line atomically and never
// reads, so it cannot steal a response meant for the primary flow.
package devicelink
