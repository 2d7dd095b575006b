package devicelink

import (
	"errors"
	"time"
)

// Transport is an ordered, reliable byte stream to the device.
//
// ReadAvailable returns whatever bytes are currently buffered, possibly none;
// it never blocks longer than a short internal slice. A peer that has closed
// the stream surfaces as [ErrConnectionClosed], never as an empty read —
// callers must be able to tell "no data yet" from "the device went away".
type Transport interface {
	Write(p []byte) (int, error)
	ReadAvailable() ([]byte, error)
	Close() error
}

var (
	ErrConnectionClosed = errors.New("devicelink: connection closed")
	ErrNotConnected     = errors.New("devicelink: not connected")
)

// readSlice bounds how long a single ReadAvailable may wait for bytes. It
// paces the response-wait loop without making it busy.
const readSlice = 50 * time.Millisecond

const readChunkSize = 4096
