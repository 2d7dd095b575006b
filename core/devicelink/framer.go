package devicelink

import (
	"bytes"
	"strings"
)

// lineFramer splits an ordered byte stream into newline-terminated lines,
// keeping the unterminated remainder as carry-over between pushes. The
// resulting line sequence is independent of how the stream was chunked.
type lineFramer struct {
	buf []byte
}

// push appends data and returns every complete line it can now extract.
// Lines are trimmed of surrounding whitespace and decoded as UTF-8 with
// invalid sequences replaced, never rejected: boot noise must not be able to
// wedge the reader. Blank lines are dropped.
func (f *lineFramer) push(data []byte) []string {
	f.buf = append(f.buf, data...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			return lines
		}
		raw := f.buf[:i]
		f.buf = f.buf[i+1:]

		line := strings.TrimSpace(strings.ToValidUTF8(string(raw), "�"))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
}

// reset discards the carry-over buffer. Used when draining boot output, where
// a trailing partial line is garbage by definition.
func (f *lineFramer) reset() {
	f.buf = nil
}
