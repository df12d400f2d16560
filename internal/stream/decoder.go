// Package stream implements the chat message streaming assembler: frame
// decoding, event parsing, and the part merge engine.
package stream

import (
	"io"
	"strings"
	"unicode/utf8"
)

// dataPrefix marks payload lines in the SSE-flavored framing.
const dataPrefix = "data: "

// FrameDecoder turns the raw response body into logical frame strings. One
// network chunk yields at most one frame: decoded text is split into lines,
// "data: " prefixes are stripped, lines left empty by the strip are dropped,
// and the retained lines are re-joined with "\n". The decoder is a single
// forward pass over the body and cannot be restarted.
type FrameDecoder struct {
	r       io.Reader
	buf     []byte
	pending []byte // trailing bytes of a multi-byte rune split across chunks
	err     error
}

// NewFrameDecoder creates a decoder over a response body.
func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{
		r:   r,
		buf: make([]byte, 4096),
	}
}

// Next returns the next non-empty frame, or io.EOF once the body is
// exhausted. Read errors are returned as-is and are sticky.
func (d *FrameDecoder) Next() (string, error) {
	for {
		if d.err != nil {
			// Flush any held-back bytes before reporting the end.
			if d.err == io.EOF && len(d.pending) > 0 {
				frame := extractFrame(string(d.pending))
				d.pending = nil
				if frame != "" {
					return frame, nil
				}
			}
			return "", d.err
		}

		n, err := d.r.Read(d.buf)
		if n > 0 {
			chunk := append(d.pending, d.buf[:n]...)
			complete, rest := splitIncompleteRune(chunk)
			d.pending = rest
			if frame := extractFrame(string(complete)); frame != "" {
				if err != nil {
					d.err = err
				}
				return frame, nil
			}
		}
		if err != nil {
			d.err = err
		}
	}
}

// extractFrame applies the line discipline to one decoded chunk and returns
// the joined frame, or "" when nothing survives.
func extractFrame(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, dataPrefix) {
			line = strings.TrimPrefix(line, dataPrefix)
			if line == "" {
				continue
			}
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// splitIncompleteRune splits b so that complete ends on a UTF-8 rune
// boundary; rest holds the leading bytes of a rune cut off by the chunk
// boundary.
func splitIncompleteRune(b []byte) (complete, rest []byte) {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		c := b[i]
		if c < utf8.RuneSelf {
			break
		}
		if !utf8.RuneStart(c) {
			continue
		}
		// c starts a multi-byte rune; hold it back unless it decodes fully.
		if r, _ := utf8.DecodeRune(b[i:]); r == utf8.RuneError {
			return b[:i], append([]byte(nil), b[i:]...)
		}
		break
	}
	return b, nil
}
