package stream

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/studyhall-ai/studyhall-go/internal/model"
	"github.com/studyhall-ai/studyhall-go/pkg/metrics"
)

// MalformedPolicy controls what the parser does with a line that fails to
// decode as a PartEvent.
type MalformedPolicy string

const (
	// PolicyFail aborts the whole stream on the first malformed line.
	PolicyFail MalformedPolicy = "fail"
	// PolicySkip drops malformed lines and keeps consuming.
	PolicySkip MalformedPolicy = "skip"
)

// DecodeError reports a line that failed to decode as a PartEvent.
type DecodeError struct {
	Line string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode stream event: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EventParser turns decoded frames into validated PartEvents. A frame may
// batch several JSON objects separated by newlines.
type EventParser struct {
	dec     *FrameDecoder
	policy  MalformedPolicy
	queue   []model.PartEvent
	err     error
	skipped int
}

// NewEventParser creates a parser over a frame decoder.
func NewEventParser(dec *FrameDecoder, policy MalformedPolicy) *EventParser {
	if policy == "" {
		policy = PolicyFail
	}
	return &EventParser{dec: dec, policy: policy}
}

// Next returns the next event, io.EOF once the body is exhausted, or a
// *DecodeError under PolicyFail when a line is malformed. Events decoded
// before a malformed line are still delivered; the error surfaces once they
// are drained.
func (p *EventParser) Next() (model.PartEvent, error) {
	for len(p.queue) == 0 && p.err == nil {
		frame, err := p.dec.Next()
		if err != nil {
			p.err = err
			break
		}
		for _, line := range strings.Split(frame, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			var ev model.PartEvent
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				if p.policy == PolicySkip {
					p.skipped++
					metrics.StreamDecodeErrors.Inc()
					continue
				}
				p.err = &DecodeError{Line: line, Err: err}
				break
			}
			p.queue = append(p.queue, ev)
		}
	}
	if len(p.queue) > 0 {
		ev := p.queue[0]
		p.queue = p.queue[1:]
		return ev, nil
	}
	return model.PartEvent{}, p.err
}

// Skipped reports how many malformed lines were dropped under PolicySkip.
func (p *EventParser) Skipped() int {
	return p.skipped
}
