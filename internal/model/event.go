package model

import (
	"encoding/json"
	"time"
)

// Delta is the incremental payload of a PartEvent. On the wire it is either
// a JSON string (a text fragment) or a JSON object (a partial non-text part).
type Delta struct {
	Text string
	Part *Part
}

// IsText reports whether the delta carried a text fragment.
func (d *Delta) IsText() bool {
	return d.Part == nil
}

// UnmarshalJSON decodes the string-or-object union.
func (d *Delta) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &d.Text)
	}
	var p Part
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	d.Part = &p
	return nil
}

// MarshalJSON re-encodes the union in its wire shape.
func (d Delta) MarshalJSON() ([]byte, error) {
	if d.Part != nil {
		return json.Marshal(d.Part)
	}
	return json.Marshal(d.Text)
}

// PartEvent is one decoded line of the message stream. Exactly one of Delta
// and Part carries content; Done events carry the authoritative final Part.
type PartEvent struct {
	MessageID string    `json:"message_id"`
	ChatID    string    `json:"chat_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	Delta     *Delta    `json:"delta,omitempty"`
	PartID    string    `json:"part_id,omitempty"`
	Part      *Part     `json:"part,omitempty"`
	Status    string    `json:"status,omitempty"`
	Done      bool      `json:"done,omitempty"`
}

// StatusOnly reports whether the event carries no part content. Such events
// update the session status and must never perturb assembled parts.
func (e PartEvent) StatusOnly() bool {
	return e.Delta == nil && e.Part == nil
}

// Final reports whether the event carries the authoritative final part.
func (e PartEvent) Final() bool {
	return e.Done && e.Part != nil
}
