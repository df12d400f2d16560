package stream

import (
	"github.com/studyhall-ai/studyhall-go/internal/model"
)

// Merge folds one event into the accumulated parts of a message and returns
// the new sequence. It is pure: the input slice is never mutated, and a
// status-only event returns it untouched. Matching positions are preserved;
// unmatched final parts and fresh deltas append at the end.
func Merge(existing []model.Part, ev model.PartEvent) []model.Part {
	switch {
	case ev.StatusOnly():
		return existing
	case ev.Final():
		return mergeFinal(existing, *ev.Part)
	case ev.Delta != nil:
		if ev.Delta.IsText() {
			return mergeTextDelta(existing, ev.PartID, ev.Delta.Text)
		}
		return mergePartDelta(existing, *ev.Delta.Part)
	default:
		// A done event without a part has nothing to merge.
		return existing
	}
}

// mergeFinal replaces the part accumulated from deltas with its
// authoritative final form, trying progressively weaker matches before
// appending as new. Replace-over-append is what keeps a retried done event
// idempotent.
func mergeFinal(existing []model.Part, part model.Part) []model.Part {
	if i := matchFinal(existing, part); i >= 0 {
		out := make([]model.Part, len(existing))
		copy(out, existing)
		out[i] = part
		return out
	}
	return appendPart(existing, part)
}

func matchFinal(existing []model.Part, part model.Part) int {
	// 1. Explicit id.
	if part.ID != "" {
		for i, p := range existing {
			if p.ID == part.ID {
				return i
			}
		}
	}

	// 2. Source documents match by source_id; order drifts across retries.
	if part.Type == model.PartTypeSourceDocument && part.SourceID != "" {
		for i, p := range existing {
			if p.Type == model.PartTypeSourceDocument && p.SourceID == part.SourceID {
				return i
			}
		}
	}

	// 3. (order, type) pair.
	for i, p := range existing {
		if p.Type == part.Type && p.Order == part.Order {
			return i
		}
	}

	// 4. Single-text-part turns where id/order tracking failed: take the
	// first text part.
	if part.Type == model.PartTypeText && len(existing) > 0 {
		for i, p := range existing {
			if p.Type == model.PartTypeText {
				return i
			}
		}
	}

	// 5. Source id alone, ignoring order and id.
	if part.Type == model.PartTypeSourceDocument && part.SourceID != "" {
		for i, p := range existing {
			if p.SourceID == part.SourceID {
				return i
			}
		}
	}

	return -1
}

// mergeTextDelta concatenates a text fragment onto the part it belongs to,
// located by part id when the event carries one, else by order zero. A miss
// starts a new text part; its order stays a placeholder until the final
// authoritative part arrives.
func mergeTextDelta(existing []model.Part, partID, text string) []model.Part {
	idx := -1
	for i, p := range existing {
		if p.Type != model.PartTypeText {
			continue
		}
		if partID != "" {
			if p.ID == partID {
				idx = i
				break
			}
			continue
		}
		if p.Order == 0 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return appendPart(existing, model.TextPart(partID, 0, text))
	}
	out := make([]model.Part, len(existing))
	copy(out, existing)
	out[idx].TextContent += text
	return out
}

// mergePartDelta appends a partial non-text part unless an equivalent one is
// already present, making re-delivered deltas a no-op.
func mergePartDelta(existing []model.Part, part model.Part) []model.Part {
	for _, p := range existing {
		if isDuplicate(p, part) {
			return existing
		}
	}
	return appendPart(existing, part)
}

func isDuplicate(a, b model.Part) bool {
	if a.Type != b.Type {
		return false
	}
	switch b.Type {
	case model.PartTypeText:
		return a.Order == b.Order
	case model.PartTypeSourceDocument:
		return a.SourceID == b.SourceID
	default:
		return a.Order == b.Order
	}
}

func appendPart(existing []model.Part, part model.Part) []model.Part {
	out := make([]model.Part, len(existing), len(existing)+1)
	copy(out, existing)
	return append(out, part)
}
