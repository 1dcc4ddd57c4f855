// Package codec stores an item payload inside the free-text description of a
// calendar event.
package codec

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/arrange/pkg/model"
)

const (
	StartMarker = "====ArrangeDataStart===="
	EndMarker   = "====ArrangeDataEnd===="
)

// Codec turns a payload into description text and back. Decode never returns
// an error: a description without a readable payload yields the default
// payload and false. Reporting that is left to the caller.
type Codec interface {
	Encode(p model.Payload) (string, error)
	Decode(text string) (model.Payload, bool)
	// Embed writes p into existing, keeping any text outside the payload block.
	Embed(existing string, p model.Payload) (string, error)
}

// wirePayload is the persisted JSON layout. Every key is always written.
type wirePayload struct {
	Status         model.Status   `json:"status"`
	Urgent         bool           `json:"urgent"`
	Important      bool           `json:"important"`
	Checklist      []string       `json:"checklist"`
	Remarks        *model.Remarks `json:"remarks"`
	StartDateTime  *time.Time     `json:"startDateTime"`
	FinishDateTime *time.Time     `json:"finishDateTime"`
}

// MarkerCodec brackets a JSON object between StartMarker and EndMarker lines.
// Marker text inside checklist lines or remarks is not escaped.
type MarkerCodec struct{}

var _ Codec = MarkerCodec{}

func (MarkerCodec) Encode(p model.Payload) (string, error) {
	w := wirePayload{
		Status:         p.Status,
		Urgent:         p.Urgent,
		Important:      p.Important,
		Checklist:      p.Checklist,
		Remarks:        p.Remarks,
		StartDateTime:  p.StartedAt,
		FinishDateTime: p.FinishedAt,
	}
	if w.Checklist == nil {
		w.Checklist = []string{}
	}
	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return StartMarker + "\n" + string(data) + "\n" + EndMarker, nil
}

func (MarkerCodec) Decode(text string) (model.Payload, bool) {
	start, end, ok := locate(text)
	if !ok {
		return model.DefaultPayload(), false
	}
	raw := strings.TrimSpace(text[start+len(StartMarker) : end])

	def := model.DefaultPayload()
	w := wirePayload{Status: def.Status, Checklist: def.Checklist}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return model.DefaultPayload(), false
	}
	if w.Status == "" {
		w.Status = model.StatusNew
	}
	if !w.Status.Valid() {
		return model.DefaultPayload(), false
	}
	// Remarks of a kind this program cannot write are dropped.
	if w.Remarks != nil && w.Remarks.Kind != model.RemarksText && w.Remarks.Kind != model.RemarksMarkdown {
		w.Remarks = nil
	}
	if w.Checklist == nil {
		w.Checklist = []string{}
	}
	return model.Payload{
		Status:     w.Status,
		Urgent:     w.Urgent,
		Important:  w.Important,
		Checklist:  w.Checklist,
		Remarks:    w.Remarks,
		StartedAt:  w.StartDateTime,
		FinishedAt: w.FinishDateTime,
	}, true
}

func (c MarkerCodec) Embed(existing string, p model.Payload) (string, error) {
	block, err := c.Encode(p)
	if err != nil {
		return "", err
	}
	if start, end, ok := locate(existing); ok {
		return existing[:start] + block + existing[end+len(EndMarker):], nil
	}
	// A start marker with no end marker after it is a truncated block; drop it.
	if start := strings.Index(existing, StartMarker); start >= 0 {
		existing = existing[:start]
	}
	if strings.TrimSpace(existing) == "" {
		return block, nil
	}
	return strings.TrimRight(existing, "\n") + "\n\n" + block, nil
}

// locate returns the offsets of the first start marker and the first end
// marker following it.
func locate(text string) (start, end int, ok bool) {
	start = strings.Index(text, StartMarker)
	if start < 0 {
		return 0, 0, false
	}
	rel := strings.Index(text[start+len(StartMarker):], EndMarker)
	if rel < 0 {
		return 0, 0, false
	}
	return start, start + len(StartMarker) + rel, true
}
