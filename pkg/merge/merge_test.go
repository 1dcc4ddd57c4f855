package merge

import (
	"testing"
	"time"

	"github.com/harrisonrobin/arrange/pkg/model"
)

// stepClock returns a clock that advances one minute on every call.
func stepClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func TestMergeEmptyUpdateIsIdentity(t *testing.T) {
	started := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	p := model.Payload{
		Status:    model.StatusInProgress,
		Urgent:    true,
		Checklist: []string{"one", "two"},
		Remarks:   &model.Remarks{Kind: model.RemarksText, Content: "hi"},
		StartedAt: &started,
	}
	got := Merge(&p, model.Update{}, stepClock(started))
	if !got.Equal(p) {
		t.Errorf("Expected %+v, got %+v", p, got)
	}
}

func TestMergeSetsOnlyGivenFields(t *testing.T) {
	p := model.Payload{Status: model.StatusNew, Urgent: true, Important: true, Checklist: []string{"keep"}}
	got := Merge(&p, model.Update{Urgent: model.Some(false)}, nil)

	if got.Urgent {
		t.Error("Expected urgent to be cleared")
	}
	if !got.Important || got.Status != model.StatusNew || len(got.Checklist) != 1 {
		t.Errorf("unset fields changed: %+v", got)
	}
	if got.StartedAt != nil || got.FinishedAt != nil {
		t.Errorf("timestamps should stay unset: %+v", got)
	}
}

func TestMergeStartedAtIsWriteOnce(t *testing.T) {
	clock := stepClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	p := model.DefaultPayload()

	p1 := Merge(&p, model.Update{Status: model.Some(model.StatusInProgress)}, clock)
	if p1.StartedAt == nil {
		t.Fatal("Expected startedAt to be set")
	}
	first := *p1.StartedAt

	p2 := Merge(&p1, model.Update{Status: model.Some(model.StatusNew)}, clock)
	if p2.StartedAt == nil || !p2.StartedAt.Equal(first) {
		t.Errorf("startedAt changed after revert: %v", p2.StartedAt)
	}
	p3 := Merge(&p2, model.Update{Status: model.Some(model.StatusInProgress)}, clock)
	if !p3.StartedAt.Equal(first) {
		t.Errorf("startedAt changed on second transition: %v != %v", *p3.StartedAt, first)
	}
	if p3.FinishedAt != nil {
		t.Error("finishedAt should not be set")
	}
}

func TestMergeFinishedAtIsWriteOnce(t *testing.T) {
	clock := stepClock(time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC))
	p1 := Merge(nil, model.Update{Status: model.Some(model.StatusFinished)}, clock)
	if p1.FinishedAt == nil {
		t.Fatal("Expected finishedAt to be set")
	}
	if p1.StartedAt != nil {
		t.Error("startedAt must only be set by inProgress")
	}
	p2 := Merge(&p1, model.Update{Status: model.Some(model.StatusFinished)}, clock)
	if !p2.FinishedAt.Equal(*p1.FinishedAt) {
		t.Errorf("finishedAt overwritten: %v", p2.FinishedAt)
	}
}

func TestMergeNilExistingUsesDefault(t *testing.T) {
	got := Merge(nil, model.Update{}, nil)
	if !got.Equal(model.DefaultPayload()) {
		t.Errorf("Expected default payload, got %+v", got)
	}
	if got.Checklist == nil {
		t.Error("Expected non-nil checklist")
	}
}

func TestMergeDoesNotAliasExisting(t *testing.T) {
	p := model.Payload{Status: model.StatusNew, Checklist: []string{"a", "b"}, Remarks: &model.Remarks{Content: "x"}}
	got := Merge(&p, model.Update{}, nil)
	got.Checklist[0] = "changed"
	got.Remarks.Content = "changed"
	if p.Checklist[0] != "a" || p.Remarks.Content != "x" {
		t.Errorf("existing payload was mutated: %+v", p)
	}

	lines := []string{"z"}
	got = Merge(&p, model.Update{Checklist: model.Some(lines), Remarks: model.Some[*model.Remarks](nil)}, nil)
	lines[0] = "changed"
	if got.Checklist[0] != "z" {
		t.Error("merged checklist aliases the update")
	}
	if got.Remarks != nil {
		t.Error("Expected remarks set to null")
	}
	if p.Remarks == nil {
		t.Error("existing remarks cleared")
	}
}
