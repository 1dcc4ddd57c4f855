package matrix

import (
	"testing"

	"github.com/harrisonrobin/arrange/pkg/model"
)

func TestClassifyIsTotal(t *testing.T) {
	cases := []struct {
		urgent, important bool
		want              Quadrant
		label             string
	}{
		{true, true, DoFirst, "Do First"},
		{false, true, Schedule, "Schedule"},
		{true, false, Delegate, "Delegate"},
		{false, false, Eliminate, "Eliminate"},
	}
	seen := map[Quadrant]bool{}
	for _, c := range cases {
		got := Classify(c.urgent, c.important)
		if got != c.want {
			t.Errorf("Classify(%v, %v) = %v, want %v", c.urgent, c.important, got, c.want)
		}
		if got.String() != c.label {
			t.Errorf("Expected label %q, got %q", c.label, got.String())
		}
		if seen[got] {
			t.Errorf("quadrant %v returned twice", got)
		}
		seen[got] = true

		u, i := got.Flags()
		if u != c.urgent || i != c.important {
			t.Errorf("Flags() of %v = (%v, %v)", got, u, i)
		}
	}
}

func TestParseQuadrant(t *testing.T) {
	for _, q := range Quadrants() {
		for _, in := range []string{q.String(), q.Slug(), " " + q.Slug() + " "} {
			got, err := ParseQuadrant(in)
			if err != nil || got != q {
				t.Errorf("ParseQuadrant(%q) = %v, %v", in, got, err)
			}
		}
	}
	if _, err := ParseQuadrant("later"); err == nil {
		t.Error("Expected error for unknown quadrant")
	}
}

func TestStatusLabels(t *testing.T) {
	want := []string{"New", "In Progress", "Blocked", "Finished", "Cancelled"}
	for i, s := range Statuses() {
		if got := StatusLabel(s); got != want[i] {
			t.Errorf("StatusLabel(%s) = %q, want %q", s, got, want[i])
		}
		for _, in := range []string{string(s), want[i]} {
			parsed, err := ParseStatus(in)
			if err != nil || parsed != s {
				t.Errorf("ParseStatus(%q) = %v, %v", in, parsed, err)
			}
		}
	}
	if st, err := ParseStatus("in-progress"); err != nil || st != model.StatusInProgress {
		t.Errorf("ParseStatus(in-progress) = %v, %v", st, err)
	}
}

func TestStatusLabelPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown status")
		}
	}()
	StatusLabel(model.Status("someday"))
}
