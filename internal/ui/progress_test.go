package ui

import (
	"strings"
	"testing"

	"brilopt/internal/pipeline"
)

func TestApplyEventTracksFraction(t *testing.T) {
	passes := []pipeline.Pass{pipeline.PassLVN, pipeline.PassDCE}
	m := NewProgressModel("optimizing", []string{"main", "helper"}, passes, nil).(*progressModel)

	if got := m.fraction(); got != 0 {
		t.Fatalf("fraction = %v on start, want 0", got)
	}

	m.applyEvent(pipeline.Event{Func: "main", Pass: pipeline.PassLVN, Status: pipeline.StatusWorking})
	m.applyEvent(pipeline.Event{Func: "main", Pass: pipeline.PassDCE, Status: pipeline.StatusWorking})
	if got, want := m.fraction(), 0.25; got != want {
		t.Errorf("fraction = %v after one pass, want %v", got, want)
	}
	if m.items[0].status != "dce" {
		t.Errorf("status = %q, want dce", m.items[0].status)
	}

	m.applyEvent(pipeline.Event{Func: "main", Status: pipeline.StatusDone})
	m.applyEvent(pipeline.Event{Func: "helper", Status: pipeline.StatusCached})
	if got := m.fraction(); got != 1 {
		t.Errorf("fraction = %v when finished, want 1", got)
	}

	// Unknown functions are ignored.
	if cmd := m.applyEvent(pipeline.Event{Func: "ghost", Status: pipeline.StatusDone}); cmd != nil {
		t.Error("expected no command for unknown function")
	}
}

func TestViewListsFunctions(t *testing.T) {
	m := NewProgressModel("optimizing", []string{"main"}, pipeline.DefaultPasses, nil).(*progressModel)
	m.applyEvent(pipeline.Event{Func: "main", Status: pipeline.StatusError})
	m.done = true
	view := m.View()
	for _, want := range []string{"done: optimizing (1 functions)", "@main", "error"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"main", 10, "main"},
		{"averyveryverylongname", 10, "averyve..."},
		{"abcdef", 3, "abc"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
