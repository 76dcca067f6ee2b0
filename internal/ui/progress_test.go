package ui

import (
	"errors"
	"strings"
	"testing"

	"ontorefine/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	files := []string{"in/Participant.xml", "in/MedicalHistory.xml"}
	m := NewProgressModel("refine", files, nil).(*progressModel)

	m.applyEvent(driver.Event{File: files[0], Stage: driver.StageDecode, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: files[1], Stage: driver.StageRefine, Status: driver.StatusWorking})
	if m.items[0].status != "decoded" || m.items[1].status != "refining" {
		t.Fatalf("statuses = %q, %q", m.items[0].status, m.items[1].status)
	}

	m.applyEvent(driver.Event{File: "unknown.xml", Stage: driver.StageRefine, Status: driver.StatusDone})
	m.applyEvent(driver.Event{Stage: driver.StageWrite, Status: driver.StatusError, Err: errors.New("disk full")})
	if m.failed == nil || m.stageLabel != "error" {
		t.Fatalf("run-level error not recorded: %v %q", m.failed, m.stageLabel)
	}

	m.done = true
	view := m.View()
	if !strings.Contains(view, "failed: refine") || !strings.Contains(view, "Participant.xml") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdefghij", 6); got != "abc..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 10); got != "abc" {
		t.Fatalf("truncate short = %q", got)
	}
}
