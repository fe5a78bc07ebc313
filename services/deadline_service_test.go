package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"
)

var deadlineTestNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func deadlineStep(year string, deadline time.Time) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `deadline_configs`"),
		columns: []string{"deadline_id", "academic_year", "deadline_date"},
		rows:    [][]driver.Value{{int64(1), year, deadline}},
	}
}

func emptyDeadlineStep() *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT .* FROM `deadline_configs`"),
		columns: []string{"deadline_id", "academic_year", "deadline_date"},
	}
}

func TestCheckOpenBeforeDeadline(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		deadlineStep("2024-25", deadlineTestNow.Add(24*time.Hour)),
	})
	defer cleanup()

	svc := NewDeadlineService(db)
	svc.now = func() time.Time { return deadlineTestNow }

	if err := svc.CheckOpen("2024-25"); err != nil {
		t.Fatalf("expected submissions to be open, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestCheckOpenAfterDeadline(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		deadlineStep("2024-25", deadlineTestNow.Add(-24*time.Hour)),
	})
	defer cleanup()

	svc := NewDeadlineService(db)
	svc.now = func() time.Time { return deadlineTestNow }

	err := svc.CheckOpen("2024-25")
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict after the deadline, got %v", err)
	}
	if err.Error() != "Submission deadline passed" {
		t.Errorf("unexpected message: %s", err.Error())
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestCheckOpenMissingConfig(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		emptyDeadlineStep(),
	})
	defer cleanup()

	svc := NewDeadlineService(db)
	svc.now = func() time.Time { return deadlineTestNow }

	err := svc.CheckOpen("2024-25")
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict when no deadline is configured, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestGetMissingDeadlineIsNotFound(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		emptyDeadlineStep(),
	})
	defer cleanup()

	_, err := NewDeadlineService(db).Get("2024-25")
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestUpsertPassedDeadlineIsFrozen(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		deadlineStep("2024-25", deadlineTestNow.Add(-time.Hour)),
	})
	defer cleanup()

	svc := NewDeadlineService(db)
	svc.now = func() time.Time { return deadlineTestNow }

	_, err := svc.Upsert("2024-25", deadlineTestNow.Add(30*24*time.Hour))
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict when moving a passed deadline, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestUpsertMovesOpenDeadline(t *testing.T) {
	newDate := deadlineTestNow.Add(14 * 24 * time.Hour)
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		deadlineStep("2024-25", deadlineTestNow.Add(24*time.Hour)),
		{kind: kindExec, pattern: regexp.MustCompile("UPDATE `deadline_configs` SET")},
	})
	defer cleanup()

	svc := NewDeadlineService(db)
	svc.now = func() time.Time { return deadlineTestNow }

	updated, err := svc.Upsert("2024-25", newDate)
	if err != nil {
		t.Fatalf("expected update to succeed, got %v", err)
	}
	if !updated.DeadlineDate.Equal(newDate) {
		t.Errorf("deadline date not moved: %v", updated.DeadlineDate)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestUpsertCreatesMissingDeadline(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		emptyDeadlineStep(),
		{kind: kindExec, pattern: regexp.MustCompile("INSERT INTO `deadline_configs`")},
	})
	defer cleanup()

	svc := NewDeadlineService(db)
	svc.now = func() time.Time { return deadlineTestNow }

	created, err := svc.Upsert("2025-26", deadlineTestNow.Add(30*24*time.Hour))
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if created.AcademicYear != "2025-26" {
		t.Errorf("unexpected academic year: %s", created.AcademicYear)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
