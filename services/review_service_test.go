package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"gorm.io/gorm"
)

func newTestReviewService(db *gorm.DB) *ReviewService {
	svc := NewReviewService(db)
	svc.now = func() time.Time { return statusTestNow }
	svc.status = newTestStatusService(db)
	svc.versions.now = svc.now
	svc.notifier.now = svc.now
	svc.notifier.sendMail = func([]string, string, string) error { return nil }
	return svc
}

func insertReviewStep() *queryStep {
	return &queryStep{kind: kindExec, pattern: regexp.MustCompile("INSERT INTO `reviews`")}
}

func insertAssignmentStep() *queryStep {
	return &queryStep{kind: kindExec, pattern: regexp.MustCompile("INSERT INTO `reviewer_assignments`")}
}

// assignmentCountStep scripts a reviewer_assignments count; args, when
// given, pin the WHERE values.
func assignmentCountStep(count int64, args ...driver.Value) *queryStep {
	step := countStep("reviewer_assignments", count)
	step.args = args
	return step
}

func reviewRowsStep(rows ...[]driver.Value) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: regexp.MustCompile("SELECT \\* FROM `reviews` WHERE"),
		columns: []string{"review_id", "form_id", "reviewer_id", "decision", "level", "review_round"},
		rows:    rows,
	}
}

func reviewRow(reviewID, formID, reviewerID int, decision, level string, round int) []driver.Value {
	return []driver.Value{int64(reviewID), int64(formID), int64(reviewerID), decision, level, int64(round)}
}

func TestSubmitReviewValidation(t *testing.T) {
	svc := NewReviewService(nil)

	err := svc.SubmitReview(SubmitReviewInput{ReviewerUserID: 5, FormID: 7, Decision: "MAYBE", Level: LevelHODReview})
	if !IsKind(err, KindIllegalArgument) {
		t.Errorf("invalid decision: expected IllegalArgument, got %v", err)
	}

	err = svc.SubmitReview(SubmitReviewInput{ReviewerUserID: 5, FormID: 7, Decision: DecisionApprove, Level: "BOARD_REVIEW"})
	if !IsKind(err, KindIllegalArgument) {
		t.Errorf("invalid level: expected IllegalArgument, got %v", err)
	}

	err = svc.SubmitReview(SubmitReviewInput{ReviewerUserID: 5, FormID: 7, Decision: DecisionForward, Level: LevelChairpersonReview})
	if !IsKind(err, KindIllegalArgument) {
		t.Errorf("forward outside HOD review: expected IllegalArgument, got %v", err)
	}
}

func TestSubmitReviewNormalizesInput(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusDepartmentReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
		assignmentCountStep(1, int64(7), int64(5), LevelDepartmentReview),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		assignmentCountStep(3, int64(7), LevelDepartmentReview),
		reviewRowsStep(reviewRow(1, 7, 5, DecisionApprove, LevelDepartmentReview, 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5,
		FormID:         7,
		Decision:       "  approve ",
		Level:          "department_review",
	})
	if err != nil {
		t.Fatalf("expected lowercase input to be accepted, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitReviewWrongStatusIsConflict(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusHODReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5, FormID: 7,
		Decision: DecisionApprove, Level: LevelDepartmentReview,
	})
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for a stale-level decision, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestSubmitReviewDuplicateIsConflict(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusDepartmentReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
		assignmentCountStep(1),
		countStep("reviews", 1),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5, FormID: 7,
		Decision: DecisionApprove, Level: LevelDepartmentReview,
	})
	if !IsKind(err, KindConflict) {
		t.Fatalf("expected Conflict for a repeated decision, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// Decisions at pool-based levels only count from assigned reviewers; an
// unassigned user must be rejected before anything is written.
func TestSubmitReviewRequiresAssignment(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusDepartmentReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
		assignmentCountStep(0, int64(7), int64(5), LevelDepartmentReview),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5, FormID: 7,
		Decision: DecisionApprove, Level: LevelDepartmentReview,
	})
	if !IsKind(err, KindNotFound) {
		t.Fatalf("expected NotFound for an unassigned reviewer, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// A partial committee tally records the decision but leaves the form where
// it is: no status update and no notification may be issued.
func TestCommitteePartialApprovalStaysPending(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusDepartmentReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
		assignmentCountStep(1),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		assignmentCountStep(3),
		reviewRowsStep(
			reviewRow(1, 7, 4, DecisionApprove, LevelDepartmentReview, 1),
			reviewRow(2, 7, 5, DecisionApprove, LevelDepartmentReview, 1),
		),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5, FormID: 7,
		Decision: DecisionApprove, Level: LevelDepartmentReview,
	})
	if err != nil {
		t.Fatalf("pending committee decision should succeed, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestCommitteeUnanimousApprovalAdvances(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusDepartmentReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
		assignmentCountStep(1),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		assignmentCountStep(2),
		reviewRowsStep(
			reviewRow(1, 7, 4, DecisionApprove, LevelDepartmentReview, 1),
			reviewRow(2, 7, 5, DecisionApprove, LevelDepartmentReview, 1),
		),
		updateFormStep(),
		insertVersionStep(),
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5, FormID: 7,
		Decision: DecisionApprove, Level: LevelDepartmentReview,
	})
	if err != nil {
		t.Fatalf("final committee approval should advance the form, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestCommitteeRejectionShortCircuits(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusDepartmentReview, true, 1)),
		userStep(userRow(5, "Carol", "Committee", 4)),
		roleStep(4, "COMMITTEE"),
		assignmentCountStep(1),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		assignmentCountStep(3),
		reviewRowsStep(
			reviewRow(1, 7, 4, DecisionApprove, LevelDepartmentReview, 1),
			reviewRow(2, 7, 5, DecisionReupload, LevelDepartmentReview, 1),
		),
		updateFormStep(),
		insertVersionStep(),
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 5, FormID: 7,
		Decision: DecisionReupload, Level: LevelDepartmentReview,
	})
	if err != nil {
		t.Fatalf("committee rejection should resolve immediately, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestHODApproveAdvancesForm(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusHODReview, true, 1)),
		userStep(userRow(9, "Head", "Ofdept", 2)),
		roleStep(2, "HEAD_OF_DEPARTMENT"),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		updateFormStep(),
		insertVersionStep(),
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 9, FormID: 7,
		Decision: DecisionApprove, Level: LevelHODReview,
	})
	if err != nil {
		t.Fatalf("HOD approval failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// The decision's audit entry names the round, so trail readers can tell a
// re-decision from the one it replaced.
func TestSubmitReviewAuditNamesRound(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusHODReview, true, 2)),
		userStep(userRow(9, "Head", "Ofdept", 2)),
		roleStep(2, "HEAD_OF_DEPARTMENT"),
		countStep("reviews", 0),
		insertReviewStep(),
		{
			kind:        kindExec,
			pattern:     regexp.MustCompile("INSERT INTO `appraisal_versions`"),
			argContains: "(round 2)",
		},
		updateFormStep(),
		insertVersionStep(),
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 9, FormID: 7,
		Decision: DecisionApprove, Level: LevelHODReview,
	})
	if err != nil {
		t.Fatalf("HOD approval failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestForwardRequiresTarget(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusHODReview, true, 1)),
		userStep(userRow(9, "Head", "Ofdept", 2)),
		roleStep(2, "HEAD_OF_DEPARTMENT"),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 9, FormID: 7,
		Decision: DecisionForward, Level: LevelHODReview,
	})
	if !IsKind(err, KindIllegalArgument) {
		t.Fatalf("expected IllegalArgument for a missing forward target, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// Forwarding notifies the verifier only; the owner sees no notification,
// so exactly one notification insert is scripted.
func TestForwardAssignsVerifier(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusHODReview, true, 1)),
		userStep(userRow(9, "Head", "Ofdept", 2)),
		roleStep(2, "HEAD_OF_DEPARTMENT"),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		userStep(userRow(11, "Vera", "Verifier", 7)),
		roleStep(7, "VERIFYING_STAFF"),
		insertAssignmentStep(),
		updateFormStep(),
		insertVersionStep(),
		insertNotificationStep(),
		userStep(userRow(11, "Vera", "Verifier", 7)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 9, FormID: 7,
		Decision: DecisionForward, Level: LevelHODReview,
		ForwardTo: 11,
	})
	if err != nil {
		t.Fatalf("forward to verifier failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// Verification approval hands the form back to the HOD and opens a fresh
// round so the HOD may record a new decision.
func TestVerifierApproveReturnsToHOD(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusPendingVerification, true, 1)),
		userStep(userRow(11, "Vera", "Verifier", 7)),
		roleStep(7, "VERIFYING_STAFF"),
		assignmentCountStep(1, int64(7), int64(11), LevelVerifyingStaffReview),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		bumpRoundStep(),
		updateFormStep(),
		insertVersionStep(),
		userStep(userRow(3, "Alice", "Staff", 1)), // owner, no department: HOD copy skipped
		roleStep(1, "STAFF"),
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 11, FormID: 7,
		Decision: DecisionApprove, Level: LevelVerifyingStaffReview,
	})
	if err != nil {
		t.Fatalf("verifier approval failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// A chairperson send-back opens a fresh round so the HOD, who already
// decided in the current one, can record the new decision the return asks
// for. The owner's department head gets a copy.
func TestChairpersonReuploadOpensNewRound(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusChairReview, true, 1)),
		userStep(userRow(15, "Chad", "Chair", 5)),
		roleStep(5, "CHAIRPERSON"),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		bumpRoundStep(),
		updateFormStep(),
		insertVersionStep(),
		userStep(userRowWithDept(3, "Alice", "Staff", 1, 10)),
		departmentStep(10, "Physics"),
		roleStep(1, "STAFF"),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `users` JOIN roles"),
			columns: userColumns(),
			rows:    [][]driver.Value{userRow(9, "Head", "Ofdept", 2)},
		},
		// post-commit: owner first, then the department head
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
		insertNotificationStep(),
		userStep(userRow(9, "Head", "Ofdept", 2)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 15, FormID: 7,
		Decision: DecisionReupload, Level: LevelChairpersonReview,
	})
	if err != nil {
		t.Fatalf("chairperson reupload failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

// A principal send-back likewise opens a fresh round, or the chairperson's
// earlier approval would block the re-decision.
func TestPrincipalReuploadOpensNewRound(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusPendingPrincipalApproval, true, 2)),
		userStep(userRow(13, "Pat", "Principal", 6)),
		roleStep(6, "PRINCIPAL"),
		assignmentCountStep(1, int64(7), int64(13), LevelPrincipalReview),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		bumpRoundStep(),
		updateFormStep(),
		insertVersionStep(),
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `users` JOIN roles"),
			columns: userColumns(),
			rows:    [][]driver.Value{userRow(15, "Chad", "Chair", 5)},
		},
		roleStep(5, "CHAIRPERSON"),
		// post-commit: owner first, then the chairperson
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
		insertNotificationStep(),
		userStep(userRow(15, "Chad", "Chair", 5)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 13, FormID: 7,
		Decision: DecisionReupload, Level: LevelPrincipalReview,
	})
	if err != nil {
		t.Fatalf("principal reupload failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}

func TestPrincipalApproveCompletes(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, []*queryStep{
		lockedFormStep(formRow(7, 3, "2024-25", StatusPendingPrincipalApproval, true, 1)),
		userStep(userRow(13, "Pat", "Principal", 6)),
		roleStep(6, "PRINCIPAL"),
		assignmentCountStep(1, int64(7), int64(13), LevelPrincipalReview),
		countStep("reviews", 0),
		insertReviewStep(),
		insertVersionStep(),
		updateFormStep(),
		insertVersionStep(),
		insertNotificationStep(),
		userStep(userRow(3, "Alice", "Staff", 1)),
	})
	defer cleanup()

	svc := newTestReviewService(db)
	err := svc.SubmitReview(SubmitReviewInput{
		ReviewerUserID: 13, FormID: 7,
		Decision: DecisionApprove, Level: LevelPrincipalReview,
	})
	if err != nil {
		t.Fatalf("principal approval failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Error(err)
	}
}
