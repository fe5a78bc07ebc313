package services

// Form statuses. The pipeline runs DRAFT through COMPLETED top to bottom;
// the remaining statuses are the reupload/verification side branches.
const (
	StatusDraft                    = "DRAFT"
	StatusSubmitted                = "SUBMITTED"
	StatusDepartmentReview         = "DEPARTMENT_REVIEW"
	StatusHODReview                = "HOD_REVIEW"
	StatusHODApproved              = "HOD_APPROVED"
	StatusCollegeReview            = "COLLEGE_REVIEW"
	StatusChairReview              = "CHAIR_REVIEW"
	StatusPendingPrincipalApproval = "PENDING_PRINCIPAL_APPROVAL"
	StatusCompleted                = "COMPLETED"
	StatusReuploadRequired         = "REUPLOAD_REQUIRED"
	StatusPendingVerification      = "PENDING_VERIFICATION"
	StatusReturnedToHOD            = "RETURNED_TO_HOD"
	StatusReturnedToChairperson    = "RETURNED_TO_CHAIRPERSON"
)

// Review levels. Not identical to statuses: a level names who is deciding,
// a status names where the form sits.
const (
	LevelDepartmentReview     = "DEPARTMENT_REVIEW"
	LevelHODReview            = "HOD_REVIEW"
	LevelCollegeReview        = "COLLEGE_REVIEW"
	LevelChairpersonReview    = "CHAIRPERSON_REVIEW"
	LevelPrincipalReview      = "PRINCIPAL_REVIEW"
	LevelVerifyingStaffReview = "VERIFYING_STAFF_REVIEW"
)

const (
	DecisionApprove  = "APPROVE"
	DecisionReupload = "REUPLOAD"
	DecisionForward  = "FORWARD"
)

var validStatuses = map[string]bool{
	StatusDraft:                    true,
	StatusSubmitted:                true,
	StatusDepartmentReview:         true,
	StatusHODReview:                true,
	StatusHODApproved:              true,
	StatusCollegeReview:            true,
	StatusChairReview:              true,
	StatusPendingPrincipalApproval: true,
	StatusCompleted:                true,
	StatusReuploadRequired:         true,
	StatusPendingVerification:      true,
	StatusReturnedToHOD:            true,
	StatusReturnedToChairperson:    true,
}

func IsValidStatus(status string) bool {
	return validStatuses[status]
}

var validDecisions = map[string]bool{
	DecisionApprove:  true,
	DecisionReupload: true,
	DecisionForward:  true,
}

func IsValidDecision(decision string) bool {
	return validDecisions[decision]
}

// Committee levels resolve by unanimity or a single rejection; every other
// level is decided by one reviewer.
var committeeLevels = map[string]bool{
	LevelDepartmentReview: true,
	LevelCollegeReview:    true,
}

func IsCommitteeLevel(level string) bool {
	return committeeLevels[level]
}

func IsValidLevel(level string) bool {
	_, ok := levelAwaitingStatuses[level]
	return ok
}

// levelRequiresAssignment marks the levels whose decisions must come from
// the assigned reviewer pool. HOD and chairperson decide by office, not by
// assignment row.
func levelRequiresAssignment(level string) bool {
	return IsCommitteeLevel(level) || level == LevelVerifyingStaffReview || level == LevelPrincipalReview
}

// levelAwaitingStatuses lists the statuses during which a level's decisions
// are accepted. A decision against any other status is a Conflict, which is
// also what retires stale committee votes after a short-circuit rejection.
var levelAwaitingStatuses = map[string][]string{
	LevelDepartmentReview:     {StatusDepartmentReview},
	LevelHODReview:            {StatusHODReview, StatusReturnedToHOD},
	LevelCollegeReview:        {StatusCollegeReview},
	LevelChairpersonReview:    {StatusChairReview, StatusReturnedToChairperson},
	LevelPrincipalReview:      {StatusPendingPrincipalApproval},
	LevelVerifyingStaffReview: {StatusPendingVerification},
}

func levelAcceptsStatus(level, status string) bool {
	for _, s := range levelAwaitingStatuses[level] {
		if s == status {
			return true
		}
	}
	return false
}

type committeeOutcome int

const (
	committeePending committeeOutcome = iota
	committeeApproved
	committeeReupload
)

// resolveCommittee applies the aggregation rule: any REUPLOAD resolves
// immediately; unanimous APPROVE across the whole assigned pool resolves as
// approved; anything short of that stays pending.
func resolveCommittee(assignedCount int, decisions []string) committeeOutcome {
	for _, d := range decisions {
		if d == DecisionReupload {
			return committeeReupload
		}
	}
	if assignedCount == 0 || len(decisions) < assignedCount {
		return committeePending
	}
	for _, d := range decisions {
		if d != DecisionApprove {
			return committeePending
		}
	}
	return committeeApproved
}

// committeeNextStatus is where a unanimously approved committee level sends
// the form.
var committeeNextStatus = map[string]string{
	LevelDepartmentReview: StatusHODReview,
	LevelCollegeReview:    StatusChairReview,
}

// restartStatusForLevel maps a correction restart target to the status the
// form re-enters.
var restartStatusForLevel = map[string]string{
	LevelDepartmentReview:     StatusDepartmentReview,
	LevelHODReview:            StatusHODReview,
	LevelVerifyingStaffReview: StatusPendingVerification,
}
