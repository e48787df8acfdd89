package booking

import (
	"github.com/orsched/orsched/internal/domain/catalog"
)

// transitions is the lifecycle edge set. Terminal states have no outgoing
// edges; POSTPONED is terminal for the instance, rescheduling creates a new
// booking.
var transitions = map[string]map[string]bool{
	StatusScheduled: {
		StatusPreparation: true,
		StatusCancelled:   true,
		StatusPostponed:   true,
	},
	StatusPreparation: {
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusPostponed:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusCancelled: true,
		StatusPostponed: true,
	},
}

// CanTransition reports whether the lifecycle has an edge from one state to
// another, guards aside.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// GuardTransition checks the edge and its guards. Starting surgery requires a
// CLEARED pre-op assessment; completing requires a surgery report with an end
// time. Cancellation and postponement are never guarded.
func GuardTransition(b *Booking, to string, assessment *PreOpAssessment, report *SurgeryReport) Rejection {
	if !CanTransition(b.Status, to) {
		return &IllegalTransitionError{From: b.Status, To: to}
	}
	switch to {
	case StatusInProgress:
		if assessment == nil {
			return &ClearanceRequiredError{}
		}
		if assessment.ClearanceStatus != ClearanceCleared {
			return &ClearanceRequiredError{Status: assessment.ClearanceStatus}
		}
	case StatusCompleted:
		if report == nil || report.EndTime == nil {
			return &IllegalTransitionError{
				From:   b.Status,
				To:     to,
				Reason: "surgery report with end time required",
			}
		}
	}
	return nil
}

// AdditionalApprovalRequired reports whether the booking must be surfaced to
// the approval collaborator. It never blocks a transition.
func AdditionalApprovalRequired(b *Booking, st *catalog.SurgeryType) bool {
	if b.Priority == PriorityEmergency || b.IsHighRiskPatient {
		return true
	}
	if st != nil && st.RiskLevel == catalog.RiskHigh {
		return true
	}
	return b.EstimatedDurationMinutes > ApprovalDurationMinutes
}
