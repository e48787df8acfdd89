package booking

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/orsched/orsched/internal/domain/catalog"
)

// Priority scoring weights. The score orders the waiting queue only; it never
// decides admission.
var basePriority = map[string]int{
	PriorityEmergency: 100,
	PriorityUrgent:    50,
	PriorityElective:  10,
}

const (
	highRiskPatientBonus = 20
	procedureRiskBonus   = 15
	maxWaitingDays       = 30
)

// Score computes the priority score of a booking at a given instant. Whole
// days waited since creation count toward the score, capped at 30.
func Score(b *Booking, st *catalog.SurgeryType, now time.Time) int {
	score := basePriority[b.Priority]
	if b.IsHighRiskPatient {
		score += highRiskPatientBonus
	}
	if st != nil && st.RiskLevel == catalog.RiskHigh {
		score += procedureRiskBonus
	}
	days := int(now.Sub(b.CreatedAt).Hours() / 24)
	if days < 0 {
		days = 0
	}
	if days > maxWaitingDays {
		days = maxWaitingDays
	}
	return score + days
}

// RankQueue scores each booking and sorts the slice in place: highest score
// first, ties broken by earliest creation time. Scores are written back onto
// the bookings for callers to surface.
func RankQueue(items []*Booking, types map[uuid.UUID]*catalog.SurgeryType, now time.Time) {
	for _, b := range items {
		b.PriorityScore = Score(b, types[b.SurgeryTypeID], now)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].PriorityScore != items[j].PriorityScore {
			return items[i].PriorityScore > items[j].PriorityScore
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
