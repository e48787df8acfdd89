package booking

import (
	"time"

	"github.com/google/uuid"
)

// DefaultBufferMinutes is the turnover padding applied to existing bookings
// before overlap testing. Overridden by CONFLICT_BUFFER_MINUTES.
const DefaultBufferMinutes = 30

// conflictStates are the booking states that still occupy their resources.
var conflictStates = map[string]bool{
	StatusScheduled:   true,
	StatusPreparation: true,
	StatusInProgress:  true,
}

// FindConflicts returns the ids of every existing booking whose buffered
// interval overlaps the proposed one. The buffer widens the existing
// booking's interval on both ends; overlap is half-open, so a booking ending
// exactly when the buffered window starts does not conflict. exclude skips a
// booking being rescheduled so it does not conflict with itself.
func FindConflicts(proposed Interval, existing []*Booking, buffer time.Duration, exclude uuid.UUID) []uuid.UUID {
	var conflicts []uuid.UUID
	for _, b := range existing {
		if b.ID == exclude {
			continue
		}
		if !conflictStates[b.Status] {
			continue
		}
		if b.Interval().Expand(buffer).Overlaps(proposed) {
			conflicts = append(conflicts, b.ID)
		}
	}
	return conflicts
}
