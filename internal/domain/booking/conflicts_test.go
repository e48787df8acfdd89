package booking

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 3, 3, hour, min, 0, 0, time.UTC)
}

func existingBooking(start time.Time, durationMin int, status string) *Booking {
	return &Booking{
		ID:                       uuid.New(),
		ScheduledStart:           start,
		EstimatedDurationMinutes: durationMin,
		Status:                   status,
	}
}

func TestIntervalOverlaps(t *testing.T) {
	a := Interval{Start: at(9, 0), End: at(11, 0)}
	cases := []struct {
		name string
		b    Interval
		want bool
	}{
		{"disjoint before", Interval{Start: at(7, 0), End: at(8, 0)}, false},
		{"touching start is half-open", Interval{Start: at(8, 0), End: at(9, 0)}, false},
		{"touching end is half-open", Interval{Start: at(11, 0), End: at(12, 0)}, false},
		{"partial overlap", Interval{Start: at(10, 30), End: at(12, 0)}, true},
		{"contained", Interval{Start: at(9, 30), End: at(10, 0)}, true},
		{"containing", Interval{Start: at(8, 0), End: at(12, 0)}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("Overlaps = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFindConflicts_BufferedOverlap(t *testing.T) {
	// Existing 09:00-11:00 expands to 08:30-11:30 with a 30 min buffer, so a
	// 10:30-12:00 request conflicts.
	existing := []*Booking{existingBooking(at(9, 0), 120, StatusScheduled)}
	proposed := Interval{Start: at(10, 30), End: at(12, 0)}

	got := FindConflicts(proposed, existing, 30*time.Minute, uuid.Nil)
	if len(got) != 1 || got[0] != existing[0].ID {
		t.Fatalf("expected one conflict with %s, got %v", existing[0].ID, got)
	}
}

func TestFindConflicts_BufferBoundary(t *testing.T) {
	// 11:30 start touches the buffered end exactly; half-open, no conflict.
	existing := []*Booking{existingBooking(at(9, 0), 120, StatusScheduled)}
	proposed := Interval{Start: at(11, 30), End: at(13, 0)}
	if got := FindConflicts(proposed, existing, 30*time.Minute, uuid.Nil); len(got) != 0 {
		t.Fatalf("expected no conflict at buffer boundary, got %v", got)
	}

	// One minute earlier does conflict.
	proposed = Interval{Start: at(11, 29), End: at(13, 0)}
	if got := FindConflicts(proposed, existing, 30*time.Minute, uuid.Nil); len(got) != 1 {
		t.Fatalf("expected conflict inside buffer, got %v", got)
	}
}

func TestFindConflicts_ZeroBuffer(t *testing.T) {
	existing := []*Booking{existingBooking(at(9, 0), 120, StatusScheduled)}
	proposed := Interval{Start: at(11, 0), End: at(12, 0)}
	if got := FindConflicts(proposed, existing, 0, uuid.Nil); len(got) != 0 {
		t.Fatalf("back-to-back with zero buffer should not conflict, got %v", got)
	}
}

func TestFindConflicts_IgnoresTerminalStates(t *testing.T) {
	existing := []*Booking{
		existingBooking(at(9, 0), 120, StatusCancelled),
		existingBooking(at(9, 0), 120, StatusCompleted),
		existingBooking(at(9, 0), 120, StatusPostponed),
	}
	proposed := Interval{Start: at(9, 30), End: at(10, 30)}
	if got := FindConflicts(proposed, existing, 30*time.Minute, uuid.Nil); len(got) != 0 {
		t.Fatalf("terminal bookings should not conflict, got %v", got)
	}
}

func TestFindConflicts_CountsAllActiveStates(t *testing.T) {
	existing := []*Booking{
		existingBooking(at(9, 0), 60, StatusScheduled),
		existingBooking(at(10, 0), 60, StatusPreparation),
		existingBooking(at(11, 0), 60, StatusInProgress),
	}
	proposed := Interval{Start: at(9, 0), End: at(12, 0)}
	if got := FindConflicts(proposed, existing, 0, uuid.Nil); len(got) != 3 {
		t.Fatalf("expected 3 conflicts, got %v", got)
	}
}

func TestFindConflicts_ExcludesSelf(t *testing.T) {
	b := existingBooking(at(9, 0), 120, StatusScheduled)
	proposed := Interval{Start: at(9, 30), End: at(10, 30)}
	if got := FindConflicts(proposed, []*Booking{b}, 30*time.Minute, b.ID); len(got) != 0 {
		t.Fatalf("booking should not conflict with itself, got %v", got)
	}
}
