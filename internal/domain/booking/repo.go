package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, cancelReason *string) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error)
	// Conflict detection: bookings touching a resource whose occupancy may
	// intersect [from, to).
	ListForRoom(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*Booking, error)
	ListForStaff(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*Booking, error)
	// Queue and schedule views.
	ListByStatuses(ctx context.Context, statuses []string) ([]*Booking, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Booking, error)
	ListEmergencies(ctx context.Context) ([]*Booking, error)
}

type TeamRepository interface {
	Add(ctx context.Context, a *TeamAssignment) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*TeamAssignment, error)
	Confirm(ctx context.Context, bookingID, staffID uuid.UUID) error
}

type AssessmentRepository interface {
	Create(ctx context.Context, a *PreOpAssessment) error
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*PreOpAssessment, error)
	UpdateClearance(ctx context.Context, bookingID uuid.UUID, status string) error
}

type ReportRepository interface {
	Create(ctx context.Context, r *SurgeryReport) error
	GetByBooking(ctx context.Context, bookingID uuid.UUID) (*SurgeryReport, error)
	Update(ctx context.Context, r *SurgeryReport) error
}

type ReadingRepository interface {
	Append(ctx context.Context, r *PostOpReading) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*PostOpReading, error)
}

type ConsentRepository interface {
	Create(ctx context.Context, c *SurgeryConsent) error
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*SurgeryConsent, error)
}
