package booking

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses.
const (
	StatusScheduled   = "SCHEDULED"
	StatusPreparation = "PREPARATION"
	StatusInProgress  = "IN_PROGRESS"
	StatusCompleted   = "COMPLETED"
	StatusCancelled   = "CANCELLED"
	StatusPostponed   = "POSTPONED"
)

// Booking priorities.
const (
	PriorityElective  = "ELECTIVE"
	PriorityUrgent    = "URGENT"
	PriorityEmergency = "EMERGENCY"
)

// Pre-op clearance statuses.
const (
	ClearanceCleared     = "CLEARED"
	ClearancePending     = "PENDING"
	ClearanceNotCleared  = "NOT_CLEARED"
	ClearanceConditional = "CONDITIONAL"
)

// Booking maps to the booking table. It is the aggregate root of the
// scheduling engine: a surgery request bound to a room, a time slot and a
// surgical team.
type Booking struct {
	ID                       uuid.UUID `db:"id" json:"id"`
	PatientID                uuid.UUID `db:"patient_id" json:"patient_id"`
	IsHighRiskPatient        bool      `db:"is_high_risk_patient" json:"is_high_risk_patient"`
	SurgeryTypeID            uuid.UUID `db:"surgery_type_id" json:"surgery_type_id"`
	RoomID                   uuid.UUID `db:"room_id" json:"room_id"`
	ScheduledStart           time.Time `db:"scheduled_start" json:"scheduled_start"`
	EstimatedDurationMinutes int       `db:"estimated_duration_minutes" json:"estimated_duration_minutes"`
	Status                   string    `db:"status" json:"status"`
	Priority                 string    `db:"priority" json:"priority"`
	CancelReason             *string   `db:"cancel_reason" json:"cancel_reason,omitempty"`
	Note                     *string   `db:"note" json:"note,omitempty"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time `db:"updated_at" json:"updated_at"`

	// Derived, not stored.
	PriorityScore              int  `db:"-" json:"priority_score,omitempty"`
	AdditionalApprovalRequired bool `db:"-" json:"additional_approval_required"`
}

// Interval returns the half-open occupancy window [start, start+duration).
func (b *Booking) Interval() Interval {
	return Interval{
		Start: b.ScheduledStart,
		End:   b.ScheduledStart.Add(time.Duration(b.EstimatedDurationMinutes) * time.Minute),
	}
}

// IsTerminal reports whether the booking is in a final state.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCompleted || b.Status == StatusCancelled || b.Status == StatusPostponed
}

// IsActive reports whether the booking still occupies its slot.
func (b *Booking) IsActive() bool {
	return !b.IsTerminal()
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	lo := i.Start
	if other.Start.After(lo) {
		lo = other.Start
	}
	hi := i.End
	if other.End.Before(hi) {
		hi = other.End
	}
	return lo.Before(hi)
}

// Expand widens the interval by the buffer on both sides.
func (i Interval) Expand(buffer time.Duration) Interval {
	return Interval{Start: i.Start.Add(-buffer), End: i.End.Add(buffer)}
}

// TeamAssignment maps to the team_assignment table.
type TeamAssignment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BookingID   uuid.UUID `db:"booking_id" json:"booking_id"`
	StaffID     uuid.UUID `db:"staff_id" json:"staff_id"`
	Role        string    `db:"role" json:"role"`
	IsConfirmed bool      `db:"is_confirmed" json:"is_confirmed"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// PreOpAssessment maps to the pre_op_assessment table. One per booking.
type PreOpAssessment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	BookingID       uuid.UUID `db:"booking_id" json:"booking_id"`
	AssessedBy      uuid.UUID `db:"assessed_by" json:"assessed_by"`
	AssessmentTime  time.Time `db:"assessment_time" json:"assessment_time"`
	Vitals          VitalSigns `db:"-" json:"vitals"`
	ClearanceStatus string    `db:"clearance_status" json:"clearance_status"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// VitalSigns is a measurement snapshot. Pointer fields distinguish a missing
// measurement from a zero reading.
type VitalSigns struct {
	HeartRate              *int     `db:"heart_rate" json:"heart_rate,omitempty"`
	Temperature            *float64 `db:"temperature" json:"temperature,omitempty"`
	OxygenSaturation       *int     `db:"oxygen_saturation" json:"oxygen_saturation,omitempty"`
	BloodPressureSystolic  *int     `db:"blood_pressure_systolic" json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *int     `db:"blood_pressure_diastolic" json:"blood_pressure_diastolic,omitempty"`
}

// SurgeryReport maps to the surgery_report table. EndTime stays nil until
// the surgery is over; a booking cannot complete without it.
type SurgeryReport struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	BookingID          uuid.UUID  `db:"booking_id" json:"booking_id"`
	StartTime          time.Time  `db:"start_time" json:"start_time"`
	EndTime            *time.Time `db:"end_time" json:"end_time,omitempty"`
	ProcedureDetails   string     `db:"procedure_details" json:"procedure_details"`
	Complications      *string    `db:"complications" json:"complications,omitempty"`
	EstimatedBloodLoss *int       `db:"estimated_blood_loss" json:"estimated_blood_loss,omitempty"`
	SurgicalFindings   *string    `db:"surgical_findings" json:"surgical_findings,omitempty"`
	PostOpInstructions *string    `db:"post_op_instructions" json:"post_op_instructions,omitempty"`
	RecordedBy         uuid.UUID  `db:"recorded_by" json:"recorded_by"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// PostOpReading maps to the post_op_reading table. Append-only monitoring log.
type PostOpReading struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BookingID  uuid.UUID  `db:"booking_id" json:"booking_id"`
	RecordedAt time.Time  `db:"recorded_at" json:"recorded_at"`
	RecordedBy uuid.UUID  `db:"recorded_by" json:"recorded_by"`
	Vitals     VitalSigns `db:"-" json:"vitals"`
	Note       *string    `db:"note" json:"note,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// SurgeryConsent maps to the surgery_consent table.
type SurgeryConsent struct {
	ID                    uuid.UUID `db:"id" json:"id"`
	BookingID             uuid.UUID `db:"booking_id" json:"booking_id"`
	SignedBy              string    `db:"signed_by" json:"signed_by"`
	RelationshipToPatient string    `db:"relationship_to_patient" json:"relationship_to_patient"`
	Witness               *string   `db:"witness" json:"witness,omitempty"`
	SignedAt              time.Time `db:"signed_at" json:"signed_at"`
	IsValid               bool      `db:"is_valid" json:"is_valid"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
}
