package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orsched/orsched/internal/platform/db"
)

// =========== Booking Repository ===========

type bookingRepoPG struct{ pool *pgxpool.Pool }

func NewBookingRepoPG(pool *pgxpool.Pool) BookingRepository {
	return &bookingRepoPG{pool: pool}
}

func (r *bookingRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const bookingCols = `id, patient_id, is_high_risk_patient, surgery_type_id, room_id,
	scheduled_start, estimated_duration_minutes, status, priority, cancel_reason, note,
	created_at, updated_at`

func (r *bookingRepoPG) scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(&b.ID, &b.PatientID, &b.IsHighRiskPatient, &b.SurgeryTypeID, &b.RoomID,
		&b.ScheduledStart, &b.EstimatedDurationMinutes, &b.Status, &b.Priority,
		&b.CancelReason, &b.Note, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *bookingRepoPG) scanBookings(rows pgx.Rows) ([]*Booking, error) {
	defer rows.Close()
	var items []*Booking
	for rows.Next() {
		b, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

func (r *bookingRepoPG) Create(ctx context.Context, b *Booking) error {
	b.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO booking (id, patient_id, is_high_risk_patient, surgery_type_id, room_id,
			scheduled_start, estimated_duration_minutes, status, priority, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING created_at, updated_at`,
		b.ID, b.PatientID, b.IsHighRiskPatient, b.SurgeryTypeID, b.RoomID,
		b.ScheduledStart, b.EstimatedDurationMinutes, b.Status, b.Priority, b.Note).
		Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *bookingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return r.scanBooking(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bookingCols+` FROM booking WHERE id = $1`, id))
}

func (r *bookingRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, cancelReason *string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE booking SET status=$2, cancel_reason=COALESCE($3, cancel_reason), updated_at=NOW()
		WHERE id = $1`, id, status, cancelReason)
	return err
}

var bookingFilters = map[string]db.FilterConfig{
	"status":          {Kind: db.FilterExact, Column: "status"},
	"priority":        {Kind: db.FilterExact, Column: "priority"},
	"patient_id":      {Kind: db.FilterExact, Column: "patient_id"},
	"room_id":         {Kind: db.FilterExact, Column: "room_id"},
	"surgery_type_id": {Kind: db.FilterExact, Column: "surgery_type_id"},
	"scheduled_start": {Kind: db.FilterTime, Column: "scheduled_start"},
}

func (r *bookingRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	qb := db.NewSearchQuery("booking", bookingCols)
	qb.ApplyParams(params, bookingFilters)
	qb.OrderBy("scheduled_start")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	items, err := r.scanBookings(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// activeStates is the SQL-side mirror of conflictStates.
var activeStates = []string{StatusScheduled, StatusPreparation, StatusInProgress}

func (r *bookingRepoPG) ListForRoom(ctx context.Context, roomID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE room_id = $1 AND status = ANY($2)
		  AND scheduled_start < $3
		  AND scheduled_start + make_interval(mins => estimated_duration_minutes) > $4
		ORDER BY scheduled_start`, roomID, activeStates, to, from)
	if err != nil {
		return nil, err
	}
	return r.scanBookings(rows)
}

func (r *bookingRepoPG) ListForStaff(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking b
		WHERE b.status = ANY($2)
		  AND b.scheduled_start < $3
		  AND b.scheduled_start + make_interval(mins => b.estimated_duration_minutes) > $4
		  AND EXISTS (
			SELECT 1 FROM team_assignment t
			WHERE t.booking_id = b.id AND t.staff_id = $1
		  )
		ORDER BY b.scheduled_start`, staffID, activeStates, to, from)
	if err != nil {
		return nil, err
	}
	return r.scanBookings(rows)
}

func (r *bookingRepoPG) ListByStatuses(ctx context.Context, statuses []string) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE status = ANY($1)
		ORDER BY created_at`, statuses)
	if err != nil {
		return nil, err
	}
	return r.scanBookings(rows)
}

func (r *bookingRepoPG) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE status = ANY($1) AND scheduled_start >= $2 AND scheduled_start < $3
		ORDER BY scheduled_start`, activeStates, from, to)
	if err != nil {
		return nil, err
	}
	return r.scanBookings(rows)
}

func (r *bookingRepoPG) ListEmergencies(ctx context.Context) ([]*Booking, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bookingCols+` FROM booking
		WHERE priority = $1 AND status = ANY($2)
		ORDER BY created_at`, PriorityEmergency, activeStates)
	if err != nil {
		return nil, err
	}
	return r.scanBookings(rows)
}

// =========== Team Repository ===========

type teamRepoPG struct{ pool *pgxpool.Pool }

func NewTeamRepoPG(pool *pgxpool.Pool) TeamRepository {
	return &teamRepoPG{pool: pool}
}

func (r *teamRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const teamCols = `id, booking_id, staff_id, role, is_confirmed, created_at`

func (r *teamRepoPG) Add(ctx context.Context, a *TeamAssignment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO team_assignment (id, booking_id, staff_id, role, is_confirmed)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.BookingID, a.StaffID, a.Role, a.IsConfirmed)
	return err
}

func (r *teamRepoPG) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*TeamAssignment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+teamCols+` FROM team_assignment
		WHERE booking_id = $1
		ORDER BY created_at, id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*TeamAssignment
	for rows.Next() {
		var a TeamAssignment
		if err := rows.Scan(&a.ID, &a.BookingID, &a.StaffID, &a.Role, &a.IsConfirmed, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

func (r *teamRepoPG) Confirm(ctx context.Context, bookingID, staffID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE team_assignment SET is_confirmed = TRUE
		WHERE booking_id = $1 AND staff_id = $2`, bookingID, staffID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// =========== Pre-Op Assessment Repository ===========

type assessmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssessmentRepoPG(pool *pgxpool.Pool) AssessmentRepository {
	return &assessmentRepoPG{pool: pool}
}

func (r *assessmentRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const assessmentCols = `id, booking_id, assessed_by, assessment_time, heart_rate, temperature,
	oxygen_saturation, blood_pressure_systolic, blood_pressure_diastolic, clearance_status,
	notes, created_at, updated_at`

func (r *assessmentRepoPG) scanAssessment(row pgx.Row) (*PreOpAssessment, error) {
	var a PreOpAssessment
	err := row.Scan(&a.ID, &a.BookingID, &a.AssessedBy, &a.AssessmentTime,
		&a.Vitals.HeartRate, &a.Vitals.Temperature, &a.Vitals.OxygenSaturation,
		&a.Vitals.BloodPressureSystolic, &a.Vitals.BloodPressureDiastolic,
		&a.ClearanceStatus, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *assessmentRepoPG) Create(ctx context.Context, a *PreOpAssessment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO pre_op_assessment (id, booking_id, assessed_by, assessment_time, heart_rate,
			temperature, oxygen_saturation, blood_pressure_systolic, blood_pressure_diastolic,
			clearance_status, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		a.ID, a.BookingID, a.AssessedBy, a.AssessmentTime,
		a.Vitals.HeartRate, a.Vitals.Temperature, a.Vitals.OxygenSaturation,
		a.Vitals.BloodPressureSystolic, a.Vitals.BloodPressureDiastolic,
		a.ClearanceStatus, a.Notes)
	return err
}

func (r *assessmentRepoPG) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*PreOpAssessment, error) {
	return r.scanAssessment(r.conn(ctx).QueryRow(ctx,
		`SELECT `+assessmentCols+` FROM pre_op_assessment WHERE booking_id = $1`, bookingID))
}

func (r *assessmentRepoPG) UpdateClearance(ctx context.Context, bookingID uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE pre_op_assessment SET clearance_status = $2, updated_at = NOW()
		WHERE booking_id = $1`, bookingID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// =========== Surgery Report Repository ===========

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

func (r *reportRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const reportCols = `id, booking_id, start_time, end_time, procedure_details, complications,
	estimated_blood_loss, surgical_findings, post_op_instructions, recorded_by, created_at, updated_at`

func (r *reportRepoPG) scanReport(row pgx.Row) (*SurgeryReport, error) {
	var rep SurgeryReport
	err := row.Scan(&rep.ID, &rep.BookingID, &rep.StartTime, &rep.EndTime, &rep.ProcedureDetails,
		&rep.Complications, &rep.EstimatedBloodLoss, &rep.SurgicalFindings,
		&rep.PostOpInstructions, &rep.RecordedBy, &rep.CreatedAt, &rep.UpdatedAt)
	return &rep, err
}

func (r *reportRepoPG) Create(ctx context.Context, rep *SurgeryReport) error {
	rep.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO surgery_report (id, booking_id, start_time, end_time, procedure_details,
			complications, estimated_blood_loss, surgical_findings, post_op_instructions, recorded_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rep.ID, rep.BookingID, rep.StartTime, rep.EndTime, rep.ProcedureDetails,
		rep.Complications, rep.EstimatedBloodLoss, rep.SurgicalFindings,
		rep.PostOpInstructions, rep.RecordedBy)
	return err
}

func (r *reportRepoPG) GetByBooking(ctx context.Context, bookingID uuid.UUID) (*SurgeryReport, error) {
	return r.scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM surgery_report WHERE booking_id = $1`, bookingID))
}

func (r *reportRepoPG) Update(ctx context.Context, rep *SurgeryReport) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE surgery_report SET end_time=$2, procedure_details=$3, complications=$4,
			estimated_blood_loss=$5, surgical_findings=$6, post_op_instructions=$7, updated_at=NOW()
		WHERE booking_id = $1`,
		rep.BookingID, rep.EndTime, rep.ProcedureDetails, rep.Complications,
		rep.EstimatedBloodLoss, rep.SurgicalFindings, rep.PostOpInstructions)
	return err
}

// =========== Post-Op Reading Repository ===========

type readingRepoPG struct{ pool *pgxpool.Pool }

func NewReadingRepoPG(pool *pgxpool.Pool) ReadingRepository {
	return &readingRepoPG{pool: pool}
}

func (r *readingRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const readingCols = `id, booking_id, recorded_at, recorded_by, heart_rate, temperature,
	oxygen_saturation, blood_pressure_systolic, blood_pressure_diastolic, note, created_at`

func (r *readingRepoPG) Append(ctx context.Context, reading *PostOpReading) error {
	reading.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO post_op_reading (id, booking_id, recorded_at, recorded_by, heart_rate,
			temperature, oxygen_saturation, blood_pressure_systolic, blood_pressure_diastolic, note)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		reading.ID, reading.BookingID, reading.RecordedAt, reading.RecordedBy,
		reading.Vitals.HeartRate, reading.Vitals.Temperature, reading.Vitals.OxygenSaturation,
		reading.Vitals.BloodPressureSystolic, reading.Vitals.BloodPressureDiastolic, reading.Note)
	return err
}

func (r *readingRepoPG) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*PostOpReading, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+readingCols+` FROM post_op_reading
		WHERE booking_id = $1
		ORDER BY recorded_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PostOpReading
	for rows.Next() {
		var p PostOpReading
		if err := rows.Scan(&p.ID, &p.BookingID, &p.RecordedAt, &p.RecordedBy,
			&p.Vitals.HeartRate, &p.Vitals.Temperature, &p.Vitals.OxygenSaturation,
			&p.Vitals.BloodPressureSystolic, &p.Vitals.BloodPressureDiastolic,
			&p.Note, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &p)
	}
	return items, rows.Err()
}

// =========== Surgery Consent Repository ===========

type consentRepoPG struct{ pool *pgxpool.Pool }

func NewConsentRepoPG(pool *pgxpool.Pool) ConsentRepository {
	return &consentRepoPG{pool: pool}
}

func (r *consentRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consentCols = `id, booking_id, signed_by, relationship_to_patient, witness, signed_at,
	is_valid, created_at`

func (r *consentRepoPG) Create(ctx context.Context, c *SurgeryConsent) error {
	c.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO surgery_consent (id, booking_id, signed_by, relationship_to_patient,
			witness, signed_at, is_valid)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.BookingID, c.SignedBy, c.RelationshipToPatient, c.Witness, c.SignedAt, c.IsValid)
	return err
}

func (r *consentRepoPG) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*SurgeryConsent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+consentCols+` FROM surgery_consent
		WHERE booking_id = $1
		ORDER BY signed_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SurgeryConsent
	for rows.Next() {
		var c SurgeryConsent
		if err := rows.Scan(&c.ID, &c.BookingID, &c.SignedBy, &c.RelationshipToPatient,
			&c.Witness, &c.SignedAt, &c.IsValid, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}
