package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orsched/orsched/internal/domain/catalog"
	"github.com/orsched/orsched/internal/platform/db"
	"github.com/orsched/orsched/internal/platform/locking"
)

// Config carries the tunable scheduling policy. Business hours and the
// duration ceiling are fixed rules, not configuration.
type Config struct {
	Buffer              time.Duration
	LockTimeout         time.Duration
	AssessmentLeadHours int
	Monitoring          MonitoringPolicy
}

func DefaultConfig() Config {
	return Config{
		Buffer:              DefaultBufferMinutes * time.Minute,
		LockTimeout:         2 * time.Second,
		AssessmentLeadHours: DefaultAssessmentLeadHours,
		Monitoring:          DefaultMonitoringPolicy(),
	}
}

// Repos bundles the persistence interfaces the service depends on.
type Repos struct {
	Bookings    BookingRepository
	Team        TeamRepository
	Assessments AssessmentRepository
	Reports     ReportRepository
	Readings    ReadingRepository
	Consents    ConsentRepository
}

type Service struct {
	repos   Repos
	catalog *catalog.Service
	locks   *locking.Registry
	pool    *pgxpool.Pool
	cfg     Config
	now     func() time.Time
}

func NewService(repos Repos, catalogSvc *catalog.Service, locks *locking.Registry, pool *pgxpool.Pool, cfg Config) *Service {
	return &Service{
		repos:   repos,
		catalog: catalogSvc,
		locks:   locks,
		pool:    pool,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) inTx(ctx context.Context, fn func(context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.InTx(ctx, s.pool, fn)
}

// wrapRead keeps pgx.ErrNoRows recognizable for the handler's 404 mapping
// and converts every other read failure into a retryable collaborator error.
func wrapRead(resource string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s not found: %w", resource, err)
	}
	return &CollaboratorUnavailableError{Resource: resource, Reason: err.Error()}
}

var validPriorities = map[string]bool{
	PriorityElective: true, PriorityUrgent: true, PriorityEmergency: true,
}

var validStatuses = map[string]bool{
	StatusScheduled: true, StatusPreparation: true, StatusInProgress: true,
	StatusCompleted: true, StatusCancelled: true, StatusPostponed: true,
}

var validClearances = map[string]bool{
	ClearanceCleared: true, ClearancePending: true,
	ClearanceNotCleared: true, ClearanceConditional: true,
}

// -- Booking admission --

type TeamMemberRequest struct {
	StaffID uuid.UUID `json:"staff_id"`
	Role    string    `json:"role"`
}

type BookingRequest struct {
	PatientID                uuid.UUID           `json:"patient_id"`
	IsHighRiskPatient        bool                `json:"is_high_risk_patient"`
	SurgeryTypeID            uuid.UUID           `json:"surgery_type_id"`
	RoomID                   uuid.UUID           `json:"room_id"`
	ScheduledStart           time.Time           `json:"scheduled_start"`
	EstimatedDurationMinutes int                 `json:"estimated_duration_minutes"`
	Priority                 string              `json:"priority"`
	Note                     *string             `json:"note,omitempty"`
	Team                     []TeamMemberRequest `json:"team"`
}

// SubmitBooking runs the full admission pipeline: input checks, catalog
// snapshot loading, pure validation, then a locked conflict re-check and
// commit. Rejections come back as a RejectionList; either everything commits
// or nothing does.
func (s *Service) SubmitBooking(ctx context.Context, req *BookingRequest) (*Booking, error) {
	if req.Priority == "" {
		req.Priority = PriorityElective
	}
	if !validPriorities[req.Priority] {
		return nil, fmt.Errorf("invalid priority: %s", req.Priority)
	}
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if req.EstimatedDurationMinutes <= 0 {
		return nil, fmt.Errorf("estimated_duration_minutes must be positive")
	}
	if req.ScheduledStart.IsZero() {
		return nil, fmt.Errorf("scheduled_start is required")
	}
	if len(req.Team) == 0 {
		return nil, fmt.Errorf("team is required")
	}

	st, err := s.catalog.GetSurgeryType(ctx, req.SurgeryTypeID)
	if err != nil {
		return nil, wrapRead("surgery type", err)
	}
	room, err := s.catalog.GetRoom(ctx, req.RoomID)
	if err != nil {
		return nil, wrapRead("room", err)
	}
	if !room.IsActive || room.Status != "available" {
		return nil, &CollaboratorUnavailableError{
			Resource: "room", ResourceID: room.ID,
			Reason: "room status is " + room.Status,
		}
	}

	team := make([]TeamMember, 0, len(req.Team))
	for _, tm := range req.Team {
		m, err := s.catalog.GetStaff(ctx, tm.StaffID)
		if err != nil {
			return nil, wrapRead("staff member", err)
		}
		if !m.IsActive {
			return nil, &CollaboratorUnavailableError{
				Resource: "staff", ResourceID: m.ID, Reason: "staff member is inactive",
			}
		}
		team = append(team, TeamMember{Staff: m, Role: tm.Role})
	}

	now := s.now()
	b := &Booking{
		PatientID:                req.PatientID,
		IsHighRiskPatient:        req.IsHighRiskPatient,
		SurgeryTypeID:            req.SurgeryTypeID,
		RoomID:                   req.RoomID,
		ScheduledStart:           req.ScheduledStart,
		EstimatedDurationMinutes: req.EstimatedDurationMinutes,
		Status:                   StatusScheduled,
		Priority:                 req.Priority,
		Note:                     req.Note,
	}
	iv := b.Interval()

	var rejections []Rejection
	if rej := ValidateSchedule(b, st, room, now); rej != nil {
		rejections = append(rejections, rej)
	}
	if rej := ValidateTeam(team, st); rej != nil {
		rejections = append(rejections, rej)
	}
	for _, m := range team {
		windows, err := s.catalog.GetAvailability(ctx, m.Staff.ID)
		if err != nil {
			return nil, wrapRead("staff availability", err)
		}
		if rej := CheckAvailability(m, windows, iv); rej != nil {
			rejections = append(rejections, rej)
		}
	}
	if len(rejections) > 0 {
		return nil, &RejectionList{Rejections: rejections}
	}

	// Serialize against concurrent admissions touching the same resources.
	keys := make([]string, 0, len(team)+1)
	keys = append(keys, "room:"+req.RoomID.String())
	for _, m := range team {
		keys = append(keys, "staff:"+m.Staff.ID.String())
	}
	release, err := s.locks.AcquireAll(ctx, keys, s.cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, locking.ErrTimeout) {
			return nil, &RejectionList{Rejections: []Rejection{
				&LockTimeoutError{Keys: keys, Timeout: s.cfg.LockTimeout},
			}}
		}
		return nil, err
	}
	defer release()

	if rejections, err = s.findAllConflicts(ctx, req.RoomID, team, iv, uuid.Nil); err != nil {
		return nil, err
	}
	if len(rejections) > 0 {
		return nil, &RejectionList{Rejections: rejections}
	}

	err = s.inTx(ctx, func(ctx context.Context) error {
		if err := s.repos.Bookings.Create(ctx, b); err != nil {
			return err
		}
		for _, m := range team {
			a := &TeamAssignment{BookingID: b.ID, StaffID: m.Staff.ID, Role: m.Role}
			if err := s.repos.Team.Add(ctx, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.PriorityScore = Score(b, st, s.now())
	b.AdditionalApprovalRequired = AdditionalApprovalRequired(b, st)
	return b, nil
}

// findAllConflicts checks the room and every team member against existing
// bookings, enumerating each collision.
func (s *Service) findAllConflicts(ctx context.Context, roomID uuid.UUID, team []TeamMember, iv Interval, exclude uuid.UUID) ([]Rejection, error) {
	from := iv.Start.Add(-s.cfg.Buffer)
	to := iv.End.Add(s.cfg.Buffer)

	var rejections []Rejection
	existing, err := s.repos.Bookings.ListForRoom(ctx, roomID, from, to)
	if err != nil {
		return nil, wrapRead("bookings", err)
	}
	for _, id := range FindConflicts(iv, existing, s.cfg.Buffer, exclude) {
		rejections = append(rejections, &SchedulingConflictError{
			Resource: "room", ResourceID: roomID, ConflictingBookingID: id,
		})
	}
	for _, m := range team {
		existing, err := s.repos.Bookings.ListForStaff(ctx, m.Staff.ID, from, to)
		if err != nil {
			return nil, wrapRead("bookings", err)
		}
		for _, id := range FindConflicts(iv, existing, s.cfg.Buffer, exclude) {
			rejections = append(rejections, &SchedulingConflictError{
				Resource: "staff", ResourceID: m.Staff.ID, ConflictingBookingID: id,
			})
		}
	}
	return rejections, nil
}

// -- Lifecycle --

// TransitionState moves a booking to a target state, serialized per booking.
// Cancellation and postponement record the supplied reason.
func (s *Service) TransitionState(ctx context.Context, id uuid.UUID, target string, reason *string) (*Booking, error) {
	if !validStatuses[target] {
		return nil, fmt.Errorf("invalid status: %s", target)
	}

	release, err := s.locks.Acquire(ctx, "booking:"+id.String(), s.cfg.LockTimeout)
	if err != nil {
		if errors.Is(err, locking.ErrTimeout) {
			return nil, &RejectionList{Rejections: []Rejection{
				&LockTimeoutError{Keys: []string{"booking:" + id.String()}, Timeout: s.cfg.LockTimeout},
			}}
		}
		return nil, err
	}
	defer release()

	b, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRead("booking", err)
	}

	var assessment *PreOpAssessment
	if target == StatusInProgress {
		a, err := s.repos.Assessments.GetByBooking(ctx, id)
		switch {
		case err == nil:
			assessment = a
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, wrapRead("assessment", err)
		}
	}
	var report *SurgeryReport
	if target == StatusCompleted {
		rep, err := s.repos.Reports.GetByBooking(ctx, id)
		switch {
		case err == nil:
			report = rep
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, wrapRead("report", err)
		}
	}

	if rej := GuardTransition(b, target, assessment, report); rej != nil {
		return nil, &RejectionList{Rejections: []Rejection{rej}}
	}

	var cancelReason *string
	if target == StatusCancelled || target == StatusPostponed {
		cancelReason = reason
	}
	if err := s.repos.Bookings.UpdateStatus(ctx, id, target, cancelReason); err != nil {
		return nil, err
	}
	b.Status = target
	if cancelReason != nil {
		b.CancelReason = cancelReason
	}
	return b, nil
}

// -- Pre-operative assessment --

type AssessmentRequest struct {
	AssessmentTime  time.Time  `json:"assessment_time"`
	Vitals          VitalSigns `json:"vitals"`
	ClearanceStatus string     `json:"clearance_status"`
	Notes           *string    `json:"notes,omitempty"`
}

func (s *Service) SubmitPreOpAssessment(ctx context.Context, bookingID, assessedBy uuid.UUID, req *AssessmentRequest) (*PreOpAssessment, error) {
	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("booking", err)
	}
	if b.IsTerminal() {
		return nil, fmt.Errorf("booking is %s", b.Status)
	}
	if req.AssessmentTime.IsZero() {
		req.AssessmentTime = s.now()
	}
	if req.ClearanceStatus == "" {
		req.ClearanceStatus = ClearancePending
	}
	if !validClearances[req.ClearanceStatus] {
		return nil, fmt.Errorf("invalid clearance_status: %s", req.ClearanceStatus)
	}

	var rejections []Rejection
	if rej := ValidateAssessmentTiming(req.AssessmentTime, b.ScheduledStart, s.cfg.AssessmentLeadHours); rej != nil {
		rejections = append(rejections, rej)
	}
	if rej := ValidateVitals(req.Vitals); rej != nil {
		rejections = append(rejections, rej)
	}
	if len(rejections) > 0 {
		return nil, &RejectionList{Rejections: rejections}
	}

	a := &PreOpAssessment{
		BookingID:       bookingID,
		AssessedBy:      assessedBy,
		AssessmentTime:  req.AssessmentTime,
		Vitals:          req.Vitals,
		ClearanceStatus: req.ClearanceStatus,
		Notes:           req.Notes,
	}
	if err := s.repos.Assessments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateClearance changes the clearance decision on an existing assessment.
func (s *Service) UpdateClearance(ctx context.Context, bookingID uuid.UUID, status string) error {
	if !validClearances[status] {
		return fmt.Errorf("invalid clearance_status: %s", status)
	}
	if err := s.repos.Assessments.UpdateClearance(ctx, bookingID, status); err != nil {
		return wrapRead("assessment", err)
	}
	return nil
}

func (s *Service) GetAssessment(ctx context.Context, bookingID uuid.UUID) (*PreOpAssessment, error) {
	a, err := s.repos.Assessments.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("assessment", err)
	}
	return a, nil
}

// -- Surgery report --

type ReportRequest struct {
	StartTime          time.Time  `json:"start_time"`
	EndTime            *time.Time `json:"end_time,omitempty"`
	ProcedureDetails   string     `json:"procedure_details"`
	Complications      *string    `json:"complications,omitempty"`
	EstimatedBloodLoss *int       `json:"estimated_blood_loss,omitempty"`
	SurgicalFindings   *string    `json:"surgical_findings,omitempty"`
	PostOpInstructions *string    `json:"post_op_instructions,omitempty"`
}

// FileSurgeryReport creates the report on first call and updates it after,
// so the end time can be filed when the surgery actually finishes.
func (s *Service) FileSurgeryReport(ctx context.Context, bookingID, recordedBy uuid.UUID, req *ReportRequest) (*SurgeryReport, error) {
	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("booking", err)
	}
	if b.Status != StatusInProgress && b.Status != StatusCompleted {
		return nil, fmt.Errorf("surgery report requires booking in progress, booking is %s", b.Status)
	}
	if req.ProcedureDetails == "" {
		return nil, fmt.Errorf("procedure_details is required")
	}
	if req.StartTime.IsZero() {
		req.StartTime = b.ScheduledStart
	}
	if req.EndTime != nil && !req.EndTime.After(req.StartTime) {
		return nil, fmt.Errorf("end_time must be after start_time")
	}

	existing, err := s.repos.Reports.GetByBooking(ctx, bookingID)
	switch {
	case err == nil:
		existing.EndTime = req.EndTime
		existing.ProcedureDetails = req.ProcedureDetails
		existing.Complications = req.Complications
		existing.EstimatedBloodLoss = req.EstimatedBloodLoss
		existing.SurgicalFindings = req.SurgicalFindings
		existing.PostOpInstructions = req.PostOpInstructions
		if err := s.repos.Reports.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, pgx.ErrNoRows):
		rep := &SurgeryReport{
			BookingID:          bookingID,
			StartTime:          req.StartTime,
			EndTime:            req.EndTime,
			ProcedureDetails:   req.ProcedureDetails,
			Complications:      req.Complications,
			EstimatedBloodLoss: req.EstimatedBloodLoss,
			SurgicalFindings:   req.SurgicalFindings,
			PostOpInstructions: req.PostOpInstructions,
			RecordedBy:         recordedBy,
		}
		if err := s.repos.Reports.Create(ctx, rep); err != nil {
			return nil, err
		}
		return rep, nil
	default:
		return nil, wrapRead("report", err)
	}
}

func (s *Service) GetReport(ctx context.Context, bookingID uuid.UUID) (*SurgeryReport, error) {
	rep, err := s.repos.Reports.GetByBooking(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("report", err)
	}
	return rep, nil
}

// -- Post-operative monitoring --

type ReadingRequest struct {
	RecordedAt time.Time  `json:"recorded_at"`
	Vitals     VitalSigns `json:"vitals"`
	Note       *string    `json:"note,omitempty"`
}

// AppendPostOpReading validates the cadence gap against the previous reading
// (or the surgery end for the first one) before appending.
func (s *Service) AppendPostOpReading(ctx context.Context, bookingID, recordedBy uuid.UUID, req *ReadingRequest) (*PostOpReading, error) {
	rep, err := s.repos.Reports.GetByBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("surgery report with end time required before post-op monitoring")
		}
		return nil, wrapRead("report", err)
	}
	if rep.EndTime == nil {
		return nil, fmt.Errorf("surgery report with end time required before post-op monitoring")
	}
	if req.RecordedAt.IsZero() {
		req.RecordedAt = s.now()
	}

	readings, err := s.repos.Readings.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("readings", err)
	}
	prev := *rep.EndTime
	if n := len(readings); n > 0 {
		prev = readings[n-1].RecordedAt
	}
	if !req.RecordedAt.After(prev) {
		return nil, fmt.Errorf("recorded_at must be after the previous reading")
	}
	if rej := s.cfg.Monitoring.ValidateNextReading(*rep.EndTime, prev, req.RecordedAt); rej != nil {
		return nil, &RejectionList{Rejections: []Rejection{rej}}
	}

	reading := &PostOpReading{
		BookingID:  bookingID,
		RecordedAt: req.RecordedAt,
		RecordedBy: recordedBy,
		Vitals:     req.Vitals,
		Note:       req.Note,
	}
	if err := s.repos.Readings.Append(ctx, reading); err != nil {
		return nil, err
	}
	return reading, nil
}

func (s *Service) ListReadings(ctx context.Context, bookingID uuid.UUID) ([]*PostOpReading, error) {
	readings, err := s.repos.Readings.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("readings", err)
	}
	return readings, nil
}

// -- Queries --

// GetPriorityQueue scores and orders waiting bookings. Default statuses are
// SCHEDULED and PREPARATION; an optional priority narrows the result.
func (s *Service) GetPriorityQueue(ctx context.Context, statuses []string, priority string) ([]*Booking, error) {
	if len(statuses) == 0 {
		statuses = []string{StatusScheduled, StatusPreparation}
	}
	for _, st := range statuses {
		if !validStatuses[st] {
			return nil, fmt.Errorf("invalid status: %s", st)
		}
	}
	if priority != "" && !validPriorities[priority] {
		return nil, fmt.Errorf("invalid priority: %s", priority)
	}

	items, err := s.repos.Bookings.ListByStatuses(ctx, statuses)
	if err != nil {
		return nil, wrapRead("bookings", err)
	}
	if priority != "" {
		filtered := items[:0]
		for _, b := range items {
			if b.Priority == priority {
				filtered = append(filtered, b)
			}
		}
		items = filtered
	}

	types, err := s.loadTypes(ctx, items)
	if err != nil {
		return nil, err
	}
	RankQueue(items, types, s.now())
	for _, b := range items {
		b.AdditionalApprovalRequired = AdditionalApprovalRequired(b, types[b.SurgeryTypeID])
	}
	return items, nil
}

func (s *Service) loadTypes(ctx context.Context, items []*Booking) (map[uuid.UUID]*catalog.SurgeryType, error) {
	types := make(map[uuid.UUID]*catalog.SurgeryType)
	for _, b := range items {
		if _, ok := types[b.SurgeryTypeID]; ok {
			continue
		}
		st, err := s.catalog.GetSurgeryType(ctx, b.SurgeryTypeID)
		if err != nil {
			return nil, wrapRead("surgery type", err)
		}
		types[b.SurgeryTypeID] = st
	}
	return types, nil
}

// BookingDetail is the composed read model for a single booking.
type BookingDetail struct {
	*Booking
	Team       []*TeamAssignment `json:"team"`
	Assessment *PreOpAssessment  `json:"assessment,omitempty"`
	Report     *SurgeryReport    `json:"report,omitempty"`
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*BookingDetail, error) {
	b, err := s.repos.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, wrapRead("booking", err)
	}
	team, err := s.repos.Team.ListByBooking(ctx, id)
	if err != nil {
		return nil, wrapRead("team", err)
	}
	detail := &BookingDetail{Booking: b, Team: team}
	if a, err := s.repos.Assessments.GetByBooking(ctx, id); err == nil {
		detail.Assessment = a
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapRead("assessment", err)
	}
	if rep, err := s.repos.Reports.GetByBooking(ctx, id); err == nil {
		detail.Report = rep
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, wrapRead("report", err)
	}

	st, err := s.catalog.GetSurgeryType(ctx, b.SurgeryTypeID)
	if err != nil {
		return nil, wrapRead("surgery type", err)
	}
	b.PriorityScore = Score(b, st, s.now())
	b.AdditionalApprovalRequired = AdditionalApprovalRequired(b, st)
	return detail, nil
}

func (s *Service) SearchBookings(ctx context.Context, params map[string]string, limit, offset int) ([]*Booking, int, error) {
	return s.repos.Bookings.Search(ctx, params, limit, offset)
}

// ListUpcoming returns active bookings starting within the next days.
func (s *Service) ListUpcoming(ctx context.Context, days int) ([]*Booking, error) {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	items, err := s.repos.Bookings.ListStartingBetween(ctx, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, wrapRead("bookings", err)
	}
	return items, nil
}

// ListToday returns active bookings starting today.
func (s *Service) ListToday(ctx context.Context) ([]*Booking, error) {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	items, err := s.repos.Bookings.ListStartingBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, wrapRead("bookings", err)
	}
	return items, nil
}

// ListEmergencies returns active emergency bookings, oldest first.
func (s *Service) ListEmergencies(ctx context.Context) ([]*Booking, error) {
	items, err := s.repos.Bookings.ListEmergencies(ctx)
	if err != nil {
		return nil, wrapRead("bookings", err)
	}
	return items, nil
}

// -- Team confirmation --

func (s *Service) ConfirmTeamMember(ctx context.Context, bookingID, staffID uuid.UUID) error {
	if err := s.repos.Team.Confirm(ctx, bookingID, staffID); err != nil {
		return wrapRead("team assignment", err)
	}
	return nil
}

// -- Consents --

type ConsentRequest struct {
	SignedBy              string    `json:"signed_by"`
	RelationshipToPatient string    `json:"relationship_to_patient"`
	Witness               *string   `json:"witness,omitempty"`
	SignedAt              time.Time `json:"signed_at"`
}

// AddConsent records a signed consent. A consent is valid when witnessed and
// signed before the scheduled start.
func (s *Service) AddConsent(ctx context.Context, bookingID uuid.UUID, req *ConsentRequest) (*SurgeryConsent, error) {
	b, err := s.repos.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, wrapRead("booking", err)
	}
	if req.SignedBy == "" {
		return nil, fmt.Errorf("signed_by is required")
	}
	if req.RelationshipToPatient == "" {
		req.RelationshipToPatient = "SELF"
	}
	if req.SignedAt.IsZero() {
		req.SignedAt = s.now()
	}
	c := &SurgeryConsent{
		BookingID:             bookingID,
		SignedBy:              req.SignedBy,
		RelationshipToPatient: req.RelationshipToPatient,
		Witness:               req.Witness,
		SignedAt:              req.SignedAt,
		IsValid:               req.Witness != nil && req.SignedAt.Before(b.ScheduledStart),
	}
	if err := s.repos.Consents.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// VerifyConsent reports whether the booking holds at least one valid consent.
func (s *Service) VerifyConsent(ctx context.Context, bookingID uuid.UUID) (bool, []*SurgeryConsent, error) {
	consents, err := s.repos.Consents.ListByBooking(ctx, bookingID)
	if err != nil {
		return false, nil, wrapRead("consents", err)
	}
	for _, c := range consents {
		if c.IsValid {
			return true, consents, nil
		}
	}
	return false, consents, nil
}
