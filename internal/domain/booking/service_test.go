package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/orsched/orsched/internal/domain/catalog"
	"github.com/orsched/orsched/internal/platform/locking"
)

// -- Catalog stubs --

type stubTypeRepo struct{ types map[uuid.UUID]*catalog.SurgeryType }

func (m *stubTypeRepo) Create(_ context.Context, st *catalog.SurgeryType) error {
	st.ID = uuid.New()
	m.types[st.ID] = st
	return nil
}

func (m *stubTypeRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.SurgeryType, error) {
	st, ok := m.types[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return st, nil
}

func (m *stubTypeRepo) GetByCode(_ context.Context, _ string) (*catalog.SurgeryType, error) {
	return nil, pgx.ErrNoRows
}
func (m *stubTypeRepo) Update(_ context.Context, _ *catalog.SurgeryType) error { return nil }
func (m *stubTypeRepo) Delete(_ context.Context, _ uuid.UUID) error            { return nil }
func (m *stubTypeRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*catalog.SurgeryType, int, error) {
	return nil, 0, nil
}

type stubRoomRepo struct{ rooms map[uuid.UUID]*catalog.OperatingRoom }

func (m *stubRoomRepo) Create(_ context.Context, r *catalog.OperatingRoom) error {
	r.ID = uuid.New()
	m.rooms[r.ID] = r
	return nil
}

func (m *stubRoomRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.OperatingRoom, error) {
	r, ok := m.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}
func (m *stubRoomRepo) Update(_ context.Context, _ *catalog.OperatingRoom) error { return nil }
func (m *stubRoomRepo) Delete(_ context.Context, _ uuid.UUID) error              { return nil }
func (m *stubRoomRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*catalog.OperatingRoom, int, error) {
	return nil, 0, nil
}

type stubStaffRepo struct {
	staff   map[uuid.UUID]*catalog.StaffMember
	windows map[uuid.UUID][]*catalog.StaffAvailability
}

func (m *stubStaffRepo) Create(_ context.Context, s *catalog.StaffMember) error {
	s.ID = uuid.New()
	m.staff[s.ID] = s
	return nil
}

func (m *stubStaffRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.StaffMember, error) {
	s, ok := m.staff[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return s, nil
}
func (m *stubStaffRepo) Update(_ context.Context, _ *catalog.StaffMember) error { return nil }
func (m *stubStaffRepo) Delete(_ context.Context, _ uuid.UUID) error            { return nil }
func (m *stubStaffRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*catalog.StaffMember, int, error) {
	return nil, 0, nil
}

func (m *stubStaffRepo) AddAvailability(_ context.Context, w *catalog.StaffAvailability) error {
	w.ID = uuid.New()
	m.windows[w.StaffID] = append(m.windows[w.StaffID], w)
	return nil
}

func (m *stubStaffRepo) GetAvailability(_ context.Context, staffID uuid.UUID) ([]*catalog.StaffAvailability, error) {
	return m.windows[staffID], nil
}

func (m *stubStaffRepo) GetAvailabilityInWindow(_ context.Context, staffID uuid.UUID, _, _ time.Time) ([]*catalog.StaffAvailability, error) {
	return m.windows[staffID], nil
}

func (m *stubStaffRepo) RemoveAvailability(_ context.Context, _ uuid.UUID) error { return nil }

// -- Booking mocks --

type mockBookingRepo struct {
	items map[uuid.UUID]*Booking
	team  *mockTeamRepo
}

func (m *mockBookingRepo) Create(_ context.Context, b *Booking) error {
	b.ID = uuid.New()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = testNow
	}
	b.UpdatedAt = b.CreatedAt
	m.items[b.ID] = b
	return nil
}

func (m *mockBookingRepo) GetByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	b, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return b, nil
}

func (m *mockBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, cancelReason *string) error {
	b, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	b.Status = status
	if cancelReason != nil {
		b.CancelReason = cancelReason
	}
	return nil
}

func (m *mockBookingRepo) Search(_ context.Context, _ map[string]string, _, _ int) ([]*Booking, int, error) {
	var out []*Booking
	for _, b := range m.items {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *mockBookingRepo) ListForRoom(_ context.Context, roomID uuid.UUID, _, _ time.Time) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.items {
		if b.RoomID == roomID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListForStaff(_ context.Context, staffID uuid.UUID, _, _ time.Time) ([]*Booking, error) {
	var out []*Booking
	for _, a := range m.team.items {
		if a.StaffID == staffID {
			if b, ok := m.items[a.BookingID]; ok {
				out = append(out, b)
			}
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByStatuses(_ context.Context, statuses []string) ([]*Booking, error) {
	want := make(map[string]bool, len(statuses))
	for _, s := range statuses {
		want[s] = true
	}
	var out []*Booking
	for _, b := range m.items {
		if want[b.Status] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListStartingBetween(_ context.Context, from, to time.Time) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.items {
		if b.IsActive() && !b.ScheduledStart.Before(from) && b.ScheduledStart.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListEmergencies(_ context.Context) ([]*Booking, error) {
	var out []*Booking
	for _, b := range m.items {
		if b.Priority == PriorityEmergency && b.IsActive() {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockTeamRepo struct{ items []*TeamAssignment }

func (m *mockTeamRepo) Add(_ context.Context, a *TeamAssignment) error {
	a.ID = uuid.New()
	m.items = append(m.items, a)
	return nil
}

func (m *mockTeamRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*TeamAssignment, error) {
	var out []*TeamAssignment
	for _, a := range m.items {
		if a.BookingID == bookingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockTeamRepo) Confirm(_ context.Context, bookingID, staffID uuid.UUID) error {
	for _, a := range m.items {
		if a.BookingID == bookingID && a.StaffID == staffID {
			a.IsConfirmed = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

type mockAssessmentRepo struct{ items map[uuid.UUID]*PreOpAssessment }

func (m *mockAssessmentRepo) Create(_ context.Context, a *PreOpAssessment) error {
	a.ID = uuid.New()
	m.items[a.BookingID] = a
	return nil
}

func (m *mockAssessmentRepo) GetByBooking(_ context.Context, bookingID uuid.UUID) (*PreOpAssessment, error) {
	a, ok := m.items[bookingID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAssessmentRepo) UpdateClearance(_ context.Context, bookingID uuid.UUID, status string) error {
	a, ok := m.items[bookingID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.ClearanceStatus = status
	return nil
}

type mockReportRepo struct{ items map[uuid.UUID]*SurgeryReport }

func (m *mockReportRepo) Create(_ context.Context, r *SurgeryReport) error {
	r.ID = uuid.New()
	m.items[r.BookingID] = r
	return nil
}

func (m *mockReportRepo) GetByBooking(_ context.Context, bookingID uuid.UUID) (*SurgeryReport, error) {
	r, ok := m.items[bookingID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockReportRepo) Update(_ context.Context, r *SurgeryReport) error {
	m.items[r.BookingID] = r
	return nil
}

type mockReadingRepo struct{ items map[uuid.UUID][]*PostOpReading }

func (m *mockReadingRepo) Append(_ context.Context, r *PostOpReading) error {
	r.ID = uuid.New()
	m.items[r.BookingID] = append(m.items[r.BookingID], r)
	return nil
}

func (m *mockReadingRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*PostOpReading, error) {
	return m.items[bookingID], nil
}

type mockConsentRepo struct{ items map[uuid.UUID][]*SurgeryConsent }

func (m *mockConsentRepo) Create(_ context.Context, c *SurgeryConsent) error {
	c.ID = uuid.New()
	m.items[c.BookingID] = append(m.items[c.BookingID], c)
	return nil
}

func (m *mockConsentRepo) ListByBooking(_ context.Context, bookingID uuid.UUID) ([]*SurgeryConsent, error) {
	return m.items[bookingID], nil
}

// -- Fixture --

type fixture struct {
	svc         *Service
	bookings    *mockBookingRepo
	team        *mockTeamRepo
	assessments *mockAssessmentRepo
	reports     *mockReportRepo
	readings    *mockReadingRepo
	consents    *mockConsentRepo
	types       *stubTypeRepo
	rooms       *stubRoomRepo
	staff       *stubStaffRepo

	surgeryType *catalog.SurgeryType
	room        *catalog.OperatingRoom
	surgeon     *catalog.StaffMember
	anesthetist *catalog.StaffMember
	scrubNurse  *catalog.StaffMember
	circNurse   *catalog.StaffMember
}

func newFixture(cfg Config) *fixture {
	f := &fixture{
		team:        &mockTeamRepo{},
		assessments: &mockAssessmentRepo{items: map[uuid.UUID]*PreOpAssessment{}},
		reports:     &mockReportRepo{items: map[uuid.UUID]*SurgeryReport{}},
		readings:    &mockReadingRepo{items: map[uuid.UUID][]*PostOpReading{}},
		consents:    &mockConsentRepo{items: map[uuid.UUID][]*SurgeryConsent{}},
		types:       &stubTypeRepo{types: map[uuid.UUID]*catalog.SurgeryType{}},
		rooms:       &stubRoomRepo{rooms: map[uuid.UUID]*catalog.OperatingRoom{}},
		staff: &stubStaffRepo{
			staff:   map[uuid.UUID]*catalog.StaffMember{},
			windows: map[uuid.UUID][]*catalog.StaffAvailability{},
		},
	}
	f.bookings = &mockBookingRepo{items: map[uuid.UUID]*Booking{}, team: f.team}

	f.surgeryType = testType()
	f.types.types[f.surgeryType.ID] = f.surgeryType
	f.room = testRoom()
	f.rooms.rooms[f.room.ID] = f.room

	f.surgeon = f.addStaff(catalog.RoleSurgeon, "CARDIAC")
	f.anesthetist = f.addStaff(catalog.RoleAnesthesiologist)
	f.scrubNurse = f.addStaff(catalog.RoleScrubNurse)
	f.circNurse = f.addStaff(catalog.RoleCirculatingNurse)

	catalogSvc := catalog.NewService(f.types, f.rooms, f.staff)
	repos := Repos{
		Bookings:    f.bookings,
		Team:        f.team,
		Assessments: f.assessments,
		Reports:     f.reports,
		Readings:    f.readings,
		Consents:    f.consents,
	}
	f.svc = NewService(repos, catalogSvc, locking.NewRegistry(), nil, cfg)
	f.svc.now = func() time.Time { return testNow }
	return f
}

func (f *fixture) addStaff(role string, specs ...string) *catalog.StaffMember {
	m := staffWith(role, specs...)
	f.staff.staff[m.ID] = m
	// Broad working window so availability is not the failing check unless a
	// test narrows it.
	f.staff.windows[m.ID] = []*catalog.StaffAvailability{{
		ID:        uuid.New(),
		StaffID:   m.ID,
		StartTime: testNow.AddDate(0, 0, -1),
		EndTime:   testNow.AddDate(0, 0, 30),
	}}
	return m
}

func (f *fixture) validRequest() *BookingRequest {
	return &BookingRequest{
		PatientID:                uuid.New(),
		SurgeryTypeID:            f.surgeryType.ID,
		RoomID:                   f.room.ID,
		ScheduledStart:           testNow.Add(25 * time.Hour), // Tuesday 10:00
		EstimatedDurationMinutes: 240,
		Priority:                 PriorityElective,
		Team: []TeamMemberRequest{
			{StaffID: f.surgeon.ID, Role: catalog.RoleSurgeon},
			{StaffID: f.anesthetist.ID, Role: catalog.RoleAnesthesiologist},
			{StaffID: f.scrubNurse.ID, Role: catalog.RoleScrubNurse},
			{StaffID: f.circNurse.ID, Role: catalog.RoleCirculatingNurse},
		},
	}
}

func rejectionCodes(t *testing.T, err error) []string {
	t.Helper()
	list, ok := AsRejectionList(err)
	if !ok {
		t.Fatalf("expected a rejection list, got %v", err)
	}
	codes := make([]string, len(list.Rejections))
	for i, r := range list.Rejections {
		codes[i] = r.Code()
	}
	return codes
}

// -- Admission --

func TestSubmitBooking_Accepted(t *testing.T) {
	f := newFixture(DefaultConfig())
	b, err := f.svc.SubmitBooking(context.Background(), f.validRequest())
	if err != nil {
		t.Fatalf("SubmitBooking: %v", err)
	}
	if b.Status != StatusScheduled {
		t.Fatalf("status = %s, want SCHEDULED", b.Status)
	}
	// ELECTIVE base 10 + HIGH risk procedure 15, zero days waited.
	if b.PriorityScore != 25 {
		t.Fatalf("score = %d, want 25", b.PriorityScore)
	}
	if !b.AdditionalApprovalRequired {
		t.Fatalf("HIGH risk procedure must flag additional approval")
	}
	assignments, _ := f.team.ListByBooking(context.Background(), b.ID)
	if len(assignments) != 4 {
		t.Fatalf("expected 4 team assignments, got %d", len(assignments))
	}
}

func TestSubmitBooking_CollectsAllRejections(t *testing.T) {
	f := newFixture(DefaultConfig())
	req := f.validRequest()
	req.ScheduledStart = testNow.Add(-time.Hour)
	req.Team = req.Team[:3] // drops the circulating nurse

	_, err := f.svc.SubmitBooking(context.Background(), req)
	codes := rejectionCodes(t, err)
	if len(codes) != 2 {
		t.Fatalf("expected 2 rejections, got %v", codes)
	}
	list, _ := AsRejectionList(err)
	if !list.HasCode(CodePastScheduling) || !list.HasCode(CodeInsufficientRole) {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestSubmitBooking_RoomConflict(t *testing.T) {
	f := newFixture(DefaultConfig())
	first, err := f.svc.SubmitBooking(context.Background(), f.validRequest())
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	req := f.validRequest()
	// Different team, same room, overlapping buffered window.
	surgeon2 := f.addStaff(catalog.RoleSurgeon, "CARDIAC")
	anesthetist2 := f.addStaff(catalog.RoleAnesthesiologist)
	scrub2 := f.addStaff(catalog.RoleScrubNurse)
	circ2 := f.addStaff(catalog.RoleCirculatingNurse)
	req.Team = []TeamMemberRequest{
		{StaffID: surgeon2.ID, Role: catalog.RoleSurgeon},
		{StaffID: anesthetist2.ID, Role: catalog.RoleAnesthesiologist},
		{StaffID: scrub2.ID, Role: catalog.RoleScrubNurse},
		{StaffID: circ2.ID, Role: catalog.RoleCirculatingNurse},
	}
	req.ScheduledStart = first.Interval().End.Add(15 * time.Minute) // inside the 30 min buffer

	_, err = f.svc.SubmitBooking(context.Background(), req)
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeSchedulingConflict) {
		t.Fatalf("expected SCHEDULING_CONFLICT, got %v", err)
	}
	sc := list.Rejections[0].(*SchedulingConflictError)
	if sc.Resource != "room" || sc.ConflictingBookingID != first.ID {
		t.Fatalf("unexpected conflict detail: %+v", sc)
	}
}

func TestSubmitBooking_StaffConflictAcrossRooms(t *testing.T) {
	f := newFixture(DefaultConfig())
	first, err := f.svc.SubmitBooking(context.Background(), f.validRequest())
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	room2 := testRoom()
	f.rooms.rooms[room2.ID] = room2
	req := f.validRequest()
	req.RoomID = room2.ID // same surgeon, different room, same slot

	_, err = f.svc.SubmitBooking(context.Background(), req)
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeSchedulingConflict) {
		t.Fatalf("expected SCHEDULING_CONFLICT, got %v", err)
	}
	for _, r := range list.Rejections {
		sc := r.(*SchedulingConflictError)
		if sc.Resource != "staff" || sc.ConflictingBookingID != first.ID {
			t.Fatalf("unexpected conflict detail: %+v", sc)
		}
	}
}

func TestSubmitBooking_LockTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LockTimeout = 50 * time.Millisecond
	f := newFixture(cfg)

	release, err := f.svc.locks.Acquire(context.Background(), "room:"+f.room.ID.String(), time.Second)
	if err != nil {
		t.Fatalf("pre-acquire: %v", err)
	}
	defer release()

	_, err = f.svc.SubmitBooking(context.Background(), f.validRequest())
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeLockTimeout) {
		t.Fatalf("expected LOCK_TIMEOUT, got %v", err)
	}
}

func TestSubmitBooking_RoomNotAvailable(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.room.Status = "maintenance"
	_, err := f.svc.SubmitBooking(context.Background(), f.validRequest())
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeCollaboratorUnavailable) {
		t.Fatalf("expected COLLABORATOR_UNAVAILABLE, got %v", err)
	}
}

func TestSubmitBooking_StaffOutsideWorkingHours(t *testing.T) {
	f := newFixture(DefaultConfig())
	f.staff.windows[f.surgeon.ID] = []*catalog.StaffAvailability{{
		StaffID:   f.surgeon.ID,
		StartTime: testNow.AddDate(0, 0, 10),
		EndTime:   testNow.AddDate(0, 0, 20),
	}}
	_, err := f.svc.SubmitBooking(context.Background(), f.validRequest())
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeStaffUnavailable) {
		t.Fatalf("expected STAFF_UNAVAILABLE, got %v", err)
	}
}

// -- Lifecycle --

func (f *fixture) storedBooking(t *testing.T) *Booking {
	t.Helper()
	b, err := f.svc.SubmitBooking(context.Background(), f.validRequest())
	if err != nil {
		t.Fatalf("SubmitBooking: %v", err)
	}
	return b
}

func TestTransitionState_FullLifecycle(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()
	b := f.storedBooking(t)

	if _, err := f.svc.TransitionState(ctx, b.ID, StatusPreparation, nil); err != nil {
		t.Fatalf("to PREPARATION: %v", err)
	}

	// Starting surgery requires clearance.
	_, err := f.svc.TransitionState(ctx, b.ID, StatusInProgress, nil)
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeClearanceRequired) {
		t.Fatalf("expected CLEARANCE_REQUIRED, got %v", err)
	}
	f.assessments.items[b.ID] = &PreOpAssessment{BookingID: b.ID, ClearanceStatus: ClearanceCleared}
	if _, err := f.svc.TransitionState(ctx, b.ID, StatusInProgress, nil); err != nil {
		t.Fatalf("to IN_PROGRESS: %v", err)
	}

	// Completing requires a report with an end time.
	_, err = f.svc.TransitionState(ctx, b.ID, StatusCompleted, nil)
	list, ok = AsRejectionList(err)
	if !ok || !list.HasCode(CodeIllegalTransition) {
		t.Fatalf("expected rejection without report, got %v", err)
	}
	end := b.ScheduledStart.Add(3 * time.Hour)
	f.reports.items[b.ID] = &SurgeryReport{BookingID: b.ID, StartTime: b.ScheduledStart, EndTime: &end}
	got, err := f.svc.TransitionState(ctx, b.ID, StatusCompleted, nil)
	if err != nil {
		t.Fatalf("to COMPLETED: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", got.Status)
	}
}

func TestTransitionState_Illegal(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	_, err := f.svc.TransitionState(context.Background(), b.ID, StatusCompleted, nil)
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeIllegalTransition) {
		t.Fatalf("expected ILLEGAL_TRANSITION, got %v", err)
	}
}

func TestTransitionState_CancelRecordsReason(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	reason := "patient rescheduled"
	got, err := f.svc.TransitionState(context.Background(), b.ID, StatusCancelled, &reason)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got.Status != StatusCancelled || got.CancelReason == nil || *got.CancelReason != reason {
		t.Fatalf("cancel not recorded: %+v", got)
	}
}

func TestTransitionState_UnknownBooking(t *testing.T) {
	f := newFixture(DefaultConfig())
	_, err := f.svc.TransitionState(context.Background(), uuid.New(), StatusPreparation, nil)
	if err == nil {
		t.Fatalf("expected error for unknown booking")
	}
}

// -- Clinical safety --

func TestSubmitPreOpAssessment_Accepted(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	a, err := f.svc.SubmitPreOpAssessment(context.Background(), b.ID, uuid.New(), &AssessmentRequest{
		AssessmentTime: testNow,
		Vitals:         normalVitals(),
	})
	if err != nil {
		t.Fatalf("SubmitPreOpAssessment: %v", err)
	}
	if a.ClearanceStatus != ClearancePending {
		t.Fatalf("clearance = %s, want default PENDING", a.ClearanceStatus)
	}
}

func TestSubmitPreOpAssessment_Late(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	// Booking starts 25h out; an assessment 2h from now leaves a 23h lead.
	_, err := f.svc.SubmitPreOpAssessment(context.Background(), b.ID, uuid.New(), &AssessmentRequest{
		AssessmentTime: testNow.Add(2 * time.Hour),
		Vitals:         normalVitals(),
	})
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeLateAssessment) {
		t.Fatalf("expected LATE_ASSESSMENT, got %v", err)
	}
}

func TestSubmitPreOpAssessment_BadVitals(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	vitals := normalVitals()
	vitals.HeartRate = intPtr(110)
	_, err := f.svc.SubmitPreOpAssessment(context.Background(), b.ID, uuid.New(), &AssessmentRequest{
		AssessmentTime: testNow,
		Vitals:         vitals,
	})
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeVitalSignOutOfRange) {
		t.Fatalf("expected VITAL_SIGN_OUT_OF_RANGE, got %v", err)
	}
}

func TestUpdateClearance(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	f.assessments.items[b.ID] = &PreOpAssessment{BookingID: b.ID, ClearanceStatus: ClearancePending}

	if err := f.svc.UpdateClearance(context.Background(), b.ID, "READY"); err == nil {
		t.Fatalf("expected invalid clearance status to fail")
	}
	if err := f.svc.UpdateClearance(context.Background(), b.ID, ClearanceCleared); err != nil {
		t.Fatalf("UpdateClearance: %v", err)
	}
	if f.assessments.items[b.ID].ClearanceStatus != ClearanceCleared {
		t.Fatalf("clearance not persisted")
	}
}

// -- Reports and monitoring --

func TestFileSurgeryReport(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()
	b := f.storedBooking(t)

	_, err := f.svc.FileSurgeryReport(ctx, b.ID, uuid.New(), &ReportRequest{ProcedureDetails: "bypass x3"})
	if err == nil {
		t.Fatalf("expected rejection while booking is SCHEDULED")
	}

	b.Status = StatusInProgress
	rep, err := f.svc.FileSurgeryReport(ctx, b.ID, uuid.New(), &ReportRequest{ProcedureDetails: "bypass x3"})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	if rep.EndTime != nil {
		t.Fatalf("end time should be open on first filing")
	}

	end := b.ScheduledStart.Add(4 * time.Hour)
	rep, err = f.svc.FileSurgeryReport(ctx, b.ID, uuid.New(), &ReportRequest{
		ProcedureDetails: "bypass x3",
		EndTime:          &end,
	})
	if err != nil {
		t.Fatalf("close report: %v", err)
	}
	if rep.EndTime == nil || !rep.EndTime.Equal(end) {
		t.Fatalf("end time not recorded")
	}
}

func TestAppendPostOpReading_Cadence(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()
	b := f.storedBooking(t)
	end := b.ScheduledStart.Add(4 * time.Hour)
	f.reports.items[b.ID] = &SurgeryReport{BookingID: b.ID, StartTime: b.ScheduledStart, EndTime: &end}

	if _, err := f.svc.AppendPostOpReading(ctx, b.ID, uuid.New(), &ReadingRequest{
		RecordedAt: end.Add(10 * time.Minute),
		Vitals:     normalVitals(),
	}); err != nil {
		t.Fatalf("first reading: %v", err)
	}

	// 20 minutes after the previous reading breaks the early cadence.
	_, err := f.svc.AppendPostOpReading(ctx, b.ID, uuid.New(), &ReadingRequest{
		RecordedAt: end.Add(30 * time.Minute),
		Vitals:     normalVitals(),
	})
	list, ok := AsRejectionList(err)
	if !ok || !list.HasCode(CodeMonitoringGap) {
		t.Fatalf("expected MONITORING_GAP, got %v", err)
	}

	// Out-of-order readings are refused outright.
	if _, err := f.svc.AppendPostOpReading(ctx, b.ID, uuid.New(), &ReadingRequest{
		RecordedAt: end.Add(5 * time.Minute),
		Vitals:     normalVitals(),
	}); err == nil {
		t.Fatalf("expected out-of-order reading to fail")
	}
}

func TestAppendPostOpReading_RequiresClosedReport(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	_, err := f.svc.AppendPostOpReading(context.Background(), b.ID, uuid.New(), &ReadingRequest{
		RecordedAt: testNow,
		Vitals:     normalVitals(),
	})
	if err == nil {
		t.Fatalf("expected rejection without a closed report")
	}
}

// -- Queue and queries --

func TestGetPriorityQueue(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()

	elective := f.storedBooking(t)

	req := f.validRequest()
	req.Priority = PriorityEmergency
	req.RoomID = func() uuid.UUID {
		room := testRoom()
		f.rooms.rooms[room.ID] = room
		return room.ID
	}()
	surgeon2 := f.addStaff(catalog.RoleSurgeon, "CARDIAC")
	anesthetist2 := f.addStaff(catalog.RoleAnesthesiologist)
	scrub2 := f.addStaff(catalog.RoleScrubNurse)
	circ2 := f.addStaff(catalog.RoleCirculatingNurse)
	req.Team = []TeamMemberRequest{
		{StaffID: surgeon2.ID, Role: catalog.RoleSurgeon},
		{StaffID: anesthetist2.ID, Role: catalog.RoleAnesthesiologist},
		{StaffID: scrub2.ID, Role: catalog.RoleScrubNurse},
		{StaffID: circ2.ID, Role: catalog.RoleCirculatingNurse},
	}
	emergency, err := f.svc.SubmitBooking(ctx, req)
	if err != nil {
		t.Fatalf("emergency booking: %v", err)
	}

	queue, err := f.svc.GetPriorityQueue(ctx, nil, "")
	if err != nil {
		t.Fatalf("GetPriorityQueue: %v", err)
	}
	if len(queue) != 2 {
		t.Fatalf("queue length = %d, want 2", len(queue))
	}
	if queue[0].ID != emergency.ID || queue[1].ID != elective.ID {
		t.Fatalf("queue out of order: %s before %s", queue[0].Priority, queue[1].Priority)
	}
	if queue[0].PriorityScore <= queue[1].PriorityScore {
		t.Fatalf("scores not descending: %d, %d", queue[0].PriorityScore, queue[1].PriorityScore)
	}

	filtered, err := f.svc.GetPriorityQueue(ctx, nil, PriorityEmergency)
	if err != nil {
		t.Fatalf("filtered queue: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != emergency.ID {
		t.Fatalf("priority filter failed: %v", filtered)
	}

	if _, err := f.svc.GetPriorityQueue(ctx, []string{"BOGUS"}, ""); err == nil {
		t.Fatalf("expected invalid status to fail")
	}
}

func TestGetBooking_Detail(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	f.assessments.items[b.ID] = &PreOpAssessment{BookingID: b.ID, ClearanceStatus: ClearanceCleared}

	detail, err := f.svc.GetBooking(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("GetBooking: %v", err)
	}
	if len(detail.Team) != 4 {
		t.Fatalf("team length = %d, want 4", len(detail.Team))
	}
	if detail.Assessment == nil || detail.Report != nil {
		t.Fatalf("unexpected detail composition: %+v", detail)
	}
	if detail.PriorityScore == 0 {
		t.Fatalf("detail should carry the score")
	}
}

func TestListToday(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()
	todayBooking := &Booking{ID: uuid.New(), ScheduledStart: testNow.Add(2 * time.Hour), Status: StatusScheduled}
	laterBooking := &Booking{ID: uuid.New(), ScheduledStart: testNow.AddDate(0, 0, 3), Status: StatusScheduled}
	f.bookings.items[todayBooking.ID] = todayBooking
	f.bookings.items[laterBooking.ID] = laterBooking
	today, err := f.svc.ListToday(ctx)
	if err != nil {
		t.Fatalf("ListToday: %v", err)
	}
	if len(today) != 1 {
		t.Fatalf("today = %d bookings, want 1", len(today))
	}
	upcoming, err := f.svc.ListUpcoming(ctx, 7)
	if err != nil {
		t.Fatalf("ListUpcoming: %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("upcoming = %d bookings, want 2", len(upcoming))
	}
}

// -- Team and consents --

func TestConfirmTeamMember(t *testing.T) {
	f := newFixture(DefaultConfig())
	b := f.storedBooking(t)
	if err := f.svc.ConfirmTeamMember(context.Background(), b.ID, f.surgeon.ID); err != nil {
		t.Fatalf("ConfirmTeamMember: %v", err)
	}
	assignments, _ := f.team.ListByBooking(context.Background(), b.ID)
	var confirmed bool
	for _, a := range assignments {
		if a.StaffID == f.surgeon.ID && a.IsConfirmed {
			confirmed = true
		}
	}
	if !confirmed {
		t.Fatalf("surgeon assignment not confirmed")
	}

	if err := f.svc.ConfirmTeamMember(context.Background(), b.ID, uuid.New()); err == nil {
		t.Fatalf("expected unknown staff confirmation to fail")
	}
}

func TestConsents(t *testing.T) {
	f := newFixture(DefaultConfig())
	ctx := context.Background()
	b := f.storedBooking(t)

	witness := "Dr. Osei"
	valid, err := f.svc.AddConsent(ctx, b.ID, &ConsentRequest{
		SignedBy: "patient",
		Witness:  &witness,
		SignedAt: testNow,
	})
	if err != nil {
		t.Fatalf("AddConsent: %v", err)
	}
	if !valid.IsValid {
		t.Fatalf("witnessed consent signed before start should be valid")
	}

	unwitnessed, err := f.svc.AddConsent(ctx, b.ID, &ConsentRequest{SignedBy: "patient", SignedAt: testNow})
	if err != nil {
		t.Fatalf("AddConsent: %v", err)
	}
	if unwitnessed.IsValid {
		t.Fatalf("unwitnessed consent must not be valid")
	}

	ok, consents, err := f.svc.VerifyConsent(ctx, b.ID)
	if err != nil {
		t.Fatalf("VerifyConsent: %v", err)
	}
	if !ok || len(consents) != 2 {
		t.Fatalf("verify = %v with %d consents", ok, len(consents))
	}
}
