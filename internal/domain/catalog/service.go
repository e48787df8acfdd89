package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	types SurgeryTypeRepository
	rooms OperatingRoomRepository
	staff StaffRepository
}

func NewService(types SurgeryTypeRepository, rooms OperatingRoomRepository, staff StaffRepository) *Service {
	return &Service{types: types, rooms: rooms, staff: staff}
}

// -- Surgery Type --

var validRiskLevels = map[string]bool{
	RiskLow: true, RiskModerate: true, RiskHigh: true, RiskCritical: true,
}

func (s *Service) CreateSurgeryType(ctx context.Context, st *SurgeryType) error {
	if st.Code == "" {
		return fmt.Errorf("code is required")
	}
	if st.Name == "" {
		return fmt.Errorf("name is required")
	}
	if st.RiskLevel == "" {
		st.RiskLevel = RiskModerate
	}
	if !validRiskLevels[st.RiskLevel] {
		return fmt.Errorf("invalid risk_level: %s", st.RiskLevel)
	}
	if st.TypicalDurationMinutes <= 0 {
		return fmt.Errorf("typical_duration_minutes must be positive")
	}
	return s.types.Create(ctx, st)
}

func (s *Service) GetSurgeryType(ctx context.Context, id uuid.UUID) (*SurgeryType, error) {
	return s.types.GetByID(ctx, id)
}

func (s *Service) UpdateSurgeryType(ctx context.Context, st *SurgeryType) error {
	if st.RiskLevel != "" && !validRiskLevels[st.RiskLevel] {
		return fmt.Errorf("invalid risk_level: %s", st.RiskLevel)
	}
	return s.types.Update(ctx, st)
}

func (s *Service) DeleteSurgeryType(ctx context.Context, id uuid.UUID) error {
	return s.types.Delete(ctx, id)
}

func (s *Service) SearchSurgeryTypes(ctx context.Context, params map[string]string, limit, offset int) ([]*SurgeryType, int, error) {
	return s.types.Search(ctx, params, limit, offset)
}

// -- Operating Room --

var validRoomStatuses = map[string]bool{
	"available": true, "maintenance": true, "blocked": true,
}

func (s *Service) CreateRoom(ctx context.Context, r *OperatingRoom) error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.Status == "" {
		r.Status = "available"
	}
	if !validRoomStatuses[r.Status] {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	r.IsActive = true
	return s.rooms.Create(ctx, r)
}

func (s *Service) GetRoom(ctx context.Context, id uuid.UUID) (*OperatingRoom, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *Service) UpdateRoom(ctx context.Context, r *OperatingRoom) error {
	if r.Status != "" && !validRoomStatuses[r.Status] {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return s.rooms.Update(ctx, r)
}

func (s *Service) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	return s.rooms.Delete(ctx, id)
}

func (s *Service) SearchRooms(ctx context.Context, params map[string]string, limit, offset int) ([]*OperatingRoom, int, error) {
	return s.rooms.Search(ctx, params, limit, offset)
}

// -- Staff --

var validRoles = map[string]bool{
	RoleSurgeon: true, RoleAssistantSurgeon: true, RoleAnesthesiologist: true,
	RoleScrubNurse: true, RoleCirculatingNurse: true,
}

func (s *Service) CreateStaff(ctx context.Context, m *StaffMember) error {
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	m.IsActive = true
	return s.staff.Create(ctx, m)
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*StaffMember, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) UpdateStaff(ctx context.Context, m *StaffMember) error {
	if m.Role != "" && !validRoles[m.Role] {
		return fmt.Errorf("invalid role: %s", m.Role)
	}
	return s.staff.Update(ctx, m)
}

func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	return s.staff.Delete(ctx, id)
}

func (s *Service) SearchStaff(ctx context.Context, params map[string]string, limit, offset int) ([]*StaffMember, int, error) {
	return s.staff.Search(ctx, params, limit, offset)
}

// -- Staff Availability --

func (s *Service) AddAvailability(ctx context.Context, w *StaffAvailability) error {
	if w.StaffID == uuid.Nil {
		return fmt.Errorf("staff_id is required")
	}
	if w.StartTime.IsZero() || w.EndTime.IsZero() {
		return fmt.Errorf("start_time and end_time are required")
	}
	if !w.EndTime.After(w.StartTime) {
		return fmt.Errorf("end_time must be after start_time")
	}
	if _, err := s.staff.GetByID(ctx, w.StaffID); err != nil {
		return fmt.Errorf("staff member not found")
	}
	return s.staff.AddAvailability(ctx, w)
}

func (s *Service) GetAvailability(ctx context.Context, staffID uuid.UUID) ([]*StaffAvailability, error) {
	return s.staff.GetAvailability(ctx, staffID)
}

func (s *Service) RemoveAvailability(ctx context.Context, id uuid.UUID) error {
	return s.staff.RemoveAvailability(ctx, id)
}

// IsStaffAvailable reports whether one of the member's working windows fully
// contains [start, end).
func (s *Service) IsStaffAvailable(ctx context.Context, staffID uuid.UUID, start, end time.Time) (bool, error) {
	windows, err := s.staff.GetAvailabilityInWindow(ctx, staffID, start, end)
	if err != nil {
		return false, err
	}
	for _, w := range windows {
		if w.Covers(start, end) {
			return true, nil
		}
	}
	return false, nil
}
