package booking

import (
	"time"

	"github.com/orsched/orsched/internal/domain/catalog"
)

// Operating-day and duration constraints.
const (
	BusinessOpenHour   = 8
	BusinessCloseHour  = 17
	MaxDurationMinutes = 12 * 60

	// Bookings above this duration flag the approval collaborator.
	ApprovalDurationMinutes = 6 * 60
)

// ValidateSchedule checks the temporal and room-capability constraints of a
// proposed booking. First failure wins. Emergency bookings bypass business
// hours and the weekend rule, nothing else. Pure given now.
func ValidateSchedule(b *Booking, st *catalog.SurgeryType, room *catalog.OperatingRoom, now time.Time) Rejection {
	if b.ScheduledStart.Before(now) {
		return &PastSchedulingError{ScheduledStart: b.ScheduledStart, Now: now}
	}
	if b.Priority != PriorityEmergency {
		hour := b.ScheduledStart.Hour()
		if hour < BusinessOpenHour || hour >= BusinessCloseHour {
			return &OutsideBusinessHoursError{Hour: hour, OpenHour: BusinessOpenHour, CloseHour: BusinessCloseHour}
		}
		wd := b.ScheduledStart.Weekday()
		if wd == time.Saturday || wd == time.Sunday {
			return &WeekendSchedulingError{Weekday: wd}
		}
	}
	if b.EstimatedDurationMinutes > MaxDurationMinutes {
		return &DurationExceededError{Minutes: b.EstimatedDurationMinutes, MaxMinutes: MaxDurationMinutes}
	}
	if missing := room.HasEquipment(st.EquipmentNeeded); len(missing) > 0 {
		return &EquipmentMismatchError{RoomID: room.ID, Missing: missing}
	}
	return nil
}

// TeamMember pairs a catalog staff snapshot with the role the member plays on
// this team. The role can differ from the member's catalog role only where
// the catalog role qualifies for it, e.g. a surgeon assisting.
type TeamMember struct {
	Staff *catalog.StaffMember
	Role  string
}

var requiredRoles = []string{
	catalog.RoleSurgeon,
	catalog.RoleAnesthesiologist,
	catalog.RoleScrubNurse,
	catalog.RoleCirculatingNurse,
}

var validTeamRoles = map[string]bool{
	catalog.RoleSurgeon:          true,
	catalog.RoleAssistantSurgeon: true,
	catalog.RoleAnesthesiologist: true,
	catalog.RoleScrubNurse:       true,
	catalog.RoleCirculatingNurse: true,
}

// ValidateTeam checks the required-role quorum and the lead surgeon's
// specialization. The lead surgeon is the first member in team order with
// role SURGEON. Availability against working calendars is checked separately
// because it needs the bookings store.
func ValidateTeam(team []TeamMember, st *catalog.SurgeryType) Rejection {
	counts := make(map[string]int, len(team))
	for _, m := range team {
		if !validTeamRoles[m.Role] {
			return &InsufficientRoleError{InvalidRole: m.Role}
		}
		counts[m.Role]++
	}
	for _, role := range requiredRoles {
		if counts[role] < 1 {
			return &InsufficientRoleError{Role: role, Required: 1, Actual: counts[role]}
		}
	}
	for _, m := range team {
		if m.Role != catalog.RoleSurgeon {
			continue
		}
		if st.SpecializationRequired != "" && !m.Staff.HasSpecialization(st.SpecializationRequired) {
			return &SpecializationMismatchError{StaffID: m.Staff.ID, Required: st.SpecializationRequired}
		}
		break
	}
	return nil
}

// CheckAvailability reports a StaffUnavailableError unless one of the
// member's working windows fully contains the proposed interval.
func CheckAvailability(member TeamMember, windows []*catalog.StaffAvailability, iv Interval) Rejection {
	for _, w := range windows {
		if w.Covers(iv.Start, iv.End) {
			return nil
		}
	}
	return &StaffUnavailableError{StaffID: member.Staff.ID, Start: iv.Start, End: iv.End}
}
