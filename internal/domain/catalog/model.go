package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Risk levels for a surgery type.
const (
	RiskLow      = "LOW"
	RiskModerate = "MODERATE"
	RiskHigh     = "HIGH"
	RiskCritical = "CRITICAL"
)

// Staff role capabilities.
const (
	RoleSurgeon          = "SURGEON"
	RoleAssistantSurgeon = "ASSISTANT_SURGEON"
	RoleAnesthesiologist = "ANESTHESIOLOGIST"
	RoleScrubNurse       = "SCRUB_NURSE"
	RoleCirculatingNurse = "CIRCULATING_NURSE"
)

// SurgeryType maps to the surgery_type table.
type SurgeryType struct {
	ID                     uuid.UUID `db:"id" json:"id"`
	Code                   string    `db:"code" json:"code"`
	Name                   string    `db:"name" json:"name"`
	Description            *string   `db:"description" json:"description,omitempty"`
	RiskLevel              string    `db:"risk_level" json:"risk_level"`
	SpecializationRequired string    `db:"specialization_required" json:"specialization_required"`
	TypicalDurationMinutes int       `db:"typical_duration_minutes" json:"typical_duration_minutes"`
	EquipmentNeeded        []string  `db:"equipment_needed" json:"equipment_needed"`
	CreatedAt              time.Time `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time `db:"updated_at" json:"updated_at"`
}

// OperatingRoom maps to the operating_room table.
type OperatingRoom struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	Name               string    `db:"name" json:"name"`
	AvailableEquipment []string  `db:"available_equipment" json:"available_equipment"`
	Status             string    `db:"status" json:"status"`
	IsActive           bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// StaffMember maps to the staff_member table.
type StaffMember struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Role            string    `db:"role" json:"role"`
	Specializations []string  `db:"specializations" json:"specializations"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// StaffAvailability maps to the staff_availability table. Each row is one
// working-calendar window during which the staff member can be assigned.
type StaffAvailability struct {
	ID        uuid.UUID `db:"id" json:"id"`
	StaffID   uuid.UUID `db:"staff_id" json:"staff_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Covers reports whether the window fully contains [start, end).
func (w StaffAvailability) Covers(start, end time.Time) bool {
	return !start.Before(w.StartTime) && !end.After(w.EndTime)
}

// HasSpecialization reports whether the staff member carries the named
// specialization.
func (m *StaffMember) HasSpecialization(spec string) bool {
	for _, s := range m.Specializations {
		if s == spec {
			return true
		}
	}
	return false
}

// HasEquipment reports whether every needed item is present in the room.
func (r *OperatingRoom) HasEquipment(needed []string) (missing []string) {
	have := make(map[string]bool, len(r.AvailableEquipment))
	for _, e := range r.AvailableEquipment {
		have[e] = true
	}
	for _, n := range needed {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}
