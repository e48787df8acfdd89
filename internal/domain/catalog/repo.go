package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SurgeryTypeRepository interface {
	Create(ctx context.Context, st *SurgeryType) error
	GetByID(ctx context.Context, id uuid.UUID) (*SurgeryType, error)
	GetByCode(ctx context.Context, code string) (*SurgeryType, error)
	Update(ctx context.Context, st *SurgeryType) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*SurgeryType, int, error)
}

type OperatingRoomRepository interface {
	Create(ctx context.Context, r *OperatingRoom) error
	GetByID(ctx context.Context, id uuid.UUID) (*OperatingRoom, error)
	Update(ctx context.Context, r *OperatingRoom) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*OperatingRoom, int, error)
}

type StaffRepository interface {
	Create(ctx context.Context, m *StaffMember) error
	GetByID(ctx context.Context, id uuid.UUID) (*StaffMember, error)
	Update(ctx context.Context, m *StaffMember) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*StaffMember, int, error)
	// Availability windows
	AddAvailability(ctx context.Context, w *StaffAvailability) error
	GetAvailability(ctx context.Context, staffID uuid.UUID) ([]*StaffAvailability, error)
	GetAvailabilityInWindow(ctx context.Context, staffID uuid.UUID, start, end time.Time) ([]*StaffAvailability, error)
	RemoveAvailability(ctx context.Context, id uuid.UUID) error
}
