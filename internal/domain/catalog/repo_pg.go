package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/orsched/orsched/internal/platform/db"
)

// =========== Surgery Type Repository ===========

type surgeryTypeRepoPG struct{ pool *pgxpool.Pool }

func NewSurgeryTypeRepoPG(pool *pgxpool.Pool) SurgeryTypeRepository {
	return &surgeryTypeRepoPG{pool: pool}
}

func (r *surgeryTypeRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const surgeryTypeCols = `id, code, name, description, risk_level, specialization_required,
	typical_duration_minutes, equipment_needed, created_at, updated_at`

func (r *surgeryTypeRepoPG) scanType(row pgx.Row) (*SurgeryType, error) {
	var st SurgeryType
	err := row.Scan(&st.ID, &st.Code, &st.Name, &st.Description, &st.RiskLevel,
		&st.SpecializationRequired, &st.TypicalDurationMinutes, &st.EquipmentNeeded,
		&st.CreatedAt, &st.UpdatedAt)
	return &st, err
}

func (r *surgeryTypeRepoPG) Create(ctx context.Context, st *SurgeryType) error {
	st.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO surgery_type (id, code, name, description, risk_level, specialization_required,
			typical_duration_minutes, equipment_needed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		st.ID, st.Code, st.Name, st.Description, st.RiskLevel, st.SpecializationRequired,
		st.TypicalDurationMinutes, st.EquipmentNeeded)
	return err
}

func (r *surgeryTypeRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SurgeryType, error) {
	return r.scanType(r.conn(ctx).QueryRow(ctx, `SELECT `+surgeryTypeCols+` FROM surgery_type WHERE id = $1`, id))
}

func (r *surgeryTypeRepoPG) GetByCode(ctx context.Context, code string) (*SurgeryType, error) {
	return r.scanType(r.conn(ctx).QueryRow(ctx, `SELECT `+surgeryTypeCols+` FROM surgery_type WHERE code = $1`, code))
}

func (r *surgeryTypeRepoPG) Update(ctx context.Context, st *SurgeryType) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE surgery_type SET code=$2, name=$3, description=$4, risk_level=$5,
			specialization_required=$6, typical_duration_minutes=$7, equipment_needed=$8, updated_at=NOW()
		WHERE id = $1`,
		st.ID, st.Code, st.Name, st.Description, st.RiskLevel, st.SpecializationRequired,
		st.TypicalDurationMinutes, st.EquipmentNeeded)
	return err
}

func (r *surgeryTypeRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM surgery_type WHERE id = $1`, id)
	return err
}

var surgeryTypeFilters = map[string]db.FilterConfig{
	"code":       {Kind: db.FilterExact, Column: "code"},
	"risk_level": {Kind: db.FilterExact, Column: "risk_level"},
	"name":       {Kind: db.FilterText, Column: "name"},
}

func (r *surgeryTypeRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*SurgeryType, int, error) {
	qb := db.NewSearchQuery("surgery_type", surgeryTypeCols)
	qb.ApplyParams(params, surgeryTypeFilters)
	qb.OrderBy("name")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SurgeryType
	for rows.Next() {
		st, err := r.scanType(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, st)
	}
	return items, total, nil
}

// =========== Operating Room Repository ===========

type operatingRoomRepoPG struct{ pool *pgxpool.Pool }

func NewOperatingRoomRepoPG(pool *pgxpool.Pool) OperatingRoomRepository {
	return &operatingRoomRepoPG{pool: pool}
}

func (r *operatingRoomRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const roomCols = `id, name, available_equipment, status, is_active, created_at, updated_at`

func (r *operatingRoomRepoPG) scanRoom(row pgx.Row) (*OperatingRoom, error) {
	var o OperatingRoom
	err := row.Scan(&o.ID, &o.Name, &o.AvailableEquipment, &o.Status, &o.IsActive,
		&o.CreatedAt, &o.UpdatedAt)
	return &o, err
}

func (r *operatingRoomRepoPG) Create(ctx context.Context, o *OperatingRoom) error {
	o.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO operating_room (id, name, available_equipment, status, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		o.ID, o.Name, o.AvailableEquipment, o.Status, o.IsActive)
	return err
}

func (r *operatingRoomRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*OperatingRoom, error) {
	return r.scanRoom(r.conn(ctx).QueryRow(ctx, `SELECT `+roomCols+` FROM operating_room WHERE id = $1`, id))
}

func (r *operatingRoomRepoPG) Update(ctx context.Context, o *OperatingRoom) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE operating_room SET name=$2, available_equipment=$3, status=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		o.ID, o.Name, o.AvailableEquipment, o.Status, o.IsActive)
	return err
}

func (r *operatingRoomRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM operating_room WHERE id = $1`, id)
	return err
}

var roomFilters = map[string]db.FilterConfig{
	"status":    {Kind: db.FilterExact, Column: "status"},
	"is_active": {Kind: db.FilterExact, Column: "is_active"},
	"name":      {Kind: db.FilterText, Column: "name"},
}

func (r *operatingRoomRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*OperatingRoom, int, error) {
	qb := db.NewSearchQuery("operating_room", roomCols)
	qb.ApplyParams(params, roomFilters)
	qb.OrderBy("name")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*OperatingRoom
	for rows.Next() {
		o, err := r.scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, o)
	}
	return items, total, nil
}

// =========== Staff Repository ===========

type staffRepoPG struct{ pool *pgxpool.Pool }

func NewStaffRepoPG(pool *pgxpool.Pool) StaffRepository {
	return &staffRepoPG{pool: pool}
}

func (r *staffRepoPG) conn(ctx context.Context) db.Querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const staffCols = `id, name, role, specializations, is_active, created_at, updated_at`

func (r *staffRepoPG) scanStaff(row pgx.Row) (*StaffMember, error) {
	var m StaffMember
	err := row.Scan(&m.ID, &m.Name, &m.Role, &m.Specializations, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *staffRepoPG) Create(ctx context.Context, m *StaffMember) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_member (id, name, role, specializations, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		m.ID, m.Name, m.Role, m.Specializations, m.IsActive)
	return err
}

func (r *staffRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*StaffMember, error) {
	return r.scanStaff(r.conn(ctx).QueryRow(ctx, `SELECT `+staffCols+` FROM staff_member WHERE id = $1`, id))
}

func (r *staffRepoPG) Update(ctx context.Context, m *StaffMember) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE staff_member SET name=$2, role=$3, specializations=$4, is_active=$5, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Role, m.Specializations, m.IsActive)
	return err
}

func (r *staffRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_member WHERE id = $1`, id)
	return err
}

var staffFilters = map[string]db.FilterConfig{
	"role":      {Kind: db.FilterExact, Column: "role"},
	"is_active": {Kind: db.FilterExact, Column: "is_active"},
	"name":      {Kind: db.FilterText, Column: "name"},
}

func (r *staffRepoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*StaffMember, int, error) {
	qb := db.NewSearchQuery("staff_member", staffCols)
	qb.ApplyParams(params, staffFilters)
	qb.OrderBy("name")

	var total int
	if err := r.conn(ctx).QueryRow(ctx, qb.CountSQL(), qb.CountArgs()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, qb.DataSQL(), qb.DataArgs(limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*StaffMember
	for rows.Next() {
		m, err := r.scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}

const availabilityCols = `id, staff_id, start_time, end_time, created_at`

func (r *staffRepoPG) AddAvailability(ctx context.Context, w *StaffAvailability) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO staff_availability (id, staff_id, start_time, end_time)
		VALUES ($1,$2,$3,$4)`,
		w.ID, w.StaffID, w.StartTime, w.EndTime)
	return err
}

func (r *staffRepoPG) GetAvailability(ctx context.Context, staffID uuid.UUID) ([]*StaffAvailability, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+availabilityCols+` FROM staff_availability WHERE staff_id = $1 ORDER BY start_time`, staffID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailability(rows)
}

func (r *staffRepoPG) GetAvailabilityInWindow(ctx context.Context, staffID uuid.UUID, start, end time.Time) ([]*StaffAvailability, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+availabilityCols+` FROM staff_availability
		WHERE staff_id = $1 AND start_time <= $2 AND end_time >= $3
		ORDER BY start_time`, staffID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailability(rows)
}

func (r *staffRepoPG) RemoveAvailability(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM staff_availability WHERE id = $1`, id)
	return err
}

func scanAvailability(rows pgx.Rows) ([]*StaffAvailability, error) {
	var items []*StaffAvailability
	for rows.Next() {
		var w StaffAvailability
		if err := rows.Scan(&w.ID, &w.StaffID, &w.StartTime, &w.EndTime, &w.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &w)
	}
	return items, rows.Err()
}
