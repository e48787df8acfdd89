package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rejection is a domain rule violation with a stable machine-readable code.
// Handlers map rejections to 409 or 422 responses depending on the code;
// anything else is a 500.
type Rejection interface {
	error
	Code() string
	Details() map[string]any
}

// RejectionList bundles every violation found in one validation pass so the
// caller sees the full picture instead of fixing errors one at a time.
type RejectionList struct {
	Rejections []Rejection
}

func (l *RejectionList) Error() string {
	codes := make([]string, len(l.Rejections))
	for i, r := range l.Rejections {
		codes[i] = r.Code()
	}
	return "booking rejected: " + strings.Join(codes, ", ")
}

// HasCode reports whether any rejection in the list carries the code.
func (l *RejectionList) HasCode(code string) bool {
	for _, r := range l.Rejections {
		if r.Code() == code {
			return true
		}
	}
	return false
}

// AsRejectionList unwraps err into a RejectionList, wrapping a bare Rejection
// in a single-element list.
func AsRejectionList(err error) (*RejectionList, bool) {
	var list *RejectionList
	if errors.As(err, &list) {
		return list, true
	}
	var rej Rejection
	if errors.As(err, &rej) {
		return &RejectionList{Rejections: []Rejection{rej}}, true
	}
	return nil, false
}

// Stable rejection codes.
const (
	CodePastScheduling          = "PAST_SCHEDULING"
	CodeOutsideBusinessHours    = "OUTSIDE_BUSINESS_HOURS"
	CodeWeekendScheduling       = "WEEKEND_SCHEDULING"
	CodeDurationExceeded        = "DURATION_EXCEEDED"
	CodeLateAssessment          = "LATE_ASSESSMENT"
	CodeEquipmentMismatch       = "EQUIPMENT_MISMATCH"
	CodeSchedulingConflict      = "SCHEDULING_CONFLICT"
	CodeStaffUnavailable        = "STAFF_UNAVAILABLE"
	CodeLockTimeout             = "LOCK_TIMEOUT"
	CodeInsufficientRole        = "INSUFFICIENT_ROLE"
	CodeSpecializationMismatch  = "SPECIALIZATION_MISMATCH"
	CodeIncompleteVitals        = "INCOMPLETE_VITALS"
	CodeVitalSignOutOfRange     = "VITAL_SIGN_OUT_OF_RANGE"
	CodeMonitoringGap           = "MONITORING_GAP"
	CodeClearanceRequired       = "CLEARANCE_REQUIRED"
	CodeIllegalTransition       = "ILLEGAL_TRANSITION"
	CodeCollaboratorUnavailable = "COLLABORATOR_UNAVAILABLE"
)

// PastSchedulingError rejects a start time that is not in the future.
type PastSchedulingError struct {
	ScheduledStart time.Time
	Now            time.Time
}

func (e *PastSchedulingError) Error() string {
	return fmt.Sprintf("scheduled start %s is in the past", e.ScheduledStart.Format(time.RFC3339))
}
func (e *PastSchedulingError) Code() string { return CodePastScheduling }
func (e *PastSchedulingError) Details() map[string]any {
	return map[string]any{"scheduled_start": e.ScheduledStart, "now": e.Now}
}

// OutsideBusinessHoursError rejects a start hour outside the operating day.
type OutsideBusinessHoursError struct {
	Hour      int
	OpenHour  int
	CloseHour int
}

func (e *OutsideBusinessHoursError) Error() string {
	return fmt.Sprintf("start hour %d is outside business hours %d-%d", e.Hour, e.OpenHour, e.CloseHour)
}
func (e *OutsideBusinessHoursError) Code() string { return CodeOutsideBusinessHours }
func (e *OutsideBusinessHoursError) Details() map[string]any {
	return map[string]any{"hour": e.Hour, "open_hour": e.OpenHour, "close_hour": e.CloseHour}
}

// WeekendSchedulingError rejects Saturday and Sunday starts.
type WeekendSchedulingError struct {
	Weekday time.Weekday
}

func (e *WeekendSchedulingError) Error() string {
	return fmt.Sprintf("cannot schedule elective surgery on %s", e.Weekday)
}
func (e *WeekendSchedulingError) Code() string { return CodeWeekendScheduling }
func (e *WeekendSchedulingError) Details() map[string]any {
	return map[string]any{"weekday": e.Weekday.String()}
}

// DurationExceededError rejects an estimated duration over the ceiling.
type DurationExceededError struct {
	Minutes    int
	MaxMinutes int
}

func (e *DurationExceededError) Error() string {
	return fmt.Sprintf("estimated duration %d min exceeds maximum %d min", e.Minutes, e.MaxMinutes)
}
func (e *DurationExceededError) Code() string { return CodeDurationExceeded }
func (e *DurationExceededError) Details() map[string]any {
	return map[string]any{"minutes": e.Minutes, "max_minutes": e.MaxMinutes}
}

// LateAssessmentError rejects a pre-op assessment filed inside the required
// lead window before the scheduled start.
type LateAssessmentError struct {
	AssessmentTime  time.Time
	ScheduledStart  time.Time
	RequiredLeadHrs int
}

func (e *LateAssessmentError) Error() string {
	return fmt.Sprintf("pre-op assessment must be completed at least %dh before surgery", e.RequiredLeadHrs)
}
func (e *LateAssessmentError) Code() string { return CodeLateAssessment }
func (e *LateAssessmentError) Details() map[string]any {
	return map[string]any{
		"assessment_time":    e.AssessmentTime,
		"scheduled_start":    e.ScheduledStart,
		"required_lead_hours": e.RequiredLeadHrs,
	}
}

// EquipmentMismatchError rejects a room missing required equipment.
type EquipmentMismatchError struct {
	RoomID  uuid.UUID
	Missing []string
}

func (e *EquipmentMismatchError) Error() string {
	return fmt.Sprintf("room %s is missing required equipment: %s", e.RoomID, strings.Join(e.Missing, ", "))
}
func (e *EquipmentMismatchError) Code() string { return CodeEquipmentMismatch }
func (e *EquipmentMismatchError) Details() map[string]any {
	return map[string]any{"room_id": e.RoomID, "missing": e.Missing}
}

// SchedulingConflictError rejects a slot that collides with another booking,
// buffer included. Resource is "room" or "staff".
type SchedulingConflictError struct {
	Resource             string
	ResourceID           uuid.UUID
	ConflictingBookingID uuid.UUID
}

func (e *SchedulingConflictError) Error() string {
	return fmt.Sprintf("%s %s already booked for overlapping slot (booking %s)", e.Resource, e.ResourceID, e.ConflictingBookingID)
}
func (e *SchedulingConflictError) Code() string { return CodeSchedulingConflict }
func (e *SchedulingConflictError) Details() map[string]any {
	return map[string]any{
		"resource":               e.Resource,
		"resource_id":            e.ResourceID,
		"conflicting_booking_id": e.ConflictingBookingID,
	}
}

// StaffUnavailableError rejects a team member with no working window covering
// the slot.
type StaffUnavailableError struct {
	StaffID uuid.UUID
	Start   time.Time
	End     time.Time
}

func (e *StaffUnavailableError) Error() string {
	return fmt.Sprintf("staff member %s has no availability covering the requested slot", e.StaffID)
}
func (e *StaffUnavailableError) Code() string { return CodeStaffUnavailable }
func (e *StaffUnavailableError) Details() map[string]any {
	return map[string]any{"staff_id": e.StaffID, "start": e.Start, "end": e.End}
}

// LockTimeoutError reports that resource locks could not be acquired in time.
type LockTimeoutError struct {
	Keys    []string
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("could not lock resources within %s", e.Timeout)
}
func (e *LockTimeoutError) Code() string { return CodeLockTimeout }
func (e *LockTimeoutError) Details() map[string]any {
	return map[string]any{"keys": e.Keys, "timeout_ms": e.Timeout.Milliseconds()}
}

// InsufficientRoleError rejects a team that does not cover a mandatory role,
// or a member whose role is not a valid surgical role.
type InsufficientRoleError struct {
	Role        string
	Required    int
	Actual      int
	InvalidRole string
}

func (e *InsufficientRoleError) Error() string {
	if e.InvalidRole != "" {
		return fmt.Sprintf("role %s is not a valid team role", e.InvalidRole)
	}
	return fmt.Sprintf("team requires %d %s, has %d", e.Required, e.Role, e.Actual)
}
func (e *InsufficientRoleError) Code() string { return CodeInsufficientRole }
func (e *InsufficientRoleError) Details() map[string]any {
	if e.InvalidRole != "" {
		return map[string]any{"invalid_role": e.InvalidRole}
	}
	return map[string]any{"role": e.Role, "required": e.Required, "actual": e.Actual}
}

// SpecializationMismatchError rejects a lead surgeon whose specializations do
// not include the one the procedure requires.
type SpecializationMismatchError struct {
	StaffID  uuid.UUID
	Required string
}

func (e *SpecializationMismatchError) Error() string {
	return fmt.Sprintf("lead surgeon %s lacks required specialization %s", e.StaffID, e.Required)
}
func (e *SpecializationMismatchError) Code() string { return CodeSpecializationMismatch }
func (e *SpecializationMismatchError) Details() map[string]any {
	return map[string]any{"staff_id": e.StaffID, "required": e.Required}
}

// IncompleteVitalsError rejects a vitals snapshot with measurements missing.
type IncompleteVitalsError struct {
	Missing []string
}

func (e *IncompleteVitalsError) Error() string {
	return fmt.Sprintf("vital signs incomplete, missing: %s", strings.Join(e.Missing, ", "))
}
func (e *IncompleteVitalsError) Code() string { return CodeIncompleteVitals }
func (e *IncompleteVitalsError) Details() map[string]any {
	return map[string]any{"missing": e.Missing}
}

// VitalSignOutOfRangeError rejects a measurement outside its safe band.
type VitalSignOutOfRangeError struct {
	Name  string
	Value float64
	Min   float64
	Max   float64
}

func (e *VitalSignOutOfRangeError) Error() string {
	return fmt.Sprintf("%s %.1f outside safe range %.1f-%.1f", e.Name, e.Value, e.Min, e.Max)
}
func (e *VitalSignOutOfRangeError) Code() string { return CodeVitalSignOutOfRange }
func (e *VitalSignOutOfRangeError) Details() map[string]any {
	return map[string]any{"name": e.Name, "value": e.Value, "min": e.Min, "max": e.Max}
}

// MonitoringGapError reports a post-op reading filed later than the cadence
// allows for its recovery phase.
type MonitoringGapError struct {
	Gap         time.Duration
	MaxInterval time.Duration
	Since       time.Time
}

func (e *MonitoringGapError) Error() string {
	return fmt.Sprintf("gap of %s since last reading exceeds monitoring interval %s", e.Gap, e.MaxInterval)
}
func (e *MonitoringGapError) Code() string { return CodeMonitoringGap }
func (e *MonitoringGapError) Details() map[string]any {
	return map[string]any{
		"gap_minutes":          int(e.Gap.Minutes()),
		"max_interval_minutes": int(e.MaxInterval.Minutes()),
		"since":                e.Since,
	}
}

// ClearanceRequiredError blocks a transition gated on pre-op clearance.
type ClearanceRequiredError struct {
	Status string
}

func (e *ClearanceRequiredError) Error() string {
	if e.Status == "" {
		return "pre-operative clearance required before surgery can begin"
	}
	return fmt.Sprintf("pre-operative clearance is %s, must be %s", e.Status, ClearanceCleared)
}
func (e *ClearanceRequiredError) Code() string { return CodeClearanceRequired }
func (e *ClearanceRequiredError) Details() map[string]any {
	return map[string]any{"clearance_status": e.Status}
}

// IllegalTransitionError rejects a state change the lifecycle does not allow.
// Reason is set when the edge exists but a guard other than clearance failed.
type IllegalTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot transition booking from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("cannot transition booking from %s to %s", e.From, e.To)
}
func (e *IllegalTransitionError) Code() string { return CodeIllegalTransition }
func (e *IllegalTransitionError) Details() map[string]any {
	d := map[string]any{"from": e.From, "to": e.To}
	if e.Reason != "" {
		d["reason"] = e.Reason
	}
	return d
}

// CollaboratorUnavailableError rejects an inactive staff member or room.
type CollaboratorUnavailableError struct {
	Resource   string
	ResourceID uuid.UUID
	Reason     string
}

func (e *CollaboratorUnavailableError) Error() string {
	return fmt.Sprintf("%s %s cannot be booked: %s", e.Resource, e.ResourceID, e.Reason)
}
func (e *CollaboratorUnavailableError) Code() string { return CodeCollaboratorUnavailable }
func (e *CollaboratorUnavailableError) Details() map[string]any {
	return map[string]any{"resource": e.Resource, "resource_id": e.ResourceID, "reason": e.Reason}
}

// conflictCodes are reported as 409; every other rejection code is a 422.
var conflictCodes = map[string]bool{
	CodeSchedulingConflict: true,
	CodeLockTimeout:        true,
}

// IsConflictCode reports whether a rejection code represents resource
// contention rather than invalid input.
func IsConflictCode(code string) bool { return conflictCodes[code] }
