package booking

import (
	"time"
)

// Accepted vital-sign ranges for pre-operative clearance.
const (
	MinHeartRate        = 60
	MaxHeartRate        = 100
	MinTemperature      = 35.5
	MaxTemperature      = 37.5
	MinOxygenSaturation = 95
	MaxOxygenSaturation = 100
)

// DefaultAssessmentLeadHours is the minimum lead between a pre-op assessment
// and the scheduled start.
const DefaultAssessmentLeadHours = 24

// ValidateAssessmentTiming rejects an assessment filed less than leadHours
// before the scheduled start.
func ValidateAssessmentTiming(assessmentTime, scheduledStart time.Time, leadHours int) Rejection {
	lead := time.Duration(leadHours) * time.Hour
	if scheduledStart.Sub(assessmentTime) < lead {
		return &LateAssessmentError{
			AssessmentTime:  assessmentTime,
			ScheduledStart:  scheduledStart,
			RequiredLeadHrs: leadHours,
		}
	}
	return nil
}

// ValidateVitals checks completeness first, then ranges. Blood pressure has
// no accepted range, only a presence requirement.
func ValidateVitals(v VitalSigns) Rejection {
	var missing []string
	if v.BloodPressureSystolic == nil || v.BloodPressureDiastolic == nil {
		missing = append(missing, "blood_pressure")
	}
	if v.HeartRate == nil {
		missing = append(missing, "heart_rate")
	}
	if v.Temperature == nil {
		missing = append(missing, "temperature")
	}
	if v.OxygenSaturation == nil {
		missing = append(missing, "oxygen_saturation")
	}
	if len(missing) > 0 {
		return &IncompleteVitalsError{Missing: missing}
	}
	if *v.HeartRate < MinHeartRate || *v.HeartRate > MaxHeartRate {
		return &VitalSignOutOfRangeError{Name: "heart_rate", Value: float64(*v.HeartRate), Min: MinHeartRate, Max: MaxHeartRate}
	}
	if *v.Temperature < MinTemperature || *v.Temperature > MaxTemperature {
		return &VitalSignOutOfRangeError{Name: "temperature", Value: *v.Temperature, Min: MinTemperature, Max: MaxTemperature}
	}
	if *v.OxygenSaturation < MinOxygenSaturation || *v.OxygenSaturation > MaxOxygenSaturation {
		return &VitalSignOutOfRangeError{Name: "oxygen_saturation", Value: float64(*v.OxygenSaturation), Min: MinOxygenSaturation, Max: MaxOxygenSaturation}
	}
	return nil
}

// MonitoringPolicy is the post-operative check cadence: EarlyInterval applies
// inside EarlyWindow after surgery end, LateInterval after.
type MonitoringPolicy struct {
	EarlyInterval time.Duration
	LateInterval  time.Duration
	EarlyWindow   time.Duration
}

// DefaultMonitoringPolicy returns the 15/60 minute cadence with a 24 hour
// early window.
func DefaultMonitoringPolicy() MonitoringPolicy {
	return MonitoringPolicy{
		EarlyInterval: 15 * time.Minute,
		LateInterval:  60 * time.Minute,
		EarlyWindow:   24 * time.Hour,
	}
}

// intervalAt returns the interval applicable to a gap opening at t.
func (p MonitoringPolicy) intervalAt(surgeryEnd, t time.Time) time.Duration {
	if t.Before(surgeryEnd.Add(p.EarlyWindow)) {
		return p.EarlyInterval
	}
	return p.LateInterval
}

// ValidateNextReading checks a single new reading against the previous one
// (or the surgery end when the log is empty).
func (p MonitoringPolicy) ValidateNextReading(surgeryEnd, prev, next time.Time) Rejection {
	maxInterval := p.intervalAt(surgeryEnd, prev)
	if gap := next.Sub(prev); gap > maxInterval {
		return &MonitoringGapError{Gap: gap, MaxInterval: maxInterval, Since: prev}
	}
	return nil
}

// ValidateMonitoringLog walks timestamps in chronological order, starting
// from the surgery end, and reports the first gap exceeding the cadence.
func (p MonitoringPolicy) ValidateMonitoringLog(surgeryEnd time.Time, timestamps []time.Time) Rejection {
	prev := surgeryEnd
	for _, t := range timestamps {
		if rej := p.ValidateNextReading(surgeryEnd, prev, t); rej != nil {
			return rej
		}
		prev = t
	}
	return nil
}
