package booking

import (
	"testing"
	"time"
)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func strPtr(v string) *string       { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func normalVitals() VitalSigns {
	return VitalSigns{
		HeartRate:              intPtr(72),
		Temperature:            floatPtr(36.8),
		OxygenSaturation:       intPtr(98),
		BloodPressureSystolic:  intPtr(120),
		BloodPressureDiastolic: intPtr(80),
	}
}

func TestValidateAssessmentTiming(t *testing.T) {
	start := testNow.Add(48 * time.Hour)

	if rej := ValidateAssessmentTiming(testNow, start, 24); rej != nil {
		t.Fatalf("48h lead should pass, got %v", rej)
	}
	// Exactly 24h before is still acceptable.
	if rej := ValidateAssessmentTiming(start.Add(-24*time.Hour), start, 24); rej != nil {
		t.Fatalf("exact 24h lead should pass, got %v", rej)
	}
	rej := ValidateAssessmentTiming(start.Add(-23*time.Hour), start, 24)
	if rej == nil || rej.Code() != CodeLateAssessment {
		t.Fatalf("expected LATE_ASSESSMENT, got %v", rej)
	}
}

func TestValidateVitals_Complete(t *testing.T) {
	if rej := ValidateVitals(normalVitals()); rej != nil {
		t.Fatalf("expected acceptance, got %v", rej)
	}
}

func TestValidateVitals_Missing(t *testing.T) {
	v := normalVitals()
	v.HeartRate = nil
	v.BloodPressureDiastolic = nil
	rej := ValidateVitals(v)
	if rej == nil || rej.Code() != CodeIncompleteVitals {
		t.Fatalf("expected INCOMPLETE_VITALS, got %v", rej)
	}
	missing := rej.(*IncompleteVitalsError).Missing
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing fields, got %v", missing)
	}
}

func TestValidateVitals_OutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*VitalSigns)
		field  string
	}{
		{"tachycardia", func(v *VitalSigns) { v.HeartRate = intPtr(110) }, "heart_rate"},
		{"bradycardia", func(v *VitalSigns) { v.HeartRate = intPtr(45) }, "heart_rate"},
		{"fever", func(v *VitalSigns) { v.Temperature = floatPtr(38.2) }, "temperature"},
		{"hypothermia", func(v *VitalSigns) { v.Temperature = floatPtr(35.0) }, "temperature"},
		{"hypoxia", func(v *VitalSigns) { v.OxygenSaturation = intPtr(91) }, "oxygen_saturation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := normalVitals()
			tc.mutate(&v)
			rej := ValidateVitals(v)
			if rej == nil || rej.Code() != CodeVitalSignOutOfRange {
				t.Fatalf("expected VITAL_SIGN_OUT_OF_RANGE, got %v", rej)
			}
			if got := rej.(*VitalSignOutOfRangeError).Name; got != tc.field {
				t.Fatalf("field = %s, want %s", got, tc.field)
			}
		})
	}
}

func TestValidateVitals_Boundaries(t *testing.T) {
	v := normalVitals()
	v.HeartRate = intPtr(60)
	v.Temperature = floatPtr(37.5)
	v.OxygenSaturation = intPtr(95)
	if rej := ValidateVitals(v); rej != nil {
		t.Fatalf("boundary values should pass, got %v", rej)
	}
	v.HeartRate = intPtr(100)
	v.Temperature = floatPtr(35.5)
	v.OxygenSaturation = intPtr(100)
	if rej := ValidateVitals(v); rej != nil {
		t.Fatalf("boundary values should pass, got %v", rej)
	}
}

func TestMonitoringPolicy_EarlyWindow(t *testing.T) {
	p := DefaultMonitoringPolicy()
	end := testNow

	if rej := p.ValidateNextReading(end, end, end.Add(15*time.Minute)); rej != nil {
		t.Fatalf("15 min gap in early window should pass, got %v", rej)
	}
	rej := p.ValidateNextReading(end, end, end.Add(16*time.Minute))
	if rej == nil || rej.Code() != CodeMonitoringGap {
		t.Fatalf("expected MONITORING_GAP, got %v", rej)
	}
}

func TestMonitoringPolicy_LateWindow(t *testing.T) {
	p := DefaultMonitoringPolicy()
	end := testNow
	prev := end.Add(25 * time.Hour)

	if rej := p.ValidateNextReading(end, prev, prev.Add(60*time.Minute)); rej != nil {
		t.Fatalf("60 min gap after 24h should pass, got %v", rej)
	}
	rej := p.ValidateNextReading(end, prev, prev.Add(61*time.Minute))
	if rej == nil || rej.Code() != CodeMonitoringGap {
		t.Fatalf("expected MONITORING_GAP, got %v", rej)
	}
}

func TestMonitoringPolicy_CutoverUsesGapStart(t *testing.T) {
	// The gap opens just inside the early window, so the 15 min rule applies
	// even though the next reading lands after the cutover.
	p := DefaultMonitoringPolicy()
	end := testNow
	prev := end.Add(24*time.Hour - 5*time.Minute)

	rej := p.ValidateNextReading(end, prev, prev.Add(20*time.Minute))
	if rej == nil || rej.Code() != CodeMonitoringGap {
		t.Fatalf("expected early interval to apply at cutover, got %v", rej)
	}
}

func TestMonitoringPolicy_ValidateLog(t *testing.T) {
	p := DefaultMonitoringPolicy()
	end := testNow

	good := []time.Time{
		end.Add(10 * time.Minute),
		end.Add(25 * time.Minute),
		end.Add(40 * time.Minute),
	}
	if rej := p.ValidateMonitoringLog(end, good); rej != nil {
		t.Fatalf("expected compliant log, got %v", rej)
	}

	gapped := []time.Time{
		end.Add(10 * time.Minute),
		end.Add(50 * time.Minute),
	}
	rej := p.ValidateMonitoringLog(end, gapped)
	if rej == nil || rej.Code() != CodeMonitoringGap {
		t.Fatalf("expected MONITORING_GAP, got %v", rej)
	}
	mg := rej.(*MonitoringGapError)
	if mg.Gap != 40*time.Minute || mg.MaxInterval != 15*time.Minute {
		t.Fatalf("unexpected gap detail: %+v", mg)
	}
}
