package triage

// Vital-sign value types. Each is an immutable wrapper around a non-negative
// reading; construction is the only place validation happens. No upper bound
// is enforced on any reading.

// Temperature is a body temperature reading.
type Temperature struct {
	value float64
}

// NewTemperature validates and wraps a temperature reading.
func NewTemperature(v float64) (Temperature, error) {
	if v < 0 {
		return Temperature{}, validationf("temperature cannot be negative")
	}
	return Temperature{value: v}, nil
}

// Value returns the underlying reading.
func (t Temperature) Value() float64 { return t.value }

// HeartRate is a heart rate reading.
type HeartRate struct {
	value float64
}

// NewHeartRate validates and wraps a heart rate reading.
func NewHeartRate(v float64) (HeartRate, error) {
	if v < 0 {
		return HeartRate{}, validationf("heart rate cannot be negative")
	}
	return HeartRate{value: v}, nil
}

// Value returns the underlying reading.
func (h HeartRate) Value() float64 { return h.value }

// RespiratoryRate is a respiratory rate reading.
type RespiratoryRate struct {
	value float64
}

// NewRespiratoryRate validates and wraps a respiratory rate reading.
func NewRespiratoryRate(v float64) (RespiratoryRate, error) {
	if v < 0 {
		return RespiratoryRate{}, validationf("respiratory rate cannot be negative")
	}
	return RespiratoryRate{value: v}, nil
}

// Value returns the underlying reading.
func (r RespiratoryRate) Value() float64 { return r.value }

// BloodPressure is a paired systolic/diastolic reading. The pair is a single
// value: both halves are validated independently but always travel together.
type BloodPressure struct {
	systolic  float64
	diastolic float64
}

// NewBloodPressure validates and wraps a blood pressure pair.
func NewBloodPressure(systolic, diastolic float64) (BloodPressure, error) {
	if systolic < 0 {
		return BloodPressure{}, validationf("systolic pressure cannot be negative")
	}
	if diastolic < 0 {
		return BloodPressure{}, validationf("diastolic pressure cannot be negative")
	}
	return BloodPressure{systolic: systolic, diastolic: diastolic}, nil
}

// Systolic returns the systolic half of the pair.
func (b BloodPressure) Systolic() float64 { return b.systolic }

// Diastolic returns the diastolic half of the pair.
func (b BloodPressure) Diastolic() float64 { return b.diastolic }

// VitalSigns groups the four readings recorded at intake.
type VitalSigns struct {
	Temperature     Temperature
	HeartRate       HeartRate
	RespiratoryRate RespiratoryRate
	BloodPressure   BloodPressure
}
