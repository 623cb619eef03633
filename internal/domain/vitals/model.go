package vitals

import (
	"time"
)

// WeightReading maps to the weight_readings table. Category is never stored;
// it is attached when a reading is shown as a patient's latest.
type WeightReading struct {
	ID         int64       `db:"id" json:"id"`
	PatientID  int64       `db:"patient_id" json:"patient_id"`
	WeightKg   float64     `db:"weight" json:"weight_kg"`
	HeightM    *float64    `db:"height" json:"height_m,omitempty"`
	RecordedAt time.Time   `db:"recorded_at" json:"recorded_at"`
	BMI        *float64    `db:"bmi" json:"bmi,omitempty"`
	Category   BMICategory `db:"-" json:"bmi_category,omitempty"`
}

// TemperatureReading maps to the temperature_readings table.
type TemperatureReading struct {
	ID           int64     `db:"id" json:"id"`
	PatientID    int64     `db:"patient_id" json:"patient_id"`
	TemperatureC float64   `db:"temperature_c" json:"temperature_c"`
	RecordedAt   time.Time `db:"recorded_at" json:"recorded_at"`
}

const (
	KindWeight      = "weight"
	KindTemperature = "temperature"
)
