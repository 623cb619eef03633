package vitals

import (
	"context"
)

// WeightRepository persists weight readings. Latest returns (nil, nil) when the
// patient has no readings.
type WeightRepository interface {
	Create(ctx context.Context, r *WeightReading) error
	ListByPatient(ctx context.Context, patientID int64) ([]*WeightReading, error)
	Latest(ctx context.Context, patientID int64) (*WeightReading, error)
}

// TemperatureRepository persists temperature readings. Latest returns
// (nil, nil) when the patient has no readings.
type TemperatureRepository interface {
	Create(ctx context.Context, r *TemperatureReading) error
	ListByPatient(ctx context.Context, patientID int64) ([]*TemperatureReading, error)
	Latest(ctx context.Context, patientID int64) (*TemperatureReading, error)
}
