package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/ehr/vitals/internal/platform/apperr"
	"github.com/ehr/vitals/internal/platform/metrics"
)

// Store records and reads a patient's weight and temperature history.
// Readings are append-only: there is no update or delete.
type Store struct {
	weights      WeightRepository
	temperatures TemperatureRepository
	now          func() time.Time
}

func NewStore(weights WeightRepository, temperatures TemperatureRepository) *Store {
	return &Store{
		weights:      weights,
		temperatures: temperatures,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the source of default reading timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// -- Weight --

// RecordWeight persists a weight observation, deriving BMI when a positive
// height is given. A nil weight means there is nothing to record and yields
// (nil, nil). A nil at stamps the reading with the current time.
func (s *Store) RecordWeight(ctx context.Context, patientID int64, weight, height *float64, at *time.Time) (*WeightReading, error) {
	if weight == nil {
		return nil, nil
	}

	details := map[string]string{}
	if !isFinite(*weight) || *weight <= 0 {
		details["weight"] = "must be a positive number"
	}
	if height != nil && !isFinite(*height) {
		details["height"] = "must be a number"
	}
	if len(details) > 0 {
		return nil, apperr.Validation("", details)
	}

	r := &WeightReading{
		PatientID:  patientID,
		WeightKg:   *weight,
		HeightM:    height,
		RecordedAt: s.timestamp(at),
		BMI:        ComputeBMI(*weight, height),
	}
	if err := s.weights.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("record weight for patient %d: %w", patientID, err)
	}
	metrics.RecordReading(KindWeight)
	return r, nil
}

// HistoryWeight returns the patient's weight readings, most recent first.
func (s *Store) HistoryWeight(ctx context.Context, patientID int64) ([]*WeightReading, error) {
	items, err := s.weights.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*WeightReading{}
	}
	return items, nil
}

// LatestWeight returns the most recently inserted weight reading, or nil.
func (s *Store) LatestWeight(ctx context.Context, patientID int64) (*WeightReading, error) {
	return s.weights.Latest(ctx, patientID)
}

// -- Temperature --

// RecordTemperature persists a temperature observation in Celsius. A nil
// temperature yields (nil, nil).
func (s *Store) RecordTemperature(ctx context.Context, patientID int64, tempC *float64, at *time.Time) (*TemperatureReading, error) {
	if tempC == nil {
		return nil, nil
	}
	if !isFinite(*tempC) {
		return nil, apperr.Validation("", map[string]string{"temperature": "must be a number"})
	}

	r := &TemperatureReading{
		PatientID:    patientID,
		TemperatureC: *tempC,
		RecordedAt:   s.timestamp(at),
	}
	if err := s.temperatures.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("record temperature for patient %d: %w", patientID, err)
	}
	metrics.RecordReading(KindTemperature)
	return r, nil
}

// HistoryTemperature returns the patient's temperature readings, most recent first.
func (s *Store) HistoryTemperature(ctx context.Context, patientID int64) ([]*TemperatureReading, error) {
	items, err := s.temperatures.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*TemperatureReading{}
	}
	return items, nil
}

// LatestTemperature returns the most recently inserted temperature reading, or nil.
func (s *Store) LatestTemperature(ctx context.Context, patientID int64) (*TemperatureReading, error) {
	return s.temperatures.Latest(ctx, patientID)
}

func (s *Store) timestamp(at *time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return *at
	}
	return s.now()
}
