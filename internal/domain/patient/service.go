package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/vitals/internal/domain/vitals"
	"github.com/ehr/vitals/internal/platform/apperr"
	"github.com/ehr/vitals/internal/platform/metrics"
)

// Service is the patient record facade. It owns patient CRUD and composes the
// vitals store for hydration, history and reading capture. Patient writes and
// reading writes never share a transaction.
type Service struct {
	patients Repository
	vitals   *vitals.Store
	logger   zerolog.Logger
}

func NewService(patients Repository, store *vitals.Store) *Service {
	return &Service{
		patients: patients,
		vitals:   store,
		logger:   zerolog.Nop(),
	}
}

// SetLogger attaches a logger for degraded reads and partial writes.
func (s *Service) SetLogger(logger zerolog.Logger) {
	s.logger = logger.With().Str("component", "patient").Logger()
}

// -- Patient --

// List returns every patient in storage order, without readings.
func (s *Service) List(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

// FindByIDHydrated returns the patient with its latest weight and temperature
// attached. A failed reading lookup leaves that field empty instead of failing
// the lookup.
func (s *Service) FindByIDHydrated(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.hydrate(ctx, p)
	return p, nil
}

func (s *Service) hydrate(ctx context.Context, p *Patient) {
	var g errgroup.Group
	g.Go(func() error {
		w, err := s.vitals.LatestWeight(ctx, p.ID)
		if err != nil {
			s.degraded(p.ID, vitals.KindWeight, err)
			return nil
		}
		classify(w)
		p.LatestWeight = w
		return nil
	})
	g.Go(func() error {
		t, err := s.vitals.LatestTemperature(ctx, p.ID)
		if err != nil {
			s.degraded(p.ID, vitals.KindTemperature, err)
			return nil
		}
		p.LatestTemperature = t
		return nil
	})
	_ = g.Wait()
}

func (s *Service) degraded(patientID int64, kind string, err error) {
	metrics.RecordHydrationDegraded(kind)
	s.logger.Warn().Err(err).Int64("patient_id", patientID).Str("kind", kind).
		Msg("latest reading unavailable")
}

// Create validates and stores a new patient, then records the initial
// readings that were supplied. A reading failure does not undo the patient:
// it is reported through CreateResult.ReadingErr.
func (s *Service) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	birth, err := validateDemographics(in.Demographics)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		Name:      strings.TrimSpace(in.Name),
		Surname:   strings.TrimSpace(in.Surname),
		BirthDate: birth,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	metrics.RecordPatientCreated()

	res := &CreateResult{Patient: p}
	var errs []error
	if in.InitialWeight != nil {
		w, err := s.vitals.RecordWeight(ctx, p.ID, in.InitialWeight, in.InitialHeight, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("initial weight: %w", err))
		}
		classify(w)
		res.Weight = w
	}
	if in.InitialTemperature != nil {
		t, err := s.vitals.RecordTemperature(ctx, p.ID, in.InitialTemperature, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("initial temperature: %w", err))
		}
		res.Temperature = t
	}
	if len(errs) > 0 {
		res.ReadingErr = errors.Join(errs...)
		s.logger.Warn().Err(res.ReadingErr).Int64("patient_id", p.ID).
			Msg("patient created without all initial readings")
	}
	return res, nil
}

// Update replaces a patient's demographics. On a validation failure the
// current hydrated patient is returned alongside the error so the caller can
// re-render it.
func (s *Service) Update(ctx context.Context, id int64, d Demographics) (*Patient, error) {
	birth, verr := validateDemographics(d)
	if verr != nil {
		existing, err := s.FindByIDHydrated(ctx, id)
		if err != nil {
			return nil, err
		}
		return existing, verr
	}

	p := &Patient{
		ID:        id,
		Name:      strings.TrimSpace(d.Name),
		Surname:   strings.TrimSpace(d.Surname),
		BirthDate: birth,
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the patient row only. Readings stay behind.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	return s.patients.Delete(ctx, id)
}

// History returns the patient with both reading histories, most recent first.
func (s *Service) History(ctx context.Context, id int64) (*History, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	h := &History{Patient: p}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := s.vitals.HistoryWeight(gctx, id)
		h.Weights = items
		return err
	})
	g.Go(func() error {
		items, err := s.vitals.HistoryTemperature(gctx, id)
		h.Temperatures = items
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("history for patient %d: %w", id, err)
	}
	return h, nil
}

// -- Readings --

// RecordWeight stores a weight observation for an existing patient and
// returns the reading with the re-hydrated patient.
func (s *Service) RecordWeight(ctx context.Context, id int64, weight, height *float64, at *time.Time) (*vitals.WeightReading, *Patient, error) {
	if weight == nil {
		return nil, nil, apperr.Validation("", map[string]string{"weight": "is required"})
	}
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, nil, err
	}
	r, err := s.vitals.RecordWeight(ctx, id, weight, height, at)
	if err != nil {
		return nil, nil, err
	}
	classify(r)
	p, err := s.FindByIDHydrated(ctx, id)
	if err != nil {
		return r, nil, err
	}
	return r, p, nil
}

// RecordTemperature stores a temperature observation for an existing patient
// and returns the reading with the re-hydrated patient.
func (s *Service) RecordTemperature(ctx context.Context, id int64, tempC *float64, at *time.Time) (*vitals.TemperatureReading, *Patient, error) {
	if tempC == nil {
		return nil, nil, apperr.Validation("", map[string]string{"temperature": "is required"})
	}
	if _, err := s.patients.GetByID(ctx, id); err != nil {
		return nil, nil, err
	}
	r, err := s.vitals.RecordTemperature(ctx, id, tempC, at)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.FindByIDHydrated(ctx, id)
	if err != nil {
		return r, nil, err
	}
	return r, p, nil
}

func validateDemographics(d Demographics) (time.Time, error) {
	details := map[string]string{}
	if strings.TrimSpace(d.Name) == "" {
		details["name"] = "is required"
	}
	if strings.TrimSpace(d.Surname) == "" {
		details["surname"] = "is required"
	}

	var birth time.Time
	switch raw := strings.TrimSpace(d.BirthDate); {
	case raw == "":
		details["birth_date"] = "is required"
	default:
		t, err := time.Parse(DateLayout, raw)
		if err != nil {
			details["birth_date"] = "must be a date in YYYY-MM-DD format"
		}
		birth = t
	}

	if len(details) > 0 {
		return time.Time{}, apperr.Validation("", details)
	}
	return birth, nil
}

// classify attaches the BMI category to a reading that carries a BMI.
func classify(w *vitals.WeightReading) {
	if w == nil || w.BMI == nil || *w.BMI <= 0 {
		return
	}
	w.Category = vitals.ClassifyBMI(*w.BMI)
	metrics.RecordBMIClassification(string(w.Category))
}
