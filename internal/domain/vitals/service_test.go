package vitals

import (
	"context"
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/ehr/vitals/internal/platform/apperr"
)

// -- Mock Repositories --

type mockWeightRepo struct {
	seq     int64
	records []*WeightReading
	err     error
}

func (m *mockWeightRepo) Create(_ context.Context, r *WeightReading) error {
	if m.err != nil {
		return m.err
	}
	m.seq++
	r.ID = m.seq
	m.records = append(m.records, r)
	return nil
}

func (m *mockWeightRepo) ListByPatient(_ context.Context, patientID int64) ([]*WeightReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []*WeightReading
	for _, r := range m.records {
		if r.PatientID == patientID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RecordedAt.Equal(result[j].RecordedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result, nil
}

func (m *mockWeightRepo) Latest(_ context.Context, patientID int64) (*WeightReading, error) {
	if m.err != nil {
		return nil, m.err
	}
	var latest *WeightReading
	for _, r := range m.records {
		if r.PatientID == patientID && (latest == nil || r.ID > latest.ID) {
			latest = r
		}
	}
	return latest, nil
}

type mockTemperatureRepo struct {
	seq     int64
	records []*TemperatureReading
}

func (m *mockTemperatureRepo) Create(_ context.Context, r *TemperatureReading) error {
	m.seq++
	r.ID = m.seq
	m.records = append(m.records, r)
	return nil
}

func (m *mockTemperatureRepo) ListByPatient(_ context.Context, patientID int64) ([]*TemperatureReading, error) {
	var result []*TemperatureReading
	for _, r := range m.records {
		if r.PatientID == patientID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result, nil
}

func (m *mockTemperatureRepo) Latest(_ context.Context, patientID int64) (*TemperatureReading, error) {
	var latest *TemperatureReading
	for _, r := range m.records {
		if r.PatientID == patientID && (latest == nil || r.ID > latest.ID) {
			latest = r
		}
	}
	return latest, nil
}

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newTestStore() (*Store, *mockWeightRepo, *mockTemperatureRepo) {
	w := &mockWeightRepo{}
	tr := &mockTemperatureRepo{}
	s := NewStore(w, tr)
	s.SetClock(func() time.Time { return fixedNow })
	return s, w, tr
}

// -- Weight Tests --

func TestStore_RecordWeight(t *testing.T) {
	s, repo, _ := newTestStore()
	r, err := s.RecordWeight(context.Background(), 1, ptr(70), ptr(1.75), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ID == 0 {
		t.Error("expected ID to be assigned")
	}
	if r.BMI == nil || *r.BMI != 22.86 {
		t.Errorf("expected BMI 22.86, got %v", r.BMI)
	}
	if !r.RecordedAt.Equal(fixedNow) {
		t.Errorf("expected default timestamp %v, got %v", fixedNow, r.RecordedAt)
	}
	if len(repo.records) != 1 {
		t.Errorf("expected 1 stored reading, got %d", len(repo.records))
	}
}

func TestStore_RecordWeight_NoHeight(t *testing.T) {
	s, _, _ := newTestStore()
	for _, h := range []*float64{nil, ptr(0), ptr(-1)} {
		r, err := s.RecordWeight(context.Background(), 1, ptr(70), h, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.BMI != nil {
			t.Errorf("expected no BMI for height %v, got %v", h, *r.BMI)
		}
	}
}

func TestStore_RecordWeight_NilWeightSkips(t *testing.T) {
	s, repo, _ := newTestStore()
	r, err := s.RecordWeight(context.Background(), 1, nil, ptr(1.8), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil reading, got %+v", r)
	}
	if len(repo.records) != 0 {
		t.Error("expected nothing to be stored")
	}
}

func TestStore_RecordWeight_Invalid(t *testing.T) {
	s, repo, _ := newTestStore()
	cases := []struct {
		name           string
		weight, height *float64
	}{
		{"zero weight", ptr(0), nil},
		{"negative weight", ptr(-2), nil},
		{"NaN weight", ptr(math.NaN()), nil},
		{"infinite height", ptr(70), ptr(math.Inf(1))},
	}
	for _, tc := range cases {
		_, err := s.RecordWeight(context.Background(), 1, tc.weight, tc.height, nil)
		if !apperr.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
	if len(repo.records) != 0 {
		t.Error("expected invalid readings not to be stored")
	}
}

func TestStore_RecordWeight_StorageError(t *testing.T) {
	s, repo, _ := newTestStore()
	repo.err = errors.New("connection refused")
	_, err := s.RecordWeight(context.Background(), 1, ptr(70), nil, nil)
	if !errors.Is(err, repo.err) {
		t.Errorf("expected storage error to propagate, got %v", err)
	}
}

func TestStore_HistoryWeight_OrderedByTimestamp(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()
	days := []int{3, 1, 5, 2, 4}
	for i, d := range days {
		at := fixedNow.AddDate(0, 0, -d)
		if _, err := s.RecordWeight(ctx, 7, ptr(60+float64(i)), nil, &at); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if _, err := s.RecordWeight(ctx, 8, ptr(90), nil, nil); err != nil {
		t.Fatalf("record: %v", err)
	}

	items, err := s.HistoryWeight(ctx, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != len(days) {
		t.Fatalf("expected %d readings, got %d", len(days), len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].RecordedAt.After(items[i-1].RecordedAt) {
			t.Errorf("history not descending at %d: %v after %v", i, items[i].RecordedAt, items[i-1].RecordedAt)
		}
	}
}

func TestStore_HistoryWeight_Empty(t *testing.T) {
	s, _, _ := newTestStore()
	items, err := s.HistoryWeight(context.Background(), 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestStore_LatestWeight_ByInsertionOrder(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()
	if _, err := s.RecordWeight(ctx, 1, ptr(70), nil, nil); err != nil {
		t.Fatal(err)
	}
	backdated := fixedNow.AddDate(-1, 0, 0)
	if _, err := s.RecordWeight(ctx, 1, ptr(68), nil, &backdated); err != nil {
		t.Fatal(err)
	}

	latest, err := s.LatestWeight(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || latest.WeightKg != 68 {
		t.Errorf("expected the last inserted reading (68), got %+v", latest)
	}
}

func TestStore_LatestWeight_None(t *testing.T) {
	s, _, _ := newTestStore()
	latest, err := s.LatestWeight(context.Background(), 1)
	if err != nil || latest != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", latest, err)
	}
}

// -- Temperature Tests --

func TestStore_RecordTemperature(t *testing.T) {
	s, _, _ := newTestStore()
	at := fixedNow.Add(-time.Hour)
	r, err := s.RecordTemperature(context.Background(), 2, ptr(37.2), &at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.TemperatureC != 37.2 || !r.RecordedAt.Equal(at) {
		t.Errorf("unexpected reading %+v", r)
	}

	latest, err := s.LatestTemperature(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || latest.ID != r.ID {
		t.Errorf("expected latest to be %d, got %+v", r.ID, latest)
	}
}

func TestStore_RecordTemperature_NilSkips(t *testing.T) {
	s, _, temps := newTestStore()
	r, err := s.RecordTemperature(context.Background(), 2, nil, nil)
	if err != nil || r != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", r, err)
	}
	if len(temps.records) != 0 {
		t.Error("expected nothing to be stored")
	}
}

func TestStore_RecordTemperature_Invalid(t *testing.T) {
	s, _, _ := newTestStore()
	_, err := s.RecordTemperature(context.Background(), 2, ptr(math.NaN()), nil)
	if !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestStore_HistoryTemperature(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()
	older := fixedNow.Add(-48 * time.Hour)
	s.RecordTemperature(ctx, 3, ptr(36.5), nil)
	s.RecordTemperature(ctx, 3, ptr(38.1), &older)

	items, err := s.HistoryTemperature(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].TemperatureC != 36.5 || items[1].TemperatureC != 38.1 {
		t.Errorf("unexpected history order: %+v", items)
	}

	empty, err := s.HistoryTemperature(ctx, 4)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil history, got (%#v, %v)", empty, err)
	}
}
