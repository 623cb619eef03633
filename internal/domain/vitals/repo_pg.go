package vitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ehr/vitals/internal/platform/metrics"
)

// queryable is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Weight Repository ===========

type weightRepoPG struct{ db queryable }

func NewWeightRepoPG(db queryable) WeightRepository {
	return &weightRepoPG{db: db}
}

const weightCols = `id, patient_id, weight, height, recorded_at, bmi`

func scanWeight(row pgx.Row) (*WeightReading, error) {
	var w WeightReading
	if err := row.Scan(&w.ID, &w.PatientID, &w.WeightKg, &w.HeightM, &w.RecordedAt, &w.BMI); err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *weightRepoPG) Create(ctx context.Context, w *WeightReading) error {
	defer metrics.ObserveDBQuery("weight_create", time.Now())
	err := r.db.QueryRow(ctx, `
		INSERT INTO weight_readings (patient_id, weight, height, recorded_at, bmi)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		w.PatientID, w.WeightKg, w.HeightM, w.RecordedAt, w.BMI,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("insert weight reading: %w", err)
	}
	return nil
}

func (r *weightRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*WeightReading, error) {
	defer metrics.ObserveDBQuery("weight_history", time.Now())
	rows, err := r.db.Query(ctx, `SELECT `+weightCols+` FROM weight_readings
		WHERE patient_id = $1 ORDER BY recorded_at DESC, id DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query weight history: %w", err)
	}
	defer rows.Close()

	items := []*WeightReading{}
	for rows.Next() {
		w, err := scanWeight(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weight reading: %w", err)
		}
		items = append(items, w)
	}
	return items, rows.Err()
}

// Latest picks the highest id rather than the highest recorded_at, since
// recorded_at can be backdated by the caller.
func (r *weightRepoPG) Latest(ctx context.Context, patientID int64) (*WeightReading, error) {
	defer metrics.ObserveDBQuery("weight_latest", time.Now())
	w, err := scanWeight(r.db.QueryRow(ctx, `SELECT `+weightCols+` FROM weight_readings
		WHERE patient_id = $1 ORDER BY id DESC LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest weight: %w", err)
	}
	return w, nil
}

// =========== Temperature Repository ===========

type temperatureRepoPG struct{ db queryable }

func NewTemperatureRepoPG(db queryable) TemperatureRepository {
	return &temperatureRepoPG{db: db}
}

const temperatureCols = `id, patient_id, temperature_c, recorded_at`

func scanTemperature(row pgx.Row) (*TemperatureReading, error) {
	var t TemperatureReading
	if err := row.Scan(&t.ID, &t.PatientID, &t.TemperatureC, &t.RecordedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *temperatureRepoPG) Create(ctx context.Context, t *TemperatureReading) error {
	defer metrics.ObserveDBQuery("temperature_create", time.Now())
	err := r.db.QueryRow(ctx, `
		INSERT INTO temperature_readings (patient_id, temperature_c, recorded_at)
		VALUES ($1, $2, $3)
		RETURNING id`,
		t.PatientID, t.TemperatureC, t.RecordedAt,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("insert temperature reading: %w", err)
	}
	return nil
}

func (r *temperatureRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]*TemperatureReading, error) {
	defer metrics.ObserveDBQuery("temperature_history", time.Now())
	rows, err := r.db.Query(ctx, `SELECT `+temperatureCols+` FROM temperature_readings
		WHERE patient_id = $1 ORDER BY recorded_at DESC, id DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query temperature history: %w", err)
	}
	defer rows.Close()

	items := []*TemperatureReading{}
	for rows.Next() {
		t, err := scanTemperature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan temperature reading: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *temperatureRepoPG) Latest(ctx context.Context, patientID int64) (*TemperatureReading, error) {
	defer metrics.ObserveDBQuery("temperature_latest", time.Now())
	t, err := scanTemperature(r.db.QueryRow(ctx, `SELECT `+temperatureCols+` FROM temperature_readings
		WHERE patient_id = $1 ORDER BY id DESC LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest temperature: %w", err)
	}
	return t, nil
}
