package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ehr/vitals/internal/platform/metrics"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type patientRepoPG struct{ db queryable }

func NewRepoPG(db queryable) Repository {
	return &patientRepoPG{db: db}
}

const patientCols = `id, name, surname, birth_date`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Surname, &p.BirthDate); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	defer metrics.ObserveDBQuery("patient_list", time.Now())
	rows, err := r.db.Query(ctx, `SELECT `+patientCols+` FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query patients: %w", err)
	}
	defer rows.Close()

	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *patientRepoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	defer metrics.ObserveDBQuery("patient_get", time.Now())
	p, err := scanPatient(r.db.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("patient %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get patient %d: %w", id, err)
	}
	return p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	defer metrics.ObserveDBQuery("patient_create", time.Now())
	err := r.db.QueryRow(ctx, `
		INSERT INTO patients (name, surname, birth_date)
		VALUES ($1, $2, $3)
		RETURNING id`,
		p.Name, p.Surname, p.BirthDate,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	defer metrics.ObserveDBQuery("patient_update", time.Now())
	tag, err := r.db.Exec(ctx, `
		UPDATE patients SET name = $2, surname = $3, birth_date = $4
		WHERE id = $1`,
		p.ID, p.Name, p.Surname, p.BirthDate)
	if err != nil {
		return fmt.Errorf("update patient %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("patient %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id int64) (bool, error) {
	defer metrics.ObserveDBQuery("patient_delete", time.Now())
	tag, err := r.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete patient %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}
