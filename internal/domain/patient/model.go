package patient

import (
	"encoding/json"
	"time"

	"github.com/ehr/vitals/internal/domain/vitals"
)

// DateLayout is the wire and form format of a birth date.
const DateLayout = "2006-01-02"

// Patient maps to the patients table. LatestWeight and LatestTemperature are
// never stored; hydration attaches them on single-record lookups.
type Patient struct {
	ID                int64                      `db:"id" json:"id"`
	Name              string                     `db:"name" json:"name"`
	Surname           string                     `db:"surname" json:"surname"`
	BirthDate         time.Time                  `db:"birth_date" json:"-"`
	LatestWeight      *vitals.WeightReading      `db:"-" json:"latest_weight,omitempty"`
	LatestTemperature *vitals.TemperatureReading `db:"-" json:"latest_temperature,omitempty"`
}

// BirthDateString renders the birth date without a time component.
func (p *Patient) BirthDateString() string {
	if p.BirthDate.IsZero() {
		return ""
	}
	return p.BirthDate.Format(DateLayout)
}

// MarshalJSON writes birth_date as a plain date.
func (p Patient) MarshalJSON() ([]byte, error) {
	type alias Patient
	return json.Marshal(struct {
		alias
		BirthDate string `json:"birth_date"`
	}{alias(p), p.BirthDateString()})
}

// Demographics are the caller-editable patient fields, as submitted.
type Demographics struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
}

// CreateInput is a new patient plus optional first readings.
type CreateInput struct {
	Demographics
	InitialWeight      *float64 `json:"initial_weight,omitempty"`
	InitialHeight      *float64 `json:"initial_height,omitempty"`
	InitialTemperature *float64 `json:"initial_temperature,omitempty"`
}

// CreateResult reports a created patient. ReadingErr is set when the patient
// was stored but one of its initial readings was not.
type CreateResult struct {
	Patient     *Patient
	Weight      *vitals.WeightReading
	Temperature *vitals.TemperatureReading
	ReadingErr  error
}

// History is a patient together with both reading histories, newest first.
type History struct {
	Patient      *Patient                     `json:"patient"`
	Weights      []*vitals.WeightReading      `json:"weights"`
	Temperatures []*vitals.TemperatureReading `json:"temperatures"`
}
