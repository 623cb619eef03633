package patient

import (
	"context"

	"github.com/ehr/vitals/internal/platform/apperr"
)

// ErrNotFound is returned by GetByID and Update for an unknown patient id.
var ErrNotFound = apperr.ErrNotFound

type Repository interface {
	List(ctx context.Context) ([]*Patient, error)
	GetByID(ctx context.Context, id int64) (*Patient, error)
	Create(ctx context.Context, p *Patient) error
	Update(ctx context.Context, p *Patient) error
	// Delete reports whether a row was removed. An unknown id is not an error.
	Delete(ctx context.Context, id int64) (bool, error)
}
