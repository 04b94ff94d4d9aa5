package repository

import (
	"context"
	"errors"

	"github.com/jwalitptl/pdf-api/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// UserRepository stores user accounts keyed by id and unique email.
// Implementations must be safe for concurrent use.
type UserRepository interface {
	// Create assigns ID and timestamps. A taken email yields ErrConflict.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// List returns users ordered by id.
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	// Update replaces the stored record and refreshes UpdatedAt.
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}
