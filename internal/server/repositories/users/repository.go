package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// ListQuery selects a page of users. Order must be one of the columns in
// OrderColumns.
type ListQuery struct {
	Order  string
	Offset int
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, q ListQuery) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}
