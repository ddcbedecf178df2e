package users

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	// List returns users whose username starts with prefix, ordered by id.
	List(ctx context.Context, prefix string, page models.Page) ([]*models.User, error)
	Count(ctx context.Context, prefix string) (int64, error)
	UpdateProfile(ctx context.Context, id int64, firstName, lastName, avatarKey string) error
	UpdatePassword(ctx context.Context, id int64, hash []byte) error
}
