package tags

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

type Repository interface {
	List(ctx context.Context) ([]*models.Tag, error)
	GetByID(ctx context.Context, id int64) (*models.Tag, error)
	// FindByIDs returns the tags that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []int64) ([]*models.Tag, error)
}
