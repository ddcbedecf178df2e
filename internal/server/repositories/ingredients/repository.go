package ingredients

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

type Repository interface {
	// Search lists ingredients whose name starts with prefix, ignoring case.
	// An empty prefix lists everything.
	Search(ctx context.Context, prefix string) ([]*models.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*models.Ingredient, error)
	FindByIDs(ctx context.Context, ids []int64) ([]*models.Ingredient, error)
	// BulkCreate inserts items, skipping (name, unit) pairs already present,
	// and reports how many rows were inserted.
	BulkCreate(ctx context.Context, items []*models.Ingredient) (int64, error)
}
