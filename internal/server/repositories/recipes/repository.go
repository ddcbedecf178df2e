package recipes

import (
	"context"

	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error)
	// Update rewrites the scalar fields. PubDate and AuthorID are never changed.
	Update(ctx context.Context, recipe *models.Recipe) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Recipe, error)

	// ReplaceTags drops the recipe's tags and attaches tagIDs in order.
	ReplaceTags(ctx context.Context, recipeID int64, tagIDs []int64) error
	// ReplaceIngredients drops the recipe's composition rows and bulk inserts items.
	ReplaceIngredients(ctx context.Context, recipeID int64, items []models.IngredientAmount) error

	TagsFor(ctx context.Context, recipeID int64) ([]models.Tag, error)
	// IngredientsFor returns composition rows of all given recipes joined with
	// their ingredient name and unit.
	IngredientsFor(ctx context.Context, recipeIDs []int64) ([]models.RecipeIngredient, error)

	// List returns recipes matching filter, newest first.
	List(ctx context.Context, filter models.RecipeFilter) ([]*models.Recipe, error)
	Count(ctx context.Context, filter models.RecipeFilter) (int64, error)
	// FindByIDs returns the recipes that exist among ids keyed by id.
	FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Recipe, error)
}
