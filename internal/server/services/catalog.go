package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
)

// CatalogService serves the read-only tag and ingredient dictionaries and
// the bulk ingredient import.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

func (s *CatalogService) Tags(ctx context.Context) ([]*models.Tag, error) {
	return s.repomanager.Tags(s.db).List(ctx)
}

func (s *CatalogService) Tag(ctx context.Context, id int64) (*models.Tag, error) {
	return s.repomanager.Tags(s.db).GetByID(ctx, id)
}

// Ingredients lists ingredients whose name starts with prefix, ignoring case.
func (s *CatalogService) Ingredients(ctx context.Context, prefix string) ([]*models.Ingredient, error) {
	return s.repomanager.Ingredients(s.db).Search(ctx, strings.TrimSpace(prefix))
}

func (s *CatalogService) Ingredient(ctx context.Context, id int64) (*models.Ingredient, error) {
	return s.repomanager.Ingredients(s.db).GetByID(ctx, id)
}

// ImportIngredients inserts items, skipping pairs of name and unit that
// already exist, and returns how many rows were added.
func (s *CatalogService) ImportIngredients(ctx context.Context, items []*models.Ingredient) (int64, error) {
	clean := make([]*models.Ingredient, 0, len(items))
	for i, it := range items {
		name, unit := strings.TrimSpace(it.Name), strings.TrimSpace(it.MeasurementUnit)
		if name == "" || unit == "" {
			return 0, fmt.Errorf("%w: item %d has empty name or measurement unit", common.ErrorValidation, i)
		}
		clean = append(clean, &models.Ingredient{Name: name, MeasurementUnit: unit})
	}
	if len(clean) == 0 {
		return 0, nil
	}

	n, err := s.repomanager.Ingredients(s.db).BulkCreate(ctx, clean)
	if err != nil {
		return 0, fmt.Errorf("error importing ingredients: %w", err)
	}
	return n, nil
}
