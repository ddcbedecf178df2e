package services

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/metrics"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/repomanager"
)

// ShoppingListService builds the aggregated shopping list of a user's cart.
type ShoppingListService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	relations   *RelationStore
}

func NewShoppingListService(db *sql.DB, m repomanager.RepositoryManager) *ShoppingListService {
	return &ShoppingListService{db: db, repomanager: m, relations: NewRelationStore(db, m)}
}

// Aggregate sums ingredient amounts over every recipe in userID's shopping
// cart. Cart and composition are read from one snapshot; nothing is written.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID int64) ([]models.ShoppingItem, error) {
	items := []models.ShoppingItem{}

	err := dbx.WithTx(ctx, s.db, dbx.ReadOnlySnapshot, func(ctx context.Context, tx dbx.DBTX) error {
		ids, err := s.relations.On(tx).ListObjectsFor(ctx, models.RelationShoppingCart, userID, models.Page{})
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		rows, err := s.repomanager.Recipes(tx).IngredientsFor(ctx, ids)
		if err != nil {
			return err
		}
		items = AggregateIngredients(rows)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error aggregating shopping list: %w", err)
	}

	metrics.RecordShoppingListExport()
	return items, nil
}

type itemKey struct {
	name string
	unit string
}

// AggregateIngredients groups rows by (name, unit) and sums amounts.
// The result is ordered by lower-cased name, then unit, then the exact name.
func AggregateIngredients(rows []models.RecipeIngredient) []models.ShoppingItem {
	totals := make(map[itemKey]int64, len(rows))
	for _, r := range rows {
		totals[itemKey{name: r.Name, unit: r.MeasurementUnit}] += int64(r.Amount)
	}

	items := make([]models.ShoppingItem, 0, len(totals))
	for k, total := range totals {
		items = append(items, models.ShoppingItem{Name: k.name, MeasurementUnit: k.unit, TotalAmount: total})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name); la != lb {
			return la < lb
		}
		if a.MeasurementUnit != b.MeasurementUnit {
			return a.MeasurementUnit < b.MeasurementUnit
		}
		return a.Name < b.Name
	})

	return items
}

// WriteShoppingList renders one "<name> (<unit>) – <total>" line per item.
func WriteShoppingList(w io.Writer, items []models.ShoppingItem) error {
	bw := bufio.NewWriter(w)
	for _, it := range items {
		if _, err := fmt.Fprintf(bw, "%s (%s) – %d\n", it.Name, it.MeasurementUnit, it.TotalAmount); err != nil {
			return err
		}
	}
	return bw.Flush()
}
