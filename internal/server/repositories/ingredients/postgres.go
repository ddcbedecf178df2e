package ingredients

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

// bulkChunk keeps a single INSERT well under the 65535 parameter limit.
const bulkChunk = 1000

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Search(ctx context.Context, prefix string) ([]*models.Ingredient, error) {
	if prefix == "" {
		return r.query(ctx, `SELECT id, name, measurement_unit FROM ingredients ORDER BY name, id`)
	}

	query :=
		`SELECT id, name, measurement_unit FROM ingredients
		 WHERE lower(name) LIKE lower($1) || '%'
		 ORDER BY name, id
		 `

	return r.query(ctx, query, dbx.EscapeLike(prefix))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Ingredient, error) {
	item := &models.Ingredient{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, measurement_unit FROM ingredients WHERE id = $1`, id).
		Scan(&item.ID, &item.Name, &item.MeasurementUnit)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []int64) ([]*models.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	return r.query(ctx, fmt.Sprintf(`SELECT id, name, measurement_unit FROM ingredients WHERE id IN (%s)`,
		dbx.Placeholders(1, len(ids))), args...)
}

func (r *PostgresRepository) BulkCreate(ctx context.Context, items []*models.Ingredient) (int64, error) {
	var inserted int64

	for start := 0; start < len(items); start += bulkChunk {
		end := min(start+bulkChunk, len(items))
		chunk := items[start:end]

		query := fmt.Sprintf(
			`INSERT INTO ingredients (name, measurement_unit)
			 VALUES %s
			 ON CONFLICT (name, measurement_unit) DO NOTHING`, dbx.ValuesList(1, len(chunk), 2))

		args := make([]any, 0, len(chunk)*2)
		for _, it := range chunk {
			args = append(args, it.Name, it.MeasurementUnit)
		}

		res, err := r.db.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("db error: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("db error: %w", err)
		}
		inserted += n
	}

	return inserted, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Ingredient
	for rows.Next() {
		item := &models.Ingredient{}
		if err := rows.Scan(&item.ID, &item.Name, &item.MeasurementUnit); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
