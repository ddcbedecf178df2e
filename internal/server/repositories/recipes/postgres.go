// Package recipes persists recipes together with their ordered tags and
// ingredient composition.
package recipes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/jackc/pgerrcode"
)

const selectRecipe = `SELECT r.id, r.author_id, r.name, r.text, r.cooking_time, r.image_key, r.pub_date FROM recipes r`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func translateError(err error) error {
	if pgErr, ok := dbx.PgError(err); ok && pgErr.Code == pgerrcode.ForeignKeyViolation {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, recipe *models.Recipe) (*models.Recipe, error) {

	query :=
		`INSERT INTO recipes (author_id, name, text, cooking_time, image_key)
         VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, pub_date
		 `

	err := r.db.QueryRowContext(ctx, query,
		recipe.AuthorID, recipe.Name, recipe.Text, recipe.CookingTime, recipe.ImageKey).
		Scan(&recipe.ID, &recipe.PubDate)

	if err != nil {
		return nil, translateError(err)
	}

	return recipe, nil
}

func (r *PostgresRepository) Update(ctx context.Context, recipe *models.Recipe) error {
	query :=
		`UPDATE recipes SET name = $1, text = $2, cooking_time = $3, image_key = $4
		 WHERE id = $5
		 `

	res, err := r.db.ExecContext(ctx, query, recipe.Name, recipe.Text, recipe.CookingTime, recipe.ImageKey, recipe.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Recipe, error) {
	recipe := &models.Recipe{}
	err := r.db.QueryRowContext(ctx, selectRecipe+` WHERE r.id = $1`, id).
		Scan(&recipe.ID, &recipe.AuthorID, &recipe.Name, &recipe.Text, &recipe.CookingTime, &recipe.ImageKey, &recipe.PubDate)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return recipe, nil
}

func (r *PostgresRepository) ReplaceTags(ctx context.Context, recipeID int64, tagIDs []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipe_tags WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO recipe_tags (recipe_id, tag_id, position) VALUES %s`,
		dbx.ValuesList(1, len(tagIDs), 3))

	args := make([]any, 0, len(tagIDs)*3)
	for i, id := range tagIDs {
		args = append(args, recipeID, id, i)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *PostgresRepository) ReplaceIngredients(ctx context.Context, recipeID int64, items []models.IngredientAmount) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM recipe_ingredients WHERE recipe_id = $1`, recipeID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount) VALUES %s`,
		dbx.ValuesList(1, len(items), 3))

	args := make([]any, 0, len(items)*3)
	for _, it := range items {
		args = append(args, recipeID, it.IngredientID, it.Amount)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *PostgresRepository) TagsFor(ctx context.Context, recipeID int64) ([]models.Tag, error) {
	query :=
		`SELECT t.id, t.name, t.slug FROM recipe_tags rt
		 JOIN tags t ON t.id = rt.tag_id
		 WHERE rt.recipe_id = $1
		 ORDER BY rt.position
		 `

	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) IngredientsFor(ctx context.Context, recipeIDs []int64) ([]models.RecipeIngredient, error) {
	if len(recipeIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(
		`SELECT ri.recipe_id, i.id, i.name, i.measurement_unit, ri.amount FROM recipe_ingredients ri
		 JOIN ingredients i ON i.id = ri.ingredient_id
		 WHERE ri.recipe_id IN (%s)
		 ORDER BY ri.recipe_id, ri.id
		 `, dbx.Placeholders(1, len(recipeIDs)))

	args := make([]any, len(recipeIDs))
	for i, id := range recipeIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.RecipeIngredient
	for rows.Next() {
		var ri models.RecipeIngredient
		if err := rows.Scan(&ri.RecipeID, &ri.IngredientID, &ri.Name, &ri.MeasurementUnit, &ri.Amount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, ri)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// whereClause renders the filter as a WHERE clause with positional
// parameters starting at $1.
func whereClause(f models.RecipeFilter) (string, []any) {
	var conds []string
	var args []any

	next := func() int { return len(args) + 1 }

	if f.AuthorID != 0 {
		conds = append(conds, fmt.Sprintf("r.author_id = $%d", next()))
		args = append(args, f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = r.id AND t.slug IN (%s))",
			dbx.Placeholders(next(), len(f.TagSlugs))))
		for _, s := range f.TagSlugs {
			args = append(args, s)
		}
	}
	if f.Search != "" {
		n := next()
		conds = append(conds, fmt.Sprintf("(r.name ILIKE '%%' || $%d || '%%' OR r.text ILIKE '%%' || $%d || '%%')", n, n))
		args = append(args, dbx.EscapeLike(f.Search))
	}
	for _, rel := range []struct {
		kind    models.RelationKind
		subject int64
	}{
		{models.RelationFavorite, f.FavoritedBy},
		{models.RelationShoppingCart, f.InCartOf},
	} {
		if rel.subject == 0 {
			continue
		}
		n := next()
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM relations rel WHERE rel.kind = $%d AND rel.subject_id = $%d AND rel.recipe_id = r.id)", n, n+1))
		args = append(args, string(rel.kind), rel.subject)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) List(ctx context.Context, filter models.RecipeFilter) ([]*models.Recipe, error) {
	where, args := whereClause(filter)
	n := len(args) + 1
	query := fmt.Sprintf("%s%s ORDER BY r.pub_date DESC, r.id DESC LIMIT NULLIF($%d, 0) OFFSET $%d",
		selectRecipe, where, n, n+1)
	args = append(args, filter.Page.Limit, filter.Page.Offset)

	return r.query(ctx, query, args...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.RecipeFilter) (int64, error) {
	where, args := whereClause(filter)

	var count int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes r"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func (r *PostgresRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Recipe, error) {
	result := make(map[int64]*models.Recipe, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	list, err := r.query(ctx, fmt.Sprintf("%s WHERE r.id IN (%s)", selectRecipe, dbx.Placeholders(1, len(ids))), args...)
	if err != nil {
		return nil, err
	}
	for _, rec := range list {
		result[rec.ID] = rec
	}

	return result, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Recipe
	for rows.Next() {
		rec := &models.Recipe{}
		if err := rows.Scan(&rec.ID, &rec.AuthorID, &rec.Name, &rec.Text, &rec.CookingTime, &rec.ImageKey, &rec.PubDate); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
