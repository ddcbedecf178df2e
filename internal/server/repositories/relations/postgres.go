// Package relations stores favorite, shopping cart and subscription edges in
// a single table keyed by (kind, subject_id, object_id).
package relations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/jackc/pgerrcode"
)

const selfSubscriptionConstraint = "prevent_self_subscription"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// objectColumn is the typed foreign key column that backs object_id for kind.
func objectColumn(kind models.RelationKind) string {
	if kind.TargetsUser() {
		return "author_id"
	}
	return "recipe_id"
}

func translateError(err error) error {
	if pgErr, ok := dbx.PgError(err); ok {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return common.ErrDuplicateRelation
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == selfSubscriptionConstraint {
				return common.ErrSelfReference
			}
		case pgerrcode.ForeignKeyViolation:
			return common.ErrorNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Add(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error) {
	query := fmt.Sprintf(
		`INSERT INTO relations (kind, subject_id, %s)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (kind, subject_id, object_id) DO NOTHING
		 RETURNING id
		 `, objectColumn(kind))

	var id int64
	err := r.db.QueryRowContext(ctx, query, string(kind), subjectID, objectID).Scan(&id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, translateError(err)
	}

	return true, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error) {
	query :=
		`DELETE FROM relations
		 WHERE kind = $1 AND subject_id = $2 AND object_id = $3
		 `

	res, err := r.db.ExecContext(ctx, query, string(kind), subjectID, objectID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, kind models.RelationKind, subjectID, objectID int64) (bool, error) {
	query :=
		`SELECT EXISTS (
		   SELECT 1 FROM relations
		   WHERE kind = $1 AND subject_id = $2 AND object_id = $3
		 )
		 `

	var exists bool
	err := r.db.QueryRowContext(ctx, query, string(kind), subjectID, objectID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

func (r *PostgresRepository) ListObjects(ctx context.Context, kind models.RelationKind, subjectID int64, page models.Page) ([]int64, error) {
	query :=
		`SELECT object_id FROM relations
		 WHERE kind = $1 AND subject_id = $2
		 ORDER BY created_at DESC, id DESC
		 LIMIT NULLIF($3, 0) OFFSET $4
		 `

	rows, err := r.db.QueryContext(ctx, query, string(kind), subjectID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

func (r *PostgresRepository) Count(ctx context.Context, kind models.RelationKind, subjectID int64) (int64, error) {
	query :=
		`SELECT COUNT(*) FROM relations
		 WHERE kind = $1 AND subject_id = $2
		 `

	var n int64
	if err := r.db.QueryRowContext(ctx, query, string(kind), subjectID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}

func (r *PostgresRepository) Present(ctx context.Context, kind models.RelationKind, subjectID int64, objectIDs []int64) (map[int64]bool, error) {
	present := make(map[int64]bool, len(objectIDs))
	if len(objectIDs) == 0 {
		return present, nil
	}

	query := fmt.Sprintf(
		`SELECT object_id FROM relations
		 WHERE kind = $1 AND subject_id = $2 AND object_id IN (%s)
		 `, dbx.Placeholders(3, len(objectIDs)))

	args := make([]any, 0, len(objectIDs)+2)
	args = append(args, string(kind), subjectID)
	for _, id := range objectIDs {
		args = append(args, id)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		present[id] = true
	}

	return present, nil
}

func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}
