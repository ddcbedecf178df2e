package tags

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT id, name, slug FROM tags ORDER BY id$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).
			AddRow(int64(1), "Breakfast", "breakfast").
			AddRow(int64(2), "Lunch", "lunch"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []*models.Tag{
		{ID: 1, Name: "Breakfast", Slug: "breakfast"},
		{ID: 2, Name: "Lunch", Slug: "lunch"},
	}, got)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT id, name, slug FROM tags WHERE id = \$1$`
	mock.ExpectQuery(q).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(int64(1), "Breakfast", "breakfast"))
	mock.ExpectQuery(q).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(errors.New("db down"))

	tag, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "breakfast", tag.Slug)

	_, err = repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), 2)
	assert.ErrorContains(t, err, "db error: db down")
}

func TestFindByIDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT id, name, slug FROM tags WHERE id IN \(\$1, \$2\)$`).
		WithArgs(int64(1), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(int64(1), "Breakfast", "breakfast"))

	got, err := repo.FindByIDs(context.Background(), []int64{1, 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestFindByIDs_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	got, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}
