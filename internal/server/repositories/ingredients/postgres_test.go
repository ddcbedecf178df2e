package ingredients

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

var cols = []string{"id", "name", "measurement_unit"}

func TestSearch_AllWhenPrefixEmpty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT id, name, measurement_unit FROM ingredients ORDER BY name, id$`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "flour", "g").AddRow(int64(2), "milk", "ml"))

	got, err := repo.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSearch_PrefixEscaped(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*name,\s*measurement_unit\s+FROM\s+ingredients\s+WHERE\s+lower\(name\)\s+LIKE\s+lower\(\$1\)\s+\|\|\s+'%'\s+ORDER\s+BY\s+name,\s*id\s*$`
	mock.ExpectQuery(q).
		WithArgs("Mi").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(2), "milk", "ml"))
	mock.ExpectQuery(q).
		WithArgs(`50\%\_off`).
		WillReturnRows(sqlmock.NewRows(cols))

	got, err := repo.Search(context.Background(), "Mi")
	require.NoError(t, err)
	assert.Equal(t, []*models.Ingredient{{ID: 2, Name: "milk", MeasurementUnit: "ml"}}, got)

	got, err = repo.Search(context.Background(), "50%_off")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `^SELECT id, name, measurement_unit FROM ingredients WHERE id = \$1$`
	mock.ExpectQuery(q).WithArgs(int64(1)).WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "flour", "g"))
	mock.ExpectQuery(q).WithArgs(int64(2)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnError(errors.New("db down"))

	got, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "g", got.MeasurementUnit)

	_, err = repo.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = repo.GetByID(context.Background(), 3)
	assert.ErrorContains(t, err, "db error")
}

func TestFindByIDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT id, name, measurement_unit FROM ingredients WHERE id IN \(\$1, \$2, \$3\)$`).
		WithArgs(int64(1), int64(2), int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "flour", "g").AddRow(int64(3), "salt", "g"))

	got, err := repo.FindByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBulkCreate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+ingredients\s*\(name,\s*measurement_unit\)\s*VALUES\s*\(\$1,\s*\$2\),\s*\(\$3,\s*\$4\)\s*ON\s+CONFLICT\s*\(name,\s*measurement_unit\)\s*DO\s+NOTHING$`
	mock.ExpectExec(q).
		WithArgs("flour", "g", "milk", "ml").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.BulkCreate(context.Background(), []*models.Ingredient{
		{Name: "flour", MeasurementUnit: "g"},
		{Name: "milk", MeasurementUnit: "ml"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreate_Chunks(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	items := make([]*models.Ingredient, bulkChunk+1)
	for i := range items {
		items[i] = &models.Ingredient{Name: "x", MeasurementUnit: "g"}
	}

	mock.ExpectExec(`^INSERT INTO ingredients`).WillReturnResult(sqlmock.NewResult(0, bulkChunk))
	mock.ExpectExec(`^INSERT INTO ingredients \(name, measurement_unit\) VALUES \(\$1, \$2\) ON CONFLICT`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.BulkCreate(context.Background(), items)
	require.NoError(t, err)
	assert.Equal(t, int64(bulkChunk+1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^INSERT INTO ingredients`).WillReturnError(errors.New("db down"))

	_, err := repo.BulkCreate(context.Background(), []*models.Ingredient{{Name: "x", MeasurementUnit: "g"}})
	assert.ErrorContains(t, err, "db error: db down")
}

func TestBulkCreate_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	n, err := repo.BulkCreate(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
