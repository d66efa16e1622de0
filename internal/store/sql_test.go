package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
)

func TestSQLStore_Init(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS search_history").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewSQLStore(db, DialectPostgres).Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_Load(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("1", "Tokyo").
		AddRow("2", "Lima")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name FROM search_history ORDER BY position`)).WillReturnRows(rows)

	entries, err := NewSQLStore(db, DialectPostgres).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []history.Entry{{ID: "1", Name: "Tokyo"}, {ID: "2", Name: "Lima"}}, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_LoadEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name FROM search_history").WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	entries, err := NewSQLStore(db, DialectPostgres).Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestSQLStore_SavePostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	insert := regexp.QuoteMeta(`INSERT INTO search_history (position, id, name) VALUES ($1, $2, $3)`)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM search_history`)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(insert).WithArgs(int64(0), "1", "Tokyo").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs(int64(1), "2", "Lima").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = NewSQLStore(db, DialectPostgres).Save(context.Background(), []history.Entry{
		{ID: "1", Name: "Tokyo"},
		{ID: "2", Name: "Lima"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SaveRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM search_history`)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO search_history (position, id, name) VALUES (?, ?, ?)`)).
		WillReturnError(errors.New("constraint failed"))
	mock.ExpectRollback()

	err = NewSQLStore(db, DialectSQLite).Save(context.Background(), []history.Entry{{ID: "1", Name: "Tokyo"}})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQL(ctx, DialectSQLite, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	s := NewSQLStore(db, DialectSQLite)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx), "Init must be idempotent")

	h := history.NewStore(s, nil)
	require.NoError(t, h.AddCity(ctx, "Tokyo"))
	require.NoError(t, h.AddCity(ctx, "Lima"))
	require.NoError(t, h.AddCity(ctx, "tokyo"))

	list := h.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "Tokyo", list[0].Name)
	assert.Equal(t, "Lima", list[1].Name)

	require.NoError(t, h.RemoveCity(ctx, list[0].ID))

	entries, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []history.Entry{list[1]}, entries)
}
