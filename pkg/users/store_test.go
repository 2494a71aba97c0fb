package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/observability"
)

var userRowColumns = []string{"id", "first_name", "last_name", "email", "password", "nickname", "home_state", "date_created"}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *observability.Metrics) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	metrics := observability.NewMetrics(prometheus.NewRegistry())
	return NewPostgresStore(db, metrics), mock, metrics
}

func TestPostgresStore_GetAccountByEmail(t *testing.T) {
	store, mock, _ := newMockStore(t)
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(int64(1), "Ann", "Lee", "ann@example.com", "$2a$12$hash", "annie", nil, created)
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("ann@example.com").
		WillReturnRows(rows)

	acc, err := store.GetAccountByEmail(context.Background(), "  Ann@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), acc.ID)
	assert.Equal(t, "$2a$12$hash", acc.PasswordHash)
	require.NotNil(t, acc.Nickname)
	assert.Equal(t, "annie", *acc.Nickname)
	assert.Nil(t, acc.HomeState)
	assert.Equal(t, created, acc.DateCreated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetAccountByEmail_NotFound(t *testing.T) {
	store, mock, metrics := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := store.GetAccountByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrAccountNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.StoreErrorsTotal.WithLabelValues(storeName, "get_by_email")))
}

func TestPostgresStore_GetAccountByEmail_Error(t *testing.T) {
	store, mock, metrics := newMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WillReturnError(errors.New("connection reset"))

	_, err := store.GetAccountByEmail(context.Background(), "ann@example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, auth.ErrAccountNotFound)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.StoreErrorsTotal.WithLabelValues(storeName, "get_by_email")))
}

func TestPostgresStore_EmailExists(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := store.EmailExists(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestPostgresStore_List(t *testing.T) {
	store, mock, _ := newMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows(userRowColumns).
		AddRow(int64(1), "Ann", "Lee", "ann@example.com", "h1", nil, "CA", now).
		AddRow(int64(2), "Bo", "Kim", "bo@example.com", "h2", nil, nil, now)
	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnRows(rows)

	accounts, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "CA", *accounts[0].HomeState)
	assert.Equal(t, "bo@example.com", accounts[1].Email)
}

func TestPostgresStore_List_Empty(t *testing.T) {
	store, mock, _ := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM users ORDER BY id").WillReturnRows(sqlmock.NewRows(userRowColumns))

	accounts, err := store.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}

func TestPostgresStore_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(int64(7), "Ann", "Lee", "ann@example.com", "h", nil, nil, time.Now()))

		acc, err := store.GetByID(context.Background(), 7)
		require.NoError(t, err)
		assert.Equal(t, int64(7), acc.ID)
	})

	t.Run("missing", func(t *testing.T) {
		store, mock, _ := newMockStore(t)
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(int64(8)).
			WillReturnError(sql.ErrNoRows)

		_, err := store.GetByID(context.Background(), 8)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostgresStore_Create(t *testing.T) {
	store, mock, _ := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ann", "Lee", "ann@example.com", "hashed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(userRowColumns).
			AddRow(int64(3), "Ann", "Lee", "ann@example.com", "hashed", nil, nil, now))

	acc, err := store.Create(context.Background(), &NewUser{
		FirstName:    "Ann",
		LastName:     "Lee",
		Email:        "Ann@Example.com",
		PasswordHash: "hashed",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), acc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Create_DuplicateEmail(t *testing.T) {
	store, mock, metrics := newMockStore(t)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := store.Create(context.Background(), &NewUser{Email: "ann@example.com"})
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.StoreErrorsTotal.WithLabelValues(storeName, "create")))
}

func TestPostgresStore_Update(t *testing.T) {
	store, mock, _ := newMockStore(t)

	first := "Annie"
	email := " NEW@example.com"
	mock.ExpectExec("UPDATE users SET first_name = \\$1, email = \\$2 WHERE id = \\$3").
		WithArgs("Annie", "new@example.com", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Update(context.Background(), 4, &Update{FirstName: &first, Email: &email})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update_NotFound(t *testing.T) {
	store, mock, _ := newMockStore(t)

	state := "UT"
	mock.ExpectExec("UPDATE users SET home_state = \\$1 WHERE id = \\$2").
		WithArgs("UT", int64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), 99, &Update{HomeState: &state})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_Update_NothingToDo(t *testing.T) {
	store, mock, _ := newMockStore(t)

	require.NoError(t, store.Update(context.Background(), 1, &Update{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock, _ := newMockStore(t)

	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM users WHERE id = \\$1").
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, store.Delete(context.Background(), 5))
	assert.ErrorIs(t, store.Delete(context.Background(), 6), ErrNotFound)
}

func TestUpdate_Empty(t *testing.T) {
	assert.True(t, (&Update{}).Empty())
	nick := "n"
	assert.False(t, (&Update{Nickname: &nick}).Empty())
}
