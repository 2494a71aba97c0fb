// Package favorites stores the per-account favorite park flags.
//
// Each account has at most one row per park code. Writes go through Upsert,
// so posting the same park again flips the stored flag instead of adding a row.
package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/npsexplorer/explorer/pkg/observability"
)

const storeName = "favorites"

// ErrNotFound is returned when no favorite has the requested id
var ErrNotFound = errors.New("favorite not found")

// Favorite marks whether an account likes a park
type Favorite struct {
	ID          int64
	UserAccount int64
	ParkCode    string
	Favorite    bool
}

// Store is the persistence contract for favorites
type Store interface {
	List(ctx context.Context) ([]*Favorite, error)
	ListByAccount(ctx context.Context, account int64) ([]*Favorite, error)
	Get(ctx context.Context, id int64) (*Favorite, error)
	Upsert(ctx context.Context, account int64, parkCode string, favorite bool) (*Favorite, error)
	SetFavorite(ctx context.Context, id int64, favorite bool) error
	Delete(ctx context.Context, id int64) error
}

// PostgresStore implements Store on the favorite_parks table
type PostgresStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

// NewPostgresStore creates a new PostgresStore. metrics may be nil.
func NewPostgresStore(db *sql.DB, metrics *observability.Metrics) *PostgresStore {
	return &PostgresStore{db: db, metrics: metrics}
}

const favoriteColumns = `id, user_account, park_code, favorite`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFavorite(row rowScanner) (*Favorite, error) {
	f := &Favorite{}
	err := row.Scan(&f.ID, &f.UserAccount, &f.ParkCode, &f.Favorite)
	return f, err
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...interface{}) ([]*Favorite, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []*Favorite{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate favorites: %w", err)
	}
	return favorites, nil
}

// List returns every favorite
func (s *PostgresStore) List(ctx context.Context) (favorites []*Favorite, err error) {
	defer s.observe("list", time.Now(), &err)
	return s.list(ctx, `SELECT `+favoriteColumns+` FROM favorite_parks ORDER BY id`)
}

// ListByAccount returns the favorites of one account
func (s *PostgresStore) ListByAccount(ctx context.Context, account int64) (favorites []*Favorite, err error) {
	defer s.observe("list_by_account", time.Now(), &err)
	return s.list(ctx, `SELECT `+favoriteColumns+` FROM favorite_parks WHERE user_account = $1 ORDER BY id`, account)
}

// Get returns a single favorite
func (s *PostgresStore) Get(ctx context.Context, id int64) (f *Favorite, err error) {
	defer s.observe("get", time.Now(), &err)

	f, err = scanFavorite(s.db.QueryRowContext(ctx, `SELECT `+favoriteColumns+` FROM favorite_parks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite: %w", err)
	}
	return f, nil
}

// Upsert stores the flag for (account, parkCode), creating the row if needed
func (s *PostgresStore) Upsert(ctx context.Context, account int64, parkCode string, favorite bool) (f *Favorite, err error) {
	defer s.observe("upsert", time.Now(), &err)

	query := `
		INSERT INTO favorite_parks (user_account, park_code, favorite)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_account, park_code) DO UPDATE SET favorite = EXCLUDED.favorite
		RETURNING ` + favoriteColumns
	f, err = scanFavorite(s.db.QueryRowContext(ctx, query, account, parkCode, favorite))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return f, nil
}

// SetFavorite changes the flag of an existing favorite
func (s *PostgresStore) SetFavorite(ctx context.Context, id int64, favorite bool) (err error) {
	defer s.observe("update", time.Now(), &err)

	result, err := s.db.ExecContext(ctx, `UPDATE favorite_parks SET favorite = $1 WHERE id = $2`, favorite, id)
	if err != nil {
		return fmt.Errorf("failed to update favorite: %w", err)
	}
	return checkAffected(result)
}

// Delete removes a favorite
func (s *PostgresStore) Delete(ctx context.Context, id int64) (err error) {
	defer s.observe("delete", time.Now(), &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM favorite_parks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return checkAffected(result)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	s.metrics.ObserveStore(storeName, operation, start, err)
}
