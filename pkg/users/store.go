package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/observability"
)

const storeName = "users"

// uniqueViolation is the PostgreSQL error code for a unique constraint failure
const uniqueViolation = "23505"

var (
	// ErrNotFound is returned when no user has the requested id
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when another account already uses the email
	ErrEmailTaken = errors.New("email already in use")
)

// NewUser holds the columns of a registration. PasswordHash must already be hashed.
type NewUser struct {
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Nickname     *string
	HomeState    *string
}

// Update holds the columns of a partial edit. Nil fields are left unchanged.
type Update struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
	Nickname     *string
	HomeState    *string
}

// Empty reports whether the update changes nothing
func (u *Update) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil &&
		u.PasswordHash == nil && u.Nickname == nil && u.HomeState == nil
}

// Store is the persistence contract for accounts
type Store interface {
	auth.AccountStore
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*auth.Account, error)
	GetByID(ctx context.Context, id int64) (*auth.Account, error)
	Create(ctx context.Context, user *NewUser) (*auth.Account, error)
	Update(ctx context.Context, id int64, updates *Update) error
	Delete(ctx context.Context, id int64) error
}

// PostgresStore persists accounts in the users table. It also serves as the
// auth.AccountStore used by login and bearer authentication.
type PostgresStore struct {
	db      *sql.DB
	metrics *observability.Metrics
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new PostgresStore. metrics may be nil.
func NewPostgresStore(db *sql.DB, metrics *observability.Metrics) *PostgresStore {
	return &PostgresStore{db: db, metrics: metrics}
}

const userColumns = `id, first_name, last_name, email, password, nickname, home_state, date_created`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAccount(row rowScanner) (*auth.Account, error) {
	acc := &auth.Account{}
	var nickname, homeState sql.NullString
	if err := row.Scan(&acc.ID, &acc.FirstName, &acc.LastName, &acc.Email,
		&acc.PasswordHash, &nickname, &homeState, &acc.DateCreated); err != nil {
		return nil, err
	}
	if nickname.Valid {
		acc.Nickname = &nickname.String
	}
	if homeState.Valid {
		acc.HomeState = &homeState.String
	}
	return acc, nil
}

// GetAccountByEmail looks up an account by its normalized email
func (s *PostgresStore) GetAccountByEmail(ctx context.Context, email string) (acc *auth.Account, err error) {
	defer s.observe("get_by_email", time.Now(), &err)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	acc, err = scanAccount(s.db.QueryRowContext(ctx, query, auth.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return acc, nil
}

// EmailExists reports whether an account already uses email
func (s *PostgresStore) EmailExists(ctx context.Context, email string) (exists bool, err error) {
	defer s.observe("email_exists", time.Now(), &err)

	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`
	if err = s.db.QueryRowContext(ctx, query, auth.NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// List returns every account ordered by id
func (s *PostgresStore) List(ctx context.Context) (accounts []*auth.Account, err error) {
	defer s.observe("list", time.Now(), &err)

	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	accounts = []*auth.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return accounts, nil
}

// GetByID returns the account with the given id
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (acc *auth.Account, err error) {
	defer s.observe("get", time.Now(), &err)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	acc, err = scanAccount(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return acc, nil
}

// Create inserts a new account and returns the stored row
func (s *PostgresStore) Create(ctx context.Context, user *NewUser) (acc *auth.Account, err error) {
	defer s.observe("create", time.Now(), &err)

	query := `
		INSERT INTO users (first_name, last_name, email, password, nickname, home_state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	acc, err = scanAccount(s.db.QueryRowContext(ctx, query,
		user.FirstName, user.LastName, auth.NormalizeEmail(user.Email), user.PasswordHash,
		user.Nickname, user.HomeState))
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return acc, nil
}

// Update applies the non-nil fields of updates to the account with the given id
func (s *PostgresStore) Update(ctx context.Context, id int64, updates *Update) (err error) {
	defer s.observe("update", time.Now(), &err)

	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	add := func(column string, value *string) {
		if value == nil {
			return
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, *value)
		argPos++
	}
	add("first_name", updates.FirstName)
	add("last_name", updates.LastName)
	if updates.Email != nil {
		email := auth.NormalizeEmail(*updates.Email)
		add("email", &email)
	}
	add("password", updates.PasswordHash)
	add("nickname", updates.Nickname)
	add("home_state", updates.HomeState)

	if len(setClauses) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)

	result, err := s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return checkAffected(result)
}

// Delete removes the account with the given id. Comments and favorites cascade.
func (s *PostgresStore) Delete(ctx context.Context, id int64) (err error) {
	defer s.observe("delete", time.Now(), &err)

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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

// observe records the call, treating expected outcomes as successes
func (s *PostgresStore) observe(operation string, start time.Time, errp *error) {
	err := *errp
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrEmailTaken) || errors.Is(err, auth.ErrAccountNotFound) {
		err = nil
	}
	s.metrics.ObserveStore(storeName, operation, start, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
