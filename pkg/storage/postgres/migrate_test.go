package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npsexplorer/explorer/pkg/observability"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, migrationsDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_comments.sql",
		"00003_create_favorite_parks.sql",
	}, names)

	for _, name := range names {
		body, err := fs.ReadFile(migrationsFS, migrationsDir+"/"+name)
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(body), "-- +goose Up"), name)
		assert.True(t, strings.Contains(string(body), "-- +goose Down"), name)
	}
}

func TestFavoriteParksIsUniquePerAccount(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, migrationsDir+"/00003_create_favorite_parks.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "UNIQUE (user_account, park_code)")
}

func TestMigrator_Up(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var gotDir string
	orig := gooseUp
	gooseUp = func(ctx context.Context, d *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	defer func() { gooseUp = orig }()

	require.NoError(t, NewMigrator(db, nil).Up(context.Background()))
	assert.Equal(t, migrationsDir, gotDir)
}

func TestMigrator_UpError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUp
	gooseUp = func(ctx context.Context, d *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("syntax error")
	}
	defer func() { gooseUp = orig }()

	err = NewMigrator(db, nil).Up(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to apply migrations")
}

func TestMigrator_Version(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseVersion
	gooseVersion = func(ctx context.Context, d *sql.DB) (int64, error) { return 3, nil }
	defer func() { gooseVersion = orig }()

	v, err := NewMigrator(db, nil).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestGooseLogger(t *testing.T) {
	var buf bytes.Buffer
	l := GooseLogger(observability.NewLogger(observability.InfoLevel, &buf))

	l.Printf("OK   %s (%v)\n", "00001_create_users.sql", "1.2ms")
	assert.Contains(t, buf.String(), "OK   00001_create_users.sql (1.2ms)")
	assert.NotContains(t, buf.String(), `\n`)
}
