// Package postgres owns the PostgreSQL connection pool and the embedded goose
// schema migrations for the users, comments and favorite_parks tables.
//
//	cm, err := postgres.NewConnectionManager(ctx, postgres.ConnectionConfig{URL: dsn, MaxConns: 25}, logger)
//	if err != nil {
//	    return err
//	}
//	if err := postgres.NewMigrator(cm.DB(), nil).Up(ctx); err != nil {
//	    return err
//	}
//
// Integration tests run against a throwaway container and need the
// integration build tag:
//
//	go test -tags integration ./pkg/storage/postgres/...
package postgres
