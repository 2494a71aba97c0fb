package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/npsexplorer/explorer/pkg/storage/postgres"
)

var (
	dbURL    = flag.String("db-url", getEnv("NPS_DATABASE_URL", ""), "PostgreSQL connection URL")
	logLevel = flag.String("log-level", getEnv("NPS_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")
	timeout  = flag.Duration("timeout", 2*time.Minute, "Maximum time for the whole command")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] up|down|status|version\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	logger := setupLogger(*logLevel)

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	if *dbURL == "" {
		logger.Fatal("Database URL is required (-db-url or NPS_DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, flag.Arg(0), logger); err != nil {
		logger.WithError(err).Fatal("Migration command failed")
	}
}

func run(ctx context.Context, command string, logger *logrus.Logger) error {
	conns, err := postgres.NewConnectionManager(ctx, postgres.ConnectionConfig{
		URL:      *dbURL,
		MaxConns: 2,
	}, nil)
	if err != nil {
		return err
	}
	defer conns.Close()

	migrator := postgres.NewMigrator(conns.DB(), logger)

	switch command {
	case "up":
		if err := migrator.Up(ctx); err != nil {
			return err
		}
	case "down":
		if err := migrator.Down(ctx); err != nil {
			return err
		}
	case "status":
		return migrator.Status(ctx)
	case "version":
	default:
		return fmt.Errorf("unknown command %q", command)
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		return err
	}
	logger.WithField("version", version).Info("Schema version")
	return nil
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
