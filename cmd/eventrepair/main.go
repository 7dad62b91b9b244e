// Command eventrepair runs the offline consistency repairs against the
// database: orphaned membership and availability rows are removed, missing
// creator memberships restored and expired sessions purged.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/plantogether/internal/config"
	"github.com/example/plantogether/internal/maintenance"
	"github.com/example/plantogether/internal/persistence/sqlite"
)

func main() {
	dsnFlag := flag.String("dsn", "", "SQLite DSN; defaults to the configured database")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	dsn := *dsnFlag
	if dsn == "" {
		cfg, err := config.Load()
		if err != nil {
			logger.Error("failed to load configuration", "error", err)
			os.Exit(1)
		}
		dsn = cfg.SQLiteDSN
	}

	storage, err := sqlite.Open(dsn)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = storage.Close()
	}()

	if err := storage.Migrate(); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repairer := maintenance.NewRepairer(storage.DB(), time.Now, logger)
	report, err := repairer.Run(ctx)
	if err != nil {
		logger.Error("repair failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("orphaned participants removed: %d\n", report.OrphanedParticipants)
	fmt.Printf("creator memberships restored:  %d\n", report.CreatorsRestored)
	fmt.Printf("orphaned availability removed: %d\n", report.OrphanedAvailability)
	fmt.Printf("expired sessions removed:      %d\n", report.ExpiredSessions)
	fmt.Printf("total rows changed:            %d\n", report.Total())
}
