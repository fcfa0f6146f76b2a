package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"tradeJournal/config"
	"tradeJournal/internal/adapters/logger"
	"tradeJournal/internal/adapters/sqlite"
	"tradeJournal/internal/app"
	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"
	"tradeJournal/internal/utils"
)

func main() {
	os.Exit(run())
}

func run() int {
	importPath := flag.String("file", "", "journal CSV to import into the database")
	exportPath := flag.String("export", "", "write every stored trade to this CSV file")
	flag.Parse()

	if *importPath == "" && *exportPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import_trades -file trades.csv | -export out.csv")
		return 2
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
		return 1
	}

	// 2. Initialize Logger
	appLogger, err := logger.NewZapLogger(cfg.LogLevel, "console")
	if err != nil {
		log.Printf("FATAL: Failed to initialize logger: %v", err)
		return 1
	}
	defer appLogger.Sync()

	// 3. Initialize Repository and Service
	ctx := context.Background()
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize database repository")
		return 1
	}
	defer repo.Close()

	journal, err := app.NewJournalService(cfg, appLogger, repo)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to initialize journal service")
		return 1
	}

	if *importPath != "" {
		imported, skipped, err := importTrades(ctx, journal, appLogger, *importPath)
		if err != nil {
			appLogger.Error(ctx, err, "Import failed", ports.Fields{"file": *importPath, "imported": imported})
			return 1
		}
		appLogger.Info(ctx, "Import finished", ports.Fields{"file": *importPath, "imported": imported, "skipped": skipped})
	}

	if *exportPath != "" {
		count, err := exportTrades(ctx, journal, *exportPath)
		if err != nil {
			appLogger.Error(ctx, err, "Export failed")
			return 1
		}
		appLogger.Info(ctx, "Saved to", ports.Fields{"filename": *exportPath, "trades": count})
	}
	return 0
}

// tradeCreator is the part of the journal service the importer needs.
type tradeCreator interface {
	CreateTrade(ctx context.Context, trade *domain.Trade) (*domain.Trade, error)
}

// importTrades stores every row of the CSV. Rows rejected by validation are
// logged and skipped; any other failure aborts the import.
func importTrades(ctx context.Context, journal tradeCreator, l ports.Logger, path string) (imported, skipped int, err error) {
	trades, err := utils.ReadTradesFromCSV(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read %s: %w", path, err)
	}
	for i, t := range trades {
		t.ID = 0 // IDs are assigned by the database
		if _, err := journal.CreateTrade(ctx, t); err != nil {
			if errors.Is(err, ports.ErrInvalidRequest) {
				l.Warn(ctx, "Skipping invalid row", ports.Fields{"row": i + 2, "reason": err.Error()})
				skipped++
				continue
			}
			return imported, skipped, err
		}
		imported++
	}
	return imported, skipped, nil
}

type tradeLister interface {
	ListTrades(ctx context.Context) ([]*domain.Trade, error)
}

func exportTrades(ctx context.Context, journal tradeLister, path string) (int, error) {
	trades, err := journal.ListTrades(ctx)
	if err != nil {
		return 0, err
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := utils.WriteTradesToCSV(file, trades); err != nil {
		file.Close()
		return 0, err
	}
	return len(trades), file.Close()
}
