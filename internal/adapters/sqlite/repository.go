package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tradeJournal/internal/domain"
	"tradeJournal/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements ports.TradeRepository using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository opens (or creates) the journal database and ensures the schema exists.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	ctx := context.Background()
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/trades.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %v: %w", dbPath, err, ports.ErrDBConnection)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}

	// A single connection keeps writes serialized and lets ":memory:" databases work.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}
	if err := repo.initializeSchema(ctx); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(ctx, err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(ctx, "SQLite trade journal ready", ports.Fields{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		qty REAL NOT NULL,
		entry_price REAL NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_price REAL DEFAULT NULL,
		exit_time TIMESTAMP DEFAULT NULL,
		fees REAL DEFAULT NULL,
		tags TEXT DEFAULT NULL,
		notes TEXT DEFAULT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol_entry_time ON trades (symbol, entry_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Create saves a new trade and returns its assigned ID.
func (r *Repository) Create(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (symbol, side, qty, entry_price, entry_time, exit_price, exit_time, fees, tags, notes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, tradeArgs(trade)...)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for symbol %s: %v: %w", trade.Symbol, err, ports.ErrQueryFailed)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w", trade.Symbol, err)
	}
	trade.ID = id
	r.logger.Debug(ctx, "Trade created", ports.Fields{"tradeID": id, "symbol": trade.Symbol})
	return id, nil
}

// Update replaces every stored field of the trade identified by trade.ID.
func (r *Repository) Update(ctx context.Context, trade *domain.Trade) error {
	const query = `
	UPDATE trades
	SET symbol = ?, side = ?, qty = ?, entry_price = ?, entry_time = ?,
	    exit_price = ?, exit_time = ?, fees = ?, tags = ?, notes = ?
	WHERE id = ?`

	args := append(tradeArgs(trade), trade.ID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update trade ID %d: %v: %w", trade.ID, err, ports.ErrUpdateFailed)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for update trade ID %d: %w", trade.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for update: %w", trade.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade updated", ports.Fields{"tradeID": trade.ID, "symbol": trade.Symbol})
	return nil
}

// Delete removes a trade by ID.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade ID %d: %v: %w", id, err, ports.ErrDeleteFailed)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for delete trade ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for delete: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade deleted", ports.Fields{"tradeID": id})
	return nil
}

const selectTrade = `
	SELECT id, symbol, side, qty, entry_price, entry_time, exit_price, exit_time, fees, tags, notes
	FROM trades`

// FindByID retrieves a trade by its unique ID.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Trade, error) {
	row := r.db.QueryRowContext(ctx, selectTrade+` WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Trade not found by ID", ports.Fields{"tradeID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query trade by ID %d: %w", id, err)
	}
	return trade, nil
}

// FindAll retrieves all trades ordered by ID.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Trade, error) {
	rows, err := r.db.QueryContext(ctx, selectTrade+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query all trades: %w", err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindAll: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// tradeArgs returns the column values in insert order.
func tradeArgs(t *domain.Trade) []interface{} {
	var exitPrice, fees sql.NullFloat64
	if t.ExitPrice != nil {
		exitPrice = sql.NullFloat64{Float64: *t.ExitPrice, Valid: true}
	}
	if t.Fees != nil {
		fees = sql.NullFloat64{Float64: *t.Fees, Valid: true}
	}
	var exitTime sql.NullTime
	if t.ExitTime != nil {
		exitTime = sql.NullTime{Time: t.ExitTime.UTC(), Valid: true}
	}
	return []interface{}{
		t.Symbol, string(t.Side), t.Quantity, t.EntryPrice, t.EntryTime.UTC(),
		exitPrice, exitTime, fees, nullString(t.Tags), nullString(t.Notes),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var side string
	var exitPrice, fees sql.NullFloat64
	var exitTime sql.NullTime
	var tags, notes sql.NullString
	err := s.Scan(
		&t.ID, &t.Symbol, &side, &t.Quantity, &t.EntryPrice, &t.EntryTime,
		&exitPrice, &exitTime, &fees, &tags, &notes)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Side = domain.ParseSide(side)
	if exitPrice.Valid {
		v := exitPrice.Float64
		t.ExitPrice = &v
	}
	if exitTime.Valid {
		v := exitTime.Time
		t.ExitTime = &v
	}
	if fees.Valid {
		v := fees.Float64
		t.Fees = &v
	}
	t.Tags = tags.String
	t.Notes = notes.String
	return t, nil
}
