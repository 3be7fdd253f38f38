package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	marketengine "market-sim-go/internal/market-engine"
)

// TickArchive is an append-only SQLite tape of every quote the engine
// emits. It is never read back into the engine.
type TickArchive struct {
	db *sql.DB
}

func NewTickArchive(dbPath string) (*TickArchive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-8000;",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	// step restarts at 0 with every process, so rows are ordered by id.
	schema := []string{
		`CREATE TABLE IF NOT EXISTS ticks (
			id INTEGER PRIMARY KEY,
			step INTEGER NOT NULL,
			symbol TEXT NOT NULL,
			ts INTEGER NOT NULL,
			price REAL NOT NULL,
			volume REAL NOT NULL,
			best_bid REAL NOT NULL,
			best_ask REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS ticks_symbol_id ON ticks (symbol, id);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create ticks schema: %w", err)
		}
	}
	return &TickArchive{db: db}, nil
}

// SaveCycle stores every quote of one cycle in a single transaction.
func (a *TickArchive) SaveCycle(ctx context.Context, ev marketengine.CycleEvent) error {
	if len(ev.Quotes) == 0 {
		return nil
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO ticks (step, symbol, ts, price, volume, best_bid, best_ask) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ts := ev.Time.UnixMilli()
	for _, q := range ev.Quotes {
		if _, err := stmt.ExecContext(ctx, int64(ev.Step), q.Symbol, ts, q.Price, q.Volume, q.BestBid, q.BestAsk); err != nil {
			return fmt.Errorf("failed to insert tick %s@%d: %w", q.Symbol, ev.Step, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle %d: %w", ev.Step, err)
	}
	return nil
}

// LoadPrices returns archived prices for symbol, oldest first. A positive
// limit keeps only the newest limit rows.
func (a *TickArchive) LoadPrices(ctx context.Context, symbol string, limit int) ([]float64, error) {
	query := "SELECT price FROM ticks WHERE symbol = ? ORDER BY id ASC"
	args := []any{symbol}
	if limit > 0 {
		query = "SELECT price FROM (SELECT id, price FROM ticks WHERE symbol = ? ORDER BY id DESC LIMIT ?) ORDER BY id ASC"
		args = append(args, limit)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prices: %w", err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// Count returns the number of archived rows.
func (a *TickArchive) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ticks").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count ticks: %w", err)
	}
	return n, nil
}

func (a *TickArchive) Close() error {
	return a.db.Close()
}
