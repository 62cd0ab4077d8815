package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLStore keeps records in a relational table through database/sql. Each row
// carries the sortable columns plus the full record as JSON.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// OpenSQLStore connects, verifies connectivity and creates the runs table.
func OpenSQLStore(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	if err := dialect.CheckDSN(dsn); err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", dialect.DriverName(), err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: connect %s: %w", dialect.DriverName(), err)
	}

	if _, err := db.ExecContext(ctx, dialect.CreateTableSQL()); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create table: %w", err)
	}

	return &SQLStore{
		db:      db,
		dialect: dialect,
		table:   dialect.QuoteIdentifier(tableName),
	}, nil
}

func (s *SQLStore) placeholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = s.dialect.Placeholder(i + 1)
	}
	return strings.Join(ph, ", ")
}

// Save inserts a record. IDs are unique; saving the same ID twice fails.
func (s *SQLStore) Save(ctx context.Context, rec *Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("history: encode run %s: %w", rec.ID, err)
	}

	feasible := 0
	if rec.Feasible {
		feasible = 1
	}

	query := fmt.Sprintf("INSERT INTO %s (id, created_at, best_fitness, feasible, payload) VALUES (%s)",
		s.table, s.placeholders(5))
	if _, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.CreatedAt.UnixNano(), rec.BestFitness, feasible, string(payload)); err != nil {
		return fmt.Errorf("history: save run %s: %w", rec.ID, err)
	}
	return nil
}

// Get loads one record by ID.
func (s *SQLStore) Get(ctx context.Context, id string) (*Record, error) {
	query := fmt.Sprintf("SELECT payload FROM %s WHERE id = %s", s.table, s.dialect.Placeholder(1))

	var payload string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("history: get run %s: %w", id, err)
	}
	return decodeRecord([]byte(payload))
}

// List returns records newest first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]*Record, error) {
	query := fmt.Sprintf("SELECT payload FROM %s ORDER BY created_at DESC, id", s.table)
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT " + s.dialect.Placeholder(1)
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		rec, err := decodeRecord([]byte(payload))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func decodeRecord(payload []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("history: decode run: %w", err)
	}
	return &rec, nil
}
