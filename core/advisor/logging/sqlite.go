package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists advice records to a SQLite database. Timestamp,
// source and feasibility are indexed columns; the full record rides along
// as JSON.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures the
// schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS advice_logs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        source TEXT,
        feasible INTEGER,
        record TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec AdviceRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	feasible := 0
	if rec.Feasible {
		feasible = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO advice_logs (ts, source, feasible, record) VALUES (?, ?, ?, ?)`,
		rec.Timestamp.Unix(), rec.Source, feasible, string(b))
	return err
}

// Query pushes the indexed filters into SQL; weather and level filter over
// the decoded records.
func (s *SQLiteStore) Query(ctx context.Context, q AdviceQuery) ([]AdviceRecord, error) {
	var args []any
	query := `SELECT record FROM advice_logs WHERE 1=1`
	if !q.Start.IsZero() {
		query += ` AND ts >= ?`
		args = append(args, q.Start.Unix())
	}
	if !q.End.IsZero() {
		query += ` AND ts <= ?`
		args = append(args, q.End.Unix())
	}
	if q.Source != "" {
		query += ` AND source = ?`
		args = append(args, q.Source)
	}
	if q.FeasibleOnly {
		query += ` AND feasible = 1`
	}
	query += ` ORDER BY ts`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []AdviceRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r AdviceRecord
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		if q.Weather != "" && r.Weather != q.Weather {
			continue
		}
		if q.Level != 0 && r.Level != q.Level {
			continue
		}
		res = append(res, r)
		if q.Limit > 0 && len(res) == q.Limit {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
