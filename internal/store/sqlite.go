package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/aide-analytics/aide-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS asks (
	id         TEXT PRIMARY KEY,
	question   TEXT NOT NULL,
	mode       TEXT NOT NULL,
	qid        TEXT,
	score      REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_asks_mode ON asks(mode);
CREATE INDEX IF NOT EXISTS idx_asks_qid ON asks(qid);
CREATE INDEX IF NOT EXISTS idx_asks_created_at ON asks(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveAsk(ctx context.Context, rec model.AskRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO asks (id, question, mode, qid, score, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Question, string(rec.Mode), rec.QID, rec.Score, rec.CreatedAt,
	)
	return eris.Wrap(err, "sqlite: insert ask")
}

func (s *SQLiteStore) ListAsks(ctx context.Context, filter Filter) ([]model.AskRecord, error) {
	query := `SELECT id, question, mode, qid, score, created_at FROM asks WHERE 1=1`
	var args []any
	if filter.Mode != "" {
		query += ` AND mode = ?`
		args = append(args, string(filter.Mode))
	}
	if filter.QID != "" {
		query += ` AND qid = ?`
		args = append(args, filter.QID)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list asks")
	}
	defer rows.Close()

	var out []model.AskRecord
	for rows.Next() {
		var (
			rec  model.AskRecord
			mode string
			qid  sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Question, &mode, &qid, &rec.Score, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan ask")
		}
		rec.Mode = model.Mode(mode)
		rec.QID = qid.String
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate asks")
}
