package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/aide-analytics/aide-cli/internal/db"
	"github.com/aide-analytics/aide-cli/internal/dataset"
	"github.com/aide-analytics/aide-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests with
// pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS asks (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	question   TEXT NOT NULL,
	mode       TEXT NOT NULL,
	qid        TEXT,
	score      DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_asks_mode ON asks(mode);
CREATE INDEX IF NOT EXISTS idx_asks_qid ON asks(qid);
CREATE INDEX IF NOT EXISTS idx_asks_created_at ON asks(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveAsk(ctx context.Context, rec model.AskRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO asks (id, question, mode, qid, score, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.Question, string(rec.Mode), rec.QID, rec.Score, rec.CreatedAt,
	)
	return eris.Wrap(err, "postgres: insert ask")
}

func (s *PostgresStore) ListAsks(ctx context.Context, filter Filter) ([]model.AskRecord, error) {
	query := `SELECT id, question, mode, qid, score, created_at FROM asks WHERE 1=1`
	var args []any
	if filter.Mode != "" {
		args = append(args, string(filter.Mode))
		query += ` AND mode = $1`
	}
	if filter.QID != "" {
		args = append(args, filter.QID)
		query += ` AND qid = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list asks")
	}
	defer rows.Close()

	var out []model.AskRecord
	for rows.Next() {
		var (
			rec  model.AskRecord
			mode string
			qid  *string
		)
		if err := rows.Scan(&rec.ID, &rec.Question, &mode, &qid, &rec.Score, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan ask")
		}
		rec.Mode = model.Mode(mode)
		if qid != nil {
			rec.QID = *qid
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate asks")
}

// SnapshotFrame bulk-copies a normalized dataset frame into a table,
// one TEXT column per frame column, replacing previous contents.
func (s *PostgresStore) SnapshotFrame(ctx context.Context, table string, f *dataset.Frame) (int64, error) {
	cols := f.Columns()
	if len(cols) == 0 {
		return 0, eris.New("postgres: snapshot of frame with no columns")
	}
	if _, err := s.pool.Exec(ctx, `TRUNCATE TABLE `+table); err != nil {
		return 0, eris.Wrapf(err, "postgres: truncate %s", table)
	}
	rows := make([][]any, f.Len())
	for i := 0; i < f.Len(); i++ {
		row := make([]any, len(cols))
		for j, c := range cols {
			row[j] = f.Value(i, c)
		}
		rows[i] = row
	}
	return db.CopyRows(ctx, s.pool, table, cols, rows)
}
