package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mcoot/blazeboard/internal/model"
	"github.com/mcoot/blazeboard/internal/storage"
	"github.com/mcoot/blazeboard/internal/storage/document"
)

// matchRowID is the primary key of the single match row
const matchRowID = 1

// Config holds PostgreSQL connection settings
type Config struct {
	// DSN is a lib/pq connection string or URL
	DSN string
	// Table holds the match document row
	Table string
	// Sequence issues external registration IDs
	Sequence string

	MaxOpenConns int
}

// DefaultConfig returns sensible defaults for PostgreSQL storage
func DefaultConfig() Config {
	return Config{
		DSN:          "postgres://localhost:5432/blaze?sslmode=disable",
		Table:        "match_state",
		Sequence:     "external_player_seq",
		MaxOpenConns: 5,
	}
}

// Storage keeps the match document in a single JSONB row
type Storage struct {
	db  *sql.DB
	cfg Config

	table    string
	sequence string
}

// New connects to PostgreSQL and creates the schema if needed
func New(cfg Config) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := NewWithDB(db, cfg)
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithDB creates a storage around an existing connection pool
func NewWithDB(db *sql.DB, cfg Config) *Storage {
	defaults := DefaultConfig()
	if cfg.Table == "" {
		cfg.Table = defaults.Table
	}
	if cfg.Sequence == "" {
		cfg.Sequence = defaults.Sequence
	}
	return &Storage{
		db:       db,
		cfg:      cfg,
		table:    pq.QuoteIdentifier(cfg.Table),
		sequence: pq.QuoteLiteral(pq.QuoteIdentifier(cfg.Sequence)),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// EnsureSchema creates the match table and counter sequence
func (s *Storage) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id SMALLINT PRIMARY KEY,
			document JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, s.table),
		fmt.Sprintf(`CREATE SEQUENCE IF NOT EXISTS %s`, pq.QuoteIdentifier(s.cfg.Sequence)),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (s *Storage) LoadMatch(ctx context.Context) (*model.Match, error) {
	var data []byte
	query := fmt.Sprintf(`SELECT document FROM %s WHERE id = $1`, s.table)
	err := s.db.QueryRowContext(ctx, query, matchRowID).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewMatch(), nil
		}
		return nil, describe(err)
	}
	return document.Decode(data)
}

func (s *Storage) SaveMatch(ctx context.Context, match *model.Match) error {
	data, err := document.Encode(match, time.Now().UTC())
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, document, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`, s.table)
	// lib/pq sends []byte as bytea, which does not cast to jsonb
	if _, err := s.db.ExecContext(ctx, query, matchRowID, string(data)); err != nil {
		return describe(err)
	}
	return nil
}

func (s *Storage) NextExternalID(ctx context.Context) (int64, error) {
	var id int64
	query := fmt.Sprintf(`SELECT nextval(%s)`, s.sequence)
	if err := s.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, describe(err)
	}
	return id, nil
}

// Close closes the connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// describe adds the SQLSTATE code to driver errors
func describe(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("postgres %s (%s): %w", pqErr.Code.Name(), pqErr.Code, err)
	}
	return err
}
