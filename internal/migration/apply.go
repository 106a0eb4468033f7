package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"schema-generator/internal/schema"
)

type DBConfig struct {
	URL          string
	MaxOpenConns int
}

// Open connects to PostgreSQL through the pgx driver and pings it
func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is required")
	}

	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// ApplyOptions controls how the DDL is executed
type ApplyOptions struct {
	// DryRun executes every statement and then rolls the transaction back
	DryRun bool
	// WithIndexes also creates the suggested foreign key indexes
	WithIndexes bool
}

// ApplyResult lists the statements that were executed
type ApplyResult struct {
	Statements []string `json:"statements"`
	Committed  bool     `json:"committed"`
}

// Applier executes generated DDL against a database
type Applier struct {
	db *sql.DB
}

func NewApplier(db *sql.DB) *Applier {
	return &Applier{db: db}
}

// Statements returns the statements Apply would execute, in dependency order
func Statements(s *schema.Schema, opts ApplyOptions) []string {
	statements := renderTables(OrderTables(s))
	if opts.WithIndexes {
		statements = append(statements, SuggestIndexes(s)...)
	}
	return statements
}

// Apply executes the schema's DDL in a single transaction. A failed
// statement rolls back everything executed before it.
func (a *Applier) Apply(ctx context.Context, s *schema.Schema, opts ApplyOptions) (*ApplyResult, error) {
	if !s.ParsedSuccessfully {
		return nil, fmt.Errorf("refusing to apply a schema that failed to parse")
	}
	if len(s.Tables) == 0 {
		return nil, fmt.Errorf("schema has no tables")
	}

	statements := Statements(s, opts)

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}

	result := &ApplyResult{Statements: statements}
	if opts.DryRun {
		if err := tx.Rollback(); err != nil {
			return nil, fmt.Errorf("rollback dry run: %w", err)
		}
		return result, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	result.Committed = true
	return result, nil
}
