package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/Vallit0/asistencia-senoriales/internal/catalog"
)

// identitySchema is applied by NewIdentityRepository rather than by the
// embedded migrations, so event-only PostgreSQL databases do not need the
// vector extension.
var identitySchema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS identities (
		position   INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		embedding  vector NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS identities_name_idx ON identities(name)`,
}

// IdentityRepository is a catalog.Store backed by PostgreSQL with pgvector.
// Catalog order is kept in the position column.
type IdentityRepository struct {
	db *DB
}

// NewIdentityRepository creates the identities table if needed.
func NewIdentityRepository(ctx context.Context, db *DB) (*IdentityRepository, error) {
	if db.dialect != Postgres {
		return nil, fmt.Errorf("identity catalog requires PostgreSQL with pgvector, got %s", db.dialect)
	}
	for _, stmt := range identitySchema {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create identity schema: %w", err)
		}
	}
	return &IdentityRepository{db: db}, nil
}

// Load reads the whole catalog in enrollment order.
func (r *IdentityRepository) Load(ctx context.Context) (*catalog.Catalog, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT name, embedding FROM identities ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var identities []catalog.Identity
	for rows.Next() {
		var (
			name string
			vec  pgvector.Vector
		)
		if err := rows.Scan(&name, &vec); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, catalog.Identity{Name: name, Embedding: vec.Slice()})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}

	c, err := catalog.New(identities)
	if err != nil {
		return nil, fmt.Errorf("%w: identities table: %v", catalog.ErrCorruptCatalog, err)
	}
	return c, nil
}

// Save replaces every stored identity in one transaction.
func (r *IdentityRepository) Save(ctx context.Context, c *catalog.Catalog) error {
	if c == nil {
		return errors.New("nil catalog")
	}

	tx, err := r.db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM identities`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear identities: %w", err)
	}

	for i, id := range c.Identities() {
		vec := pgvector.NewVector(id.Embedding)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO identities (position, name, embedding) VALUES ($1, $2, $3)`,
			i, id.Name, vec); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert identity %q: %w", id.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit identities: %w", err)
	}
	return nil
}

// Neighbor is one row returned by Nearest.
type Neighbor struct {
	Position   int     `json:"position"`
	Name       string  `json:"name"`
	Similarity float64 `json:"similarity"`
}

// Nearest returns the k stored identities closest to embedding by cosine
// distance, most similar first.
func (r *IdentityRepository) Nearest(ctx context.Context, embedding []float32, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	rows, err := r.db.db.QueryContext(ctx, `
		SELECT position, name, 1 - (embedding <=> $1) AS similarity
		FROM identities
		WHERE vector_dims(embedding) = $2
		ORDER BY embedding <=> $1, position
		LIMIT $3
	`, pgvector.NewVector(embedding), len(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("query nearest identities: %w", err)
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		if err := rows.Scan(&n.Position, &n.Name, &n.Similarity); err != nil {
			return nil, fmt.Errorf("scan neighbor: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate neighbors: %w", err)
	}
	return out, nil
}
