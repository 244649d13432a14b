package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/travel-gateway/internal/travel"
)

// Querier abstracts the subset of pgxpool.Pool used by Directory.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Directory is a travel.DestinationDirectory backed by the
// hotel_destinations table.
type Directory struct {
	q Querier
}

var _ travel.DestinationDirectory = (*Directory)(nil)

// NewDirectory constructs a Directory backed by the given pool.
func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{q: pool}
}

// NewDirectoryWithQuerier constructs a Directory with a custom Querier (for tests).
func NewDirectoryWithQuerier(q Querier) *Directory {
	return &Directory{q: q}
}

// DestinationID returns the provider id stored for name. Matching is exact
// and case-sensitive; ok is false when no row matches.
func (d *Directory) DestinationID(ctx context.Context, name string) (string, bool, error) {
	const q = `SELECT dest_id FROM hotel_destinations WHERE name = $1`

	var id string
	if err := d.q.QueryRow(ctx, q, name).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("querying destination %s: %w", name, err)
	}
	return id, true, nil
}

// Destinations lists every known destination ordered by name.
func (d *Directory) Destinations(ctx context.Context) ([]travel.DestinationEntry, error) {
	const q = `SELECT name, dest_id FROM hotel_destinations ORDER BY name`

	rows, err := d.q.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("querying destinations: %w", err)
	}
	defer rows.Close()

	var out []travel.DestinationEntry
	for rows.Next() {
		var e travel.DestinationEntry
		if err := rows.Scan(&e.Name, &e.ID); err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}
	return out, nil
}

// Seed inserts every entry of dir that is not already present. Existing
// rows keep their ids.
func (d *Directory) Seed(ctx context.Context, dir travel.StaticDirectory) error {
	const q = `
		INSERT INTO hotel_destinations (name, dest_id)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`

	for name, id := range dir {
		if _, err := d.q.Exec(ctx, q, name, id); err != nil {
			return fmt.Errorf("seeding destination %s: %w", name, err)
		}
	}
	return nil
}
