package layout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository stores layouts by name.
type Repository interface {
	Save(ctx context.Context, s *Spec) error
	Get(ctx context.Context, name string) (*Spec, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, name string) error
}

// Summary describes a stored layout without its strips.
type Summary struct {
	Name      string    `json:"name"`
	Strips    int       `json:"strips"`
	Pixels    int       `json:"pixels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SQLiteRepository implements Repository on the layouts table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an already migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save validates s and inserts it, replacing any layout of the same name.
// The original creation time is kept on replace.
func (r *SQLiteRepository) Save(ctx context.Context, s *Spec) error {
	if err := s.Validate(); err != nil {
		return err
	}
	doc, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("encoding layout %s: %w", s.Name, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	const query = `INSERT INTO layouts (name, strip_count, pixel_count, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			strip_count = excluded.strip_count,
			pixel_count = excluded.pixel_count,
			document = excluded.document,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		s.Name, len(s.Strips), s.PixelCount(), string(doc), now, now)
	if err != nil {
		return fmt.Errorf("saving layout %s: %w", s.Name, err)
	}
	return nil
}

// Get loads one layout.
func (r *SQLiteRepository) Get(ctx context.Context, name string) (*Spec, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM layouts WHERE name = ?`, name).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("loading layout %s: %w", name, err)
	}

	s, err := Parse([]byte(doc))
	if err != nil {
		return nil, fmt.Errorf("decoding stored layout %s: %w", name, err)
	}
	return s, nil
}

// List returns every stored layout ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, strip_count, pixel_count, created_at, updated_at
		FROM layouts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying layouts: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var createdAt, updatedAt string
		if err := rows.Scan(&s.Name, &s.Strips, &s.Pixels, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning layout row: %w", err)
		}
		s.CreatedAt = parseTime(createdAt)
		s.UpdatedAt = parseTime(updatedAt)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating layout rows: %w", err)
	}
	return out, nil
}

// Delete removes a layout. Deleting a missing layout returns ErrNotFound.
func (r *SQLiteRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting layout %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting layout %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s) //nolint:errcheck // Written by Save in this format
	return t
}
