package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS generations (
    id TEXT PRIMARY KEY,
    artist_id TEXT NOT NULL,
    instructions TEXT NOT NULL,
    media_name TEXT,
    media_mime TEXT,
    model TEXT,
    text TEXT,
    error TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS generations_created_at ON generations (created_at DESC);
`

// SQLite stores history in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) Record(ctx context.Context, r *Record) error {
	if err := prepare(r); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO generations (id, artist_id, instructions, media_name, media_mime, model, text, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.ArtistID, r.Instructions, r.MediaName, r.MediaMIME, r.Model, r.Text, r.Error,
		r.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, artist_id, instructions, media_name, media_mime, model, text, error, created_at
		 FROM generations ORDER BY created_at DESC, id DESC LIMIT ?`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                                     Record
			mediaName, mediaMIME, model, text, ee sql.NullString
			created                               string
		)
		if err := rows.Scan(&r.ID, &r.ArtistID, &r.Instructions, &mediaName, &mediaMIME, &model, &text, &ee, &created); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		r.MediaName = mediaName.String
		r.MediaMIME = mediaMIME.String
		r.Model = model.String
		r.Text = text.String
		r.Error = ee.String
		if r.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", created, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return out, nil
}
