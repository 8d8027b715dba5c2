// Package history keeps a log of generation attempts for the history
// screen.
package history

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultLimit is the number of records Recent returns when limit <= 0.
const DefaultLimit = 50

// timeLayout sorts lexically in time order, unlike RFC3339Nano which trims
// trailing zeros.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is one generation attempt. Error is set when the attempt failed.
type Record struct {
	ID           string    `json:"id"`
	ArtistID     string    `json:"artist_id"`
	Instructions string    `json:"instructions"`
	MediaName    string    `json:"media_name,omitempty"`
	MediaMIME    string    `json:"media_mime,omitempty"`
	Model        string    `json:"model"`
	Text         string    `json:"text,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Failed reports whether the attempt ended in an error.
func (r Record) Failed() bool { return r.Error != "" }

// Recorder appends records and lists the newest ones.
type Recorder interface {
	Record(ctx context.Context, r *Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// NewID generates a ULID for a new record.
func NewID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}

// prepare fills in the id and timestamp if the caller left them empty.
func prepare(r *Record) error {
	if r.ID == "" {
		id, err := NewID()
		if err != nil {
			return err
		}
		r.ID = id
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// Nop discards records. It is used when no history backend is configured.
type Nop struct{}

func (Nop) Record(context.Context, *Record) error { return nil }
func (Nop) Recent(context.Context, int) ([]Record, error) { return nil, nil }
