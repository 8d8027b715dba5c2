package artist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/xeitosa/socialai/internal/observability"
)

// hookTimeout bounds each post-save hook. Hooks run detached from the
// caller's cancellation.
const hookTimeout = 60 * time.Second

// SaveHook is notified with the serialized document after every successful
// save. Hook failures are reported back as warnings and never undo the save.
type SaveHook interface {
	Name() string
	Notify(ctx context.Context, doc []byte) error
}

// SaveResult carries the non-fatal outcome of a save.
type SaveResult struct {
	Warnings []*HookError
}

// HasWarnings reports whether any post-save hook failed.
func (r *SaveResult) HasWarnings() bool {
	return r != nil && len(r.Warnings) > 0
}

// Store loads and persists the persona document through a Backend.
type Store struct {
	backend Backend
	log     *slog.Logger

	mu    sync.Mutex
	hooks []SaveHook
}

// NewStore creates a store over the given backend.
func NewStore(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{backend: backend, log: logger}
}

// OnSave registers a hook that runs after every successful save.
func (s *Store) OnSave(h SaveHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Location describes where the document is stored.
func (s *Store) Location() string {
	return s.backend.Location()
}

// Load returns the stored personas. A missing document yields an empty list.
// A malformed document yields an empty list together with a *DocumentError
// for the caller to show.
func (s *Store) Load(ctx context.Context) ([]Persona, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNoDocument) {
		return []Persona{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return []Persona{}, &DocumentError{Location: s.backend.Location(), Err: err}
	}
	if doc.Artists == nil {
		doc.Artists = []Persona{}
	}
	return doc.Artists, nil
}

// Get returns the persona with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Persona, error) {
	personas, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(personas, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	p := personas[i]
	return &p, nil
}

// Save overwrites the document with personas and then runs the save hooks.
func (s *Store) Save(ctx context.Context, personas []Persona) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, personas)
}

// Create appends a new persona.
func (s *Store) Create(ctx context.Context, p Persona) (*SaveResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	personas, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if indexOf(personas, p.ID) >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
	}
	return s.saveLocked(ctx, append(personas, p))
}

// Update replaces the persona stored under originalID. The id itself may
// change as long as the new one is not taken.
func (s *Store) Update(ctx context.Context, originalID string, p Persona) (*SaveResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.normalized()

	s.mu.Lock()
	defer s.mu.Unlock()

	personas, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(personas, originalID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, originalID)
	}
	if j := indexOf(personas, p.ID); j >= 0 && j != i {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
	}
	personas[i] = p
	return s.saveLocked(ctx, personas)
}

// Delete removes the persona with the given id.
func (s *Store) Delete(ctx context.Context, id string) (*SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	personas, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(personas, id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s.saveLocked(ctx, append(personas[:i], personas[i+1:]...))
}

// Export returns the serialized document for download.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	personas, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Marshal(personas)
}

func (s *Store) saveLocked(ctx context.Context, personas []Persona) (*SaveResult, error) {
	if err := checkUnique(personas); err != nil {
		return nil, err
	}

	data, err := Marshal(personas)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return nil, fmt.Errorf("save personas: %w", err)
	}
	s.log.InfoContext(ctx, "Persona document saved", "location", s.backend.Location(), "artists", len(personas))

	result := &SaveResult{}
	for _, h := range s.hooks {
		if err := s.notify(ctx, h, data); err != nil {
			s.log.WarnContext(ctx, "Post-save hook failed", "hook", h.Name(), "error", err)
			result.Warnings = append(result.Warnings, &HookError{Hook: h.Name(), Err: err})
		}
	}
	return result, nil
}

func (s *Store) notify(ctx context.Context, h SaveHook, data []byte) error {
	hookCtx, cancel := context.WithTimeout(observability.DetachTraceContext(ctx), hookTimeout)
	defer cancel()
	return h.Notify(hookCtx, data)
}

// Marshal serializes personas as the pretty-printed document. Non-ASCII
// text is written as-is.
func Marshal(personas []Persona) ([]byte, error) {
	doc := Document{Artists: make([]Persona, 0, len(personas))}
	for _, p := range personas {
		doc.Artists = append(doc.Artists, p.normalized())
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("marshal personas: %w", err)
	}
	return buf.Bytes(), nil
}

func checkUnique(personas []Persona) error {
	seen := make(map[string]bool, len(personas))
	for _, p := range personas {
		id := strings.TrimSpace(p.ID)
		if seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = true
	}
	return nil
}

func indexOf(personas []Persona, id string) int {
	id = strings.TrimSpace(id)
	for i, p := range personas {
		if p.ID == id {
			return i
		}
	}
	return -1
}
