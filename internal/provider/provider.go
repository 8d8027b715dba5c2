// Package provider wraps the generative model APIs behind a small
// multi-part prompt interface and a remote file store interface.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMediaUnsupported is returned by text-only providers when a prompt
	// carries a file part.
	ErrMediaUnsupported = errors.New("provider does not accept media")
	// ErrMissingKey is returned when a provider credential is not configured.
	ErrMissingKey = errors.New("provider credential not configured")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")
)

// FileState is the processing status of an uploaded file.
type FileState string

const (
	FileStateProcessing FileState = "processing"
	FileStateActive     FileState = "active"
	FileStateFailed     FileState = "failed"
)

// File is a reference to media held in the provider's file store.
type File struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// Part is one element of a prompt: either text or a file reference.
type Part struct {
	Text string
	File *File
}

// TextPart returns a text prompt part.
func TextPart(s string) Part { return Part{Text: s} }

// FilePart returns a prompt part referencing an uploaded file.
func FilePart(f *File) Part { return Part{File: f} }

// Options tunes a single generation call.
type Options struct {
	// JSON asks the model to answer with a JSON document only.
	JSON bool
}

// Generator performs one generation call over an ordered list of parts.
type Generator interface {
	Generate(ctx context.Context, parts []Part, opts Options) (string, error)
	Model() string
}

// FileService uploads media and reports its processing state.
type FileService interface {
	Upload(ctx context.Context, path, mimeType string) (*File, error)
	Status(ctx context.Context, name string) (FileState, error)
}

// Keys carries the credentials New may need.
type Keys struct {
	Google    string
	Anthropic string
	AWSRegion string
}

// Family identifies which API serves a model.
type Family string

const (
	FamilyGemini Family = "gemini"
	FamilyClaude Family = "claude"
	FamilyNova   Family = "nova"
)

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-flash"

var modelAliases = map[string]struct {
	family Family
	id     string
}{
	"gemini-flash": {FamilyGemini, "gemini-2.0-flash"},
	"gemini-pro":   {FamilyGemini, "gemini-2.5-pro"},
	"haiku":        {FamilyClaude, "claude-haiku-4-5-20251001"},
	"sonnet":       {FamilyClaude, "claude-sonnet-4-5-20250929"},
	"nova-lite":    {FamilyNova, "us.amazon.nova-2-lite-v1:0"},
}

// ResolveModel maps a short alias or a full model id onto its API family
// and the id sent on the wire.
func ResolveModel(name string) (Family, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultModel
	}
	if m, ok := modelAliases[name]; ok {
		return m.family, m.id, nil
	}
	switch {
	case strings.HasPrefix(name, "gemini-"):
		return FamilyGemini, name, nil
	case strings.HasPrefix(name, "claude-"):
		return FamilyClaude, name, nil
	case strings.Contains(name, "amazon.nova"):
		return FamilyNova, name, nil
	}
	return "", "", fmt.Errorf("unknown model %q (use gemini-flash, gemini-pro, haiku, sonnet, nova-lite, or a full model id)", name)
}

// New constructs the generator for model. The Gemini generator also
// implements FileService; the others are text-only.
func New(ctx context.Context, model string, keys Keys) (Generator, error) {
	family, id, err := ResolveModel(model)
	if err != nil {
		return nil, err
	}
	switch family {
	case FamilyClaude:
		return NewClaude(keys.Anthropic, id)
	case FamilyNova:
		return NewNova(ctx, id, keys.AWSRegion)
	default:
		return NewGemini(ctx, keys.Google, id)
	}
}

// textOnly flattens a prompt for providers that cannot take file parts.
func textOnly(parts []Part) (string, error) {
	var b strings.Builder
	for i, p := range parts {
		if p.File != nil {
			return "", fmt.Errorf("%w: %s", ErrMediaUnsupported, p.File.MIMEType)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return b.String(), nil
}

const jsonInstruction = "Respond with a single valid JSON object and nothing else."
