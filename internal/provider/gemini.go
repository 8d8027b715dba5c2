package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
)

// Gemini generates with the Gemini API and stores media in its Files API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini client for model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GOOGLE_API_KEY is not set", ErrMissingKey)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Model() string { return g.model }

func (g *Gemini) Generate(ctx context.Context, parts []Part, opts Options) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(toGenaiParts(parts), genai.RoleUser),
	}

	var cfg *genai.GenerateContentConfig
	if opts.JSON {
		cfg = &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("Gemini generate: %w", err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("Gemini generate: %w", ErrEmptyResponse)
	}
	return text, nil
}

func (g *Gemini) Upload(ctx context.Context, path, mimeType string) (*File, error) {
	f, err := g.client.Files.UploadFromPath(ctx, path, &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: filepath.Base(path),
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", filepath.Base(path), err)
	}
	return fromGenaiFile(f), nil
}

func (g *Gemini) Status(ctx context.Context, name string) (FileState, error) {
	f, err := g.client.Files.Get(ctx, name, nil)
	if err != nil {
		return "", fmt.Errorf("get file %s: %w", name, err)
	}
	return fileState(f.State), nil
}

func toGenaiParts(parts []Part) []*genai.Part {
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.File != nil {
			out = append(out, genai.NewPartFromURI(p.File.URI, p.File.MIMEType))
			continue
		}
		out = append(out, genai.NewPartFromText(p.Text))
	}
	return out
}

func fromGenaiFile(f *genai.File) *File {
	return &File{
		Name:     f.Name,
		URI:      f.URI,
		MIMEType: f.MIMEType,
		State:    fileState(f.State),
	}
}

// fileState maps the remote state onto ours. Anything not processing or
// active counts as failed.
func fileState(s genai.FileState) FileState {
	switch s {
	case genai.FileStateProcessing:
		return FileStateProcessing
	case genai.FileStateActive:
		return FileStateActive
	default:
		return FileStateFailed
	}
}
