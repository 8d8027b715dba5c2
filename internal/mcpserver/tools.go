package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xeitosa/socialai/internal/app"
	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/copywriter"
	"github.com/xeitosa/socialai/internal/ingest"
	"github.com/xeitosa/socialai/internal/media"
	"github.com/xeitosa/socialai/internal/observability"
)

// ToolDefs returns the MCP tool definitions.
func ToolDefs() []mcp.Tool {
	return []mcp.Tool{
		{
			Name:        "generate_copy",
			Description: "Write a social media post in an artist's voice. Optionally attach a video or image file that is on the server's disk.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"artist_id": map[string]any{
						"type":        "string",
						"description": "Persona id, as returned by list_artists",
					},
					"instructions": map[string]any{
						"type":        "string",
						"description": "What the post should be about",
					},
					"media_path": map[string]any{
						"type":        "string",
						"description": "Path to a .mp4, .mov, .jpg, .jpeg, or .png file to analyze with the post",
					},
				},
				Required: []string{"artist_id"},
			},
		},
		{
			Name:        "list_artists",
			Description: "List the configured artist personas with their ids, names, and languages.",
			InputSchema: mcp.ToolInputSchema{
				Type:       "object",
				Properties: map[string]any{},
			},
		},
		{
			Name:        "get_artist",
			Description: "Get the full persona for an artist: tone, audience, keywords, and style examples.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"artist_id": map[string]any{
						"type":        "string",
						"description": "Persona id",
					},
				},
				Required: []string{"artist_id"},
			},
		},
		{
			Name:        "analyze_style",
			Description: "Derive a persona draft from an artist's sample posts. Pass the posts as text, or as URLs, .pdf, or text file paths. Set save to store the draft as a new persona.",
			InputSchema: mcp.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"name": map[string]any{
						"type":        "string",
						"description": "Artist name",
					},
					"samples": map[string]any{
						"type":        "string",
						"description": "Sample posts, pasted",
					},
					"sources": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "URLs or file paths to read sample posts from",
					},
					"language": map[string]any{
						"type":        "string",
						"description": "Galego, Español, or English",
						"default":     string(artist.DefaultLanguage),
					},
					"save": map[string]any{
						"type":        "boolean",
						"description": "Store the draft as a new persona",
						"default":     false,
					},
					"artist_id": map[string]any{
						"type":        "string",
						"description": "Id for the saved persona (default: name in lowercase with underscores)",
					},
				},
				Required: []string{"name"},
			},
		},
	}
}

// Handlers contains tool handler implementations.
type Handlers struct {
	app *app.App
	log *slog.Logger
}

// NewHandlers creates tool handlers over the shared services.
func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a, log: a.Log}
}

// HandleGenerateCopy writes copy for one persona.
func (h *Handlers) HandleGenerateCopy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "tool.generate_copy")
	defer span.End()

	id := mcp.ParseString(req, "artist_id", "")
	instructions := mcp.ParseString(req, "instructions", "")
	mediaPath := mcp.ParseString(req, "media_path", "")
	span.SetAttributes(
		attribute.String("artist.id", id),
		attribute.Bool("media", mediaPath != ""),
	)

	if h.app.Writer == nil {
		span.SetStatus(codes.Error, "provider unavailable")
		return mcp.NewToolResultError(h.app.ProviderErr.Error()), nil
	}
	if id == "" {
		span.SetStatus(codes.Error, "missing artist_id")
		return mcp.NewToolResultError("artist_id is required"), nil
	}

	p, err := h.app.Store.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get artist failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get artist: %v", err)), nil
	}

	var asset *media.Asset
	if mediaPath != "" {
		asset, err = media.StageFile(mediaPath)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "stage media failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	res, err := h.app.Writer.Generate(ctx, copywriter.Request{
		Persona:      *p,
		Instructions: instructions,
		Media:        asset,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		if errors.Is(err, copywriter.ErrEmptyRequest) {
			return mcp.NewToolResultError("instructions or media_path is required"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to generate copy: %v", err)), nil
	}

	h.log.InfoContext(ctx, "Copy generated via MCP", "artist", id, "chars", len(res.Text))
	result := map[string]any{
		"artist_id": p.ID,
		"text":      res.Text,
		"model":     res.Model,
	}
	if res.HistoryID != "" {
		result["history_id"] = res.HistoryID
	}
	return jsonResult(result)
}

// HandleListArtists returns a summary of every persona.
func (h *Handlers) HandleListArtists(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "tool.list_artists")
	defer span.End()

	personas, err := h.app.Store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list artists: %v", err)), nil
	}
	span.SetAttributes(attribute.Int("result_count", len(personas)))

	artists := make([]map[string]any, 0, len(personas))
	for _, p := range personas {
		a := map[string]any{
			"artist_id": p.ID,
			"name":      p.Name,
			"language":  string(p.LanguageOrDefault()),
		}
		if p.TargetAudience != "" {
			a["target_audience"] = p.TargetAudience
		}
		artists = append(artists, a)
	}

	return jsonResult(map[string]any{
		"artists": artists,
		"count":   len(artists),
	})
}

// HandleGetArtist returns one persona in full.
func (h *Handlers) HandleGetArtist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "tool.get_artist")
	defer span.End()

	id := mcp.ParseString(req, "artist_id", "")
	if id == "" {
		span.SetStatus(codes.Error, "missing artist_id")
		return mcp.NewToolResultError("artist_id is required"), nil
	}
	span.SetAttributes(attribute.String("artist.id", id))

	p, err := h.app.Store.Get(ctx, id)
	if errors.Is(err, artist.ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return mcp.NewToolResultError(fmt.Sprintf("artist %s not found", id)), nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get artist failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to get artist: %v", err)), nil
	}
	return jsonResult(p)
}

// HandleAnalyzeStyle derives a persona draft and optionally saves it.
func (h *Handlers) HandleAnalyzeStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, span := observability.Tracer().Start(ctx, "tool.analyze_style")
	defer span.End()

	name := mcp.ParseString(req, "name", "")
	samples := mcp.ParseString(req, "samples", "")
	sources := parseStringList(req, "sources")
	save := mcp.ParseBoolean(req, "save", false)
	span.SetAttributes(
		attribute.String("artist.name", name),
		attribute.Int("sources", len(sources)),
		attribute.Bool("save", save),
	)

	if h.app.Extractor == nil {
		span.SetStatus(codes.Error, "provider unavailable")
		return mcp.NewToolResultError(h.app.ProviderErr.Error()), nil
	}
	if name == "" {
		span.SetStatus(codes.Error, "missing name")
		return mcp.NewToolResultError("name is required"), nil
	}
	lang, err := artist.ParseLanguage(mcp.ParseString(req, "language", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(sources) > 0 {
		text, _, err := ingest.Samples(ctx, sources...)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "ingest failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to read sources: %v", err)), nil
		}
		if samples != "" {
			samples += "\n\n"
		}
		samples += text
	}

	draft, err := h.app.Extractor.Extract(ctx, name, samples, lang)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		return mcp.NewToolResultError(fmt.Sprintf("failed to analyze style: %v", err)), nil
	}

	id := mcp.ParseString(req, "artist_id", artist.DefaultID(name))
	p := draft.Persona(id, name, lang)
	result := map[string]any{
		"persona": p,
		"saved":   false,
	}
	if save {
		res, err := h.app.Store.Create(ctx, p)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "save failed")
			return mcp.NewToolResultError(fmt.Sprintf("failed to save artist: %v", err)), nil
		}
		result["saved"] = true
		if res.HasWarnings() {
			warnings := make([]string, 0, len(res.Warnings))
			for _, w := range res.Warnings {
				warnings = append(warnings, w.Error())
			}
			result["warnings"] = warnings
		}
		h.log.InfoContext(ctx, "Persona saved via MCP", "artist", p.ID)
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func parseStringList(req mcp.CallToolRequest, key string) []string {
	args := req.GetArguments()
	if args == nil {
		return nil
	}
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}
