package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeitosa/socialai/internal/app"
	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/config"
	"github.com/xeitosa/socialai/internal/history"
	"github.com/xeitosa/socialai/internal/provider"
)

type fakeGenerator struct {
	reply string
	calls int
}

func (f *fakeGenerator) Model() string { return "fake-model" }

func (f *fakeGenerator) Generate(ctx context.Context, parts []provider.Part, opts provider.Options) (string, error) {
	f.calls++
	return f.reply, nil
}

func newTestHandlers(t *testing.T, gen provider.Generator) *Handlers {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := artist.NewStore(artist.NewFileBackend(filepath.Join(t.TempDir(), "artist-config.json")), logger)
	_, err := store.Save(context.Background(), []artist.Persona{{
		ID:             "sheila",
		Name:           "Sheila Patricia",
		Language:       artist.LanguageGalician,
		TargetAudience: "Mocidade galega",
		BasePrompt:     "Ton próximo.",
	}})
	require.NoError(t, err)

	a := &app.App{Config: config.Default(), Log: logger, Store: store, History: history.Nop{}}
	if gen != nil {
		a.UseGenerator(gen)
	} else {
		a.ProviderErr = app.ErrProviderUnavailable
	}
	return NewHandlers(a)
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultJSON(t *testing.T, res *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.False(t, res.IsError, "unexpected tool error: %v", res.Content)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func TestToolDefs(t *testing.T) {
	var names []string
	for _, tool := range ToolDefs() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"generate_copy", "list_artists", "get_artist", "analyze_style"}, names)
}

func TestGenerateCopy(t *testing.T) {
	gen := &fakeGenerator{reply: "Vémonos!"}
	h := newTestHandlers(t, gen)

	res, err := h.HandleGenerateCopy(context.Background(), callRequest(map[string]any{
		"artist_id":    "sheila",
		"instructions": "Anuncia o concerto",
	}))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.Equal(t, "Vémonos!", out["text"])
	assert.Equal(t, "fake-model", out["model"])
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateCopy_Errors(t *testing.T) {
	gen := &fakeGenerator{reply: "x"}
	h := newTestHandlers(t, gen)

	res, err := h.HandleGenerateCopy(context.Background(), callRequest(map[string]any{"artist_id": "ghost", "instructions": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = h.HandleGenerateCopy(context.Background(), callRequest(map[string]any{"artist_id": "sheila"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	img := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))
	res, err = h.HandleGenerateCopy(context.Background(), callRequest(map[string]any{"artist_id": "sheila", "media_path": img}))
	require.NoError(t, err)
	assert.True(t, res.IsError, "text-only generator cannot read media")
	assert.Zero(t, gen.calls)
}

func TestGenerateCopy_NoProvider(t *testing.T) {
	h := newTestHandlers(t, nil)
	res, err := h.HandleGenerateCopy(context.Background(), callRequest(map[string]any{"artist_id": "sheila", "instructions": "x"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestListAndGetArtist(t *testing.T) {
	h := newTestHandlers(t, nil)

	res, err := h.HandleListArtists(context.Background(), callRequest(nil))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.EqualValues(t, 1, out["count"])

	res, err = h.HandleGetArtist(context.Background(), callRequest(map[string]any{"artist_id": "sheila"}))
	require.NoError(t, err)
	out = resultJSON(t, res)
	assert.Equal(t, "Sheila Patricia", out["name"])
	assert.Equal(t, "Ton próximo.", out["base_prompt"])

	res, err = h.HandleGetArtist(context.Background(), callRequest(map[string]any{"artist_id": "ghost"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAnalyzeStyle_Save(t *testing.T) {
	gen := &fakeGenerator{reply: `{"base_prompt":"Ton irónico.","keywords":["indie"],"target_audience":"Xente nova","few_shot_examples":["Ola!"]}`}
	h := newTestHandlers(t, gen)

	samples := filepath.Join(t.TempDir(), "posts.txt")
	require.NoError(t, os.WriteFile(samples, []byte("post 1\npost 2"), 0o644))

	res, err := h.HandleAnalyzeStyle(context.Background(), callRequest(map[string]any{
		"name":     "Grupo Novo",
		"sources":  []any{samples},
		"language": "english",
		"save":     true,
	}))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.Equal(t, true, out["saved"])

	p, err := h.app.Store.Get(context.Background(), "grupo_novo")
	require.NoError(t, err)
	assert.Equal(t, artist.LanguageEnglish, p.Language)
	assert.Equal(t, []string{"indie"}, p.Keywords)
}

func TestAnalyzeStyle_DraftOnly(t *testing.T) {
	gen := &fakeGenerator{reply: `{"base_prompt":"B","keywords":[],"target_audience":"A","few_shot_examples":[]}`}
	h := newTestHandlers(t, gen)

	res, err := h.HandleAnalyzeStyle(context.Background(), callRequest(map[string]any{
		"name":    "Grupo Novo",
		"samples": "post 1",
	}))
	require.NoError(t, err)
	out := resultJSON(t, res)
	assert.Equal(t, false, out["saved"])

	personas, err := h.app.Store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, personas, 1)
}

func TestParseStringList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseStringList(callRequest(map[string]any{"k": []any{"a", "", "b"}}), "k"))
	assert.Equal(t, []string{"a"}, parseStringList(callRequest(map[string]any{"k": "a"}), "k"))
	assert.Nil(t, parseStringList(callRequest(nil), "k"))
}
