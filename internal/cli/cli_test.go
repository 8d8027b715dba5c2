package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/history"
)

func testPersonas() []artist.Persona {
	return []artist.Persona{
		{ID: "sheila", Name: "Sheila Patricia", TargetAudience: "Mocidade galega"},
		{ID: "outro", Name: "Outro Artista", Language: artist.LanguageEnglish},
	}
}

func press(m pickerModel, keys ...tea.KeyMsg) pickerModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(pickerModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPicker_ChooseAndWrite(t *testing.T) {
	m := newPickerModel(testPersonas(), "", "")
	m = press(m,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
		runes("Anuncia"),
		tea.KeyMsg{Type: tea.KeySpace},
		runes("o discox"),
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyEnter},
	)

	assert.True(t, m.confirmed)
	assert.Equal(t, pickerChoice{ArtistID: "outro", Instructions: "Anuncia o disco"}, m.choice())
}

func TestPicker_RequiresInstructions(t *testing.T) {
	m := newPickerModel(testPersonas(), "outro", "")
	assert.Equal(t, 1, m.cursor)

	m = press(m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.confirmed)
	assert.Error(t, m.err)
	assert.Contains(t, m.View(), "instructions are required")

	m = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, statePickArtist, m.state)
}

func TestPicker_Cancel(t *testing.T) {
	m := press(newPickerModel(testPersonas(), "", ""), runes("q"))
	assert.True(t, m.cancelled)

	m = press(newPickerModel(testPersonas(), "", ""), tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, m.cancelled)
}

func TestPicker_ViewListsArtists(t *testing.T) {
	view := newPickerModel(testPersonas(), "", "").View()
	assert.Contains(t, view, "Sheila Patricia (Galego)")
	assert.Contains(t, view, "Mocidade galega")
	assert.Contains(t, view, "Outro Artista (English)")
}

func TestPreview(t *testing.T) {
	long := history.Record{Text: "Liña un\nliña dous " + string(bytes.Repeat([]byte("a"), 80))}
	p := preview(long)
	assert.Len(t, []rune(p), 60)
	assert.Contains(t, p, "Liña un liña dous")

	assert.Equal(t, "quota", preview(history.Record{Error: "quota"}))
	assert.Equal(t, "failed", status(history.Record{Error: "quota"}))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestArtistsCommands(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "artist-config.json")
	t.Setenv("ARTIST_CONFIG", doc)
	t.Setenv("HISTORY_DB", filepath.Join(dir, "history.db"))
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SMTP_SERVER", "")
	t.Setenv("SMTP_PASSWORD", "")

	out, errOut, err := execute(t, "artists", "create", "--name", "Nova Banda", "--language", "español", "--keywords", "rock, directo")
	require.NoError(t, err)
	assert.Contains(t, out, "Created artist Nova Banda (nova_banda)")
	assert.Contains(t, errOut, "warning: email hook")

	out, _, err = execute(t, "artists", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "nova_banda")
	assert.Contains(t, out, "Español")

	out, _, err = execute(t, "artists", "show", "nova_banda")
	require.NoError(t, err)
	assert.Contains(t, out, `"keywords": [`)
	assert.Contains(t, out, `"rock"`)

	store := artist.NewStore(artist.NewFileBackend(doc), nil)
	p, err := store.Get(context.Background(), "nova_banda")
	require.NoError(t, err)
	assert.Equal(t, []string{"rock", "directo"}, p.Keywords)

	_, _, err = execute(t, "artists", "delete", "nova_banda")
	require.NoError(t, err)
	_, _, err = execute(t, "artists", "show", "nova_banda")
	assert.ErrorIs(t, err, artist.ErrNotFound)

	_, _, err = execute(t, "generate", "-a", "nova_banda", "-i", "x")
	assert.Error(t, err, "no provider key")

	out, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "socialai dev\n", out)
}
