package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSource(t *testing.T) {
	assert.Equal(t, SourceURL, DetectSource("https://example.com/post"))
	assert.Equal(t, SourcePDF, DetectSource("press/Kit.PDF"))
	assert.Equal(t, SourceText, DetectSource("posts.txt"))
}

func TestTextIngester(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffHoxe tocamos na casa!\nGrazas por vir"), 0o644))

	c, err := (&TextIngester{}).Ingest(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Hoxe tocamos na casa!\nGrazas por vir", c.Text)
	assert.Equal(t, "posts.txt", c.Source)
	assert.Equal(t, 7, c.WordCount)
}

func TestTextIngester_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := (&TextIngester{}).Ingest(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)

	_, err = (&TextIngester{}).Ingest(context.Background(), dir)
	assert.ErrorContains(t, err, "is a directory")

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("  \n"), 0o644))
	_, err = (&TextIngester{}).Ingest(context.Background(), empty)
	assert.ErrorContains(t, err, "is empty")
}

func TestURLIngester(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><head><title>Novo disco</title></head><body><article>
<h1>Novo disco</h1>
<p>Hoxe presentamos o noso novo disco en Vigo. Foi unha noite máxica, chea de amigos e música, e queremos agradecervos a todos o voso apoio durante estes meses de traballo no estudio.</p>
<p>Durante o verán imos percorrer Galicia de norte a sur, con concertos en Lugo, Ourense, Pontevedra e A Coruña. Cada noite será distinta, con convidados sorpresa e cancións que nunca tocamos en directo. Estamos moi ilusionados e non podemos esperar a vervos diante do escenario cantando connosco.</p>
<p>Grazas por estar sempre aí. Vémonos na xira!</p>
</article></body></html>`))
	}))
	defer srv.Close()

	u := &URLIngester{Client: srv.Client()}
	c, err := u.Ingest(context.Background(), srv.URL+"/post")
	require.NoError(t, err)
	assert.Contains(t, c.Text, "Vémonos na xira!")
	assert.Equal(t, SourceURL, c.Type)

	_, err = u.Ingest(context.Background(), srv.URL+"/missing")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestSamples_JoinsInOrder(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("first\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("second"), 0o644))

	text, contents, err := Samples(context.Background(), a, b)
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", text)
	assert.Len(t, contents, 2)

	_, _, err = Samples(context.Background(), a, filepath.Join(dir, "nope.txt"))
	assert.Error(t, err)
}
