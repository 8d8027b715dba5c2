// Package ingest reads an artist's sample posts from a text file, a PDF, or
// a web page.
package ingest

import (
	"context"
	"fmt"
	"os"
	"strings"
)

type SourceType string

const (
	SourceURL  SourceType = "url"
	SourcePDF  SourceType = "pdf"
	SourceText SourceType = "text"

	// maxInputSize caps any single source (5 MB). Sample posts are short;
	// anything larger is almost certainly the wrong file.
	maxInputSize = 5 * 1024 * 1024
)

func (s SourceType) String() string {
	return string(s)
}

// Content is the text read from one source.
type Content struct {
	Text      string
	Source    string
	Type      SourceType
	WordCount int
}

type Ingester interface {
	Ingest(ctx context.Context, source string) (*Content, error)
}

func DetectSource(input string) SourceType {
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return SourceURL
	}
	if strings.HasSuffix(strings.ToLower(input), ".pdf") {
		return SourcePDF
	}
	return SourceText
}

func NewIngester(input string) Ingester {
	switch DetectSource(input) {
	case SourceURL:
		return &URLIngester{}
	case SourcePDF:
		return &PDFIngester{}
	default:
		return &TextIngester{}
	}
}

// Samples reads every source and joins their text with blank lines, in the
// order given.
func Samples(ctx context.Context, sources ...string) (string, []*Content, error) {
	var (
		texts    []string
		contents []*Content
	)
	for _, src := range sources {
		c, err := NewIngester(src).Ingest(ctx, src)
		if err != nil {
			return "", nil, err
		}
		texts = append(texts, strings.TrimSpace(c.Text))
		contents = append(contents, c)
	}
	return strings.Join(texts, "\n\n"), contents, nil
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file", path)
	}
	if info.Size() > maxInputSize {
		return fmt.Errorf("%s is too large (%d MB, max %d MB)", path, info.Size()/(1024*1024), maxInputSize/(1024*1024))
	}
	return nil
}
