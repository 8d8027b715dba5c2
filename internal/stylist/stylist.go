// Package stylist derives a persona profile draft from an artist's sample
// posts with a single model call.
package stylist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/observability"
	"github.com/xeitosa/socialai/internal/progress"
	"github.com/xeitosa/socialai/internal/provider"
)

// ErrNoSamples is returned when there is no sample text to analyze.
var ErrNoSamples = errors.New("sample text is required")

// Draft is the profile the model proposes. Nothing is stored until a user
// reviews it and creates a persona from it.
type Draft struct {
	BasePrompt      string   `json:"base_prompt"`
	Keywords        []string `json:"keywords"`
	TargetAudience  string   `json:"target_audience"`
	FewShotExamples []string `json:"few_shot_examples"`
}

// Persona combines the draft with the identity fields the user supplies.
func (d *Draft) Persona(id, name string, lang artist.Language) artist.Persona {
	return artist.Persona{
		ID:              id,
		Name:            name,
		Language:        lang,
		TargetAudience:  d.TargetAudience,
		BasePrompt:      d.BasePrompt,
		Keywords:        append([]string{}, d.Keywords...),
		FewShotExamples: append([]string{}, d.FewShotExamples...),
	}
}

// Extractor asks the model to describe an artist's voice.
type Extractor struct {
	gen      provider.Generator
	log      *slog.Logger
	progress progress.Callback
}

// NewExtractor creates an extractor over gen.
func NewExtractor(gen provider.Generator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, log: logger, progress: progress.NopCallback}
}

// SetProgress sets the callback that receives analyze events.
func (e *Extractor) SetProgress(cb progress.Callback) {
	if cb == nil {
		cb = progress.NopCallback
	}
	e.progress = cb
}

// Extract sends the samples in one JSON-mode call and parses the reply.
// On any failure the draft is nil.
func (e *Extractor) Extract(ctx context.Context, name, samples string, lang artist.Language) (*Draft, error) {
	if strings.TrimSpace(samples) == "" {
		return nil, ErrNoSamples
	}
	if lang == "" {
		lang = artist.DefaultLanguage
	}

	ctx, span := observability.Tracer().Start(ctx, "stylist.extract")
	defer span.End()
	span.SetAttributes(
		attribute.String("artist.name", name),
		attribute.String("artist.language", string(lang)),
		attribute.Int("samples.chars", len(samples)),
		attribute.String("model", e.gen.Model()),
	)

	start := time.Now()
	e.progress(progress.NewEvent(progress.StageAnalyze, "Analyzing style...", start))

	text, err := e.gen.Generate(ctx, []provider.Part{provider.TextPart(BuildPrompt(name, samples, lang))}, provider.Options{JSON: true})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate failed")
		e.progress(progress.Event{Stage: progress.StageAnalyze, Error: err})
		return nil, fmt.Errorf("analyze style: %w", err)
	}

	draft, err := ParseDraft(text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid profile")
		e.log.WarnContext(ctx, "Style analysis returned invalid JSON", "artist", name, "error", err)
		e.progress(progress.Event{Stage: progress.StageAnalyze, Error: err})
		return nil, fmt.Errorf("analyze style: %w", err)
	}

	e.log.InfoContext(ctx, "Style analysis complete", "artist", name,
		"keywords", len(draft.Keywords), "examples", len(draft.FewShotExamples),
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	e.progress(progress.Event{Stage: progress.StageComplete, Message: "Profile generated", Model: e.gen.Model(), Chars: len(text)})
	return draft, nil
}

// BuildPrompt renders the analysis instructions.
func BuildPrompt(name, samples string, lang artist.Language) string {
	return fmt.Sprintf(`You are an expert social media strategist and copywriter.
Your task is to analyze the following sample posts from an artist named "%s" and extract their "Persona" to create a style guide for an AI generator.

SAMPLE POSTS:
%s

OUTPUT FORMAT (JSON ONLY):
{
    "base_prompt": "A detailed description of the persona, tone, and style (2-3 sentences). Write this in %[3]s.",
    "keywords": ["keyword1", "keyword2", "keyword3", "keyword4", "keyword5", "keyword6", "keyword7", "keyword8"],
    "target_audience": "A short description of the target audience. Write this in %[3]s.",
    "few_shot_examples": [
        "Select the 5 (if possible) best and most representative sentences or short paragraphs from the sample posts to use as few-shot examples. Keep them exactly as they are in the source text."
    ]
}
`, name, samples, lang)
}

// ParseDraft decodes the model reply. A markdown fence around the object is
// removed; anything else that is not a single JSON object is an error.
func ParseDraft(text string) (*Draft, error) {
	text = strings.TrimSpace(stripMarkdownFences(text))
	if text == "" {
		return nil, fmt.Errorf("no JSON content found in response")
	}
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("expected a JSON object, got: %s", truncate(text, 500))
	}

	var d Draft
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w\nRaw text (first 500 chars): %s", err, truncate(text, 500))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected content after JSON object: %s", truncate(text, 500))
	}
	if d.Keywords == nil {
		d.Keywords = []string{}
	}
	if d.FewShotExamples == nil {
		d.FewShotExamples = []string{}
	}
	return &d, nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?```")

func stripMarkdownFences(text string) string {
	if matches := fenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}
	return text
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
