// Package copywriter turns a persona, instructions, and optional media into
// social-media copy with one model call.
package copywriter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/history"
	"github.com/xeitosa/socialai/internal/media"
	"github.com/xeitosa/socialai/internal/observability"
	"github.com/xeitosa/socialai/internal/progress"
	"github.com/xeitosa/socialai/internal/provider"
)

// ErrEmptyRequest is returned when neither instructions nor media are given.
var ErrEmptyRequest = errors.New("write instructions or attach a file")

// StageError reports which step of a generation failed.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Request is one generation.
type Request struct {
	Persona      artist.Persona
	Instructions string
	// Media is an optional staged upload. The writer removes its local file
	// when Generate returns.
	Media *media.Asset
}

// Result is the generated copy.
type Result struct {
	Text      string
	Model     string
	MediaFile *provider.File
	HistoryID string
}

// Writer runs generations.
type Writer struct {
	gen      provider.Generator
	gate     *media.Gate
	history  history.Recorder
	log      *slog.Logger
	progress progress.Callback
}

// NewWriter creates a writer. gate may be nil when the provider cannot read
// media; rec may be nil to skip history.
func NewWriter(gen provider.Generator, gate *media.Gate, rec history.Recorder, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = history.Nop{}
	}
	return &Writer{gen: gen, gate: gate, history: rec, log: logger, progress: progress.NopCallback}
}

// SetProgress sets the callback that receives generate events, and the
// gate's upload and poll events.
func (w *Writer) SetProgress(cb progress.Callback) {
	if cb == nil {
		cb = progress.NopCallback
	}
	w.progress = cb
	if w.gate != nil {
		w.gate.SetProgress(cb)
	}
}

// Model returns the model the writer generates with.
func (w *Writer) Model() string { return w.gen.Model() }

// AcceptsMedia reports whether requests may carry media.
func (w *Writer) AcceptsMedia() bool { return w.gate != nil }

// Generate produces copy for req. Nothing is retried; provider errors are
// returned wrapped in a *StageError.
func (w *Writer) Generate(ctx context.Context, req Request) (res *Result, err error) {
	if req.Media != nil {
		defer func() {
			if cerr := req.Media.Cleanup(); cerr != nil {
				w.log.WarnContext(ctx, "Failed to remove staged media", "error", cerr)
			}
		}()
	}
	if strings.TrimSpace(req.Instructions) == "" && req.Media == nil {
		return nil, ErrEmptyRequest
	}

	ctx, span := observability.Tracer().Start(ctx, "copywriter.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("artist.id", req.Persona.ID),
		attribute.String("model", w.gen.Model()),
		attribute.Bool("media", req.Media != nil),
	)

	log := w.log.With("artist", req.Persona.ID, "model", w.gen.Model())
	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
			w.progress(progress.Event{Stage: progress.StageGenerate, Error: err})
			log.WarnContext(ctx, "Generation failed", "error", err)
		}
		id := w.record(ctx, req, res, err)
		if res != nil {
			res.HistoryID = id
		}
	}()

	var file *provider.File
	if req.Media != nil {
		if w.gate == nil {
			return nil, &StageError{Stage: "media", Message: "model " + w.gen.Model() + " cannot read media", Err: provider.ErrMediaUnsupported}
		}
		file, err = w.gate.Prepare(ctx, req.Media)
		if err != nil {
			return nil, &StageError{Stage: "media", Message: "media not ready", Err: err}
		}
	}

	w.progress(progress.NewEvent(progress.StageGenerate, "Generating copy...", start))
	text, err := w.gen.Generate(ctx, BuildPrompt(req.Persona, req.Instructions, file), provider.Options{})
	if err != nil {
		return nil, &StageError{Stage: "generate", Message: "failed to generate copy", Err: err}
	}

	log.InfoContext(ctx, "Copy generated", "chars", len(text), "elapsed", time.Since(start).Round(time.Millisecond).String())
	w.progress(progress.Event{Stage: progress.StageComplete, Message: "Copy generated", Model: w.gen.Model(), Chars: len(text)})
	return &Result{Text: text, Model: w.gen.Model(), MediaFile: file}, nil
}

// record appends the attempt to history. History failures are logged and
// never change the outcome.
func (w *Writer) record(ctx context.Context, req Request, res *Result, genErr error) string {
	r := &history.Record{
		ArtistID:     req.Persona.ID,
		Instructions: req.Instructions,
		Model:        w.gen.Model(),
	}
	if req.Media != nil {
		r.MediaName = req.Media.Name
		r.MediaMIME = req.Media.MIMEType
	}
	if res != nil {
		r.Text = res.Text
	}
	if genErr != nil {
		r.Error = genErr.Error()
	}
	if err := w.history.Record(ctx, r); err != nil {
		w.log.WarnContext(ctx, "Failed to record generation", "error", err)
		return ""
	}
	return r.ID
}
