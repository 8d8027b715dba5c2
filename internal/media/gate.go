package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/xeitosa/socialai/internal/observability"
	"github.com/xeitosa/socialai/internal/progress"
	"github.com/xeitosa/socialai/internal/provider"
)

var (
	// ErrMediaFailed is returned when the provider reports processing failed.
	ErrMediaFailed = errors.New("media processing failed")
	// ErrMediaTimeout is returned when the file is still processing after
	// the attempt ceiling or the context deadline.
	ErrMediaTimeout = errors.New("media processing timed out")
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 90
)

// Gate uploads staged assets and blocks until the provider can use them.
type Gate struct {
	files       provider.FileService
	interval    time.Duration
	maxAttempts int
	log         *slog.Logger
	progress    progress.Callback
}

// Option configures a Gate.
type Option func(*Gate)

// WithInterval sets the delay between status polls.
func WithInterval(d time.Duration) Option { return func(g *Gate) { g.interval = d } }

// WithMaxAttempts sets the poll ceiling.
func WithMaxAttempts(n int) Option { return func(g *Gate) { g.maxAttempts = n } }

// WithLogger sets the gate's logger.
func WithLogger(l *slog.Logger) Option { return func(g *Gate) { g.log = l } }

// WithProgress sets the callback that receives upload and poll events.
func WithProgress(cb progress.Callback) Option { return func(g *Gate) { g.progress = cb } }

// NewGate creates a gate over the provider's file store.
func NewGate(files provider.FileService, opts ...Option) *Gate {
	g := &Gate{
		files:       files,
		interval:    DefaultInterval,
		maxAttempts: DefaultMaxAttempts,
		log:         slog.Default(),
		progress:    progress.NopCallback,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.maxAttempts < 1 {
		g.maxAttempts = 1
	}
	return g
}

// SetProgress replaces the callback that receives upload and poll events.
func (g *Gate) SetProgress(cb progress.Callback) {
	if cb == nil {
		cb = progress.NopCallback
	}
	g.progress = cb
}

// Prepare uploads the asset and, for video, waits until it is active.
// Images are returned straight after upload.
func (g *Gate) Prepare(ctx context.Context, asset *Asset) (*provider.File, error) {
	ctx, span := observability.Tracer().Start(ctx, "media.prepare")
	defer span.End()
	span.SetAttributes(
		attribute.String("media.name", asset.Name),
		attribute.String("media.mime", asset.MIMEType),
	)

	start := time.Now()
	g.progress(progress.NewEvent(progress.StageUpload, "Uploading "+asset.Name, start))
	g.log.InfoContext(ctx, "Uploading media", "name", asset.Name, "mime", asset.MIMEType)

	file, err := g.files.Upload(ctx, asset.Path, asset.MIMEType)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		return nil, fmt.Errorf("upload media: %w", err)
	}
	span.SetAttributes(attribute.String("media.file", file.Name))

	if !asset.IsVideo() {
		file.State = provider.FileStateActive
		return file, nil
	}

	if err := g.WaitActive(ctx, file.Name); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "media not ready")
		return nil, err
	}
	file.State = provider.FileStateActive
	g.log.InfoContext(ctx, "Media ready", "file", file.Name, "elapsed", time.Since(start).Round(time.Millisecond).String())
	return file, nil
}

// WaitActive polls the file's status until it is active, failed, the
// attempt ceiling is reached, or ctx is done. The first poll happens
// immediately; later polls wait one interval each.
func (g *Gate) WaitActive(ctx context.Context, name string) error {
	start := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s after %d polls: %w", ErrMediaTimeout, name, attempt-1, ctx.Err())
		case <-timer.C:
		}

		state, err := g.files.Status(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%w: %s after %d polls: %w", ErrMediaTimeout, name, attempt, ctx.Err())
			}
			return fmt.Errorf("poll media status: %w", err)
		}
		g.progress(progress.PollEvent(attempt, g.maxAttempts, start))
		g.log.DebugContext(ctx, "Polled media status", "file", name, "state", string(state), "attempt", attempt)

		switch state {
		case provider.FileStateActive:
			return nil
		case provider.FileStateProcessing:
			timer.Reset(g.interval)
		default:
			return fmt.Errorf("%w: %s", ErrMediaFailed, name)
		}
	}
	return fmt.Errorf("%w: %s still processing after %d polls", ErrMediaTimeout, name, g.maxAttempts)
}
