// Package app wires configuration into the store, provider, and services
// shared by the web UI, the CLI, and the MCP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/xeitosa/socialai/internal/artist"
	"github.com/xeitosa/socialai/internal/backup"
	"github.com/xeitosa/socialai/internal/config"
	"github.com/xeitosa/socialai/internal/copywriter"
	"github.com/xeitosa/socialai/internal/history"
	"github.com/xeitosa/socialai/internal/media"
	"github.com/xeitosa/socialai/internal/provider"
	"github.com/xeitosa/socialai/internal/stylist"
)

// ErrProviderUnavailable wraps the reason generation cannot run.
var ErrProviderUnavailable = errors.New("generation unavailable")

// App holds the shared services.
type App struct {
	Config  *config.Config
	Log     *slog.Logger
	Store   *artist.Store
	History history.Recorder

	// Writer and Extractor are nil when the provider could not be built;
	// ProviderErr then says why.
	Writer      *copywriter.Writer
	Extractor   *stylist.Extractor
	ProviderErr error

	closers []func() error
}

// New builds the services described by cfg. A missing provider credential
// does not fail construction so persona management keeps working.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Log: logger}

	awsCfg := lazyAWS(cfg.AWSRegion)

	if cfg.SecretPrefix != "" {
		if err := a.loadSecrets(ctx, awsCfg); err != nil {
			logger.WarnContext(ctx, "Failed to load secrets from Secrets Manager, falling back to env vars", "error", err)
		}
	}

	store, err := a.openStore(ctx, awsCfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	rec, err := a.openHistory(ctx, awsCfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.History = rec

	gen, err := provider.New(ctx, cfg.Model, provider.Keys{
		Google:    cfg.GoogleAPIKey,
		Anthropic: cfg.AnthropicAPIKey,
		AWSRegion: cfg.AWSRegion,
	})
	if err != nil {
		a.ProviderErr = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		logger.WarnContext(ctx, "Provider not configured", "model", cfg.Model, "error", err)
		return a, nil
	}
	a.UseGenerator(gen)
	logger.InfoContext(ctx, "Provider ready", "model", gen.Model(), "media", a.Writer.AcceptsMedia())
	return a, nil
}

// UseGenerator (re)builds the writer and extractor around gen. The media
// gate is enabled when gen also implements provider.FileService.
func (a *App) UseGenerator(gen provider.Generator) {
	var gate *media.Gate
	if files, ok := gen.(provider.FileService); ok {
		gate = media.NewGate(files,
			media.WithInterval(a.Config.Media.PollInterval),
			media.WithMaxAttempts(a.Config.Media.MaxPolls),
			media.WithLogger(a.Log),
		)
	}
	a.Writer = copywriter.NewWriter(gen, gate, a.History, a.Log)
	a.Extractor = stylist.NewExtractor(gen, a.Log)
	a.ProviderErr = nil
}

// Close releases resources such as the history database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *App) loadSecrets(ctx context.Context, awsCfg func(context.Context) (aws.Config, error)) error {
	c, err := awsCfg(ctx)
	if err != nil {
		return err
	}
	return a.Config.LoadSecrets(ctx, secretsmanager.NewFromConfig(c), a.Log)
}

func (a *App) openStore(ctx context.Context, awsCfg func(context.Context) (aws.Config, error)) (*artist.Store, error) {
	cfg := a.Config

	var backend artist.Backend
	if bucket, key, ok := artist.ParseS3Location(cfg.ArtistConfig); ok {
		c, err := awsCfg(ctx)
		if err != nil {
			return nil, err
		}
		backend = artist.NewS3Backend(s3.NewFromConfig(c), bucket, key)
	} else {
		backend = artist.NewFileBackend(cfg.ArtistConfig)
	}
	store := artist.NewStore(backend, a.Log)

	store.OnSave(backup.NewEmailNotifier(backup.SMTPConfig{
		Server:    cfg.SMTP.Server,
		Port:      cfg.SMTP.Port,
		Email:     cfg.SMTP.Email,
		Password:  cfg.SMTP.Password,
		Recipient: cfg.SMTP.Recipient,
	}, a.Log))

	if cfg.Backup.S3Bucket != "" {
		c, err := awsCfg(ctx)
		if err != nil {
			return nil, err
		}
		store.OnSave(backup.NewS3Archiver(s3.NewFromConfig(c), cfg.Backup.S3Bucket, a.Log))
	}

	a.Log.InfoContext(ctx, "Persona store ready", "location", store.Location())
	return store, nil
}

func (a *App) openHistory(ctx context.Context, awsCfg func(context.Context) (aws.Config, error)) (history.Recorder, error) {
	cfg := a.Config.History
	switch {
	case cfg.Table != "":
		c, err := awsCfg(ctx)
		if err != nil {
			return nil, err
		}
		return history.NewDynamo(dynamodb.NewFromConfig(c), cfg.Table), nil
	case cfg.DB != "":
		db, err := history.OpenSQLite(cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		return history.Nop{}, nil
	}
}

// lazyAWS loads the AWS configuration on first use only, so purely local
// setups never touch AWS credentials.
func lazyAWS(region string) func(context.Context) (aws.Config, error) {
	var (
		loaded bool
		cfg    aws.Config
		err    error
	)
	return func(ctx context.Context) (aws.Config, error) {
		if !loaded {
			cfg, err = config.LoadAWS(ctx, region)
			if err != nil {
				err = fmt.Errorf("load aws config: %w", err)
			}
			loaded = true
		}
		return cfg, err
	}
}
