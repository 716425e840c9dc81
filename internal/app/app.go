package app

import (
	"context"
	"fmt"
	"io"

	"github.com/cozy-creator/dbi/internal/batch"
	"github.com/cozy-creator/dbi/internal/config"
	"github.com/cozy-creator/dbi/pkg/dbi"
	"github.com/cozy-creator/dbi/pkg/logger"

	"go.uber.org/zap"
)

const UserAgent = "dbi-cli/0.1"

type App struct {
	config     *config.Config
	ctx        context.Context
	cancelFunc context.CancelFunc
	client     *dbi.Client
	runner     *batch.Runner
	progress   io.Writer

	Logger *zap.Logger
}

// Option funcs used to initialize the App struct
type OptionFunc func(app *App) error

func WithLogger(logger *zap.Logger) OptionFunc {
	return func(app *App) error {
		app.Logger = logger
		return nil
	}
}

func WithContext(ctx context.Context) OptionFunc {
	return func(app *App) error {
		if ctx == nil {
			return nil
		}
		app.cancelFunc()
		app.ctx, app.cancelFunc = context.WithCancel(ctx)
		return nil
	}
}

// WithProgress makes batch runs draw a progress bar on w.
func WithProgress(w io.Writer) OptionFunc {
	return func(app *App) error {
		app.progress = w
		return nil
	}
}

func NewApp(cfg *config.Config, options ...OptionFunc) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	app := &App{
		ctx:        ctx,
		config:     cfg,
		cancelFunc: cancel,
	}

	for _, opt := range options {
		if err := opt(app); err != nil {
			app.Close()
			return nil, err
		}
	}

	if app.Logger == nil {
		l, err := logger.NewLogger(cfg)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Logger = l
	}

	clientOpts := []dbi.ClientOption{
		dbi.WithLogger(app.Logger.Named("client")),
		dbi.WithUserAgent(UserAgent),
	}
	if cfg.Strict {
		clientOpts = append(clientOpts, dbi.WithStrictEnvelope())
	}

	client, err := dbi.NewClient(cfg.ResolveBaseURL(), clientOpts...)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("error creating client: %w", err)
	}
	app.client = client

	runnerOpts := []batch.RunnerOption{batch.WithLogger(app.Logger.Named("batch"))}
	if app.progress != nil {
		runnerOpts = append(runnerOpts, batch.WithProgress(app.progress))
	}
	app.runner = batch.NewRunner(cfg.Concurrency, runnerOpts...)

	app.Logger.Debug("app initialized",
		zap.String("environment", cfg.Environment),
		zap.String("base_url", client.BaseURL()),
		zap.Bool("strict", cfg.Strict))

	return app, nil
}

func (app *App) Close() {
	app.cancelFunc()
}

func (app *App) Config() *config.Config {
	return app.config
}

func (app *App) Context() context.Context {
	return app.ctx
}

func (app *App) Client() *dbi.Client {
	return app.client
}

func (app *App) Runner() *batch.Runner {
	return app.runner
}
