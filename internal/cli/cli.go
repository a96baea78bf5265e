// Package cli wires the terminal surface of the NextChamp client: account
// commands, the analyze workflow and the read-only report/history views.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"nextchamp/app/internal/api"
	"nextchamp/app/internal/config"
	"nextchamp/app/internal/domain"
	"nextchamp/app/internal/session"
)

const AppName = "nextchamp"

// App bundles the CLI definition with the logger shared by all commands.
type App struct {
	logger zerolog.Logger
	cli    *cli.App
}

func New() *App {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	logger := log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	})

	app := &App{
		logger: logger,
		cli: &cli.App{
			Name:  AppName,
			Usage: "NextChamp talent assessment client",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "config",
					Usage: "Directory containing config.yaml",
					Value: ".",
				},
				&cli.StringFlag{
					Name:  "base-url",
					Usage: "Override the configured backend base URL",
				},
				&cli.BoolFlag{
					Name:  "verbose",
					Usage: "Enable verbose (debug) logging",
				},
			},
			Before: func(ctx *cli.Context) error {
				if ctx.Bool("verbose") {
					zerolog.SetGlobalLevel(zerolog.DebugLevel)
				}
				return nil
			},
		},
	}

	app.cli.Commands = []*cli.Command{
		app.loginCommand(),
		app.logoutCommand(),
		app.signupCommand(),
		app.analyzeCommand(),
		app.downloadCommand(),
		app.resultsCommand(),
		app.statsCommand(),
		app.planCommand(),
		app.chatCommand(),
		app.healthCommand(),
	}
	return app
}

func (a *App) Run(args []string) error {
	return a.cli.Run(args)
}

// SetVersion sets the version information for the CLI application.
func (a *App) SetVersion(version, commit, date string) {
	a.cli.Version = version
	if commit != "none" && commit != "" && len(commit) >= 8 {
		a.cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit[:8], date)
	}
}

// env loads configuration and builds the shared backend client and
// session store for one command invocation.
type env struct {
	cfg    config.Config
	client *api.Client
	store  *session.Store
}

func (a *App) setup(ctx *cli.Context) (*env, error) {
	cfg, err := config.LoadConfig(ctx.String("config"))
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if override := ctx.String("base-url"); override != "" {
		cfg.Server.BaseURL = override
	}
	a.logger.Debug().Str("base_url", cfg.Server.BaseURL).Msg("Configuration loaded")

	return &env{
		cfg: cfg,
		client: api.NewClient(api.Config{
			BaseURL: cfg.Server.BaseURL,
			Timeout: cfg.HTTP.Timeout,
		}),
		store: session.NewStore(cfg.Session.Path),
	}, nil
}

// requireSession loads the signed-in profile or tells the user to log in.
func (e *env) requireSession() (*domain.UserProfile, error) {
	profile, err := e.store.Load()
	if err != nil {
		return nil, err
	}
	return profile, nil
}
