// Package cli wires configuration, logging and the message catalog for
// the command line binaries.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"

	"github.com/DoyleJ11/dicegame/internal/config"
	"github.com/DoyleJ11/dicegame/internal/i18n"
	"github.com/DoyleJ11/dicegame/internal/logging"
	"go.uber.org/zap"
	"golang.org/x/text/message"
)

type Env struct {
	Config  config.Config
	Logger  *zap.Logger
	Printer *message.Printer
}

// Setup loads .env and the environment, then lets args override them.
// It returns flag.ErrHelp when help was requested.
func Setup(name string, args []string, stderr io.Writer) (*Env, error) {
	dotenvErr := config.LoadDotenv()

	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(stderr)
	fset.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "game server base URL")
	fset.DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "state poll interval")
	fset.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "request timeout")
	fset.StringVar(&cfg.Locale, "locale", cfg.Locale, "UI locale (en-US, ru-RU)")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fset.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json, console)")
	fset.StringVar(&cfg.ViewAddr, "view-addr", cfg.ViewAddr, "serve the read-only view mirror on this address")
	fset.Int64Var(&cfg.Seed, "seed", cfg.Seed, "dice seed, 0 seeds from the clock")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	if dotenvErr != nil && !errors.Is(dotenvErr, fs.ErrNotExist) {
		logger.Warn("could not load .env file", zap.Error(dotenvErr))
	}

	bundle, err := i18n.LoadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load message catalog: %w", err)
	}

	return &Env{
		Config:  cfg,
		Logger:  logger.Named(name),
		Printer: bundle.Printer(cfg.Locale),
	}, nil
}
