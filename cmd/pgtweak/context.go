package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pgtweak/internal/config"
	"pgtweak/internal/logging"
	"pgtweak/internal/pgserver"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// connParams merges config-file connection defaults with CLI overrides.
func connParams(cfg *config.Config, opts *rootOptions) pgserver.ConnParams {
	params := pgserver.ConnParams{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Database: cfg.Database.Name,
	}
	if opts.dbhost != "" {
		params.Host = opts.dbhost
	}
	if opts.dbport != 0 {
		params.Port = opts.dbport
	}
	if opts.dbuser != "" {
		params.User = opts.dbuser
	}
	if opts.dbname != "" {
		params.Database = opts.dbname
	}
	return params
}

// buildLogger constructs the run logger; flag verbosity wins over the
// config file, and every line carries a per-run identifier.
func buildLogger(cfg *config.Config, opts *rootOptions) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if flagLevel := logging.LevelFromFlags(opts.verbose, opts.quiet, opts.debug); flagLevel != "" {
		level = flagLevel
	}
	logger, err := logging.New(logging.Options{
		Level:     level,
		Format:    cfg.Logging.Format,
		AddSource: opts.debug,
	})
	if err != nil {
		return nil, err
	}
	return logger.With(logging.String(logging.FieldRunID, uuid.NewString())), nil
}
