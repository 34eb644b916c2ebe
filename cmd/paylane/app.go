package main

import (
	"context"
	"log/slog"

	"github.com/DanielPopoola/paylane-go/internal/config"
	"github.com/DanielPopoola/paylane-go/internal/journal"
	"github.com/DanielPopoola/paylane-go/paylane"
	"github.com/spf13/cobra"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	client  *paylane.Client
	db      *journal.DB
	journal *journal.Journal
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(flagOverrides(cmd))
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	a := &app{cfg: cfg, logger: logger}

	opts := append(cfg.API.ClientOptions(), paylane.WithLogger(logger))

	if cfg.Journal.Enabled {
		db, err := journal.Connect(ctx, &cfg.Journal.Database, logger)
		if err != nil {
			return nil, err
		}
		a.db = db
		a.journal = journal.New(db.Pool, logger, cfg.Journal.WriteTimeout)
		if err := a.journal.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		opts = append(opts, paylane.WithObserver(a.journal))
	}

	client, err := paylane.New(cfg.API.Username, cfg.API.Password, opts...)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.client = client

	logger.Debug("client ready",
		"base_url", client.BaseURL(),
		"ssl_verify", client.SSLVerify(),
		"journal", cfg.Journal.Enabled,
	)

	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// flagOverrides maps explicitly set global flags onto config keys so they
// win over the environment.
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := cmd.Flags()
	overrides := make(map[string]interface{})

	stringFlags := map[string]string{
		"base-url":  "api.base_url",
		"username":  "api.username",
		"password":  "api.password",
		"log-level": "logger.level",
	}
	for name, key := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if v, err := flags.GetString(name); err == nil {
			overrides[key] = v
		}
	}

	if flags.Changed("timeout") {
		if v, err := flags.GetDuration("timeout"); err == nil {
			overrides["api.timeout"] = v
		}
	}
	if flags.Changed("insecure") {
		if v, err := flags.GetBool("insecure"); err == nil {
			overrides["api.ssl_verify"] = !v
		}
	}
	if flags.Changed("journal") {
		if v, err := flags.GetBool("journal"); err == nil {
			overrides["journal.enabled"] = v
		}
	}

	return overrides
}
