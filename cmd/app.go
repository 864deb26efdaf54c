package cmd

import (
	"context"
	"fmt"

	"github.com/wangtao2001/Muxify/internal/config"
	"github.com/wangtao2001/Muxify/internal/connection"
	"github.com/wangtao2001/Muxify/internal/logging"
	"github.com/wangtao2001/Muxify/internal/secret"
	"github.com/wangtao2001/Muxify/internal/tmux"
)

// app wires the config, registry, and tmux service for one command
// invocation.
type app struct {
	cfg   *config.Config
	store *connection.Store
	reg   *connection.Registry
	svc   *tmux.Service
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{Dir: cfg.Log.Dir, Level: cfg.Log.Level})

	store, err := connection.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("open connection store: %w", err)
	}

	reg, err := connection.NewRegistry(store, secret.NewKeyring(), cfg.ConnectTimeout())
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		store: store,
		reg:   reg,
		svc:   tmux.NewService(reg, cfg.TmuxConfigPath),
	}, nil
}

func (a *app) Close() {
	a.reg.Close()
	a.store.Close()
	logging.Close()
}

// ctx returns the per-command context, bounded by the configured command
// timeout when one is set.
func (a *app) ctx() (context.Context, context.CancelFunc) {
	if d := a.cfg.CommandTimeout(); d > 0 {
		return context.WithTimeout(context.Background(), d)
	}
	return context.WithCancel(context.Background())
}
