package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/neural-sync/tui/internal/app"
	"github.com/neural-sync/tui/internal/client"
	"github.com/neural-sync/tui/internal/config"
	"github.com/neural-sync/tui/internal/export"
	"github.com/neural-sync/tui/internal/logx"
	"pkt.systems/pslog"
)

// runTUI owns the terminal until the user quits or ctx is cancelled. Logs
// are moved to the configured file for the lifetime of the program.
func runTUI(ctx context.Context, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger, closer, err := logx.OpenFile(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())

	ws := client.NewWSClient(cfg.Bridge.URL, bridgeOptions(cfg, logger))
	defer ws.Close()

	store := export.NewStore(cfg.Export.Dir)
	logger.Info("neuralsync starting", "bridge", cfg.Bridge.URL, "exports", store.Dir())

	p := tea.NewProgram(app.New(ws, store, logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			logger.Info("neuralsync interrupted")
			return nil
		}
		return fmt.Errorf("running ui: %w", err)
	}
	logger.Info("neuralsync stopped")
	return nil
}

func bridgeOptions(cfg config.Config, logger pslog.Logger) client.Options {
	return client.Options{
		ReconnectDelay: cfg.Bridge.ReconnectDelay,
		PingInterval:   cfg.Bridge.PingInterval,
		PongTimeout:    cfg.Bridge.PongTimeout,
		WriteTimeout:   cfg.Bridge.WriteTimeout,
		Logger:         logger.With("component", "bridge"),
	}
}
