package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillquest/internal/app"
	"github.com/abhisek/skillquest/internal/game"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	g := game.NewService(e.client)

	// A token rejected mid-run leaves cached state for a different user.
	e.user.OnChange(func(token string) {
		if token == "" {
			g.Reset()
		}
		e.client.InvalidateCache()
	})

	opts := app.Options{
		Auth:        e.client,
		Game:        g,
		Creds:       e.user,
		EventRepo:   e.store.EventRepo(),
		Metrics:     e.metrics,
		Language:    e.cfg.Language,
		MetricsAddr: e.cfg.MetricsAddr,
	}
	if err := app.Run(opts); err != nil {
		return fmt.Errorf("run app: %w", err)
	}
	return nil
}
