package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/portfolio-api/server/src/server/app"
	"github.com/portfolio-api/server/src/server/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed <dir>",
	Short: "Replace store contents with JSON seed files",
	Long:  "Load projects.json, formations.json, certifications.json, experiences.json and social_media.json from dir into the configured store, then drop cached datasets.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		portfolio, err := store.LoadSeed(args[0])
		if err != nil {
			return err
		}

		assembler := app.New(cfg)
		defer assembler.Close()
		deps, err := assembler.Build(cmd.Context())
		if err != nil {
			return err
		}

		if err := deps.Repository.Seed(cmd.Context(), portfolio); err != nil {
			return fmt.Errorf("seeding %s store: %w", cfg.StoreBackend, err)
		}
		if deps.Snapshots != nil {
			if err := deps.Snapshots.Invalidate(cmd.Context()); err != nil {
				slog.Warn("Clearing cache after seed failed", "error", err)
			}
		}

		slog.Info("Store seeded",
			"dir", args[0],
			"projects", len(portfolio.Projects),
			"formations", len(portfolio.Formations),
			"certifications", len(portfolio.Certifications),
			"experiences", len(portfolio.Experiences),
			"social_media", len(portfolio.SocialMedia),
		)
		return nil
	},
}
