package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/portfolio-api/server/src/server/app"
	"github.com/portfolio-api/server/src/server/storage"
)

var assetName string

func init() {
	assetsPutCmd.Flags().StringVar(&assetName, "name", "", "Asset name (defaults to the file's base name)")
	assetsCmd.AddCommand(assetsPutCmd)
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage downloadable assets",
}

var assetsPutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Upload a file to asset storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		assembler := app.New(cfg)
		defer assembler.Close()
		deps, err := assembler.Build(ctx)
		if err != nil {
			return err
		}
		if deps.Assets == nil {
			return errors.New("no asset storage configured: set S3_ENDPOINT or ASSETS_DIR")
		}
		if s3, ok := deps.Assets.Storage.(*storage.S3Storage); ok {
			if err := s3.EnsureBucket(ctx); err != nil {
				return err
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		name := assetName
		if name == "" {
			name = filepath.Base(args[0])
		}
		if err := deps.Assets.Put(ctx, name, f); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
		slog.Info("Asset uploaded", "name", name)
		return nil
	},
}
