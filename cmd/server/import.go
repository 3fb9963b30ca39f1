package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rpattn/standards/internal/config"
	"github.com/rpattn/standards/internal/ingestion"
	"github.com/rpattn/standards/internal/logger"
)

// a bulk import submits one summary job per changed file at once
const importQueueBuffer = 1024

func newImportCommand(root *rootOptions) *cobra.Command {
	var (
		orgID   string
		spaceID string
		pattern string
	)
	cmd := &cobra.Command{
		Use:   "import <repository-root>",
		Short: "Import published standard files from a repository checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := uuid.Parse(spaceID)
			if err != nil {
				return fmt.Errorf("invalid --space: %w", err)
			}
			org := uuid.Nil
			if orgID != "" {
				if org, err = uuid.Parse(orgID); err != nil {
					return fmt.Errorf("invalid --org: %w", err)
				}
			}

			cfg, err := config.Load(root.configPath)
			if err != nil {
				return err
			}
			if cfg.Enrichment.Buffer < importQueueBuffer {
				cfg.Enrichment.Buffer = importQueueBuffer
			}
			log, err := logger.New(cfg.LogMode)
			if err != nil {
				return err
			}
			defer log.Sync()

			a, err := buildApp(cmd.Context(), cfg, root.inMemory, log)
			if err != nil {
				return err
			}
			defer a.Close()

			return runImport(cmd.Context(), a, os.DirFS(args[0]), pattern, org, space, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "organization id recorded on emitted events")
	cmd.Flags().StringVar(&spaceID, "space", "", "space to import into")
	cmd.Flags().StringVar(&pattern, "pattern", ingestion.DefaultPattern, "glob of files to import")
	_ = cmd.MarkFlagRequired("space")
	return cmd
}

// runImport imports the tree and, when summaries are enabled, runs the
// enrichment workers until every job submitted by the import has finished.
func runImport(ctx context.Context, a *app, fsys fs.FS, pattern string, org, space uuid.UUID, out io.Writer) error {
	if a.queue != nil {
		a.queue.Start(context.WithoutCancel(ctx))
		defer func() {
			if err := a.queue.Shutdown(context.Background()); err != nil {
				a.log.Warn("enrichment queue did not drain", "error", err)
			}
		}()
	}

	importer := ingestion.NewService(a.service, a.stores.standards, a.log)
	summaries, err := importer.ImportTree(ctx, fsys, pattern, org, space)
	for _, s := range summaries {
		fmt.Fprintf(out, "%s\t%s\tv%d\tcreated=%t changed=%t\n",
			s.FileName, s.Slug, s.Version, s.Created, s.Changed)
	}
	return err
}
