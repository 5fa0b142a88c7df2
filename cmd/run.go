package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadfinder/internal/config"
	"github.com/sells-group/leadfinder/internal/enrich"
	"github.com/sells-group/leadfinder/internal/fetcher"
	"github.com/sells-group/leadfinder/internal/model"
	"github.com/sells-group/leadfinder/internal/pipeline"
	"github.com/sells-group/leadfinder/internal/source"
	"github.com/sells-group/leadfinder/internal/store"
)

var (
	runExport   string
	runNoEnrich bool
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the lead collection pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if runNoEnrich {
			cfg.Enrichment.FetchWebsiteForEmail = false
		}

		result, err := runOnce(ctx, cfg, runExport, runDryRun)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		fmt.Println("Run complete:")
		fmt.Printf("  Fetched: %d\n", result.Fetched)
		fmt.Printf("  Kept:    %d\n", result.Kept)
		fmt.Printf("  Saved:   %d\n", result.Saved)
		if result.ExportedTo != "" {
			fmt.Printf("  Export:  %s\n", result.ExportedTo)
		}
		return nil
	},
}

// runOnce assembles a pipeline from c and executes a single pass. A dry run,
// or save_to_db off, skips opening the store entirely.
func runOnce(ctx context.Context, c *config.Config, exportPath string, dryRun bool) (*model.RunResult, error) {
	fetch := fetcher.NewHTML(c.App.RequestTimeout(), c.App.UserAgent)

	var st *store.Store
	if c.App.SaveToDB && !dryRun {
		var err error
		st, err = store.Open(c.App.DBPath)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		defer st.Close()
		if err := st.Init(ctx); err != nil {
			return nil, eris.Wrap(err, "init store")
		}
	}

	enricher := enrich.New(fetch, c.Enrichment)

	// No browser driver is wired in this build; the maps adapter reports the
	// missing capability when enabled.
	sources := source.Enabled(c, fetch, nil)

	return pipeline.New(c, st, enricher, sources).Run(ctx, exportPath)
}

func init() {
	runCmd.Flags().StringVar(&runExport, "export", "", "CSV export path (overrides config)")
	runCmd.Flags().BoolVar(&runNoEnrich, "no-enrich", false, "disable website enrichment")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "do not write to the database")
	rootCmd.AddCommand(runCmd)
}
