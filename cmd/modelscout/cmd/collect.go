package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modelscout/modelscout/internal/collector"
	"github.com/modelscout/modelscout/internal/config"
	"github.com/modelscout/modelscout/internal/fetch"
	"github.com/modelscout/modelscout/internal/sources"
	"github.com/modelscout/modelscout/internal/sources/hub"
	"github.com/modelscout/modelscout/internal/sources/library"
	"github.com/modelscout/modelscout/internal/sources/router"
	"github.com/modelscout/modelscout/internal/store"
	"github.com/modelscout/modelscout/pkg/catalog"
	"github.com/modelscout/modelscout/pkg/logging"
)

var (
	collectTier     string
	collectOrgs     string
	collectOrgsFile string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection pass over the upstream sources",
	Long: `Collect fetches model listings from the hub (per organization),
the router catalog, and (for the "all" preset only) the scraped
library page, then merges and upserts the canonical catalog.

Organizations come from a preset tier (--tier top|extended|all) or an
explicit comma-separated list (--orgs). With neither, usage is printed
and no network activity occurs.`,
	// The datastore.path binding happens per invocation: several
	// commands carry a --db flag, and a package-level BindPFlag would
	// leave only the last-bound command's flag visible to viper.
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlag("datastore.path", cmd.Flags().Lookup("db"))
	},
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectTier, "tier", "", "organization preset: top, extended, or all")
	collectCmd.Flags().StringVar(&collectOrgs, "orgs", "", "explicit comma-separated organization list")
	collectCmd.Flags().StringVar(&collectOrgsFile, "orgs-file", "", "YAML file defining organization tiers")
	collectCmd.Flags().String("db", "", "SQLite datastore path (or MODELSCOUT_DB)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, _ []string) error {
	if collectTier == "" && collectOrgs == "" {
		return cmd.Help()
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	orgs, includeLibrary, err := resolveOrgs()
	if err != nil {
		return err
	}

	// One collection run at a time per datastore.
	lock := flock.New(cfg.DatastorePath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another collection run holds %s", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	st, err := store.Open(cfg.DatastorePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	fetcher := fetch.New()
	hubClient := hub.New(fetcher, hub.Config{
		BaseURL: cfg.HubBaseURL,
		APIKey:  cfg.HubAPIKey,
	})
	adapters := []sources.Adapter{
		router.New(fetcher, router.Config{BaseURL: cfg.RouterBaseURL, APIKey: cfg.RouterAPIKey}),
	}
	if includeLibrary {
		adapters = append(adapters, library.New(fetcher, library.Config{PageURL: cfg.LibraryPageURL}))
	}

	logging.Info().
		Int("organizations", len(orgs)).
		Bool("library_scrape", includeLibrary).
		Str("datastore", cfg.DatastorePath).
		Msg("Starting collection run")

	summary, err := collector.New(st, hubClient, orgs, adapters).Run(cmd.Context())
	if err != nil {
		return err
	}

	printSummary(summary)
	return nil
}

// resolveOrgs determines the organization list. Explicit --orgs wins;
// otherwise the preset resolves against the configured tiers. Only
// the "all" preset enables the library scrape.
func resolveOrgs() ([]string, bool, error) {
	if collectOrgs != "" {
		return config.ParseOrgList(collectOrgs), false, nil
	}

	tiers, err := config.LoadTiers(collectOrgsFile)
	if err != nil {
		return nil, false, err
	}
	orgs, err := tiers.Resolve(collectTier)
	if err != nil {
		return nil, false, err
	}
	return orgs, collectTier == config.PresetAll, nil
}

func printSummary(s *collector.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRows([]table.Row{
		{"Organizations queried", s.Organizations},
		{"Hub listings", s.FetchedBySource[catalog.SourceHub]},
		{"Router listings", s.FetchedBySource[catalog.SourceRouter]},
		{"Library listings", s.FetchedBySource[catalog.SourceLibrary]},
		{"Merged canonical records", s.Merged},
		{"Upserted", s.Upserted},
		{"Enrichment tasks enqueued", s.TasksEnqueued},
	})
	if s.SkippedListings > 0 {
		t.AppendRow(table.Row{"Listings skipped (store errors)", s.SkippedListings})
	}
	t.AppendFooter(table.Row{"Duration", s.Duration.Round(time.Millisecond)})
	t.Render()
}
