package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/modelscout/modelscout/internal/config"
	"github.com/modelscout/modelscout/internal/export"
	"github.com/modelscout/modelscout/internal/store"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the canonical catalog as a delimited flat file",
	// Bound per invocation; see the collect command.
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return viper.BindPFlag("datastore.path", cmd.Flags().Lookup("db"))
	},
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().String("db", "", "SQLite datastore path (or MODELSCOUT_DB)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DatastorePath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	records, err := st.Records(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutput, err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	if err := export.WriteCSV(out, records); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	if exportOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", len(records), exportOutput)
	}
	return nil
}
