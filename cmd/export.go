package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadfinder/internal/store"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export leads from the database to CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.App.DBPath)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		if err := st.Init(cmd.Context()); err != nil {
			return eris.Wrap(err, "init store")
		}
		if err := st.ExportCSV(cmd.Context(), exportOut); err != nil {
			return eris.Wrap(err, "export csv")
		}

		fmt.Printf("Exported CSV to %s\n", exportOut)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "CSV output path (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}
