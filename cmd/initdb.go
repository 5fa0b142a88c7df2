package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadfinder/internal/store"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Initialize the SQLite database",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.App.DBPath)
		if err != nil {
			return eris.Wrap(err, "open store")
		}
		defer st.Close()

		if err := st.Init(cmd.Context()); err != nil {
			return eris.Wrap(err, "init store")
		}

		fmt.Printf("Initialized DB at %s\n", cfg.App.DBPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}
