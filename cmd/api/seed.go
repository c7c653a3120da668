package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/shadowing-api/internal/repository/sqlstore"
	"github.com/jwalitptl/shadowing-api/internal/seed"
)

func newSeedCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo Tacoma clinics into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			inserted, err := seed.Run(cmd.Context(), sqlstore.NewClinicRepository(db, nil))
			if err != nil {
				return err
			}
			if inserted == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Seed skipped: clinics table already has data.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seed complete: %d clinics.\n", inserted)
			return nil
		},
	}
}
