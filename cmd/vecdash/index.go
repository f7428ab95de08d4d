package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewEnsureIndexCmd creates the Atlas vector index when it does not exist.
func NewEnsureIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-index",
		Short: "Create the vector search index if missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), envFlag(cmd))
			if err != nil {
				return err
			}
			defer a.Close()

			created, err := a.searchRepo.EnsureIndex(cmd.Context())
			if err != nil {
				return fmt.Errorf("ensure vector index: %w", err)
			}

			name := a.cfg.Database.VectorIndex.Name
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created index %s\n", name)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "index %s already exists\n", name)
			}
			return nil
		},
	}
}
