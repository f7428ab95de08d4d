package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecdash/internal/config"
	"github.com/kailas-cloud/vecdash/internal/version"
)

// NewRootCmd builds the vecdash command tree.
func NewRootCmd(ver string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vecdash",
		Short:         "Vector search dashboard over MongoDB Atlas",
		Long:          `Embeds a prompt, runs $vectorSearch and renders matching companies with their investors.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", ver, version.Commit, version.Date),
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("env", config.GetEnv(), "Config environment (reads config/<env>.yaml)")

	rootCmd.AddCommand(
		NewServeCmd(),
		NewSearchCmd(),
		NewEnsureIndexCmd(),
	)

	return rootCmd
}

func envFlag(cmd *cobra.Command) string {
	env, _ := cmd.Flags().GetString("env")
	if env == "" {
		return config.GetEnv()
	}
	return env
}
