package main

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var warmCmd = &cobra.Command{
	Use:   "warm",
	Short: "Measure the overview locations and store their sizes",
	Long: `Measure every overview location that has no fresh stored size so the
next interactive session opens with numbers already filled in.`,
	Args: cobra.NoArgs,
	RunE: runWarm,
}

func runWarm(cmd *cobra.Command, _ []string) error {
	if noCache {
		return fmt.Errorf("warm has nothing to do with --no-cache")
	}
	_, svc, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	targets := createOverviewEntries()
	bar := progressbar.NewOptions(len(targets),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Measuring"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	failed := 0
	prefetchOverviewCache(context.Background(), svc, targets, func(target dirEntry, size int64, err error) {
		if err != nil {
			failed++
			svc.log.Warn().Str("path", target.Path).Err(err).Msg("warm failed")
		}
		bar.Describe(target.Name)
		_ = bar.Add(1)
	})
	_ = bar.Finish()

	fmt.Fprintf(cmd.OutOrStdout(), "Measured %d locations (%d failed)\n", len(targets)-failed, failed)
	return nil
}
