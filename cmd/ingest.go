package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nestscout/match-cli/internal/ingest"
	"github.com/nestscout/match-cli/internal/model"
	"github.com/nestscout/match-cli/internal/seed"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Enrich neighborhood listings with external data",
	Long:  "Loads listings from a file (or the embedded sample set), fetches external attributes for each, and persists the enriched records.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		var listings []model.ListingRecord
		if ingestFile != "" {
			listings, err = seed.Load(ingestFile)
		} else {
			listings, err = seed.Default()
		}
		if err != nil {
			return err
		}

		run, err := env.store.CreateRun(ctx, len(listings))
		if err != nil {
			return err
		}
		if err := env.store.UpdateRunStatus(ctx, run.ID, model.RunStatusFetching); err != nil {
			return err
		}

		pipeline := ingest.NewPipeline(env.client, env.geo, cfg.Ingest)
		records, err := pipeline.Run(ctx, listings)
		if err != nil {
			if stErr := env.store.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed); stErr != nil {
				zap.L().Warn("marking run failed", zap.Error(stErr))
			}
			return err
		}

		degraded := 0
		for i := range records {
			if records[i].Degraded() {
				degraded++
			}
		}

		stored, err := env.store.UpsertNeighborhoods(ctx, records)
		if err != nil {
			return err
		}
		if err := env.store.CompleteRun(ctx, run.ID, stored, degraded); err != nil {
			return err
		}

		zap.L().Info("ingest complete",
			zap.String("run", run.ID),
			zap.Int("listings", len(listings)),
			zap.Int("stored", stored),
			zap.Int("degraded", degraded),
		)
		fmt.Printf("Run %s: %d listings, %d stored, %d degraded\n", run.ID, len(listings), stored, degraded)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "listings file (yaml or json, default: embedded samples)")
	rootCmd.AddCommand(ingestCmd)
}
