package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var neighborhoodsCmd = &cobra.Command{
	Use:   "neighborhoods",
	Short: "List stored enriched neighborhoods",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		records, err := env.store.ListNeighborhoods(ctx)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("no neighborhoods stored; run ingest first")
			return nil
		}

		for _, rec := range records {
			marker := " "
			if rec.Degraded() {
				marker = "!"
			}
			fmt.Printf("%s %-18s %-22s rent %8.0f  quality %.2f  updated %s\n",
				marker, rec.ID, rec.Name,
				rec.External.RealEstate.AverageRent,
				rec.DataQuality.Overall,
				rec.LastProcessed.Format("2006-01-02"),
			)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(neighborhoodsCmd)
}
