package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nestscout/match-cli/internal/model"
)

var interactCmd = &cobra.Command{
	Use:   "interact <neighborhood-id> <view|save|contact|reject>",
	Short: "Record a user interaction with a neighborhood",
	Long:  "Recorded interactions nudge future recommendation rankings: saves and contacts promote a neighborhood, rejects demote it.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		neighborhoodID := args[0]
		kind := model.InteractionType(args[1])
		if !kind.Valid() {
			return eris.Errorf("unknown interaction type %q", args[1])
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Make sure the target exists before recording against it.
		if _, err := env.store.GetNeighborhood(ctx, neighborhoodID); err != nil {
			return err
		}

		it, err := env.store.SaveInteraction(ctx, neighborhoodID, kind)
		if err != nil {
			return err
		}

		fmt.Printf("recorded %s on %s (%s)\n", it.Kind, it.NeighborhoodID, it.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interactCmd)
}
