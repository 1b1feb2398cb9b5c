package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/nestscout/match-cli/internal/model"
)

var (
	recBudget     float64
	recAgeGroup   string
	recPriorities []string
	recLifestyle  []string
	recWorkLat    float64
	recWorkLng    float64
	recTop        int
	recJSON       bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank stored neighborhoods against your preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if recBudget <= 0 {
			return eris.New("a positive --budget is required")
		}

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
			return eris.New("no neighborhoods stored; run ingest first")
		}

		prefs := model.UserPreferences{
			Budget:     recBudget,
			AgeGroup:   model.AgeGroup(recAgeGroup),
			Priorities: recPriorities,
			Lifestyle:  recLifestyle,
		}
		if cmd.Flags().Changed("work-lat") || cmd.Flags().Changed("work-lng") {
			prefs.WorkLocation = &model.Coordinates{Lat: recWorkLat, Lng: recWorkLng}
		}

		topN := recTop
		if topN <= 0 {
			topN = cfg.Match.TopN
		}
		engine, err := buildEngine(ctx, env.store, topN)
		if err != nil {
			return err
		}

		scores := engine.Recommend(records, prefs)

		if recJSON {
			return json.NewEncoder(os.Stdout).Encode(scores)
		}

		names := make(map[string]string, len(records))
		for _, rec := range records {
			names[rec.ID] = rec.Name
		}
		for i, s := range scores {
			fmt.Printf("%2d. %-20s score %.2f  confidence %.2f  data quality %.2f\n",
				i+1, names[s.NeighborhoodID], s.TotalScore, s.Confidence, s.DataQuality)
			for _, reason := range s.Reasoning {
				fmt.Printf("      - %s\n", reason)
			}
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().Float64Var(&recBudget, "budget", 0, "monthly rent budget (required)")
	recommendCmd.Flags().StringVar(&recAgeGroup, "age-group", "", "age group: young-professional, family, senior")
	recommendCmd.Flags().StringSliceVar(&recPriorities, "priority", nil, "priorities: cost, safety, schools, transit, nightlife, commute")
	recommendCmd.Flags().StringSliceVar(&recLifestyle, "lifestyle", nil, "lifestyle tags: walkable, modern, affordable, nightlife, family-friendly")
	recommendCmd.Flags().Float64Var(&recWorkLat, "work-lat", 0, "work location latitude")
	recommendCmd.Flags().Float64Var(&recWorkLng, "work-lng", 0, "work location longitude")
	recommendCmd.Flags().IntVar(&recTop, "top", 0, "max results (default from config)")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(recommendCmd)
}
