package commands

import (
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/attack"
	"github.com/dd0wney/cluso-resilience/pkg/defense"
	"github.com/dd0wney/cluso-resilience/pkg/onion"
	"github.com/dd0wney/cluso-resilience/pkg/redundancy"
	"github.com/dd0wney/cluso-resilience/pkg/robustness"
)

const (
	keyAttackStrategy = "attack.strategy"
	keyAttackRuns     = "attack.runs"
	keyAttackSeed     = "attack.seed"
	keyAttackAdaptive = "attack.adaptive"

	keyDefenseK          = "defense.k"
	keyDefenseCandidates = "defense.max_candidates"
	keyDefenseDistance   = "defense.max_distance_km"
	keyDefenseSeed       = "defense.seed"
	keyDefenseAttack     = "defense.attack_strategy"

	keySwapTrials    = "swap.max_trials"
	keySwapPatience  = "swap.patience"
	keySwapMinDeltaR = "swap.min_delta_r"
	keySwapSeed      = "swap.seed"
	keySwapPrefilter = "swap.prefilter"
	keySwapAttack    = "swap.attack_strategy"

	keyRedundancyM        = "redundancy.m"
	keyRedundancyDistance = "redundancy.max_distance_km"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the network or one region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.regionNetwork()
			if err != nil {
				return err
			}
			return render(a, a.svc.GetStats(g), renderStats)
		},
	}
}

func newAttackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attack",
		Short: "Remove nodes by a strategy and print the robustness curve",
		Example: `  resilience attack --strategy degree --region europe
  resilience attack --strategy random --runs 10 --fractions 0,0.1,0.2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := attack.ParseStrategy(a.v.GetString(keyAttackStrategy))
			if err != nil {
				return err
			}
			fractions := a.cfg.Attack.Fractions
			if cmd.Flags().Changed("fractions") {
				fractions, _ = cmd.Flags().GetFloat64Slice("fractions")
			}
			if !robustness.ValidFractions(fractions) {
				return errInvalidFractions
			}

			g, err := a.regionNetwork()
			if err != nil {
				return err
			}
			report := a.svc.SimulateAttack(g, strategy, attack.SimulateOptions{
				Fractions: fractions,
				Runs:      a.v.GetInt(keyAttackRuns),
				Seed:      a.v.GetInt64(keyAttackSeed),
				Adaptive:  a.v.GetBool(keyAttackAdaptive),
			})
			return render(a, report, renderSimulation)
		},
	}

	flags := cmd.Flags()
	flags.StringP("strategy", "s", "degree", "Attack strategy (random, degree, betweenness, pagerank)")
	flags.Float64Slice("fractions", nil, "Removal fractions in [0,1], ascending")
	flags.Int("runs", 1, "Random orderings to average")
	flags.Int64("seed", 42, "Random seed")
	flags.Bool("adaptive", true, "Recompute the ranking after every removal")
	a.bind(flags, map[string]string{
		keyAttackStrategy: "strategy",
		keyAttackRuns:     "runs",
		keyAttackSeed:     "seed",
		keyAttackAdaptive: "adaptive",
	})
	return cmd
}

func newReinforceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reinforce",
		Short: "Add backup routes by effective resistance and compare attacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := attack.ParseStrategy(a.v.GetString(keyDefenseAttack))
			if err != nil {
				return err
			}
			g, err := a.regionNetwork()
			if err != nil {
				return err
			}

			opts := analysis.DefaultDefenseImpactOptions()
			opts.Strategy = strategy
			opts.Reinforce = defense.ReinforceOptions{
				K:             a.v.GetInt(keyDefenseK),
				MaxCandidates: a.v.GetInt(keyDefenseCandidates),
				MaxDistanceKM: a.v.GetFloat64(keyDefenseDistance),
				Seed:          a.v.GetInt64(keyDefenseSeed),
			}
			impact, err := a.svc.DefenseImpact(g, opts)
			if err != nil {
				return err
			}
			return render(a, impact, renderDefense)
		},
	}

	flags := cmd.Flags()
	flags.IntP("k", "k", 200, "Backup routes to add")
	flags.Int("max-candidates", 20000, "Candidate pairs scored")
	flags.Float64("max-distance-km", 3000, "Longest backup route")
	flags.Int64("seed", 123, "Candidate sampling seed")
	flags.String("attack", "degree", "Strategy used to compare the networks")
	a.bind(flags, map[string]string{
		keyDefenseK:          "k",
		keyDefenseCandidates: "max-candidates",
		keyDefenseDistance:   "max-distance-km",
		keyDefenseSeed:       "seed",
		keyDefenseAttack:     "attack",
	})
	return cmd
}

func newSwapCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Rewire routes into an onion structure and compare attacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := attack.ParseStrategy(a.v.GetString(keySwapAttack))
			if err != nil {
				return err
			}
			g, err := a.regionNetwork()
			if err != nil {
				return err
			}

			opts := analysis.DefaultSwapImpactOptions()
			opts.Strategy = strategy
			opts.Swap = onion.Options{
				Fractions: a.cfg.Swap.Fractions,
				MaxTrials: a.v.GetInt(keySwapTrials),
				Patience:  a.v.GetInt(keySwapPatience),
				MinDeltaR: a.v.GetFloat64(keySwapMinDeltaR),
				Seed:      a.v.GetInt64(keySwapSeed),
				Prefilter: a.v.GetBool(keySwapPrefilter),
			}
			impact, err := a.svc.SwapImpact(g, opts)
			if err != nil {
				return err
			}
			return render(a, impact, renderSwap)
		},
	}

	flags := cmd.Flags()
	flags.Int("max-trials", 20000, "Swap attempts")
	flags.Int("patience", 5000, "Stop after this many trials without improvement")
	flags.Float64("min-delta-r", 1e-6, "Smallest accepted gain in R")
	flags.Int64("seed", 123, "Random seed")
	flags.Bool("prefilter", true, "Only try swaps that pair endpoints of closer degree")
	flags.String("attack", "degree", "Strategy used to compare the networks")
	a.bind(flags, map[string]string{
		keySwapTrials:    "max-trials",
		keySwapPatience:  "patience",
		keySwapMinDeltaR: "min-delta-r",
		keySwapSeed:      "seed",
		keySwapPrefilter: "prefilter",
		keySwapAttack:    "attack",
	})
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Propose backup routes between nearby hubs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.regionNetwork()
			if err != nil {
				return err
			}
			suggestions := a.svc.SuggestRedundancy(g, redundancy.SuggestOptions{
				M:             a.v.GetInt(keyRedundancyM),
				MaxDistanceKM: a.v.GetFloat64(keyRedundancyDistance),
			})
			return render(a, suggestions, renderSuggestions)
		},
	}

	flags := cmd.Flags()
	flags.IntP("m", "m", 10, "Suggestions to return")
	flags.Float64("max-distance-km", 3000, "Longest suggested route")
	a.bind(flags, map[string]string{
		keyRedundancyM:        "m",
		keyRedundancyDistance: "max-distance-km",
	})
	return cmd
}
