// Package commands implements the resilience command-line tool. Flags are
// bound to viper keys named after the YAML config paths, so a value can come
// from a flag, a RESILIENCE_* environment variable or the config file, in that
// order of precedence.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dd0wney/cluso-resilience/pkg/analysis"
	"github.com/dd0wney/cluso-resilience/pkg/config"
	"github.com/dd0wney/cluso-resilience/pkg/geo"
	"github.com/dd0wney/cluso-resilience/pkg/graph"
	"github.com/dd0wney/cluso-resilience/pkg/loader"
	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/metrics"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
	"github.com/dd0wney/cluso-resilience/pkg/validation"
)

// Version is set at build time
var Version = "dev"

// Viper keys shared by every command
const (
	keyConfig = "config"
	keyData   = "data.dir"
	keyLevel  = "logging.level"
	keyOutput = "output"
	keyRegion = "region"
	keyMinLat = "bbox.min_lat"
	keyMaxLat = "bbox.max_lat"
	keyMinLon = "bbox.min_lon"
	keyMaxLon = "bbox.max_lon"
)

// app is the state shared by the subcommands of one invocation
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger logging.Logger
	svc    *analysis.Service
	out    io.Writer
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with a private viper instance
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "resilience",
		Short: "Airline network robustness analysis",
		Long: `resilience loads an OpenFlights route network and measures how it
breaks apart under attack, and how much reinforcement or rewiring helps.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("data", "", "OpenFlights data directory")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.StringP("output", "o", "text", "Output format (text, json)")
	flags.String("region", "", "Named region (southeast-asia, asia, europe, north-america)")
	flags.Float64("min-lat", 0, "Minimum latitude")
	flags.Float64("max-lat", 0, "Maximum latitude")
	flags.Float64("min-lon", 0, "Minimum longitude")
	flags.Float64("max-lon", 0, "Maximum longitude")
	a.bind(flags, map[string]string{
		keyConfig: "config",
		keyData:   "data",
		keyLevel:  "log-level",
		keyOutput: "output",
		keyRegion: "region",
		keyMinLat: "min-lat",
		keyMaxLat: "max-lat",
		keyMinLon: "min-lon",
		keyMaxLon: "max-lon",
	})

	a.v.SetEnvPrefix("RESILIENCE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newStatsCmd(a),
		newAttackCmd(a),
		newReinforceCmd(a),
		newSwapCmd(a),
		newSuggestCmd(a),
		newPrecomputeCmd(a),
	)
	return root
}

// bind ties viper keys to flags of set. Unknown flag names are a programming
// error.
func (a *app) bind(set *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		f := set.Lookup(name)
		if f == nil {
			panic("commands: no flag " + name)
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	}
}

// init loads the config file and makes its values the viper defaults, so
// flags and environment variables override the file.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v.GetString(keyConfig))
	if err != nil {
		return err
	}
	a.setDefaults(cfg)

	cfg.Data.Dir = a.v.GetString(keyData)
	cfg.Logging.Level = a.v.GetString(keyLevel)
	a.cfg = cfg
	a.out = cmd.OutOrStdout()

	a.logger = logging.NewLogger(cmd.ErrOrStderr(), logging.ParseLevel(cfg.Logging.Level), logging.FormatText)
	a.svc = analysis.NewService(
		analysis.WithLogger(a.logger),
		analysis.WithMetrics(metrics.NewRegistry()),
		analysis.WithWorkers(cfg.Attack.Workers),
	)
	return nil
}

func (a *app) setDefaults(cfg *config.Config) {
	a.v.SetDefault(keyData, cfg.Data.Dir)
	a.v.SetDefault(keyLevel, cfg.Logging.Level)

	a.v.SetDefault(keyAttackStrategy, cfg.Attack.Strategy)
	a.v.SetDefault(keyAttackRuns, cfg.Attack.Runs)
	a.v.SetDefault(keyAttackSeed, cfg.Attack.Seed)
	a.v.SetDefault(keyAttackAdaptive, cfg.Attack.Adaptive)

	a.v.SetDefault(keyDefenseK, cfg.Defense.K)
	a.v.SetDefault(keyDefenseCandidates, cfg.Defense.MaxCandidates)
	a.v.SetDefault(keyDefenseDistance, cfg.Defense.MaxDistanceKM)
	a.v.SetDefault(keyDefenseSeed, cfg.Defense.Seed)

	a.v.SetDefault(keySwapTrials, cfg.Swap.MaxTrials)
	a.v.SetDefault(keySwapPatience, cfg.Swap.Patience)
	a.v.SetDefault(keySwapMinDeltaR, cfg.Swap.MinDeltaR)
	a.v.SetDefault(keySwapSeed, cfg.Swap.Seed)
	a.v.SetDefault(keySwapPrefilter, cfg.Swap.Prefilter)

	a.v.SetDefault(keyRedundancyM, cfg.Redundancy.M)
	a.v.SetDefault(keyRedundancyDistance, cfg.Redundancy.MaxDistanceKM)

	a.v.SetDefault(keyPrecomputedPath, cfg.Precomputed.Path)
	a.v.SetDefault(keyS3Bucket, cfg.Precomputed.S3Bucket)
	a.v.SetDefault(keyS3Key, cfg.Precomputed.S3Key)
	a.v.SetDefault(keyS3Region, cfg.Precomputed.S3Region)
	a.v.SetDefault(keyS3Endpoint, cfg.Precomputed.S3Endpoint)
}

// network loads the OpenFlights files
func (a *app) network() (*graph.Graph, error) {
	g, _, err := loader.LoadDir(a.cfg.Data.Dir, a.cfg.Data.AirportsFile, a.cfg.Data.RoutesFile, a.logger)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	return g, nil
}

// window returns the analysed region: --region, else the bbox flags that
// were set, else nil for the whole network.
func (a *app) window() (*geo.BBox, error) {
	if name := a.v.GetString(keyRegion); name != "" {
		region, ok := precomputed.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: unknown region %q", validation.ErrInvalidRequest, name)
		}
		return region.BBox, nil
	}

	bound := func(key string) *float64 {
		if !a.v.IsSet(key) {
			return nil
		}
		v := a.v.GetFloat64(key)
		return &v
	}
	req := validation.BBoxRequest{
		MinLat: bound(keyMinLat),
		MaxLat: bound(keyMaxLat),
		MinLon: bound(keyMinLon),
		MaxLon: bound(keyMaxLon),
	}
	if err := validation.ValidateBBox(req); err != nil {
		return nil, err
	}
	box := &geo.BBox{MinLat: req.MinLat, MaxLat: req.MaxLat, MinLon: req.MinLon, MaxLon: req.MaxLon}
	if box.IsZero() {
		return nil, nil
	}
	return box, nil
}

// regionNetwork loads the network and restricts it to the window
func (a *app) regionNetwork() (*graph.Graph, error) {
	box, err := a.window()
	if err != nil {
		return nil, err
	}
	g, err := a.network()
	if err != nil {
		return nil, err
	}
	if box == nil {
		return g, nil
	}
	return geo.Filter(g, box), nil
}
