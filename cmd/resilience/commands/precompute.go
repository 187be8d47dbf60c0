package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-resilience/pkg/logging"
	"github.com/dd0wney/cluso-resilience/pkg/precomputed"
)

const (
	keyPrecomputedPath = "precomputed.path"
	keyS3Bucket        = "precomputed.s3_bucket"
	keyS3Key           = "precomputed.s3_key"
	keyS3Region        = "precomputed.s3_region"
	keyS3Endpoint      = "precomputed.s3_endpoint"
)

var (
	errInvalidFractions = errors.New("fractions must lie in [0,1] and be ascending")
	errNoRegions        = errors.New("no region could be computed")
)

// PrecomputeSummary is the output of the precompute command
type PrecomputeSummary struct {
	Path     string   `json:"path"`
	Regions  []string `json:"regions"`
	Uploaded string   `json:"uploaded,omitempty"`
}

func newPrecomputeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "precompute [region...]",
		Short: "Compute attack impact reports for the known regions",
		Long: `precompute runs the multi-strategy attack report for each named region
(all regions when none are given), merges the results into the cache file
and optionally mirrors the file to S3. A path ending in .sz is snappy framed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := selectRegions(args)
			if err != nil {
				return err
			}
			g, err := a.network()
			if err != nil {
				return err
			}

			set := precomputed.ComputeAll(a.svc, g, regions)
			if len(set) == 0 {
				return errNoRegions
			}

			store := precomputed.NewStore(a.v.GetString(keyPrecomputedPath))
			if err := store.Load(); err != nil {
				return err
			}
			store.Merge(set)
			if err := store.Save(); err != nil {
				return err
			}
			a.logger.Info("precomputed regions saved",
				logging.Path(store.Path()), logging.Count(store.Len()))

			summary := PrecomputeSummary{Path: store.Path(), Regions: store.Keys()}
			if upload, _ := cmd.Flags().GetBool("upload"); upload {
				uri, err := a.upload(cmd, store)
				if err != nil {
					return err
				}
				summary.Uploaded = uri
			}
			return render(a, summary, renderPrecompute)
		},
	}

	flags := cmd.Flags()
	flags.String("out", "data/precomputed_attacks.json", "Cache file")
	flags.Bool("upload", false, "Mirror the cache file to S3")
	flags.String("s3-bucket", "", "S3 bucket")
	flags.String("s3-key", "precomputed_attacks.json.sz", "S3 object key")
	flags.String("s3-region", "", "AWS region")
	flags.String("s3-endpoint", "", "S3-compatible endpoint URL")
	a.bind(flags, map[string]string{
		keyPrecomputedPath: "out",
		keyS3Bucket:        "s3-bucket",
		keyS3Key:           "s3-key",
		keyS3Region:        "s3-region",
		keyS3Endpoint:      "s3-endpoint",
	})
	return cmd
}

// selectRegions resolves region keys; none means every region
func selectRegions(keys []string) ([]precomputed.Region, error) {
	if len(keys) == 0 {
		return precomputed.Regions(), nil
	}
	regions := make([]precomputed.Region, 0, len(keys))
	for _, key := range keys {
		region, ok := precomputed.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("unknown region %q", key)
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func (a *app) upload(cmd *cobra.Command, store *precomputed.Store) (string, error) {
	cfg := a.cfg.Precomputed
	cfg.S3Bucket = a.v.GetString(keyS3Bucket)
	cfg.S3Key = a.v.GetString(keyS3Key)
	cfg.S3Region = a.v.GetString(keyS3Region)
	cfg.S3Endpoint = a.v.GetString(keyS3Endpoint)
	if cfg.S3Bucket == "" {
		return "", errors.New("--upload needs --s3-bucket or precomputed.s3_bucket")
	}
	uploader, err := precomputed.NewUploaderFromConfig(cmd.Context(), cfg)
	if err != nil {
		return "", err
	}
	if err := uploader.Upload(cmd.Context(), store); err != nil {
		return "", err
	}
	a.logger.Info("precomputed regions uploaded", logging.String("uri", uploader.URI()))
	return uploader.URI(), nil
}
