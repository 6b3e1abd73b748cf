// Package main provides the stanconvert command, which turns a saved
// sampler fit into an inference-data bundle.
//
// The fit is read from a JSON file holding a mcmc.MemoryFit. Group routing,
// dimension names and coordinate labels come from an optional YAML config.
// The bundle is written as JSON or CBOR.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scigolib/mcmc"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		fitPath    string
		priorPath  string
		configPath string
		outPath    string
		format     string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "stanconvert",
		Short: "Convert a sampler fit into an inference-data bundle",
		Long: `stanconvert reconstructs shaped, labeled draw arrays from the flat
per-chain output of a Stan-style sampler and writes them as one bundle of
grouped datasets (posterior, sample_stats, predictive draws, observed data).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			return run(runOptions{
				fitPath:    fitPath,
				priorPath:  priorPath,
				configPath: configPath,
				outPath:    outPath,
				format:     format,
				logger:     logger,
			})
		},
	}

	cmd.Flags().StringVar(&fitPath, "fit", "", "posterior fit JSON file (required)")
	cmd.Flags().StringVar(&priorPath, "prior", "", "prior fit JSON file")
	cmd.Flags().StringVar(&configPath, "config", "", "conversion config YAML file")
	cmd.Flags().StringVar(&outPath, "out", "", "output bundle file (required)")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or cbor")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
	_ = cmd.MarkFlagRequired("fit")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

type runOptions struct {
	fitPath    string
	priorPath  string
	configPath string
	outPath    string
	format     string
	logger     *zap.Logger
}

func run(opts runOptions) error {
	posterior, err := loadFit(opts.fitPath)
	if err != nil {
		return fmt.Errorf("loading posterior fit: %w", err)
	}
	opts.logger.Debug("loaded posterior fit",
		zap.String("path", opts.fitPath),
		zap.Int("chains", len(posterior.Chains())),
		zap.Int("parameters", len(posterior.Parameters())))

	var prior mcmc.Fit
	if opts.priorPath != "" {
		p, err := loadFit(opts.priorPath)
		if err != nil {
			return fmt.Errorf("loading prior fit: %w", err)
		}
		prior = p
	}

	cfg := &conversionConfig{}
	if opts.configPath != "" {
		cfg, err = loadConfig(opts.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	converter := &mcmc.Converter{
		Posterior:           posterior,
		Prior:               prior,
		PosteriorPredictive: cfg.PosteriorPredictive,
		PriorPredictive:     cfg.PriorPredictive,
		ObservedData:        cfg.ObservedData,
		LogLikelihood:       cfg.LogLikelihood,
		Dims:                cfg.Dims,
		Coords:              cfg.Coords,
		Logger:              opts.logger,
	}

	bundle, err := converter.Convert()
	if err != nil {
		return fmt.Errorf("converting fit: %w", err)
	}

	var raw []byte
	switch opts.format {
	case "json":
		raw, err = bundle.EncodeJSON()
	case "cbor":
		raw, err = bundle.EncodeCBOR()
	default:
		return fmt.Errorf("unknown output format %q (want json or cbor)", opts.format)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.outPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing bundle: %w", err)
	}
	opts.logger.Info("wrote bundle",
		zap.String("path", opts.outPath),
		zap.String("format", opts.format),
		zap.Int("bytes", len(raw)),
		zap.Strings("groups", bundle.GroupNames))
	return nil
}
