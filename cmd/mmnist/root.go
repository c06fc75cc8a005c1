package main

import (
	"github.com/spf13/cobra"
	"github.com/zeusync/movingmnist/internal/config"
)

// overrides are the command-line values that win over the config file.
type overrides struct {
	configPath      string
	train           bool
	batchSize       int
	numSourceImages int
	digits          int
	seqLen          int
	seed            uint64
	workers         int
	source          string
	sourceDir       string
	logLevel        string
}

func newRootCommand() *cobra.Command {
	o := &overrides{}

	root := &cobra.Command{
		Use:           "mmnist",
		Short:         "Moving MNIST sequence generator",
		Long:          "mmnist renders batches of bouncing-digit sequences from a fixed sprite set.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	flags.BoolVar(&o.train, "train", true, "use the train split")
	flags.IntVar(&o.batchSize, "batch-size", 0, "sequences per batch")
	flags.IntVar(&o.numSourceImages, "num-source-images", 0, "sprites kept from the split")
	flags.IntVar(&o.digits, "digits", 0, "digits per sequence")
	flags.IntVar(&o.seqLen, "seq-len", 0, "frames per sequence")
	flags.Uint64Var(&o.seed, "seed", 0, "root seed")
	flags.IntVar(&o.workers, "workers", 0, "concurrent sequence builds, 0 for one per CPU")
	flags.StringVar(&o.source, "source", "", "sprite source: synthetic or idx")
	flags.StringVar(&o.sourceDir, "source-dir", "", "directory holding the MNIST IDX files")
	flags.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newGenerateCommand(o),
		newDumpCommand(o),
		newServeCommand(o),
		newFetchCommand(),
	)
	return root
}

// load reads the config file, if any, then applies the flags the user set.
func (o *overrides) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return config.Config{}, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("train") {
		cfg.Train = o.train
	}
	if flags.Changed("batch-size") {
		cfg.BatchSize = o.batchSize
	}
	if flags.Changed("num-source-images") {
		cfg.NumSourceImages = o.numSourceImages
	}
	if flags.Changed("digits") {
		cfg.DigitsPerImage = o.digits
	}
	if flags.Changed("seq-len") {
		cfg.SeqLen = o.seqLen
	}
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("source") {
		cfg.Source.Kind = o.source
	}
	if flags.Changed("source-dir") {
		cfg.Source.Dir = o.sourceDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	return cfg, cfg.Validate()
}
