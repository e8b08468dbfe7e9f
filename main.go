package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Charana123/swarm/go-swarm/config"
	"github.com/Charana123/swarm/go-swarm/peer"
	"github.com/Charana123/swarm/go-swarm/runner"
	"github.com/Charana123/swarm/go-swarm/storage"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var appFS = afero.NewOsFs()

var (
	outDir string
	dbPath string
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] Name[,count] ...\n\nstrategies: %v\n\n",
		os.Args[0], peer.DefaultRegistry().Names())
	flag.PrintDefaults()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}

func loadConfig() (*config.Config, error) {
	var (
		configPath     = flag.String("config", "", "YAML config file")
		logLevel       = flag.String("loglevel", "info", "debug, info, warn or error")
		numPieces      = flag.Int("num-pieces", 0, "number of pieces in the file")
		blocksPerPiece = flag.Int("blocks-per-piece", 0, "number of blocks per piece")
		maxRound       = flag.Int("max-round", 0, "limit on number of rounds")
		minBW          = flag.Int("min-bw", 0, "min upload bandwidth")
		maxBW          = flag.Int("max-bw", 0, "max upload bandwidth")
		iters          = flag.Int("iters", 0, "number of times to run the simulation")
		seed           = flag.Int64("seed", 0, "random seed of the first run")
		parallel       = flag.Int("parallel", 0, "runs played at once")
	)
	flag.StringVar(&outDir, "out", "", "directory to write run reports to")
	flag.StringVar(&dbPath, "db", "", "bolt database to write run reports to")
	flag.Usage = usage
	flag.Parse()

	conf := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if conf, err = config.Load(appFS, *configPath); err != nil {
			return nil, err
		}
	}

	// only flags given on the command line override the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "loglevel":
			conf.LogLevel = *logLevel
		case "num-pieces":
			conf.NumPieces = *numPieces
		case "blocks-per-piece":
			conf.BlocksPerPiece = *blocksPerPiece
		case "max-round":
			conf.MaxRound = *maxRound
		case "min-bw":
			conf.MinUpBW = *minBW
		case "max-bw":
			conf.MaxUpBW = *maxBW
		case "iters":
			conf.Iters = *iters
		case "seed":
			conf.Seed = *seed
		case "parallel":
			conf.ParallelRuns = *parallel
		}
	})

	if flag.NArg() > 0 {
		agents, err := config.ParseAgents(flag.Args())
		if err != nil {
			return nil, err
		}
		conf.Agents = agents
	}
	return conf, conf.ValidateBasic()
}

func openStorage() (storage.Storage, error) {
	if dbPath != "" {
		return storage.NewBoltStorage(dbPath)
	}
	if outDir != "" {
		return storage.NewFileStorage(appFS, outDir)
	}
	return nil, nil
}

func main() {
	conf, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(conf.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer logger.Sync()

	if err := run(conf, logger); err != nil {
		logger.Error("Simulation failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(conf *config.Config, logger *zap.Logger) error {
	logger.Info("Starting simulation",
		zap.Stringer("params", conf.Params),
		zap.Strings("agents", conf.AgentNames()),
		zap.Int("iters", conf.Iters))

	opts := []runner.Option{runner.WithLogger(logger)}
	store, err := openStorage()
	if err != nil {
		return fmt.Errorf("open run storage: %w", err)
	}
	if store != nil {
		defer store.Close()
		opts = append(opts, runner.WithStorage(store))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := runner.New(conf, peer.DefaultRegistry(), opts...).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation finished", zap.Strings("run_ids", result.RunIDs))
	return nil
}
