package injector

import (
	"context"

	"github.com/google/wire"
	"github.com/zeusync/movingmnist/internal/config"
	"github.com/zeusync/movingmnist/internal/core/dataset"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
	"github.com/zeusync/movingmnist/internal/core/sprites"
	"github.com/zeusync/movingmnist/internal/server"
)

// LoaderSet builds everything from a loaded config up to the environment.
var LoaderSet = wire.NewSet(
	ProvideLogger,
	ProvideSpriteProvider,
	ProvideStore,
	ProvideEnv,
)

// ProvideLogger builds the process logger at the configured level.
func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideSpriteProvider(cfg config.Config) (sprites.Provider, error) {
	return cfg.Provider()
}

// ProvideStore loads the configured split, keeping the first num_source_images sprites.
func ProvideStore(ctx context.Context, cfg config.Config, p sprites.Provider, logger *log.Logger) (*sprites.Store, error) {
	store, err := sprites.Load(ctx, p, cfg.Split(), cfg.NumSourceImages)
	if err != nil {
		return nil, err
	}
	logger.Info("sprites loaded",
		log.String("split", string(cfg.Split())),
		log.String("source", cfg.Source.Kind),
		log.Int("count", store.Len()),
		log.Int("device", cfg.Device),
	)
	return store, nil
}

func ProvideEnv(store *sprites.Store, cfg config.Config, logger *log.Logger) (*env.Env, error) {
	return env.New(store, cfg.Env(), env.WithLogger(logger))
}

func ProvideGenerator(e *env.Env, cfg config.Config, logger *log.Logger) (*dataset.Generator, error) {
	return dataset.NewGenerator(e, cfg.Dataset(), dataset.WithLogger(logger))
}

func ProvideServer(e *env.Env, cfg config.Config, logger *log.Logger) *server.Server {
	return server.NewServer(e, cfg.Dataset(), cfg.Server, logger)
}
