//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"
	"github.com/zeusync/movingmnist/internal/config"
	"github.com/zeusync/movingmnist/internal/core/dataset"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/server"
)

func InitializeEnv(ctx context.Context, cfg config.Config) (*env.Env, error) {
	wire.Build(LoaderSet)
	return nil, nil
}

func InitializeGenerator(ctx context.Context, cfg config.Config) (*dataset.Generator, error) {
	wire.Build(LoaderSet, ProvideGenerator)
	return nil, nil
}

func InitializeServer(ctx context.Context, cfg config.Config) (*server.Server, error) {
	wire.Build(LoaderSet, ProvideServer)
	return nil, nil
}
