package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeusync/movingmnist/internal/injector"
)

func newServeCommand(o *overrides) *cobra.Command {
	var (
		addr       string
		maxBatches int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Stream batches to websocket clients on /batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("max-batches") {
				cfg.Server.MaxBatches = maxBatches
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			srv, err := injector.InitializeServer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}

			<-cmd.Context().Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address")
	cmd.Flags().IntVar(&maxBatches, "max-batches", 0, "batches per connection, 0 for unlimited")
	return cmd
}
