package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zeusync/movingmnist/internal/injector"
)

func newGenerateCommand(o *overrides) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Pull batches and report their shapes and timings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			gen, err := injector.InitializeGenerator(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s\n", gen.RunID())
			for i := 0; i < count; i++ {
				start := time.Now()
				b, err := gen.Next(cmd.Context())
				if err != nil {
					return fmt.Errorf("batch %d: %w", i, err)
				}
				fmt.Fprintf(out, "batch %d image=%v action=%v is_first=%v in %s\n",
					i, b.ImageShape(), b.ActionShape(), b.IsFirstShape(), time.Since(start).Round(time.Millisecond))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "batches to pull")
	return cmd
}
