package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zeusync/movingmnist/internal/server"
)

func newFetchCommand() *cobra.Command {
	var (
		url   string
		count int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Read batches from a running serve endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			n := 0
			for b, err := range (server.Client{}).Batches(cmd.Context(), url) {
				if err != nil {
					return fmt.Errorf("batch %d: %w", n, err)
				}
				fmt.Fprintf(out, "batch %d image=%v action=%v is_first=%v\n",
					n, b.ImageShape(), b.ActionShape(), b.IsFirstShape())
				n++
				if count > 0 && n >= count {
					break
				}
			}
			fmt.Fprintf(out, "received %d batches\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "ws://127.0.0.1:8080/batches", "batch stream URL")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "stop after this many batches, 0 reads until the server closes")
	return cmd
}
