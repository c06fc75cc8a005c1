package main

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/random"
	"github.com/zeusync/movingmnist/internal/core/systems/render"
	"github.com/zeusync/movingmnist/internal/injector"
)

func newDumpCommand(o *overrides) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write one sequence as 8-bit PNG frames",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			e, err := injector.InitializeEnv(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			n, err := dumpSequence(e, random.New(cfg.Seed), dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", n, dir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dir, "out", "o", "frames", "output directory")
	return cmd
}

// dumpSequence rolls out one sequence from stream and writes frame_NNN.png per tick.
func dumpSequence(e *env.Env, stream *random.Stream, dir string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	n := 0
	for tr, err := range e.Rollout(stream, e.Config().SeqLen) {
		if err != nil {
			return n, err
		}
		if err := writePNG(filepath.Join(dir, fmt.Sprintf("frame_%03d.png", n)), tr.Frame); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// writePNG stores f with the first frame axis as image rows.
func writePNG(path string, f render.Frame) (err error) {
	img := image.NewGray(image.Rect(0, 0, render.CanvasHeight, render.CanvasWidth))
	copy(img.Pix, f.Gray8())

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	return png.Encode(file, img)
}
