package main

import (
	"bytes"
	"context"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/movingmnist/internal/config"
	"github.com/zeusync/movingmnist/internal/injector"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("batch_size: 3\nseq_len: 6\nnum_source_images: 4\nlog_level: error\n"), 0o600))

	out, err := run(t, "generate", "--config", path, "--seq-len", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "image=[3 2 64 64 1]")
}

func TestGenerateCommand(t *testing.T) {
	out, err := run(t, "generate", "-n", "2",
		"--batch-size", "2", "--seq-len", "3", "--num-source-images", "4", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "batch 0 image=[2 3 64 64 1] action=[2 3 2] is_first=[2 3]")
	assert.Contains(t, out, "batch 1 ")
}

func TestGenerateCommand_InvalidFlags(t *testing.T) {
	_, err := run(t, "generate", "--batch-size", "0")
	assert.Error(t, err)

	_, err = run(t, "generate", "--source", "idx")
	assert.Error(t, err, "idx source needs a directory")
}

func TestDumpCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	out, err := run(t, "dump", "-o", dir, "--seq-len", "3", "--num-source-images", "4", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 frames")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "frame_000.png", entries[0].Name())

	f, err := os.Open(filepath.Join(dir, "frame_002.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestFetchCommand(t *testing.T) {
	cfg := config.Default()
	cfg.BatchSize = 2
	cfg.SeqLen = 3
	cfg.NumSourceImages = 4
	cfg.LogLevel = "error"
	srv, err := injector.InitializeServer(context.Background(), cfg)
	require.NoError(t, err)
	hs := httptest.NewServer(srv.Handler())
	defer hs.Close()
	url := "ws" + hs.URL[len("http"):] + "/batches"

	out, err := run(t, "fetch", "--url", url+"?max=2")
	require.NoError(t, err)
	assert.Contains(t, out, "batch 1 image=[2 3 64 64 1]")
	assert.Contains(t, out, "received 2 batches")

	out, err = run(t, "fetch", "--url", url, "-n", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "received 1 batches")

	_, err = run(t, "fetch", "--url", url+"?seed=x")
	assert.Error(t, err)
}
