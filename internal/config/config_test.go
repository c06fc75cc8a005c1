package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
	"github.com/zeusync/movingmnist/internal/core/sprites"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Train)
	assert.Equal(t, 256, cfg.BatchSize)
	assert.Equal(t, 1000, cfg.NumSourceImages)
	assert.Equal(t, 2, cfg.DigitsPerImage)
	assert.Equal(t, 100, cfg.SeqLen)
	assert.Equal(t, uint64(38), cfg.Seed)
	assert.Equal(t, sprites.SplitTrain, cfg.Split())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, log.LevelInfo, level)
}

func TestLoadYAML_OverridesDefaults(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(`
train: false
batch_size: 16
seq_len: 20
seed: 7
workers: 4
log_level: debug
source:
  kind: synthetic
server:
  addr: ":9000"
  max_batches: 3
`))
	require.NoError(t, err)

	assert.False(t, cfg.Train)
	assert.Equal(t, sprites.SplitTest, cfg.Split())
	assert.Equal(t, 16, cfg.Dataset().BatchSize)
	assert.Equal(t, uint64(7), cfg.Dataset().Seed)
	assert.Equal(t, 4, cfg.Dataset().Workers)
	assert.Equal(t, 20, cfg.Env().SeqLen)
	assert.Equal(t, 2, cfg.Env().DigitsPerSequence, "unset keys keep their default")
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Server.MaxBatches)
}

func TestLoadYAML_Empty(t *testing.T) {
	cfg, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAML_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "batch_sise: 3"},
		{"zero batch", "batch_size: 0"},
		{"negative seq_len", "seq_len: -1"},
		{"no digits", "digits_per_image: 0"},
		{"no sources", "num_source_images: 0"},
		{"bad level", "log_level: loud"},
		{"bad source", "source: {kind: s3}"},
		{"idx without dir", "source: {kind: idx}"},
		{"negative max_batches", "server: {max_batches: -2}"},
		{"malformed", "batch_size: [1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidConfiguration), err.Error())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mmnist.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source:\n  kind: idx\n  dir: /data/mnist\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	p, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, sprites.IDXProvider{Dir: "/data/mnist"}, p)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProvider_Synthetic(t *testing.T) {
	cfg := Default()
	cfg.NumSourceImages = 12
	p, err := cfg.Provider()
	require.NoError(t, err)
	assert.Equal(t, sprites.SyntheticProvider{Count: 12}, p)
}
