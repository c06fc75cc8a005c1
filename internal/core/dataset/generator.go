package dataset

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/observability/log"
	"github.com/zeusync/movingmnist/internal/core/random"
	"github.com/zeusync/movingmnist/pkg/concurrent"
	"github.com/zeusync/movingmnist/pkg/sequence"
)

const (
	DefaultBatchSize = 256
	DefaultSeed      = 38
)

// Config controls batch assembly.
type Config struct {
	BatchSize int    `json:"batch_size" yaml:"batch_size"`
	Seed      uint64 `json:"seed" yaml:"seed"`
	// Workers bounds concurrent sequence builds; 0 means one per CPU.
	Workers int `json:"workers" yaml:"workers"`
	// MaxBatchBytes rejects pulls whose estimated footprint is larger; 0 disables the check.
	MaxBatchBytes int64 `json:"max_batch_bytes" yaml:"max_batch_bytes"`
}

func DefaultConfig() Config {
	return Config{BatchSize: DefaultBatchSize, Seed: DefaultSeed}
}

// Validate validates the batch configuration
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return errs.New(errs.ErrInvalidConfiguration, "batch_size must be positive").WithContext("batch_size", c.BatchSize)
	}
	if c.Workers < 0 {
		return errs.New(errs.ErrInvalidConfiguration, "workers must not be negative").WithContext("workers", c.Workers)
	}
	if c.MaxBatchBytes < 0 {
		return errs.New(errs.ErrInvalidConfiguration, "max_batch_bytes must not be negative")
	}
	return nil
}

// Pull builds one batch from stream and returns it with the stream to use for
// the next pull. stream is consumed. Every batch element is seeded by its own
// child of a fresh split, so no seed is shared within or across batches.
//
// When the estimated footprint exceeds cfg.MaxBatchBytes the pull fails with
// ErrResourceExhausted before touching stream. When a build fails after the
// split, the advanced stream is still returned.
func Pull(ctx context.Context, e *env.Env, stream *random.Stream, cfg Config) (Batch, *random.Stream, error) {
	seqLen := e.Config().SeqLen
	if need := EstimateBytes(cfg.BatchSize, seqLen); cfg.MaxBatchBytes > 0 && need > cfg.MaxBatchBytes {
		return Batch{}, stream, errs.New(errs.ErrResourceExhausted, "batch does not fit the memory limit").
			WithContext("need", need).
			WithContext("limit", cfg.MaxBatchBytes)
	}

	next, current, err := stream.Split()
	if err != nil {
		return Batch{}, nil, err
	}
	seeds, err := current.SplitN(cfg.BatchSize)
	if err != nil {
		return Batch{}, next, err
	}

	seqs, err := concurrent.ParallelMap(ctx, sequence.From(seeds), cfg.Workers,
		func(_ context.Context, seed *random.Stream) (env.Sequence, error) {
			return e.Build(seed)
		},
	)
	if err != nil {
		return Batch{}, next, err
	}
	return pack(seqs, seqLen), next, nil
}

// Generator is an endless, single-consumer source of batches. It owns its
// stream; each pull replaces it with the stream returned by Pull.
type Generator struct {
	mu     sync.Mutex
	env    *env.Env
	cfg    Config
	stream *random.Stream
	pulled uint64
	runID  string
	logger log.Log
}

type Option func(*Generator)

func WithLogger(logger log.Log) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithStream starts the generator from stream instead of cfg.Seed.
func WithStream(stream *random.Stream) Option {
	return func(g *Generator) {
		g.stream = stream
	}
}

func NewGenerator(e *env.Env, cfg Config, opts ...Option) (*Generator, error) {
	if e == nil {
		return nil, errs.New(errs.ErrInvalidConfiguration, "environment is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Generator{
		env:    e,
		cfg:    cfg,
		runID:  uuid.NewString(),
		logger: log.Provide(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.stream == nil {
		g.stream = random.New(cfg.Seed)
	}
	g.logger = g.logger.With(log.String("run_id", g.runID))

	g.logger.Info("batch generator created",
		log.Int("batch_size", cfg.BatchSize),
		log.Int("seq_len", e.Config().SeqLen),
		log.Int("digits", e.Config().DigitsPerSequence),
		log.Uint64("seed", cfg.Seed),
		log.Int("workers", cfg.Workers),
	)
	return g, nil
}

func (g *Generator) RunID() string {
	return g.runID
}

// Pulled returns the number of batches produced so far.
func (g *Generator) Pulled() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pulled
}

// Next produces the next batch. Concurrent calls are serialized.
func (g *Generator) Next(ctx context.Context) (Batch, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	batch, next, err := Pull(ctx, g.env, g.stream, g.cfg)
	if next != nil {
		g.stream = next
	}
	if err != nil {
		g.logger.Error("batch generation failed", log.Uint64("batch", g.pulled), log.Error(err))
		return Batch{}, err
	}

	g.logger.Debug("batch generated",
		log.Uint64("batch", g.pulled),
		log.Duration("elapsed", time.Since(start)),
	)
	g.pulled++
	return batch, nil
}

// Batches yields batches until the consumer stops. An error is yielded once and ends the sequence.
func (g *Generator) Batches(ctx context.Context) iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		for {
			batch, err := g.Next(ctx)
			if err != nil {
				yield(Batch{}, err)
				return
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}
