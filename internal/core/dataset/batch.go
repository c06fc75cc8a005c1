package dataset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/zeusync/movingmnist/internal/core/env"
	"github.com/zeusync/movingmnist/internal/core/errs"
	"github.com/zeusync/movingmnist/internal/core/systems/render"
	"github.com/zeusync/movingmnist/pkg/encoding"
)

var _ encoding.Serializable[Batch] = (*Batch)(nil)

const (
	frameSize = render.CanvasWidth * render.CanvasHeight

	wireMagic   = "MMNB"
	wireVersion = uint16(1)
)

// Batch stacks BatchSize sequences of SeqLen frames.
//
//	Image   float32[BatchSize, SeqLen, 64, 64, 1]
//	Action  float32[BatchSize, SeqLen, 2], all zero
//	IsFirst bool[BatchSize, SeqLen], true only for batch row 0
//
// All arrays are dense and row-major.
type Batch struct {
	BatchSize int
	SeqLen    int
	Image     []float32
	Action    []float32
	IsFirst   []bool
}

func newBatch(batchSize, seqLen int) Batch {
	b := Batch{
		BatchSize: batchSize,
		SeqLen:    seqLen,
		Image:     make([]float32, batchSize*seqLen*frameSize),
		Action:    make([]float32, batchSize*seqLen*env.ActionDim),
		IsFirst:   make([]bool, batchSize*seqLen),
	}
	if batchSize > 0 {
		for t := 0; t < seqLen; t++ {
			b.IsFirst[t] = true
		}
	}
	return b
}

func pack(seqs []env.Sequence, seqLen int) Batch {
	b := newBatch(len(seqs), seqLen)
	for i, seq := range seqs {
		for t, f := range seq {
			copy(b.Frame(i, t), f.Pixels())
		}
	}
	return b
}

func (b Batch) ImageShape() [5]int {
	return [5]int{b.BatchSize, b.SeqLen, render.CanvasWidth, render.CanvasHeight, 1}
}

func (b Batch) ActionShape() [3]int {
	return [3]int{b.BatchSize, b.SeqLen, env.ActionDim}
}

func (b Batch) IsFirstShape() [2]int {
	return [2]int{b.BatchSize, b.SeqLen}
}

// Frame returns the pixels of frame t in sequence i, first-axis major.
func (b Batch) Frame(i, t int) []float32 {
	off := (i*b.SeqLen + t) * frameSize
	return b.Image[off : off+frameSize]
}

func (b Batch) ImageAt(i, t, x, y int) float32 {
	return b.Frame(i, t)[x*render.CanvasHeight+y]
}

func (b Batch) IsFirstAt(i, t int) bool {
	return b.IsFirst[i*b.SeqLen+t]
}

// EstimateBytes approximates the memory one pull needs: the per-sequence frames
// held during the build plus the packed batch arrays.
func EstimateBytes(batchSize, seqLen int) int64 {
	cells := int64(batchSize) * int64(seqLen)
	image := cells * frameSize * 4
	return 2*image + cells*env.ActionDim*4 + cells
}

type wireHeader struct {
	Magic     [4]byte
	Version   uint16
	_         uint16
	BatchSize uint32
	SeqLen    uint32
	Width     uint32
	Height    uint32
}

// Serialize encodes the batch as a little-endian header followed by the image,
// action and is_first arrays.
func (b *Batch) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(24 + 4*len(b.Image) + 4*len(b.Action) + len(b.IsFirst))

	h := wireHeader{
		Version:   wireVersion,
		BatchSize: uint32(b.BatchSize),
		SeqLen:    uint32(b.SeqLen),
		Width:     render.CanvasWidth,
		Height:    render.CanvasHeight,
	}
	copy(h.Magic[:], wireMagic)
	if err := binary.Write(&buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, b.Image); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, b.Action); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, b.IsFirst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a batch written by Serialize.
func (b *Batch) Deserialize(data []byte) error {
	r := bytes.NewReader(data)
	var h wireHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("read batch header: %w", err)
	}
	if string(h.Magic[:]) != wireMagic || h.Version != wireVersion {
		return errs.New(errs.ErrInvalidConfiguration, "unsupported batch encoding").
			WithContext("magic", string(h.Magic[:])).
			WithContext("version", h.Version)
	}
	if h.Width != render.CanvasWidth || h.Height != render.CanvasHeight {
		return errs.New(errs.ErrInvalidConfiguration, "batch canvas size mismatch")
	}

	cells := uint64(h.BatchSize) * uint64(h.SeqLen)
	want := cells * (frameSize*4 + env.ActionDim*4 + 1)
	if uint64(r.Len()) != want || cells > math.MaxInt32 {
		return errs.New(errs.ErrInvalidConfiguration, "batch payload has wrong length").
			WithContext("bytes", r.Len()).
			WithContext("want", want)
	}

	out := newBatch(int(h.BatchSize), int(h.SeqLen))
	if err := binary.Read(r, binary.LittleEndian, out.Image); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, out.Action); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, out.IsFirst); err != nil {
		return err
	}
	*b = out
	return nil
}
