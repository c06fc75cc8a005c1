package sprites

import (
	"context"
	"fmt"

	"github.com/zeusync/movingmnist/internal/core/errs"
)

// Split names a partition of the source image set.
type Split string

const (
	SplitTrain Split = "train"
	SplitTest  Split = "test"
)

// SplitFor maps the train flag onto a split name.
func SplitFor(train bool) Split {
	if train {
		return SplitTrain
	}
	return SplitTest
}

// Images is a dense uint8 tensor of shape Count×Width×Height×Channels.
type Images struct {
	Count    int
	Width    int
	Height   int
	Channels int
	Pixels   []byte
}

// Provider delivers the source image set for a split.
type Provider interface {
	Images(ctx context.Context, split Split) (Images, error)
}

// FromImages squeezes the channel axis and converts up to limit images into a
// store. A non-positive limit keeps every image.
func FromImages(img Images, limit int) (*Store, error) {
	if img.Channels != 1 {
		return nil, errs.New(errs.ErrInvalidConfiguration, "source images must have a single channel").
			WithContext("channels", img.Channels)
	}
	if img.Width != Width || img.Height != Height {
		return nil, errs.New(errs.ErrInvalidConfiguration, "source images have wrong dimensions").
			WithContext("width", img.Width).
			WithContext("height", img.Height)
	}
	size := Width * Height
	if len(img.Pixels) != img.Count*size {
		return nil, errs.New(errs.ErrInvalidConfiguration, "source pixel buffer does not match image count").
			WithContext("count", img.Count).
			WithContext("bytes", len(img.Pixels))
	}

	n := img.Count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Sprite, n)
	for i := range out {
		// NewSprite copies, so the provider buffer may be reused by the caller.
		s, err := NewSprite(img.Pixels[i*size : (i+1)*size])
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return NewStore(out)
}

// Load pulls a split from the provider and builds a store of at most limit sprites.
func Load(ctx context.Context, p Provider, split Split, limit int) (*Store, error) {
	img, err := p.Images(ctx, split)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("load %s images", split)).WithContext("split", string(split))
	}
	return FromImages(img, limit)
}
