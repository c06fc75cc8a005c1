package sprites

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/zeusync/movingmnist/internal/core/errs"
)

const (
	idxUbyte3D uint32 = 0x00000803

	maxIDXImages = math.MaxInt32 / (Width * Height)
)

var idxFiles = map[Split]string{
	SplitTrain: "train-images-idx3-ubyte",
	SplitTest:  "t10k-images-idx3-ubyte",
}

// IDXProvider reads MNIST image files in IDX format from Dir. Both the plain
// and the ".gz" variant of each file name are accepted.
type IDXProvider struct {
	Dir string
}

func (p IDXProvider) Images(ctx context.Context, split Split) (Images, error) {
	name, ok := idxFiles[split]
	if !ok {
		return Images{}, errs.New(errs.ErrInvalidConfiguration, "unknown split").WithContext("split", string(split))
	}
	if err := ctx.Err(); err != nil {
		return Images{}, err
	}

	path := filepath.Join(p.Dir, name)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		path += ".gz"
		f, err = os.Open(path)
	}
	if err != nil {
		return Images{}, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if filepath.Ext(path) == ".gz" {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return Images{}, fmt.Errorf("%s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	img, err := ReadIDX(r)
	if err != nil {
		return Images{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ReadIDX decodes a 3-dimensional unsigned-byte IDX tensor (count, rows, cols).
func ReadIDX(r io.Reader) (Images, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return Images{}, fmt.Errorf("read idx header: %w", err)
	}
	if header[0] != idxUbyte3D {
		return Images{}, errs.New(errs.ErrInvalidConfiguration, "not a 3D ubyte idx file").
			WithContext("magic", header[0])
	}

	if header[2] != Width || header[3] != Height {
		return Images{}, errs.New(errs.ErrInvalidConfiguration, "idx images have wrong dimensions").
			WithContext("width", header[2]).
			WithContext("height", header[3])
	}
	if header[1] > maxIDXImages {
		return Images{}, errs.New(errs.ErrInvalidConfiguration, "idx image count too large").
			WithContext("count", header[1])
	}

	img := Images{
		Count:    int(header[1]),
		Width:    Width,
		Height:   Height,
		Channels: 1,
	}
	// The payload is read one image at a time so a forged count cannot force
	// a large allocation before the data is seen.
	sprite := make([]byte, Width*Height)
	for i := 0; i < img.Count; i++ {
		if _, err := io.ReadFull(r, sprite); err != nil {
			return Images{}, fmt.Errorf("read idx image %d: %w: %w", i, errs.ErrInvalidConfiguration, err)
		}
		img.Pixels = append(img.Pixels, sprite...)
	}
	return img, nil
}
