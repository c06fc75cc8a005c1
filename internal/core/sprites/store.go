package sprites

import (
	"github.com/zeusync/movingmnist/internal/core/errs"
)

const (
	Width  = 28
	Height = 28
)

// Sprite is an immutable Width×Height grayscale image stored first-axis major:
// pixel (x, y) lives at x*Height + y.
type Sprite struct {
	pixels []uint8
}

// NewSprite copies pixels into a sprite. len(pixels) must be Width*Height.
func NewSprite(pixels []uint8) (Sprite, error) {
	if len(pixels) != Width*Height {
		return Sprite{}, errs.New(errs.ErrInvalidConfiguration, "sprite has wrong size").
			WithContext("pixels", len(pixels)).
			WithContext("want", Width*Height)
	}
	cp := make([]uint8, len(pixels))
	copy(cp, pixels)
	return Sprite{pixels: cp}, nil
}

// At returns the intensity at (x, y).
func (s Sprite) At(x, y int) uint8 {
	return s.pixels[x*Height+y]
}

// Row returns the Height pixels sharing first-axis coordinate x. The slice must not be modified.
func (s Sprite) Row(x int) []uint8 {
	return s.pixels[x*Height : (x+1)*Height]
}

// Store is an immutable indexed collection of sprites, safe for concurrent reads.
type Store struct {
	sprites []Sprite
}

// NewStore builds a store. An empty collection is a configuration error.
func NewStore(sprites []Sprite) (*Store, error) {
	if len(sprites) == 0 {
		return nil, errs.New(errs.ErrInvalidConfiguration, "sprite store is empty")
	}
	for i, s := range sprites {
		if len(s.pixels) != Width*Height {
			return nil, errs.New(errs.ErrInvalidConfiguration, "sprite has wrong size").
				WithContext("index", i).
				WithContext("pixels", len(s.pixels))
		}
	}
	cp := make([]Sprite, len(sprites))
	copy(cp, sprites)
	return &Store{sprites: cp}, nil
}

// Len returns the number of sprites.
func (s *Store) Len() int {
	return len(s.sprites)
}

// At looks up sprite i. Out-of-range indices fail, they never wrap.
func (s *Store) At(i int) (Sprite, error) {
	if i < 0 || i >= len(s.sprites) {
		return Sprite{}, errs.New(errs.ErrIndexOutOfRange, "sprite index out of range").
			WithContext("index", i).
			WithContext("len", len(s.sprites))
	}
	return s.sprites[i], nil
}

// Truncate returns a store holding the first n sprites, or all of them if n exceeds Len.
func (s *Store) Truncate(n int) (*Store, error) {
	if n < 1 {
		return nil, errs.New(errs.ErrInvalidConfiguration, "truncated sprite store would be empty").
			WithContext("n", n)
	}
	if n >= len(s.sprites) {
		return s, nil
	}
	return &Store{sprites: s.sprites[:n]}, nil
}
