// Package loader provides ROM image loading for the ARM2 emulator.
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/arcsim/emu"
)

// MaxImageSize is the largest ROM image accepted, in bytes.
const MaxImageSize = emu.ROMWords * 4

// ErrImageTooLarge is returned for images that do not fit the ROM block.
var ErrImageTooLarge = errors.New("ROM image too large")

// ErrEmptyImage is returned for zero-length images.
var ErrEmptyImage = errors.New("ROM image is empty")

// ROM represents a loaded ROM image ready to boot.
type ROM struct {
	// Words holds the image as little-endian words, zero-padded to
	// emu.ROMWords.
	Words []uint32
	// Size is the length of the image in bytes.
	Size int
}

// Load reads a ROM image file.
func Load(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rom, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return rom, nil
}

// Read reads a ROM image from r. A trailing partial word is zero-filled.
func Read(r io.Reader) (*ROM, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrImageTooLarge, MaxImageSize)
	}

	size := len(data)
	if tail := size % 4; tail != 0 {
		data = append(data, make([]byte, 4-tail)...)
	}

	words := make([]uint32, emu.ROMWords)
	for i := range len(data) / 4 {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	return &ROM{Words: words, Size: size}, nil
}
