// Package pgm reads and writes grayscale images as integer grids.
//
// The native format is plain PGM ("P2"): a text header of magic, width,
// height and maxval followed by width*height decimal samples, with '#'
// comments allowed anywhere whitespace is. Raster formats are accepted on load
// and converted to 8-bit gray.
package pgm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Codec errors.
var (
	// ErrFormat is returned when the input is not a well-formed P2 image.
	ErrFormat = errors.New("pgm: malformed image")

	// ErrUnsupportedFormat is returned for a file extension with no codec.
	ErrUnsupportedFormat = errors.New("pgm: unsupported format")
)

// Magic is the plain-PGM magic number.
const Magic = "P2"

// Decoder limits.
const (
	// MaxSampleValue is the largest maxval the PGM format allows.
	MaxSampleValue = 65535

	// MaxPixels caps width*height so a bogus header cannot size a huge
	// allocation.
	MaxPixels = 1 << 28

	// preallocPixels bounds the buffer reserved before any sample is read.
	preallocPixels = 1 << 16
)

// Image is a decoded grayscale image. Pixels are row-major.
type Image struct {
	Width  int
	Height int
	MaxVal int
	Pixels []int
}

// Decode reads a P2 image.
func Decode(r io.Reader) (*Image, error) {
	s := &scanner{r: bufio.NewReader(r)}

	magic, err := s.token()
	if err != nil {
		return nil, fmt.Errorf("%w: reading magic: %w", ErrFormat, err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic %q, want %q", ErrFormat, magic, Magic)
	}

	var header [3]int
	for i, name := range []string{"width", "height", "maxval"} {
		v, err := s.int()
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrFormat, name, err)
		}
		if v <= 0 {
			return nil, fmt.Errorf("%w: %s %d", ErrFormat, name, v)
		}
		header[i] = v
	}

	img := &Image{Width: header[0], Height: header[1], MaxVal: header[2]}
	if img.MaxVal > MaxSampleValue {
		return nil, fmt.Errorf("%w: maxval %d exceeds %d", ErrFormat, img.MaxVal, MaxSampleValue)
	}
	if img.Width > MaxPixels/img.Height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrFormat, img.Width, img.Height, MaxPixels)
	}

	// Grow with the data so a truncated file never pays for its header.
	n := img.Width * img.Height
	img.Pixels = make([]int, 0, min(n, preallocPixels))
	for i := range n {
		v, err := s.int()
		if err != nil {
			return nil, fmt.Errorf("%w: pixel %d of %d: %w", ErrFormat, i, n, err)
		}
		if v < 0 || v > img.MaxVal {
			return nil, fmt.Errorf("%w: pixel %d = %d outside [0, %d]", ErrFormat, i, v, img.MaxVal)
		}
		img.Pixels = append(img.Pixels, v)
	}
	return img, nil
}

// Encode writes img as P2, one image row per line.
func Encode(w io.Writer, img *Image) error {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pixels) != img.Width*img.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrFormat, len(img.Pixels), img.Width, img.Height)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%d %d\n%d\n", Magic, img.Width, img.Height, img.MaxVal)

	buf := make([]byte, 0, 8)
	for r := range img.Height {
		row := img.Pixels[r*img.Width : (r+1)*img.Width]
		for c, v := range row {
			if c > 0 {
				_ = bw.WriteByte(' ')
			}
			buf = strconv.AppendInt(buf[:0], int64(v), 10)
			_, _ = bw.Write(buf)
		}
		_ = bw.WriteByte('\n')
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("pgm: write: %w", err)
	}
	return nil
}

// scanner splits PGM text into whitespace-separated tokens, dropping
// comments.
type scanner struct {
	r *bufio.Reader
}

// token returns the next token, or io.ErrUnexpectedEOF if none is left.
func (s *scanner) token() (string, error) {
	var tok []byte
	for {
		b, err := s.r.ReadByte()
		if err == io.EOF {
			if len(tok) > 0 {
				return string(tok), nil
			}
			return "", io.ErrUnexpectedEOF
		}
		if err != nil {
			return "", err
		}

		switch {
		case b == '#':
			if _, err := s.r.ReadString('\n'); err != nil && err != io.EOF {
				return "", err
			}
			if len(tok) > 0 {
				return string(tok), nil
			}
		case isSpace(b):
			if len(tok) > 0 {
				return string(tok), nil
			}
		default:
			tok = append(tok, b)
		}
	}
}

// int returns the next token as a decimal integer.
func (s *scanner) int() (int, error) {
	tok, err := s.token()
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", tok)
	}
	return v, nil
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
