package pgm

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
)

// Load reads an image from path, choosing the codec by extension.
//
// .pgm files are decoded as P2. .png, .gif, .jpg, .jpeg, .bmp, .tif and
// .tiff files are decoded as rasters and converted to 8-bit gray (maxval
// 255).
func Load(path string) (*Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("pgm: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pgm", "":
		return Decode(f)
	case ".png", ".gif", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff":
		return DecodeRaster(f)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Save writes img to path. A .png path gets a PNG; anything else gets P2.
func Save(path string, img *Image) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("pgm: create file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".png") {
		err = EncodePNG(f, img)
	} else {
		err = Encode(f, img)
	}
	if err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// DecodeRaster decodes any registered raster format and converts it to gray.
func DecodeRaster(r io.Reader) (*Image, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pgm: decode: %w", err)
	}
	return FromStdImage(src), nil
}

// FromStdImage converts a standard library image to an 8-bit gray Image.
func FromStdImage(src image.Image) *Image {
	b := src.Bounds()
	img := &Image{
		Width:  b.Dx(),
		Height: b.Dy(),
		MaxVal: 255,
		Pixels: make([]int, b.Dx()*b.Dy()),
	}

	// Fast path for gray images
	if g, ok := src.(*image.Gray); ok {
		for y := range img.Height {
			row := g.Pix[y*g.Stride : y*g.Stride+img.Width]
			for x, v := range row {
				img.Pixels[y*img.Width+x] = int(v)
			}
		}
		return img
	}

	for y := range img.Height {
		for x := range img.Width {
			g := color.GrayModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			img.Pixels[y*img.Width+x] = int(g.Y)
		}
	}
	return img
}

// ToStdImage converts img to a standard library gray image, scaling samples
// to the full 8-bit range (16-bit when maxval exceeds 255).
func ToStdImage(img *Image) image.Image {
	rect := image.Rect(0, 0, img.Width, img.Height)
	if img.MaxVal > 255 {
		out := image.NewGray16(rect)
		for i, v := range img.Pixels {
			out.SetGray16(i%img.Width, i/img.Width, color.Gray16{Y: uint16(v * 0xffff / img.MaxVal)})
		}
		return out
	}

	out := image.NewGray(rect)
	for i, v := range img.Pixels {
		out.Pix[(i/img.Width)*out.Stride+i%img.Width] = uint8(v * 255 / img.MaxVal)
	}
	return out
}

// EncodePNG writes img as a grayscale PNG.
func EncodePNG(w io.Writer, img *Image) error {
	if img.Width <= 0 || img.Height <= 0 || img.MaxVal <= 0 || len(img.Pixels) != img.Width*img.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrFormat, len(img.Pixels), img.Width, img.Height)
	}
	if err := png.Encode(w, ToStdImage(img)); err != nil {
		return fmt.Errorf("pgm: encode PNG: %w", err)
	}
	return nil
}
