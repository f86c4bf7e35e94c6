package pgm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecode(t *testing.T) {
	in := "P2\n# made by hand\n3 2\n# maxval next\n9\n0 1 2\n3 4 # trailing\n9\n"
	img, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}

	want := &Image{Width: 3, Height: 2, MaxVal: 9, Pixels: []int{0, 1, 2, 3, 4, 9}}
	if diff := cmp.Diff(want, img); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_NoTrailingNewline(t *testing.T) {
	img, err := Decode(strings.NewReader("P2 1 1 255 200"))
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if img.Pixels[0] != 200 {
		t.Errorf("pixel = %d, want 200", img.Pixels[0])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"binary magic", "P5\n1 1\n255\n0"},
		{"zero width", "P2\n0 1\n255\n"},
		{"negative height", "P2\n1 -1\n255\n0"},
		{"zero maxval", "P2\n1 1\n0\n0"},
		{"truncated header", "P2\n2"},
		{"truncated pixels", "P2\n2 2\n255\n1 2 3"},
		{"pixel above maxval", "P2\n2 1\n10\n5 11"},
		{"negative pixel", "P2\n2 1\n10\n-1 0"},
		{"garbage pixel", "P2\n2 1\n10\n1 x"},
		{"huge header", "P2\n4000000000 4000000000 255\n1 2 3\n"},
		{"header overflows int", "P2\n9223372036854775807 2 255\n1 2 3\n"},
		{"too many pixels", "P2\n65536 65536 255\n0\n"},
		{"maxval above 16 bits", "P2\n1 1 65536\n0"},
		{"header out of int range", "P2\n99999999999999999999 1 255\n0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.in)); !errors.Is(err, ErrFormat) {
				t.Errorf("Decode(%q) error = %v, want ErrFormat", tt.in, err)
			}
		})
	}
}

func TestDecode_SixteenBit(t *testing.T) {
	img, err := Decode(strings.NewReader("P2 2 1 65535 0 65535"))
	if err != nil {
		t.Fatalf("Decode() = %v", err)
	}
	if img.MaxVal != MaxSampleValue || img.Pixels[1] != MaxSampleValue {
		t.Errorf("Decode() = %+v, want maxval and pixel %d", img, MaxSampleValue)
	}
}

func TestEncode(t *testing.T) {
	img := &Image{Width: 3, Height: 2, MaxVal: 255, Pixels: []int{1, 22, 255, 0, 7, 80}}

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode() = %v", err)
	}

	want := "P2\n3 2\n255\n1 22 255\n0 7 80\n"
	if got := buf.String(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}

	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode()) = %v", err)
	}
	if diff := cmp.Diff(img, back); diff != "" {
		t.Errorf("decoded image mismatch (-want +got):\n%s", diff)
	}
}

func TestEncode_Invalid(t *testing.T) {
	img := &Image{Width: 3, Height: 2, MaxVal: 255, Pixels: []int{1, 2}}
	if err := Encode(&bytes.Buffer{}, img); !errors.Is(err, ErrFormat) {
		t.Errorf("Encode() error = %v, want ErrFormat", err)
	}
}
