// Package datasettest writes small fundus cases to disk for tests.
package datasettest

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/image/tiff"

	"github.com/ironsheep/fundus-vessels/internal/dataset"
)

// Solid returns an opaque RGBA image filled with c.
func Solid(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// VerticalLine returns a black image with a 1-pixel wide white column at x.
func VerticalLine(width, height, x int) *image.RGBA {
	img := Solid(width, height, color.Black)
	for y := 0; y < height; y++ {
		img.Set(x, y, color.White)
	}
	return img
}

// Paths returns the default layout rooted at root.
func Paths(root string) dataset.Paths {
	p := dataset.DefaultPaths()
	p.Root = root
	return p
}

// WriteCase writes the three images of a case under root using the default
// layout. The photograph is stored losslessly as PNG bytes under the .jpg name
// so tests can assert exact pixel values; decoders sniff the content, not the
// extension. A nil image skips that role.
func WriteCase(t *testing.T, root, caseID string, photo, mask, expert image.Image) {
	t.Helper()
	loader := dataset.NewLoader(Paths(root), zerolog.Nop())

	write := func(role dataset.Role, img image.Image, encode func(*os.File, image.Image) error) {
		if img == nil {
			return
		}
		path, err := loader.Path(caseID, role)
		if err != nil {
			t.Fatalf("resolving %s path: %v", role, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("creating %s directory: %v", role, err)
		}
		f, err := os.Create(path)
		if err != nil {
			t.Fatalf("creating %s file: %v", role, err)
		}
		defer f.Close()
		if err := encode(f, img); err != nil {
			t.Fatalf("encoding %s image: %v", role, err)
		}
	}

	write(dataset.Photograph, photo, func(f *os.File, img image.Image) error { return png.Encode(f, img) })
	write(dataset.FieldOfViewMask, mask, func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) })
	write(dataset.ExpertAnnotation, expert, func(f *os.File, img image.Image) error { return tiff.Encode(f, img, nil) })
}

// WriteJPEG writes img as a JPEG file at path, creating parent directories.
func WriteJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating file: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}
}

// WriteOrientedJPEG writes img as a JPEG whose EXIF block carries the given
// orientation tag value (1..8).
func WriteOrientedJPEG(t *testing.T, path string, img image.Image, orientation uint16) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encoding jpeg: %v", err)
	}

	// Big-endian TIFF header and a single IFD holding the orientation SHORT.
	var exif bytes.Buffer
	exif.WriteString("Exif\x00\x00")
	exif.WriteString("MM\x00\x2a")
	binary.Write(&exif, binary.BigEndian, uint32(8))
	binary.Write(&exif, binary.BigEndian, uint16(1))
	binary.Write(&exif, binary.BigEndian, uint16(0x0112))
	binary.Write(&exif, binary.BigEndian, uint16(3))
	binary.Write(&exif, binary.BigEndian, uint32(1))
	binary.Write(&exif, binary.BigEndian, orientation)
	binary.Write(&exif, binary.BigEndian, uint16(0))
	binary.Write(&exif, binary.BigEndian, uint32(0))

	var out bytes.Buffer
	data := buf.Bytes()
	out.Write(data[:2]) // SOI
	out.Write([]byte{0xff, 0xe1})
	binary.Write(&out, binary.BigEndian, uint16(exif.Len()+2))
	out.Write(exif.Bytes())
	out.Write(data[2:])

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory: %v", err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}
}
