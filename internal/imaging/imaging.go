// Package imaging prepares item photos for the enrichment request: it
// downscales them to a maximum width and re-encodes them as JPEG.
package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/image/draw"

	"github.com/dmitrijs2005/quickflip/internal/common"
)

const (
	DefaultMaxWidth = 800
	DefaultQuality  = 80
)

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Compress decodes a JPEG or PNG image, scales it down to maxWidth keeping
// the aspect ratio, and returns it as JPEG at the given quality. Images
// narrower than maxWidth keep their size.
func Compress(r io.Reader, maxWidth, quality int) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}

	if mime := http.DetectContentType(data); !allowedMIME[mime] {
		return nil, fmt.Errorf("unsupported image format: %s", mime)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img = fitWidth(img, maxWidth)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

func fitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		return img
	}

	newH := int(float64(h) * float64(maxWidth) / float64(w))
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// DataURI wraps JPEG bytes in the data URI the describe endpoint expects.
func DataURI(jpegData []byte) string {
	return common.JPEGDataURIPrefix + base64.StdEncoding.EncodeToString(jpegData)
}

// FileSource turns a local image reference (a path or a file:// URI) into
// a compressed JPEG data URI.
type FileSource struct {
	MaxWidth int
	Quality  int
}

func NewFileSource(maxWidth, quality int) *FileSource {
	return &FileSource{MaxWidth: maxWidth, Quality: quality}
}

func (s *FileSource) Encode(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := strings.TrimPrefix(ref, "file://")
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	quality := s.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	data, err := Compress(f, s.MaxWidth, quality)
	if err != nil {
		return "", err
	}
	return DataURI(data), nil
}
