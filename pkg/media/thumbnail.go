// Package media resizes gallery uploads.
package media

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Thumbnailer renders bounded JPEG previews of uploaded photos.
type Thumbnailer struct {
	width   int
	height  int
	quality int
}

// NewThumbnailer returns a thumbnailer cropping to width x height.
func NewThumbnailer(width, height int) *Thumbnailer {
	if width <= 0 {
		width = 320
	}
	if height <= 0 {
		height = 240
	}
	return &Thumbnailer{width: width, height: height, quality: 85}
}

// Result is a rendered thumbnail with the source image bounds.
type Result struct {
	Data         []byte
	SourceWidth  int
	SourceHeight int
	Width        int
	Height       int
}

// Render decodes src honouring EXIF orientation and writes a cropped JPEG thumbnail.
func (t *Thumbnailer) Render(src io.Reader) (*Result, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	bounds := img.Bounds()
	thumb := imaging.Thumbnail(img, t.width, t.height, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return &Result{
		Data:         buf.Bytes(),
		SourceWidth:  bounds.Dx(),
		SourceHeight: bounds.Dy(),
		Width:        thumb.Bounds().Dx(),
		Height:       thumb.Bounds().Dy(),
	}, nil
}

// Dimensions reads only the image header.
func Dimensions(src io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return 0, 0, fmt.Errorf("read image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
