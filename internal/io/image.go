package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration, used by most video thumbnails
)

// asciiRamp maps luminance to characters, darkest first.
const asciiRamp = " .:-=+*#%@"

// ImageService provides image processing for thumbnails and cover art.
//
// ImageService is used to:
//   - Resize thumbnails to fit maximum dimensions before embedding them in MP3 tags
//   - Convert thumbnails (often WebP) to JPEG for better player compatibility
//   - Render thumbnails as ASCII art for the terminal details panel
//
// Example usage:
//
//	svc := NewImageService()
//
//	thumb, _ := client.DownloadBytes(ctx, job.Thumbnail)
//
//	cover, _ := svc.ResizeImage(ctx, thumb, 500, 500)
//	art, _ := svc.ASCII(ctx, thumb, 40, 12)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// ResizeImage resizes an image to fit within the specified maximum dimensions.
//
// The aspect ratio is preserved. If the image is already smaller than the
// maximum dimensions, it will still be processed (re-encoded as JPEG).
//
// Returns the resized image as JPEG-encoded bytes.
//
// The Catmull-Rom algorithm is used for high-quality resizing.
//
// Example:
//
//	// A 1280x720 thumbnail becomes 1000x562
//	resized, err := svc.ResizeImage(ctx, thumb, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, err := decode(ctx, data)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fit(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(dst)
}

// ConvertToJPEG converts an image to JPEG format.
//
// ID3 cover art is embedded as image/jpeg, while thumbnails are frequently
// served as WebP or PNG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, err := decode(ctx, data)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

// ASCII renders an image as text of at most cols columns and rows lines.
//
// Terminal cells are roughly twice as tall as they are wide, which the
// scaling accounts for so the picture keeps its proportions.
//
// Example:
//
//	art, err := svc.ASCII(ctx, thumb, 40, 12)
//	fmt.Println(art)
func (s *ImageService) ASCII(ctx context.Context, data []byte, cols, rows int) (string, error) {
	if cols <= 0 || rows <= 0 {
		return "", errors.New("ascii: size must be positive")
	}

	img, err := decode(ctx, data)
	if err != nil {
		return "", err
	}

	bounds := img.Bounds()
	// halve the height so that one cell covers a square area
	w, h := fit(bounds.Dx(), bounds.Dy()/2, cols, rows)

	gray := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(gray, gray.Bounds(), img, bounds, draw.Src, nil)

	var sb strings.Builder
	for y := range h {
		for x := range w {
			sb.WriteByte(rampChar(gray.GrayAt(x, y)))
		}
		if y < h-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

func rampChar(c color.Gray) byte {
	idx := int(c.Y) * len(asciiRamp) / 256
	return asciiRamp[idx]
}

// fit scales width x height down to fit maxWidth x maxHeight, keeping the
// aspect ratio. Results are at least 1x1.
func fit(width, height, maxWidth, maxHeight int) (int, int) {
	width, height = max(width, 1), max(height, 1)

	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			// Width is the limiting factor
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}
	return max(width, 1), max(height, 1)
}

func decode(ctx context.Context, data []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
