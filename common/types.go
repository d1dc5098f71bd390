// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/Carmen-Shannon/oxy-gl/engine/gpu"

	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrNotAnImage is returned when texture bytes are not a recognised image container.
var ErrNotAnImage = errors.New("data is not a supported image")

// TextureStagingData holds RGBA pixel data for one texture level pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the level in pixels.
	Width uint32
	// Height is the height of the level in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler object pending GPU creation.
type SamplerStagingData struct {
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter gpu.Filter
	// WrapS and WrapT specify the addressing mode outside [0, 1] for each texture axis.
	WrapS, WrapT gpu.Wrap
}

// DefaultSamplerStagingData is linear filtering with trilinear minification and repeat wrapping.
var DefaultSamplerStagingData = SamplerStagingData{
	MagFilter: gpu.FilterLinear,
	MinFilter: gpu.FilterLinearMipmapLinear,
	WrapS:     gpu.WrapRepeat,
	WrapT:     gpu.WrapRepeat,
}

// ImportedTexture represents encoded image bytes extracted from a model file.
type ImportedTexture struct {
	// Name is an identifier for this texture.
	Name string

	// Data contains the encoded image bytes (PNG, JPEG, WebP, BMP or TIFF).
	Data []byte

	// MimeType indicates the image format. When empty it is filled in by Decode from the content.
	MimeType string

	// SRGB marks color data that is sampled with sRGB decoding and downsampled with a sharper filter.
	SRGB bool

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Decode decodes the texture to an RGBA image.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - *image.RGBA: the decoded pixels with bounds starting at the origin
//   - error: error if the bytes are not a decodable image
func (t *ImportedTexture) Decode() (*image.RGBA, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}
	if len(t.Data) == 0 {
		return nil, fmt.Errorf("texture %q has no data", t.Name)
	}

	if !filetype.IsImage(t.Data) {
		return nil, fmt.Errorf("texture %q: %w", t.Name, ErrNotAnImage)
	}
	if t.MimeType == "" {
		if kind, err := filetype.Match(t.Data); err == nil {
			t.MimeType = kind.MIME.Value
		}
	}

	img, _, err := image.Decode(bytes.NewReader(t.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %q (%s): %w", t.Name, t.MimeType, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()
	return rgba, nil
}

// DecodeMipChain decodes the texture and builds its full mip chain. Each level is a 2x downsample of the
// previous one: Catmull-Rom for sRGB color, linear for data textures.
//
// Returns:
//   - []TextureStagingData: level 0 first, down to a level whose smaller side is 1
//   - error: error if decoding fails
func (t *ImportedTexture) DecodeMipChain() ([]TextureStagingData, error) {
	base, err := t.Decode()
	if err != nil {
		return nil, err
	}
	return BuildMipChain(base, t.SRGB), nil
}

// BuildMipChain downsamples base into MipLevelCount levels.
//
// Parameters:
//   - base: level 0 pixels
//   - srgb: selects the Catmull-Rom filter instead of the linear one
//
// Returns:
//   - []TextureStagingData: every level, level 0 first
func BuildMipChain(base *image.RGBA, srgb bool) []TextureStagingData {
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	levels := MipLevelCount(w, h)

	filter := transform.Linear
	if srgb {
		filter = transform.CatmullRom
	}

	chain := make([]TextureStagingData, 0, levels)
	chain = append(chain, TextureStagingData{Pixels: base.Pix, Width: uint32(w), Height: uint32(h)})

	current := base
	for i := 1; i < levels; i++ {
		w, h = max(w/2, 1), max(h/2, 1)
		current = transform.Resize(current, w, h, filter)
		chain = append(chain, TextureStagingData{Pixels: current.Pix, Width: uint32(w), Height: uint32(h)})
	}
	return chain
}

// SolidTexture returns a single 1x1 level filled with one RGBA color.
func SolidTexture(rgba [4]byte) []TextureStagingData {
	return []TextureStagingData{{Pixels: rgba[:], Width: 1, Height: 1}}
}
