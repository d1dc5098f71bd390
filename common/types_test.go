package common

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImportedTextureDecode(t *testing.T) {
	tex := &ImportedTexture{Name: "albedo", Data: encodePNG(t, 4, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})}

	img, err := tex.Decode()
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, 2, tex.Height)
	assert.Equal(t, "image/png", tex.MimeType)
	assert.Equal(t, []byte{10, 20, 30, 255}, img.Pix[:4])
}

func TestImportedTextureDecodeRejectsGarbage(t *testing.T) {
	tex := &ImportedTexture{Name: "junk", Data: []byte("definitely not pixels")}
	_, err := tex.Decode()
	assert.ErrorIs(t, err, ErrNotAnImage)
}

func TestDecodeMipChain(t *testing.T) {
	tex := &ImportedTexture{Data: encodePNG(t, 8, 4, color.RGBA{R: 200, G: 100, B: 50, A: 255}), SRGB: true}

	chain, err := tex.DecodeMipChain()
	require.NoError(t, err)
	require.Len(t, chain, 3)

	sizes := [][2]uint32{{8, 4}, {4, 2}, {2, 1}}
	for i, lvl := range chain {
		assert.Equal(t, sizes[i][0], lvl.Width, "level %d", i)
		assert.Equal(t, sizes[i][1], lvl.Height, "level %d", i)
		assert.Len(t, lvl.Pixels, int(lvl.Width*lvl.Height*4), "level %d", i)
	}
}

func TestBuildMipChainNonSquare(t *testing.T) {
	chain := BuildMipChain(image.NewRGBA(image.Rect(0, 0, 8, 2)), false)
	require.Len(t, chain, MipLevelCount(8, 2))

	last := chain[len(chain)-1]
	assert.Equal(t, uint32(4), last.Width)
	assert.Equal(t, uint32(1), last.Height, "the chain stops once the smaller side is 1")
	assert.Len(t, last.Pixels, 16)
}

func TestSolidTexture(t *testing.T) {
	levels := SolidTexture([4]byte{128, 128, 255, 255})
	require.Len(t, levels, 1)
	assert.Equal(t, uint32(1), levels[0].Width)
	assert.Equal(t, []byte{128, 128, 255, 255}, levels[0].Pixels)
}
