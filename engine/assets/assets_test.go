package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/hubastard/trellis/engine/colors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font/gofont/goregular"
)

func encoded(t *testing.T, enc func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.Set(2, 1, color.NRGBA{R: 0xFF, A: 0xFF})
	var buf bytes.Buffer
	require.NoError(t, enc(&buf, img))
	return buf.Bytes()
}

func testFS(t *testing.T) fstest.MapFS {
	pngData := encoded(t, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) })
	bmpData := encoded(t, func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) })
	return fstest.MapFS{
		"images/dot.png":    {Data: pngData},
		"images/dot.bmp":    {Data: bmpData},
		"images/liar.bmp":   {Data: pngData},
		"images/junk.png":   {Data: []byte("nope")},
		"fonts/regular.ttf": {Data: goregular.TTF},
		"fonts/broken.ttf":  {Data: []byte("nope")},
	}
}

func TestImage(t *testing.T) {
	l := FS(testFS(t))
	for _, name := range []string{"dot.png", "dot.bmp"} {
		t.Run(name, func(t *testing.T) {
			pd, err := l.Image(name)
			require.NoError(t, err)
			assert.Equal(t, 3, pd.Width())
			assert.Equal(t, 2, pd.Height())
			c, err := pd.GetPixelAt(2, 1, colors.White)
			require.NoError(t, err)
			assert.Equal(t, colors.Red, c)
		})
	}
}

func TestImageErrors(t *testing.T) {
	l := FS(testFS(t))
	for _, name := range []string{"missing.png", "junk.png", "liar.bmp"} {
		t.Run(name, func(t *testing.T) {
			_, err := l.Image(name)
			assert.Error(t, err)
		})
	}
}

func TestFont(t *testing.T) {
	l := FS(testFS(t))
	face, err := l.Font("regular.ttf", 14)
	require.NoError(t, err)
	defer face.Close()
	assert.Positive(t, face.Metrics().LineHeight)

	_, err = l.Font("broken.ttf", 14)
	assert.Error(t, err)
	_, err = l.Font("missing.ttf", 14)
	assert.Error(t, err)
}
