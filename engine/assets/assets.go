// Package assets loads images and fonts from a directory (or any fs.FS)
// into the engine's pixel and text types.
package assets

import (
	"image"
	_ "image/png"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/hubastard/trellis/engine/pixels"
	"github.com/hubastard/trellis/engine/text"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

// Loader resolves asset names under images/ and fonts/ of its file system.
type Loader struct {
	fsys fs.FS
}

// Dir loads assets from a directory on disk.
func Dir(root string) *Loader { return &Loader{fsys: os.DirFS(root)} }

// FS loads assets from fsys, such as an embed.FS.
func FS(fsys fs.FS) *Loader { return &Loader{fsys: fsys} }

// Image decodes images/<name> into RGBA pixel data. PNG and BMP are
// supported.
func (l *Loader) Image(name string) (*pixels.PixelData, error) {
	p := path.Join("images", name)
	f, err := l.fsys.Open(p)
	if err != nil {
		return nil, errors.Wrapf(err, "open image %q", p)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %q", p)
	}
	if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" && !strings.EqualFold(ext, format) {
		return nil, errors.Errorf("image %q holds %s data", p, format)
	}
	return pixels.FromImage(img), nil
}

// Font parses fonts/<name> as a TrueType or OpenType face at size pixels.
func (l *Loader) Font(name string, size float64) (*text.TrueType, error) {
	p := path.Join("fonts", name)
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return nil, errors.Wrapf(err, "read font %q", p)
	}
	face, err := text.ParseTrueType(data, size)
	if err != nil {
		return nil, errors.Wrapf(err, "font %q", p)
	}
	return face, nil
}
