package meme

import (
	"fmt"
	"image"
	"image/draw"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
)

// FontCache holds parsed fonts keyed by file path. Each font is read and
// parsed at most once and shared read-only afterwards.
type FontCache struct {
	mu    sync.Mutex
	fonts map[string]*truetype.Font
	order []string
}

func NewFontCache() *FontCache {
	return &FontCache{fonts: make(map[string]*truetype.Font)}
}

// Load parses the font file at path unless it is already cached
func (c *FontCache) Load(path string) (*truetype.Font, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.fonts[path]; ok {
		return f, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font %s: %w", path, err)
	}
	f, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	c.fonts[path] = f
	c.order = append(c.order, path)
	return f, nil
}

// Get returns a previously loaded font
func (c *FontCache) Get(path string) (*truetype.Font, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.fonts[path]
	return f, ok
}

// Any returns the first loaded font, for templates whose own font could not
// be decoded. ok is false when nothing loaded at all.
func (c *FontCache) Any() (f *truetype.Font, path string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.order) == 0 {
		return nil, "", false
	}
	path = c.order[0]
	return c.fonts[path], path, true
}

// ImageCache holds decoded template images keyed by file path. Like fonts,
// each image decodes at most once; templates naming the same file share one
// bitmap, which is safe because rendering only ever draws on a clone.
type ImageCache struct {
	mu     sync.Mutex
	images map[string]*image.RGBA
}

func NewImageCache() *ImageCache {
	return &ImageCache{images: make(map[string]*image.RGBA)}
}

// Load decodes the image file at path unless it is already cached
func (c *ImageCache) Load(path string) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[path]; ok {
		return img, nil
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	c.images[path] = img
	return img, nil
}

// LoadImage decodes the image at path and converts it to RGBA
func LoadImage(path string) (*image.RGBA, error) {
	img, err := gg.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("loading image %s: %w", path, err)
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
