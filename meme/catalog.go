package meme

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// NoCommand marks a template that has no trigger of its own and is only
// reachable as the default
const NoCommand = ""

// Scale is a font scale in pixels, horizontal and vertical. Faces are built
// from the vertical value alone, so the catalog always sets both uniformly;
// non-uniform scales are not supported.
type Scale struct {
	X, Y float32
}

// Region is a rectangle within a template image, in pixel coordinates
type Region struct {
	Left, Top, Right, Bottom int
}

type Point struct {
	X, Y int
}

// Center returns the midpoint of the region
func (r Region) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// Template binds an image to the font, text region and command used to
// caption it. The image is owned by the catalog and never drawn on directly.
type Template struct {
	Image      *image.RGBA
	FontKey    string
	Scale      Scale
	Region     Region
	TextPrefix string
	TextSuffix string
	Command    string
	IsDefault  bool
}

// Center is the midpoint of the template's text region
func (t *Template) Center() Point {
	return t.Region.Center()
}

// Catalog holds the loaded templates in configuration order. That order
// decides ties between entries sharing a command or a default flag: the
// earlier entry wins.
type Catalog struct {
	Templates []*Template
	Fonts     *FontCache
	Images    *ImageCache
}

var knownKeys = map[string]bool{
	"filename": true, "font": true, "font_size": true,
	"left": true, "top": true, "right": true, "bottom": true,
	"text_prefix": true, "text_suffix": true,
	"command": true, "is_default": true,
}

/*
LoadCatalog reads the YAML template list at path. Image and font files named
in entries are resolved relative to assetDir. Defective entries or keys are
logged and skipped; a document that does not parse, declares no entries, or
yields no loadable template at all is an error and the process should not
start.
*/
func LoadCatalog(path, assetDir string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading meme config: %w", err)
	}
	var entries []map[string]any
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parsing meme config %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("meme config %s declares no templates", path)
	}

	catalog := &Catalog{Fonts: NewFontCache(), Images: NewImageCache()}
	lastFont := ""
	for i, entry := range entries {
		if tmpl := parseEntry(i, entry, assetDir, catalog.Fonts, catalog.Images, &lastFont); tmpl != nil {
			catalog.Templates = append(catalog.Templates, tmpl)
		}
	}
	if len(catalog.Templates) == 0 {
		return nil, fmt.Errorf("meme config %s has no loadable templates", path)
	}
	log.Infof("Loaded %d meme templates from %s", len(catalog.Templates), path)
	return catalog, nil
}

// ByTrigger returns the first template bound to the trigger, ignoring case.
// An empty trigger never matches; callers fall through to the default.
func (c *Catalog) ByTrigger(trigger string) *Template {
	if trigger == "" {
		return nil
	}
	for _, t := range c.Templates {
		if t.Command != NoCommand && strings.EqualFold(t.Command, trigger) {
			return t
		}
	}
	return nil
}

// Default returns the first template flagged is_default, or nil
func (c *Catalog) Default() *Template {
	for _, t := range c.Templates {
		if t.IsDefault {
			return t
		}
	}
	return nil
}

// FontFor resolves the template's font, substituting any loaded font when
// the template's own failed to decode. Nil means no font loaded at all and
// the command has to be refused.
func (c *Catalog) FontFor(t *Template) *truetype.Font {
	if f, ok := c.Fonts.Get(t.FontKey); ok {
		return f
	}
	if f, path, ok := c.Fonts.Any(); ok {
		log.Warnf("Font %s unavailable for template %q, substituting %s", t.FontKey, t.Command, path)
		return f
	}
	return nil
}

func parseEntry(idx int, entry map[string]any, assetDir string, fonts *FontCache, images *ImageCache, lastFont *string) *Template {
	for key := range entry {
		if !knownKeys[key] {
			log.Warnf("Template %d: ignoring unknown key %q", idx, key)
		}
	}

	filename, ok := stringKey(idx, entry, "filename")
	if !ok || filename == "" {
		log.Warnf("Template %d: no filename, skipping entry", idx)
		return nil
	}
	img, err := images.Load(filepath.Join(assetDir, filename))
	if err != nil {
		log.Warnf("Template %d: %s, skipping entry", idx, err)
		return nil
	}
	width, height := img.Bounds().Dx(), img.Bounds().Dy()

	fontPath, ok := stringKey(idx, entry, "font")
	if !ok || fontPath == "" {
		if *lastFont == "" {
			log.Warnf("Template %d: no font named and none loaded yet, skipping entry", idx)
			return nil
		}
		log.Warnf("Template %d: no font named, reusing %s", idx, *lastFont)
		fontPath = *lastFont
	} else {
		fontPath = filepath.Join(assetDir, fontPath)
	}
	if _, err := fonts.Load(fontPath); err != nil {
		// Keep the entry; rendering falls back to another loaded font
		log.Warnf("Template %d: %s", idx, err)
	} else {
		*lastFont = fontPath
	}

	size := 12
	if v, ok := intKey(idx, entry, "font_size"); ok {
		size = v
	}
	region := Region{Left: 0, Top: 0, Right: width, Bottom: height}
	if v, ok := boundedKey(idx, entry, "left", width); ok {
		region.Left = v
	}
	if v, ok := boundedKey(idx, entry, "top", height); ok {
		region.Top = v
	}
	if v, ok := boundedKey(idx, entry, "right", width); ok {
		region.Right = v
	}
	if v, ok := boundedKey(idx, entry, "bottom", height); ok {
		region.Bottom = v
	}

	tmpl := &Template{
		Image:   img,
		FontKey: fontPath,
		Scale:   Scale{X: float32(size), Y: float32(size)},
		Region:  region,
		Command: NoCommand,
	}
	if v, ok := stringKey(idx, entry, "text_prefix"); ok {
		tmpl.TextPrefix = v
	}
	if v, ok := stringKey(idx, entry, "text_suffix"); ok {
		tmpl.TextSuffix = v
	}
	if v, ok := stringKey(idx, entry, "command"); ok {
		tmpl.Command = v
	}
	if v, ok := boolKey(idx, entry, "is_default"); ok {
		tmpl.IsDefault = v
	}
	return tmpl
}

func stringKey(idx int, entry map[string]any, key string) (string, bool) {
	v, present := entry[key]
	if !present {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		log.Warnf("Template %d: ignoring key %q with non-string value %v", idx, key, v)
		return "", false
	}
	return s, true
}

func intKey(idx int, entry map[string]any, key string) (int, bool) {
	v, present := entry[key]
	if !present {
		return 0, false
	}
	n, ok := v.(int)
	if !ok || n <= 0 {
		log.Warnf("Template %d: ignoring key %q with invalid value %v", idx, key, v)
		return 0, false
	}
	return n, true
}

// boundedKey is intKey for region coordinates, which must also stay inside
// the image so the text region does
func boundedKey(idx int, entry map[string]any, key string, max int) (int, bool) {
	n, ok := intKey(idx, entry, key)
	if !ok {
		return 0, false
	}
	if n > max {
		log.Warnf("Template %d: ignoring key %q: %d is outside the image", idx, key, n)
		return 0, false
	}
	return n, true
}

func boolKey(idx int, entry map[string]any, key string) (bool, bool) {
	v, present := entry[key]
	if !present {
		return false, false
	}
	b, ok := v.(bool)
	if !ok {
		log.Warnf("Template %d: ignoring key %q with non-boolean value %v", idx, key, v)
		return false, false
	}
	return b, true
}
