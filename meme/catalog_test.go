package meme

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding %s: %v", path, err)
	}
}

// testAssets lays out a template image and a real font in a temp dir and
// returns the dir plus a loader for YAML documents written into it
func testAssets(t *testing.T) (dir string, load func(yaml string) (*Catalog, error)) {
	t.Helper()
	dir = t.TempDir()
	writePNG(t, filepath.Join(dir, "base.png"), 800, 400)
	if err := os.WriteFile(filepath.Join(dir, "test.ttf"), goregular.TTF, 0o644); err != nil {
		t.Fatalf("writing font: %v", err)
	}
	load = func(yaml string) (*Catalog, error) {
		path := filepath.Join(dir, "memes.yaml")
		if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		return LoadCatalog(path, dir)
	}
	return dir, load
}

func TestLoadCatalog(t *testing.T) {
	_, load := testAssets(t)
	catalog, err := load(`
- filename: base.png
  font: test.ttf
  font_size: 40
  left: 10
  top: 20
  right: 790
  bottom: 380
  text_prefix: 'DID YOU JUST SAY "'
  text_suffix: '"?'
  command: say
  is_default: true
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(catalog.Templates) != 1 {
		t.Fatalf("loaded %d templates, want 1", len(catalog.Templates))
	}
	tmpl := catalog.Templates[0]
	if tmpl.Command != "say" || !tmpl.IsDefault {
		t.Errorf("command/default = %q/%v, want say/true", tmpl.Command, tmpl.IsDefault)
	}
	if tmpl.Scale != (Scale{X: 40, Y: 40}) {
		t.Errorf("scale = %+v, want 40x40", tmpl.Scale)
	}
	want := Region{Left: 10, Top: 20, Right: 790, Bottom: 380}
	if tmpl.Region != want {
		t.Errorf("region = %+v, want %+v", tmpl.Region, want)
	}
	if tmpl.TextPrefix != `DID YOU JUST SAY "` || tmpl.TextSuffix != `"?` {
		t.Errorf("prefix/suffix = %q/%q", tmpl.TextPrefix, tmpl.TextSuffix)
	}
	if catalog.FontFor(tmpl) == nil {
		t.Error("no font resolved for a template with a valid font")
	}
}

func TestLoadCatalogDefaults(t *testing.T) {
	_, load := testAssets(t)
	catalog, err := load(`
- filename: base.png
  font: test.ttf
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	tmpl := catalog.Templates[0]
	if tmpl.Scale != (Scale{X: 12, Y: 12}) {
		t.Errorf("scale = %+v, want the 12px default", tmpl.Scale)
	}
	want := Region{Left: 0, Top: 0, Right: 800, Bottom: 400}
	if tmpl.Region != want {
		t.Errorf("region = %+v, want image bounds %+v", tmpl.Region, want)
	}
	if tmpl.Center() != (Point{X: 400, Y: 200}) {
		t.Errorf("center = %+v, want (400, 200)", tmpl.Center())
	}
	if tmpl.Command != NoCommand || tmpl.IsDefault {
		t.Errorf("command/default = %q/%v, want sentinel/false", tmpl.Command, tmpl.IsDefault)
	}
	if catalog.ByTrigger("") != nil {
		t.Error("empty trigger matched the sentinel command")
	}
}

func TestLoadCatalogSkipsDefectiveKeys(t *testing.T) {
	_, load := testAssets(t)
	catalog, err := load(`
- filename: base.png
  font: test.ttf
  font_size: tiny
  left: -4
  right: 9000
  is_default: sure
  flavor: spicy
  command: foo
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	tmpl := catalog.Templates[0]
	if tmpl.Scale != (Scale{X: 12, Y: 12}) {
		t.Errorf("mistyped font_size not ignored: scale = %+v", tmpl.Scale)
	}
	want := Region{Left: 0, Top: 0, Right: 800, Bottom: 400}
	if tmpl.Region != want {
		t.Errorf("bad region keys not ignored: region = %+v", tmpl.Region)
	}
	if tmpl.IsDefault {
		t.Error("mistyped is_default not ignored")
	}
	if tmpl.Command != "foo" {
		t.Errorf("valid key lost alongside defective ones: command = %q", tmpl.Command)
	}
}

func TestLoadCatalogSkipsBrokenEntries(t *testing.T) {
	_, load := testAssets(t)
	catalog, err := load(`
- filename: missing.png
  font: test.ttf
  command: gone
- font: test.ttf
  command: nameless
- filename: base.png
  font: test.ttf
  command: keep
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(catalog.Templates) != 1 || catalog.Templates[0].Command != "keep" {
		t.Fatalf("want only the keep entry, got %d templates", len(catalog.Templates))
	}
}

func TestLoadCatalogFontReuseAndFallback(t *testing.T) {
	_, load := testAssets(t)

	// No font named before any loaded: entry skipped entirely
	if _, err := load(`
- filename: base.png
  command: nofont
`); err == nil {
		t.Error("catalog with no loadable template did not fail")
	}

	// Second entry reuses the most recently loaded font
	catalog, err := load(`
- filename: base.png
  font: test.ttf
  command: first
- filename: base.png
  command: second
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(catalog.Templates) != 2 {
		t.Fatalf("loaded %d templates, want 2", len(catalog.Templates))
	}
	if catalog.Templates[1].FontKey != catalog.Templates[0].FontKey {
		t.Errorf("second entry got font %q, want reuse of %q",
			catalog.Templates[1].FontKey, catalog.Templates[0].FontKey)
	}

	// An undecodable font keeps the entry and falls back at render time
	catalog, err = load(`
- filename: base.png
  font: base.png
  command: badfont
- filename: base.png
  font: test.ttf
  command: goodfont
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	bad := catalog.ByTrigger("badfont")
	if bad == nil {
		t.Fatal("entry with a broken font was dropped")
	}
	if catalog.FontFor(bad) == nil {
		t.Error("no fallback font for an entry whose own font failed")
	}
}

// Entries naming the same image file must share one decoded bitmap
func TestLoadCatalogSharesImages(t *testing.T) {
	_, load := testAssets(t)
	catalog, err := load(`
- filename: base.png
  font: test.ttf
  command: one
- filename: base.png
  font: test.ttf
  command: two
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(catalog.Templates) != 2 {
		t.Fatalf("loaded %d templates, want 2", len(catalog.Templates))
	}
	if catalog.Templates[0].Image != catalog.Templates[1].Image {
		t.Error("same filename decoded into two separate bitmaps")
	}
}

func TestImageCacheLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	writePNG(t, path, 8, 8)

	cache := NewImageCache()
	first, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// A second load must come from the cache, not the file
	if err := os.Remove(path); err != nil {
		t.Fatalf("removing fixture: %v", err)
	}
	second, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load after removal: %v", err)
	}
	if first != second {
		t.Error("second load returned a different bitmap")
	}

	if _, err := cache.Load(filepath.Join(dir, "absent.png")); err == nil {
		t.Error("loading a missing image did not fail")
	}
}

func TestCatalogLookupOrder(t *testing.T) {
	_, load := testAssets(t)
	catalog, err := load(`
- filename: base.png
  font: test.ttf
  command: foo
  text_prefix: first
- filename: base.png
  font: test.ttf
  command: foo
  text_prefix: second
  is_default: true
- filename: base.png
  font: test.ttf
  is_default: true
  text_prefix: third
`)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := catalog.ByTrigger("foo"); got != catalog.Templates[0] {
		t.Errorf("ByTrigger(foo) picked prefix %q, want the first-listed entry", got.TextPrefix)
	}
	if got := catalog.ByTrigger("FOO"); got != catalog.Templates[0] {
		t.Error("trigger match is not case-insensitive")
	}
	if catalog.ByTrigger("bar") != nil {
		t.Error("unknown trigger matched a template")
	}
	if got := catalog.Default(); got != catalog.Templates[1] {
		t.Errorf("Default() picked prefix %q, want the first flagged entry", got.TextPrefix)
	}
}

func TestLoadCatalogFatalDocuments(t *testing.T) {
	dir, load := testAssets(t)

	if _, err := load(`{{not yaml`); err == nil {
		t.Error("unparseable document did not fail the load")
	}
	if _, err := load(`[]`); err == nil {
		t.Error("empty template list did not fail the load")
	}
	if _, err := LoadCatalog(filepath.Join(dir, "absent.yaml"), dir); err == nil {
		t.Error("missing config file did not fail the load")
	}
}
