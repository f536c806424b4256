package face

import (
	"testing"

	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

// fakeFace is a minimal driver.Face (plus every optional collaborator
// interface) used to exercise package face's dispatch logic without
// depending on any real format driver.
type fakeFace struct {
	closed bool
}

func (f *fakeFace) NumGlyphs() int  { return 4 }
func (f *fakeFace) UnitsPerEm() int { return 1000 }
func (f *fakeFace) Close() error    { f.closed = true; return nil }

func (f *fakeFace) LoadGlyph(gid loader.Index, ppemX, ppemY int) (driver.GlyphResult, error) {
	return driver.GlyphResult{
		Format:  driver.FormatOutline,
		Outline: *outline.New(0, 0),
		Metrics: loader.Metrics{Advance: fixedmath.F26Dot6(ppemX * 64)},
	}, nil
}

func (f *fakeFace) CharIndex(r rune) loader.Index {
	if r == 'A' {
		return 1
	}
	return 0
}

func (f *fakeFace) GlyphName(gid loader.Index) (string, bool) {
	if gid == 1 {
		return "A", true
	}
	return "", false
}

func (f *fakeFace) Kerning(left, right loader.Index, ppemX int) (int32, error) {
	return int32(left) + int32(right), nil
}

type fakeDriver struct{}

func (fakeDriver) Name() string                 { return "fake" }
func (fakeDriver) Flags() driver.Flags          { return driver.Scalable }
func (fakeDriver) Services() map[string]any     { return nil }
func (fakeDriver) Probe(s sfio.Stream) bool      { return true }
func (fakeDriver) Open(s sfio.Stream) (driver.Face, error) {
	return &fakeFace{}, nil
}

func newTestFace(t *testing.T) *Face {
	t.Helper()
	reg := driver.NewRegistry()
	reg.Register(fakeDriver{})
	f, err := Open(reg, sfio.NewMemoryStream([]byte("anything")))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return f
}

func TestOpenDefaults(t *testing.T) {
	f := newTestFace(t)
	if f.NumGlyphs() != 4 {
		t.Errorf("NumGlyphs = %d, want 4", f.NumGlyphs())
	}
	if f.UnitsPerEm() != 1000 {
		t.Errorf("UnitsPerEm = %d, want 1000", f.UnitsPerEm())
	}
	if f.DriverName() != "fake" {
		t.Errorf("DriverName = %q, want fake", f.DriverName())
	}
	if f.Size().Metrics.PixelWidth != 12 || f.Size().Metrics.PixelHeight != 12 {
		t.Errorf("default size = %+v, want 12x12", f.Size().Metrics)
	}
}

func TestSetPixelSizes(t *testing.T) {
	f := newTestFace(t)
	if err := f.SetPixelSizes(16, 0); err != nil {
		t.Fatalf("SetPixelSizes: %v", err)
	}
	if f.Size().Metrics.PixelWidth != 16 || f.Size().Metrics.PixelHeight != 16 {
		t.Errorf("size = %+v, want 16x16 (height inherits width)", f.Size().Metrics)
	}
}

func TestSetPixelSizesBothZeroFails(t *testing.T) {
	f := newTestFace(t)
	err := f.SetPixelSizes(0, 0)
	e, ok := err.(*errcode.Error)
	if !ok || e.Code != errcode.InvalidPixelSize {
		t.Fatalf("SetPixelSizes(0, 0) = %v, want InvalidPixelSize", err)
	}
}

func TestSetCharSize(t *testing.T) {
	f := newTestFace(t)
	// 12 points at 72 DPI on both axes -> 12 pixels.
	if err := f.SetCharSize(12*fixedmath.One6, 0, 72, 72); err != nil {
		t.Fatalf("SetCharSize: %v", err)
	}
	if f.Size().Metrics.PixelWidth != 12 {
		t.Errorf("PixelWidth = %d, want 12", f.Size().Metrics.PixelWidth)
	}
}

func TestLoadCharAndGlyphName(t *testing.T) {
	f := newTestFace(t)
	if idx := f.GetCharIndex('A'); idx != 1 {
		t.Errorf("GetCharIndex('A') = %d, want 1", idx)
	}
	g, err := f.LoadChar('A')
	if err != nil {
		t.Fatalf("LoadChar: %v", err)
	}
	if g.Format != driver.FormatOutline {
		t.Errorf("Format = %v, want FormatOutline", g.Format)
	}
	name, ok := f.GlyphName(1)
	if !ok || name != "A" {
		t.Errorf("GlyphName(1) = (%q, %v), want (A, true)", name, ok)
	}
}

func TestKerningAndClose(t *testing.T) {
	f := newTestFace(t)
	k, err := f.Kerning(1, 2)
	if err != nil {
		t.Fatalf("Kerning: %v", err)
	}
	if k != 3 {
		t.Errorf("Kerning(1,2) = %d, want 3", k)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestLoadGlyphOutOfRange(t *testing.T) {
	f := newTestFace(t)
	if _, err := f.LoadGlyph(100); err == nil {
		t.Error("expected an error loading an out-of-range glyph index")
	}
}
