package cache

import (
	"testing"

	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/face"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/raster"
	"github.com/inkwell-labs/corefont/sfio"
)

// fakeFace is a minimal driver.Face returning a fixed 4-point square
// outline for any glyph index, scaled trivially by ppem, used to exercise
// Manager/ImageCache/SBitCache without any real format driver.
type fakeFace struct {
	closed bool
}

func (f *fakeFace) NumGlyphs() int  { return 2 }
func (f *fakeFace) UnitsPerEm() int { return 1000 }
func (f *fakeFace) Close() error    { f.closed = true; return nil }

func (f *fakeFace) LoadGlyph(gid loader.Index, ppemX, ppemY int) (driver.GlyphResult, error) {
	o := outline.New(4, 1)
	unit := fixedmath.F26Dot6(ppemX * 64 / 2)
	o.Points = append(o.Points,
		fixedmath.Vector{X: 0, Y: 0},
		fixedmath.Vector{X: unit, Y: 0},
		fixedmath.Vector{X: unit, Y: unit},
		fixedmath.Vector{X: 0, Y: unit},
	)
	o.Tags = append(o.Tags, outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve, outline.TagOnCurve)
	o.Contours = append(o.Contours, 3)
	return driver.GlyphResult{
		Format:  driver.FormatOutline,
		Outline: *o,
		Metrics: loader.Metrics{Advance: unit},
	}, nil
}

type fakeDriver struct {
	opened  *int
	backing *[]*fakeFace
}

func (d fakeDriver) Name() string             { return "fake" }
func (d fakeDriver) Flags() driver.Flags      { return driver.Scalable }
func (d fakeDriver) Services() map[string]any { return nil }
func (d fakeDriver) Probe(s sfio.Stream) bool { return true }
func (d fakeDriver) Open(s sfio.Stream) (driver.Face, error) {
	*d.opened++
	f := &fakeFace{}
	*d.backing = append(*d.backing, f)
	return f, nil
}

// newTestManager wires a Manager whose FaceRequester opens a fresh fake
// Face each time id is requested, counting how many times it was called
// and recording every backing *fakeFace so a test can inspect Close state.
func newTestManager(t *testing.T, maxFaces, maxSizes int) (*Manager, *int, *[]*fakeFace) {
	t.Helper()
	opened := new(int)
	backing := new([]*fakeFace)
	reg := driver.NewRegistry()
	reg.Register(fakeDriver{opened: opened, backing: backing})
	requester := func(id FaceID) (*face.Face, error) {
		return face.Open(reg, sfio.NewMemoryStream([]byte(id.(string))))
	}
	return New(requester, maxFaces, maxSizes), opened, backing
}

func TestManagerLookupFaceReusesCachedEntry(t *testing.T) {
	m, opened, _ := newTestManager(t, 0, 0)
	f1, err := m.LookupFace("a")
	if err != nil {
		t.Fatalf("LookupFace: %v", err)
	}
	f2, err := m.LookupFace("a")
	if err != nil {
		t.Fatalf("LookupFace: %v", err)
	}
	if f1 != f2 {
		t.Error("expected the same cached *face.Face on repeated lookup")
	}
	if *opened != 1 {
		t.Errorf("requester called %d times, want 1", *opened)
	}
}

func TestManagerLookupSizeSetsPixelSize(t *testing.T) {
	m, _, _ := newTestManager(t, 0, 0)
	f, err := m.LookupSize("a", 16, 16)
	if err != nil {
		t.Fatalf("LookupSize: %v", err)
	}
	if f.Size().Metrics.PixelWidth != 16 {
		t.Errorf("PixelWidth = %d, want 16", f.Size().Metrics.PixelWidth)
	}
}

func TestImageCacheLookupCaches(t *testing.T) {
	m, _, _ := newTestManager(t, 0, 0)
	g1, err := m.Images.Lookup("a", 1, 16, 16)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if g1.Outline.NumPoints() != 4 {
		t.Errorf("NumPoints = %d, want 4", g1.Outline.NumPoints())
	}
	g2, err := m.Images.Lookup("a", 1, 16, 16)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if g1 != g2 {
		t.Error("expected the same cached *driver.GlyphResult on repeated lookup")
	}
	m.Images.Release(g1)
	m.Images.Release(g2)
}

func TestSBitCacheRasterizesGray(t *testing.T) {
	m, _, _ := newTestManager(t, 0, 0)
	bmp, err := m.SBits.Lookup("a", 1, 16, 16, raster.PixelGray)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if bmp.Mode != raster.PixelGray {
		t.Errorf("Mode = %v, want PixelGray", bmp.Mode)
	}
	var sum int
	for _, v := range bmp.Buffer {
		sum += int(v)
	}
	if sum == 0 {
		t.Error("expected some non-zero coverage in the rasterized square")
	}
	m.SBits.Release(bmp)
}

func TestSBitCacheRasterizesMono(t *testing.T) {
	m, _, _ := newTestManager(t, 0, 0)
	bmp, err := m.SBits.Lookup("a", 1, 16, 16, raster.PixelMono)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if bmp.Mode != raster.PixelMono {
		t.Errorf("Mode = %v, want PixelMono", bmp.Mode)
	}
	var bits byte
	for _, v := range bmp.Buffer {
		bits |= v
	}
	if bits == 0 {
		t.Error("expected some set bits in the rasterized square")
	}
}

func TestManagerRemoveFaceIDClosesAndEvicts(t *testing.T) {
	m, opened, backing := newTestManager(t, 0, 0)
	if _, err := m.LookupSize("a", 16, 16); err != nil {
		t.Fatalf("LookupSize: %v", err)
	}
	g, err := m.Images.Lookup("a", 1, 16, 16)
	if err != nil {
		t.Fatalf("Images.Lookup: %v", err)
	}
	m.Images.Release(g)
	bmp, err := m.SBits.Lookup("a", 1, 16, 16, raster.PixelGray)
	if err != nil {
		t.Fatalf("SBits.Lookup: %v", err)
	}
	m.SBits.Release(bmp)

	if len(*backing) != 1 {
		t.Fatalf("backing faces = %d, want 1", len(*backing))
	}
	opened1 := (*backing)[0]

	if err := m.RemoveFaceID("a"); err != nil {
		t.Fatalf("RemoveFaceID: %v", err)
	}
	if !opened1.closed {
		t.Error("expected RemoveFaceID to close the evicted face")
	}
	if _, ok := m.faces.index["a"]; ok {
		t.Error("face cache still holds an entry for a removed FaceID")
	}
	if _, err := m.LookupFace("a"); err != nil {
		t.Fatalf("LookupFace after removal: %v", err)
	}
	if *opened != 2 {
		t.Errorf("requester called %d times after eviction, want 2", *opened)
	}
}

// TestManagerRemoveFaceIDTombstonesPinnedImageEntry covers the branch
// TestManagerRemoveFaceIDClosesAndEvicts does not: an ImageCache entry
// still pinned (Lookup'd but not yet Released) when RemoveFaceID runs must
// not be destroyed out from under its holder, must become unreachable to
// a new Lookup for the same key, and must only be torn down once the
// holder releases it.
func TestManagerRemoveFaceIDTombstonesPinnedImageEntry(t *testing.T) {
	m, opened, _ := newTestManager(t, 0, 0)
	g1, err := m.Images.Lookup("a", 1, 16, 16)
	if err != nil {
		t.Fatalf("Images.Lookup: %v", err)
	}

	if err := m.RemoveFaceID("a"); err != nil {
		t.Fatalf("RemoveFaceID: %v", err)
	}
	if _, ok := m.Images.lru.index[imageKey{id: "a", gid: 1, width: 16, height: 16}]; ok {
		t.Error("tombstoned image entry must not remain reachable by key")
	}
	if _, ok := m.Images.lru.byValue[g1]; !ok {
		t.Error("tombstoned image entry must stay alive for its existing holder")
	}

	g2, err := m.Images.Lookup("a", 1, 16, 16)
	if err != nil {
		t.Fatalf("Images.Lookup after RemoveFaceID: %v", err)
	}
	if g1 == g2 {
		t.Error("expected a tombstoned entry to miss and re-decode, not be reused")
	}
	beforeOpened := *opened
	if beforeOpened < 2 {
		t.Errorf("requester called %d times, want at least 2 (tombstoned entry must not satisfy a new lookup)", beforeOpened)
	}

	m.Images.Release(g1)
	if _, ok := m.Images.lru.byValue[g1]; ok {
		t.Error("expected releasing the tombstoned entry's last pin to finalize it")
	}
	m.Images.Release(g2)
}

// TestManagerRemoveFaceIDTombstonesPinnedFace exercises the case the
// original review raised directly: a face node still pinned (simulating a
// caller mid-LoadGlyph) when RemoveFaceID runs must not have its
// face.Face closed until that pin is released.
func TestManagerRemoveFaceIDTombstonesPinnedFace(t *testing.T) {
	m, _, backing := newTestManager(t, 0, 0)
	if _, err := m.LookupFace("a"); err != nil {
		t.Fatalf("LookupFace: %v", err)
	}
	if len(*backing) != 1 {
		t.Fatalf("backing faces = %d, want 1", len(*backing))
	}
	f := (*backing)[0]

	n, ok := m.faces.lookup("a")
	if !ok {
		t.Fatal("expected a cached face node for \"a\"")
	}

	if err := m.RemoveFaceID("a"); err != nil {
		t.Fatalf("RemoveFaceID: %v", err)
	}
	if f.closed {
		t.Error("RemoveFaceID closed a face still pinned by an outstanding holder")
	}
	if _, ok := m.faces.index["a"]; ok {
		t.Error("tombstoned face node must not remain reachable by key")
	}

	if _, err := m.LookupFace("a"); err != nil {
		t.Fatalf("LookupFace after RemoveFaceID: %v", err)
	}
	if f.closed {
		t.Error("face closed before the tombstoned node's outstanding pin was released")
	}

	closeFinalizedFace(m.faces.unpin(n))
	if !f.closed {
		t.Error("expected the tombstoned face to close once its last pin was released")
	}
}
