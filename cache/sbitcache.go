package cache

import (
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/raster"
)

type sbitKey struct {
	id            FaceID
	gid           loader.Index
	width, height uint16
	mode          raster.PixelMode
}

// defaultSBitCacheWeight bounds the small-bitmap cache at roughly 1 MiB
// of pixel data, the rasterized-glyph analogue of defaultImageCacheWeight.
const defaultSBitCacheWeight = 1 << 20

// monoWorkBufPerPoint mirrors raster.Mono's unexported minWorkBufPerPoint
// estimate; SBitCache is an external caller of package raster and must
// size the scratch buffer generously rather than share that constant.
const monoWorkBufPerPoint = 32

// SBitCache caches rasterized glyph bitmaps, the Go analogue of
// FTC_SBitCache: keyed by (face id, pixel size, glyph index, pixel mode)
// since this module renders the same outline in either PixelMono or
// PixelGray depending on the caller's request.
type SBitCache struct {
	mgr *Manager
	lru *lru
}

func newSBitCache(mgr *Manager) *SBitCache {
	return &SBitCache{mgr: mgr, lru: newLRU(defaultSBitCacheWeight)}
}

// Lookup rasterizes (or returns a cached rasterization of) gid at
// pixelWidth x pixelHeight in the given pixel mode. The returned node is
// pinned; the caller must call Release once done with the result.
func (c *SBitCache) Lookup(id FaceID, gid loader.Index, pixelWidth, pixelHeight uint16, mode raster.PixelMode) (*raster.Bitmap, error) {
	key := sbitKey{id: id, gid: gid, width: pixelWidth, height: pixelHeight, mode: mode}
	if n, ok := c.lru.lookup(key); ok {
		return n.value.(*raster.Bitmap), nil
	}
	g, err := c.mgr.Images.Lookup(id, gid, pixelWidth, pixelHeight)
	if g != nil {
		defer c.mgr.Images.Release(g)
	}
	if err != nil {
		return nil, err
	}

	// Clone the outline before translating it to the origin: g.Outline is
	// owned by the image cache's entry and must not be mutated in place.
	src := &g.Outline
	grown := outline.New(src.NumPoints(), src.NumContours())
	if err := outline.Copy(grown, src); err != nil {
		return nil, err
	}

	box := grown.CBox()
	if !box.Empty() {
		grown.Translate(fixedmath.Vector{X: -box.XMin, Y: -box.YMin})
	}

	width := int(pixelWidth)
	rows := int(pixelHeight)
	if !box.Empty() {
		width = int((box.XMax - box.XMin).Ceil()) + 1
		rows = int((box.YMax - box.YMin).Ceil()) + 1
	}
	if width <= 0 {
		width = 1
	}
	if rows <= 0 {
		rows = 1
	}

	bmp := raster.NewBitmap(width, rows, mode)
	switch mode {
	case raster.PixelMono:
		err = raster.Mono(grown, bmp, grown.NumPoints()*monoWorkBufPerPoint)
	default:
		err = raster.Gray(grown, bmp)
	}
	if err != nil {
		return nil, err
	}

	c.lru.insert(key, bmp, len(bmp.Buffer), id)
	return bmp, nil
}

// Release unpins the cached entry backing bmp, a pointer previously
// returned by Lookup; see ImageCache.Release for why this releases by
// value rather than by key.
func (c *SBitCache) Release(bmp *raster.Bitmap) {
	c.lru.unpinValue(bmp)
}
