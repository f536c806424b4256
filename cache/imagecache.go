package cache

import (
	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/loader"
)

type imageKey struct {
	id            FaceID
	gid           loader.Index
	width, height uint16
}

// defaultImageCacheWeight bounds the image cache at roughly 1 MiB of
// point data, a conservative default absent a caller-tuned budget; no
// original_source header names a specific byte bound for FTC_ImageCache,
// so this is this driver's own choice, not a ported constant.
const defaultImageCacheWeight = 1 << 20

// ImageCache caches decoded glyph outlines, the Go analogue of
// FTC_ImageCache: FTC_ImageCache_Lookup keyed by (face id, pixel size,
// glyph index) rather than FreeType's packed FTC_ImageTypeRec, since this
// module only ever caches outline glyphs (no embedded-bitmap formats are
// implemented).
type ImageCache struct {
	mgr *Manager
	lru *lru
}

func newImageCache(mgr *Manager) *ImageCache {
	return &ImageCache{mgr: mgr, lru: newLRU(defaultImageCacheWeight)}
}

// imageWeight approximates a GlyphResult's memory footprint: two
// F26Dot6 plus a tag byte per point, one uint16 per contour boundary.
func imageWeight(g *driver.GlyphResult) int {
	return len(g.Outline.Points)*9 + len(g.Outline.Contours)*2
}

// Lookup decodes (or returns a cached decode of) gid at pixelWidth x
// pixelHeight for the face identified by id. The returned node is
// pinned; the caller must call Release once done with the result so it
// can be evicted under memory pressure.
func (c *ImageCache) Lookup(id FaceID, gid loader.Index, pixelWidth, pixelHeight uint16) (*driver.GlyphResult, error) {
	key := imageKey{id: id, gid: gid, width: pixelWidth, height: pixelHeight}
	if n, ok := c.lru.lookup(key); ok {
		return n.value.(*driver.GlyphResult), nil
	}
	f, err := c.mgr.LookupSize(id, pixelWidth, pixelHeight)
	if err != nil {
		return nil, err
	}
	result, err := f.LoadGlyph(gid)
	if err != nil {
		return nil, err
	}
	g := &result
	c.lru.insert(key, g, imageWeight(g), id)
	return g, nil
}

// Release unpins the cached entry backing result, a pointer previously
// returned by Lookup. Releasing by the value itself, rather than by the
// key used to look it up, means a Release reaches the right entry even if
// a RemoveFaceID tombstoned it and a later Lookup under the same key
// already installed a fresh replacement.
func (c *ImageCache) Release(result *driver.GlyphResult) {
	c.lru.unpinValue(result)
}
