package cache

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/face"
)

// FaceID identifies a font resource a FaceRequester can (re)open.
// Opaque to Manager, compared only by equality (it is used as a map
// key), mirroring FTC_FaceID's caller-defined-handle contract.
type FaceID any

// FaceRequester opens (or re-opens, after eviction) the face identified
// by id, the Go analogue of FTC_Face_Requester.
type FaceRequester func(id FaceID) (*face.Face, error)

// defaultMaxFaces and defaultMaxSizes mirror ftcmanag.h's historical
// FTC_MAX_FACES/FTC_MAX_SIZES defaults.
const (
	defaultMaxFaces = 2
	defaultMaxSizes = 4
)

// Manager owns the face/size LRU plus the image and small-bitmap glyph
// caches layered on top of it, the Go analogue of FTC_Manager.
type Manager struct {
	requester FaceRequester
	faces     *lru // key: FaceID -> *face.Face
	sizes     *lru // key: sizeKey -> *face.Face, already sized

	Images *ImageCache
	SBits  *SBitCache
}

type sizeKey struct {
	id            FaceID
	width, height uint16
}

// New returns a Manager that opens faces on demand via requester,
// bounding the face and size LRUs at maxFaces/maxSizes entries (zero
// or negative selects the FTC_MAX_FACES/FTC_MAX_SIZES defaults).
func New(requester FaceRequester, maxFaces, maxSizes int) *Manager {
	if maxFaces <= 0 {
		maxFaces = defaultMaxFaces
	}
	if maxSizes <= 0 {
		maxSizes = defaultMaxSizes
	}
	m := &Manager{
		requester: requester,
		faces:     newLRU(maxFaces),
		sizes:     newLRU(maxSizes),
	}
	m.Images = newImageCache(m)
	m.SBits = newSBitCache(m)
	return m
}

// LookupFace returns the (cached or freshly requested) face for id. The
// face node is unpinned again before LookupFace returns, so the caller
// has nothing to release; package face.Face values are cheap to share
// and Manager only evicts them to bound memory, not for correctness.
func (m *Manager) LookupFace(id FaceID) (*face.Face, error) {
	if n, ok := m.faces.lookup(id); ok {
		f := n.value.(*face.Face)
		closeFinalizedFace(m.faces.unpin(n)) // face cache is count-bounded bookkeeping, not a pin-for-use protocol
		return f, nil
	}
	f, err := m.requester(id)
	if err != nil {
		return nil, err
	}
	n := m.faces.insert(id, f, 1, id)
	closeFinalizedFace(m.faces.unpin(n))
	return f, nil
}

// LookupSize returns a face for id with its pixel size already set to
// pixelWidth x pixelHeight, reusing a cached Size selection when one
// exists.
func (m *Manager) LookupSize(id FaceID, pixelWidth, pixelHeight uint16) (*face.Face, error) {
	key := sizeKey{id: id, width: pixelWidth, height: pixelHeight}
	if n, ok := m.sizes.lookup(key); ok {
		f := n.value.(*face.Face)
		closeFinalizedFace(m.sizes.unpin(n))
		return f, nil
	}
	f, err := m.LookupFace(id)
	if err != nil {
		return nil, err
	}
	if err := f.SetPixelSizes(pixelWidth, pixelHeight); err != nil {
		return nil, err
	}
	n := m.sizes.insert(key, f, 1, id)
	closeFinalizedFace(m.sizes.unpin(n))
	return f, nil
}

// closeFinalizedFace closes v if unpin returned a face.Face finalized by
// dropping the last pin on a tombstoned node (see lru.unpin). v is nil in
// the overwhelmingly common case where the node wasn't tombstoned; the
// close error is not actionable here (the face is already gone from every
// cache), so it is dropped rather than plumbed through a call chain that
// has already returned its own face to the caller.
func closeFinalizedFace(v any) {
	if f, ok := v.(*face.Face); ok {
		f.Close()
	}
}

// RemoveFaceID invalidates every cache entry (face, size, image, small
// bitmap) tied to id, the Go analogue of FTC_Manager_RemoveFaceID: the
// caller is asserting id's underlying resource is gone or changed, so no
// cached derivative of it may be handed out again. An entry with nothing
// else holding it is destroyed immediately and any face.Face it owned is
// closed; an entry a caller is still using is only tombstoned (see
// lru.removeFaceID) — it is closed once that caller releases it, not by
// this call, so a font can be hot-replaced without disturbing whoever is
// mid-use of the old one.
func (m *Manager) RemoveFaceID(id FaceID) error {
	var firstErr error
	closeAll := func(values []any) {
		seen := map[*face.Face]bool{}
		for _, v := range values {
			f, ok := v.(*face.Face)
			if !ok || seen[f] {
				continue
			}
			seen[f] = true
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	closeAll(m.sizes.removeFaceID(id))
	closeAll(m.faces.removeFaceID(id))
	m.Images.lru.removeFaceID(id)
	m.SBits.lru.removeFaceID(id)
	if firstErr != nil {
		return errcode.New("cache.RemoveFaceID", errcode.InvalidFaceHandle)
	}
	return nil
}
