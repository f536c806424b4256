// Package cache implements the font/size/glyph cache manager, per
// SPEC_FULL.md section 4.I: an LRU face/size cache fed by a caller
// FaceRequester, plus an image cache (decoded outlines) and small-bitmap
// cache layered on top of it, both reference-counted so a node in active
// use is never evicted.
//
// Grounded on two real FreeType2 C headers bundled in original_source:
// src/cache/ftlru.h (FT_Lru_Class's init/done/flush/compare callbacks and
// FT_Lru_Lookup's "find or create, pinning on success" contract) and
// src/cache/ftcmanag.h (FTC_Manager, FTC_Face_Requester,
// FTC_MAX_FACES/FTC_MAX_SIZES). No library in the retrieval pack supplies
// a ref-counted, weight-bounded LRU (see DESIGN.md for why a generic LRU
// package was rejected); this package is container/list plus a small
// owned index map, the same "explicit doubly-linked list, not a vtable
// LRU" shape seehuhn-go-pdf's own internal caches use.
package cache

import "container/list"

// node is one cached entry: its key, value, approximate memory weight,
// reference count, and the faceID it is invalidated alongside.
type node struct {
	key        any
	value      any
	weight     int
	refCount   int
	faceID     any
	elem       *list.Element
	tombstoned bool
}

// lru is a weight-bounded, reference-counted least-recently-used index,
// the shared machinery behind the face/size cache and both glyph caches.
//
// byValue indexes the same nodes by their cached value (pointer identity),
// alongside index's by-key lookup. A node tombstoned while pinned is
// dropped from index immediately so it can never satisfy a future lookup,
// but a later Lookup under the same key may then insert a fresh node that
// overwrites index[key] before the tombstoned node's holder has released
// it; byValue lets that holder's eventual Release reach the right node by
// the value it was actually given, rather than whatever now occupies the
// key.
type lru struct {
	maxWeight   int
	totalWeight int
	list        *list.List
	index       map[any]*node
	byValue     map[any]*node
}

func newLRU(maxWeight int) *lru {
	return &lru{maxWeight: maxWeight, list: list.New(), index: map[any]*node{}, byValue: map[any]*node{}}
}

// lookup returns the node for key if cached, moving it to the front (most
// recently used) and pinning it — incrementing refCount so the value it
// holds is safe to use until the caller releases it. A tombstoned node
// (one removeFaceID marked invalid while still pinned elsewhere) is
// treated as a miss: it must never match a future query, per spec.md
// section 4.I.
func (l *lru) lookup(key any) (*node, bool) {
	n, ok := l.index[key]
	if !ok || n.tombstoned {
		return nil, false
	}
	l.list.MoveToFront(n.elem)
	n.refCount++
	return n, true
}

// insert adds a new node for key, pinned once on the caller's behalf, and
// evicts least-recently-used unpinned nodes until totalWeight is back
// within maxWeight.
func (l *lru) insert(key, value any, weight int, faceID any) *node {
	n := &node{key: key, value: value, weight: weight, refCount: 1, faceID: faceID}
	n.elem = l.list.PushFront(n)
	l.index[key] = n
	l.byValue[value] = n
	l.totalWeight += weight
	l.evict()
	return n
}

// unpin releases the caller's hold on n, identified by the node pointer a
// prior lookup/insert returned.
func (l *lru) unpin(n *node) any {
	return l.release(n)
}

// unpinValue releases the caller's hold on whichever node currently holds
// value, identified by value's pointer identity rather than a *node or
// key. This is what lets a holder of a tombstoned node's value (see
// removeFaceID) release it correctly even after a newer node has taken
// over its key in index.
func (l *lru) unpinValue(value any) any {
	n, ok := l.byValue[value]
	if !ok {
		return nil
	}
	return l.release(n)
}

// release drops one pin from n. If n was tombstoned by removeFaceID while
// still pinned, dropping the last pin now finalizes it: n is dropped from
// the LRU's bookkeeping and its value is returned so the caller can
// release any resource it owns (e.g. closing a face.Face); release
// returns nil in every other case.
func (l *lru) release(n *node) any {
	if n.refCount > 0 {
		n.refCount--
	}
	if !n.tombstoned || n.refCount > 0 {
		return nil
	}
	if n.elem != nil {
		l.list.Remove(n.elem)
		n.elem = nil
	}
	if cur, ok := l.index[n.key]; ok && cur == n {
		delete(l.index, n.key)
	}
	delete(l.byValue, n.value)
	l.totalWeight -= n.weight
	return n.value
}

// evict removes least-recently-used, unpinned nodes from the back of the
// list until totalWeight fits within maxWeight or every remaining node is
// pinned (in which case the cache is allowed to exceed its bound rather
// than evict a node still in use).
func (l *lru) evict() {
	if l.maxWeight <= 0 {
		return
	}
	for l.totalWeight > l.maxWeight {
		removed := false
		for e := l.list.Back(); e != nil; e = e.Prev() {
			n := e.Value.(*node)
			if n.refCount == 0 {
				l.list.Remove(e)
				delete(l.index, n.key)
				delete(l.byValue, n.value)
				l.totalWeight -= n.weight
				removed = true
				break
			}
		}
		if !removed {
			break
		}
	}
}

// removeFaceID invalidates every node tagged with faceID, the Go analogue
// of FTC_Manager_RemoveFaceID. Per spec.md section 4.I: a node with
// ref-count 0 is destroyed outright and its value returned for the caller
// to release; a node still pinned (ref-count > 0) is only tombstoned —
// dropped from index so it can never match a future lookup or a later
// insert under the same key, but left in place (list, weight, byValue)
// until whoever is already holding it releases it via unpin/unpinValue,
// which is when it is finally destroyed. This is what makes hot-replacing
// a font's underlying resource safe even while a caller is mid-use of
// something derived from the old one.
func (l *lru) removeFaceID(faceID any) []any {
	var removed []any
	var next *list.Element
	for e := l.list.Front(); e != nil; e = next {
		next = e.Next()
		n := e.Value.(*node)
		if n.faceID != faceID {
			continue
		}
		if n.refCount == 0 {
			l.list.Remove(e)
			delete(l.index, n.key)
			delete(l.byValue, n.value)
			l.totalWeight -= n.weight
			removed = append(removed, n.value)
			continue
		}
		n.tombstoned = true
		if cur, ok := l.index[n.key]; ok && cur == n {
			delete(l.index, n.key)
		}
	}
	return removed
}
