// Package library implements the root owner value, per SPEC_FULL.md
// section 4.J: the registered driver set, the debug/trace level, and an
// optional cache manager created on first use, the Go analogue of
// FT_Library.
//
// Grounded on src/base/ftinit.c's FT_Init_FreeType/FT_Default_Drivers
// (construct a library, register the built-in drivers, tear down in
// reverse) bundled in original_source, and on the teacher's own
// freetype.Context as the "owns everything, one designated owner per
// resource" root value freetype.go builds drawing operations on top of.
package library

import (
	"github.com/inkwell-labs/corefont/cache"
	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/driver/cff"
	"github.com/inkwell-labs/corefont/driver/cid"
	"github.com/inkwell-labs/corefont/driver/truetype"
	"github.com/inkwell-labs/corefont/driver/type1"
	"github.com/inkwell-labs/corefont/trace"
)

// Library owns everything else in the module: the registered driver set,
// the current trace level, and (once EnableCaching is called) a cache
// manager. A Library has no internal locking; per SPEC_FULL.md section 5,
// operations on a single Library instance must be externally serialized
// by the caller, while distinct Library instances are fully independent.
type Library struct {
	Drivers *driver.Registry
	Cache   *cache.Manager
}

// New constructs a Library and registers the built-in drivers in probe
// order: truetype, cff, cid, type1. cid is registered ahead of type1
// because both formats accept the same PFB/PFA container and cid's Probe
// is the more specific of the two (it additionally requires a
// CIDFontType marker in the cleartext header) — see DESIGN.md.
func New() *Library {
	reg := driver.NewRegistry()
	reg.Register(truetype.New())
	reg.Register(cff.New())
	reg.Register(cid.New())
	reg.Register(type1.New())
	return &Library{Drivers: reg}
}

// EnableCaching installs a cache manager on l, built from requester with
// the given face/size LRU bounds (zero or negative selects
// cache.Manager's own defaults). Calling EnableCaching again replaces the
// existing manager; callers that still hold faces opened through the old
// one are responsible for closing them, the same ownership contract
// FT_Manager_Done places on its caller.
func (l *Library) EnableCaching(requester cache.FaceRequester, maxFaces, maxSizes int) {
	l.Cache = cache.New(requester, maxFaces, maxSizes)
}

// Done releases l's own bookkeeping, mirroring FT_Done_FreeType's
// "finalize the library" role from ftinit.c. Library does not track every
// FaceID a caller has ever passed to its cache manager, so Done cannot
// close cached faces on the caller's behalf; a caller using EnableCaching
// must call cache.Manager.RemoveFaceID for each FaceID it wants closed
// before calling Done.
func (l *Library) Done() {
	l.Drivers = nil
	l.Cache = nil
}

// SetTraceLevel sets the process-wide trace level consulted by every
// package's logging call sites. It is process-wide rather than per
// Library because spec.md section 9 describes it as "a process-wide
// atomic u8 consulted only by logging macros," not library-scoped state.
func SetTraceLevel(l trace.Level) { trace.SetLevel(l) }

// TraceLevel returns the process-wide trace level.
func TraceLevel() trace.Level { return trace.GetLevel() }
