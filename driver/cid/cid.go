package cid

import (
	"bytes"
	"strconv"

	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/driver/type1"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

const defaultUnitsPerEm = 1000

// Font holds a decoded CIDFontType0 resource: one charstring per CID,
// the FD group each CID resolves to, and that group's own local-subr
// context.
type Font struct {
	numCIDs     int
	charstrings map[int][]byte
	cidToFD     map[int]int
	fdContexts  []*type1.Context
}

// Driver is the registerable driver.Driver for CID-keyed Type 1 fonts.
type Driver struct{}

func New() *Driver { return &Driver{} }

func (*Driver) Name() string { return "cid" }
func (*Driver) Flags() driver.Flags {
	return driver.Scalable
}
func (*Driver) Services() map[string]any { return nil }

// probeWindow bounds how much of the cleartext header Probe inspects for
// the CIDFontType0 markers, avoiding a full read for files this driver
// will reject.
const probeWindow = 4096

// Probe recognizes a PostScript CIDFont resource: the same PFA/PFB
// container a plain Type 1 font uses, but declaring itself a CIDFont in
// its cleartext header. Checking for that marker (rather than just the
// generic "%!"/PFB signature driver/type1.Probe uses) is what lets a
// Registry tell the two formats apart when cid is registered ahead of
// type1.
func (*Driver) Probe(s sfio.Stream) bool {
	buf := make([]byte, probeWindow)
	n, _ := s.Read(buf)
	buf = buf[:n]
	if len(buf) == 0 {
		return false
	}
	if buf[0] != pfbMarkerByte && !(len(buf) >= 2 && buf[0] == '%' && buf[1] == '!') {
		return false
	}
	return bytes.Contains(buf, []byte("CIDFontType")) || bytes.Contains(buf, []byte("Resource-CIDFont"))
}

const pfbMarkerByte = 0x80

func (d *Driver) Open(s sfio.Stream) (driver.Face, error) {
	size := s.Size()
	buf := make([]byte, size)
	if _, err := s.Read(buf); err != nil {
		return nil, errcode.New("cid.Open", errcode.InvalidStreamRead)
	}
	f, err := parse(buf)
	if err != nil {
		return nil, err
	}
	return &Face{font: f, stream: s}, nil
}

// parse decodes a CIDFontType0 resource's FDArray, CIDMap, and shared
// CharStrings dict, the CID-keyed analogue of driver/type1's parse.
func parse(buf []byte) (*Font, error) {
	_, encryptedPrivate, err := type1.SplitProgram(buf)
	if err != nil {
		return nil, err
	}
	priv := type1.Decrypt(encryptedPrivate, 55665, 4)

	blocks, err := scanFDArray(priv)
	if err != nil {
		return nil, err
	}
	fdContexts, err := buildContexts(blocks)
	if err != nil {
		return nil, err
	}
	cidToFD, err := scanCIDMap(priv)
	if err != nil {
		return nil, err
	}
	_, rawGlyphs, err := type1.ScanCharstrings(priv)
	if err != nil {
		return nil, err
	}
	lenIV := type1.ScanLenIV(priv)

	charstrings := make(map[int][]byte, len(rawGlyphs))
	maxCID := -1
	for name, raw := range rawGlyphs {
		cidVal, err := strconv.Atoi(name)
		if err != nil {
			continue // a non-numeric CharStrings entry (e.g. a stray ".notdef") outside the CID map
		}
		charstrings[cidVal] = type1.Decrypt(raw, 4330, lenIV)
		if cidVal > maxCID {
			maxCID = cidVal
		}
	}
	for c := range cidToFD {
		if c > maxCID {
			maxCID = c
		}
	}

	return &Font{
		numCIDs:     maxCID + 1,
		charstrings: charstrings,
		cidToFD:     cidToFD,
		fdContexts:  fdContexts,
	}, nil
}

// Face is the driver.Face implementation backing an opened CID-keyed
// Type 1 stream. It does not implement driver.CharmapFace or
// driver.NamedGlyphFace: a CIDFontType0's addressing unit is the CID
// itself (used directly as loader.Index), resolved to a Unicode code
// point or glyph name only by an outer CMap resource this driver has no
// reason to parse.
type Face struct {
	font   *Font
	stream sfio.Stream
}

func (f *Face) NumGlyphs() int  { return f.font.numCIDs }
func (f *Face) UnitsPerEm() int { return defaultUnitsPerEm }
func (f *Face) Close() error    { return f.stream.Close() }

func scale(v, unitsPerEm, ppem int) fixedmath.F26Dot6 {
	if unitsPerEm == 0 {
		return 0
	}
	return fixedmath.F26Dot6(int64(v) * int64(ppem) * 64 / int64(unitsPerEm))
}

// LoadGlyph interprets the charstring for CID gid, dispatching to its
// FDArray group's own local Subrs the way driver/cff.Font.contextFor
// dispatches a CID-keyed CFF glyph to its FD's Private dict.
func (f *Face) LoadGlyph(gid loader.Index, ppemX, ppemY int) (driver.GlyphResult, error) {
	cidVal := int(gid)
	code, ok := f.font.charstrings[cidVal]
	if !ok {
		return driver.GlyphResult{}, errcode.New("cid.LoadGlyph", errcode.InvalidGlyphIndex)
	}
	fdIdx, ok := f.font.cidToFD[cidVal]
	if !ok || fdIdx < 0 || fdIdx >= len(f.font.fdContexts) {
		return driver.GlyphResult{}, errcode.New("cid.LoadGlyph", errcode.InvalidGlyphIndex)
	}
	ctx := f.font.fdContexts[fdIdx]

	l := loader.New()
	l.Prepare()
	width, err := type1.DecodeCharString(ctx, l, code)
	if err != nil {
		return driver.GlyphResult{}, err
	}
	l.Add()

	upe := defaultUnitsPerEm
	for j := range l.Base.Outline.Points {
		p := l.Base.Outline.Points[j]
		l.Base.Outline.Points[j].X = scale(int(p.X), upe, ppemX)
		l.Base.Outline.Points[j].Y = scale(int(p.Y), upe, ppemY)
	}

	src := l.Base.Outline
	out := *outline.New(len(src.Points), len(src.Contours))
	if err := outline.Copy(&out, &src); err != nil {
		return driver.GlyphResult{}, err
	}

	return driver.GlyphResult{
		Format:  driver.FormatOutline,
		Outline: out,
		Metrics: loader.Metrics{Advance: scale(int(width), upe, ppemX)},
	}, nil
}
