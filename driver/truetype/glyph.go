package truetype

import (
	"github.com/inkwell-labs/corefont/driver"
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/fixedmath"
	"github.com/inkwell-labs/corefont/loader"
	"github.com/inkwell-labs/corefont/outline"
	"github.com/inkwell-labs/corefont/sfio"
)

// Face is the driver.Face implementation backing an opened TrueType
// stream.
type Face struct {
	font   *Font
	stream sfio.Stream
}

func (f *Face) NumGlyphs() int  { return f.font.nGlyph }
func (f *Face) UnitsPerEm() int { return f.font.unitsPerEm }
func (f *Face) Close() error    { return f.stream.Close() }

func (f *Face) CharIndex(r rune) loader.Index {
	return f.font.charIndex(r)
}

func (f *Face) GlyphName(gid loader.Index) (string, bool) {
	name, ok := f.font.glyphNames[gid]
	return name, ok
}

// LoadGlyph decodes glyph gid's outline (simple or composite), scales it
// from FUnits to pixels at the given ppem, and reports its advance width,
// per driver.Face's contract; the left-side bearing is not reported
// (Metrics.Bearing stays zero). Composite glyphs are
// assembled via package loader's ChildLoader/AssembleComposite, bounding
// recursion the way the teacher's load(..., recursion) did, but honoring
// scale/xy-scale/2x2 transforms instead of rejecting them.
func (f *Face) LoadGlyph(gid loader.Index, ppemX, ppemY int) (driver.GlyphResult, error) {
	l := loader.New()
	if err := f.loadInto(l, gid, 0); err != nil {
		return driver.GlyphResult{}, err
	}

	upe := f.font.UnitsPerEm2()
	for i := range l.Base.Outline.Points {
		p := l.Base.Outline.Points[i]
		l.Base.Outline.Points[i] = fixedmath.Vector{
			X: scale(int32(p.X), upe, ppemX),
			Y: scale(int32(p.Y), upe, ppemY),
		}
	}

	advance, _ := f.font.hMetric(gid)

	src := l.Base.Outline
	out := *outline.New(len(src.Points), len(src.Contours))
	if err := outline.Copy(&out, &src); err != nil {
		return driver.GlyphResult{}, err
	}

	return driver.GlyphResult{
		Format:  driver.FormatOutline,
		Outline: out,
		Metrics: loader.Metrics{Advance: scale(int32(advance), upe, ppemX)},
	}, nil
}

// UnitsPerEm2 exposes unitsPerEm for package-internal scale calls without
// exporting a second public accessor name on Font.
func (f *Font) UnitsPerEm2() int { return f.unitsPerEm }

// loadInto loads gid's glyf record into l.Current (a simple glyph) or
// assembles it from components (a composite), then Adds it onto l.Base.
// This generalizes the teacher's GlyphBuf.load method, splitting it
// across package loader's accumulator instead of GlyphBuf's own
// Point/End slices.
func (f *Font) loadInto(l *loader.Loader, gid loader.Index, depth int) error {
	if depth >= 8 {
		return errcode.New("truetype.loadInto", errcode.CompositeTooDeep)
	}
	g0, g1, err := f.locaRange(gid)
	if err != nil {
		return err
	}
	if g0 == g1 {
		return nil // empty glyph (e.g. space): zero contours, valid.
	}
	c := sfio.Cursor(f.glyf[g0:g1])
	numContours := int(int16(c.U16()))
	c.Skip(8) // bbox: xMin, yMin, xMax, yMax

	l.Prepare()
	if numContours >= 0 {
		return f.loadSimple(l, c, numContours)
	}
	if numContours != -1 {
		return errcode.New("truetype.loadInto", errcode.InvalidComposite)
	}
	childLoader := func(child loader.Index) (loader.GlyphLoad, loader.Metrics, error) {
		cl := loader.New()
		if err := f.loadInto(cl, child, depth+1); err != nil {
			return loader.GlyphLoad{}, loader.Metrics{}, err
		}
		adv, _ := f.hMetric(child)
		return cl.Base, loader.Metrics{Advance: fixedmath.F26Dot6(adv) << 6}, nil
	}
	if _, err := loaderAssembleComposite(l, c, depth, childLoader); err != nil {
		return err
	}
	l.Add()
	return nil
}

func loaderAssembleComposite(l *loader.Loader, c sfio.Cursor, depth int, child loader.ChildLoader) (loader.Metrics, error) {
	return loader.AssembleComposite(l, c, depth, child)
}

func (f *Font) locaRange(gid loader.Index) (uint32, uint32, error) {
	i := int(gid)
	if i < 0 || i >= f.nGlyph {
		return 0, 0, errcode.New("truetype.locaRange", errcode.InvalidGlyphIndex)
	}
	if f.locaOffsetFormat == locaShort {
		c := sfio.Cursor(f.loca[2*i:])
		g0 := 2 * uint32(c.U16())
		g1 := 2 * uint32(c.U16())
		return g0, g1, nil
	}
	c := sfio.Cursor(f.loca[4*i:])
	return c.U32(), c.U32(), nil
}

// Simple glyph point flags, per Apple's TrueType Reference Manual chapter
// 6, identical to the teacher's decodeFlags/decodeCoords constants.
const (
	flagOnCurve = 1 << iota
	flagXShortVector
	flagYShortVector
	flagRepeat
	flagThisXIsSame
	flagThisYIsSame
)

func (f *Font) loadSimple(l *loader.Loader, c sfio.Cursor, numContours int) error {
	ends := make([]uint16, numContours)
	for i := range ends {
		ends[i] = c.U16()
	}
	var np int
	if numContours > 0 {
		np = int(ends[numContours-1]) + 1
	}
	instrLen := int(c.U16())
	c.Skip(instrLen)

	if err := l.CheckPoints(np, numContours); err != nil {
		return err
	}

	flags := make([]byte, np)
	for i := 0; i < np; {
		flag := c.U8()
		flags[i] = flag
		i++
		if flag&flagRepeat != 0 {
			repeat := int(c.U8())
			for ; repeat > 0 && i < np; repeat-- {
				flags[i] = flag
				i++
			}
		}
	}

	xs := make([]int32, np)
	var x int32
	for i := 0; i < np; i++ {
		flag := flags[i]
		switch {
		case flag&flagXShortVector != 0:
			dx := int32(c.U8())
			if flag&flagThisXIsSame == 0 {
				dx = -dx
			}
			x += dx
		case flag&flagThisXIsSame == 0:
			x += int32(c.I16())
		}
		xs[i] = x
	}
	ys := make([]int32, np)
	var y int32
	for i := 0; i < np; i++ {
		flag := flags[i]
		switch {
		case flag&flagYShortVector != 0:
			dy := int32(c.U8())
			if flag&flagThisYIsSame == 0 {
				dy = -dy
			}
			y += dy
		case flag&flagThisYIsSame == 0:
			y += int32(c.I16())
		}
		ys[i] = y
	}

	// Points are stored here in raw FUnit units, not true F26Dot6 pixel
	// values; LoadGlyph's scale() pass converts the whole outline to
	// pixel space once composite assembly (which also operates in FUnit
	// space) has finished, mirroring the teacher's int16-FUnit Point
	// slice that likewise isn't scaled until the glyph is fully loaded.
	l.Current.Outline.Points = l.Current.Outline.Points[:np]
	l.Current.Outline.Tags = l.Current.Outline.Tags[:np]
	for i := 0; i < np; i++ {
		l.Current.Outline.Points[i] = fixedmath.Vector{X: fixedmath.F26Dot6(xs[i]), Y: fixedmath.F26Dot6(ys[i])}
		tag := byte(0)
		if flags[i]&flagOnCurve != 0 {
			tag = outline.TagOnCurve
		}
		l.Current.Outline.Tags[i] = tag
	}
	l.Current.Outline.Contours = l.Current.Outline.Contours[:numContours]
	copy(l.Current.Outline.Contours, ends)
	l.Add()
	return nil
}
