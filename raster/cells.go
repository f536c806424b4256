package raster

import "sort"

// Subpixel geometry. The rasterizer works directly in F26Dot6 units (6
// fractional bits), so no rescaling is needed between the outline's
// coordinate space and the cell grid's.
const (
	subpixelShift = 6
	subpixelScale = 1 << subpixelShift
	subpixelMask  = subpixelScale - 1
)

// cell is one pixel's accumulated coverage and signed area, the unit of
// the exact-area algorithm from section 4.F ("an adaptation of Raph
// Levien's grayscale scan converter"). This is the corrected, complete
// form of the cell/area bookkeeping sketched (incompletely, its
// multi-cell render_hline branch left as a placeholder) by the AGG port
// in the example pack's rasterizer package; the line-rasterization
// arithmetic below follows the published AGG algorithm that port was
// itself adapting.
type cell struct {
	x, y        int
	cover, area int
}

// cellAccumulator rasterizes a sequence of line segments into cells,
// mirroring RasterizerCellsAASimple's Line/renderLine/renderHLine/
// setCurrCell/addCurrCell contract.
type cellAccumulator struct {
	cells                  []cell
	curr                   cell
	minX, minY, maxX, maxY int
	started                bool
}

func newCellAccumulator() *cellAccumulator {
	return &cellAccumulator{curr: cell{x: 1<<31 - 1, y: 1<<31 - 1}}
}

func (c *cellAccumulator) setCurrCell(x, y int) {
	if c.curr.x != x || c.curr.y != y {
		c.addCurrCell()
		c.curr = cell{x: x, y: y}
	}
}

func (c *cellAccumulator) addCurrCell() {
	if c.curr.area == 0 && c.curr.cover == 0 {
		return
	}
	if !c.started {
		c.minX, c.maxX, c.minY, c.maxY = c.curr.x, c.curr.x, c.curr.y, c.curr.y
		c.started = true
	} else {
		if c.curr.x < c.minX {
			c.minX = c.curr.x
		}
		if c.curr.x > c.maxX {
			c.maxX = c.curr.x
		}
		if c.curr.y < c.minY {
			c.minY = c.curr.y
		}
		if c.curr.y > c.maxY {
			c.maxY = c.curr.y
		}
	}
	c.cells = append(c.cells, c.curr)
}

// lineTo satisfies the lineSink interface curveFlattener targets.
func (c *cellAccumulator) lineTo(x1, y1, x2, y2 int) { c.Line(x1, y1, x2, y2) }

// Line rasterizes the segment from (x1,y1) to (x2,y2), all in F26Dot6
// units, into cells. Horizontal lines (dy==0) contribute no area or cover
// and are skipped, matching AGG's convention.
func (c *cellAccumulator) Line(x1, y1, x2, y2 int) {
	c.setCurrCell(x1>>subpixelShift, y1>>subpixelShift)
	dy := y2 - y1
	if dy == 0 {
		return
	}
	ey1, ey2 := y1>>subpixelShift, y2>>subpixelShift
	fy1 := y1 & subpixelMask
	if ey1 == ey2 {
		c.renderHLine(ey1, x1, fy1, x2, y2&subpixelMask)
		return
	}

	dx := x2 - x1
	incr := 1
	first := subpixelScale
	p := (subpixelScale - fy1) * dx
	if dy < 0 {
		p = fy1 * dx
		first = 0
		incr = -1
		dy = -dy
	}

	delta := p / dy
	mod := p % dy
	if mod < 0 {
		delta--
		mod += dy
	}

	xFrom := x1 + delta
	c.renderHLine(ey1, x1, fy1, xFrom, first)
	ey1 += incr
	c.setCurrCell(xFrom>>subpixelShift, ey1)

	if ey1 != ey2 {
		p = subpixelScale * dx
		lift := p / dy
		rem := p % dy
		if rem < 0 {
			lift--
			rem += dy
		}
		mod -= dy

		for ey1 != ey2 {
			d := lift
			mod += rem
			if mod >= 0 {
				mod -= dy
				d++
			}
			xTo := xFrom + d
			c.renderHLine(ey1, xFrom, subpixelScale-first, xTo, first)
			xFrom = xTo
			ey1 += incr
			c.setCurrCell(xFrom>>subpixelShift, ey1)
		}
	}
	c.renderHLine(ey1, xFrom, subpixelScale-first, x2, y2&subpixelMask)
}

func (c *cellAccumulator) renderHLine(ey, x1, y1, x2, y2 int) {
	ex1, ex2 := x1>>subpixelShift, x2>>subpixelShift
	fx1, fx2 := x1&subpixelMask, x2&subpixelMask

	if y1 == y2 {
		c.setCurrCell(ex2, ey)
		return
	}
	if ex1 == ex2 {
		delta := y2 - y1
		c.curr.cover += delta
		c.curr.area += (fx1 + fx2) * delta
		return
	}

	dx := x2 - x1
	incr := 1
	first := subpixelScale
	p := (subpixelScale - fx1) * (y2 - y1)
	if dx < 0 {
		p = fx1 * (y2 - y1)
		first = 0
		incr = -1
		dx = -dx
	}

	delta := p / dx
	mod := p % dx
	if mod < 0 {
		delta--
		mod += dx
	}

	c.curr.cover += delta
	c.curr.area += (fx1 + first) * delta
	ex1 += incr
	c.setCurrCell(ex1, ey)
	y1 += delta

	if ex1 != ex2 {
		p = subpixelScale * (y2 - y1 + delta)
		lift := p / dx
		rem := p % dx
		if rem < 0 {
			lift--
			rem += dx
		}
		mod -= dx

		for ex1 != ex2 {
			d := lift
			mod += rem
			if mod >= 0 {
				mod -= dx
				d++
			}
			c.curr.cover += d
			c.curr.area += subpixelScale * d
			y1 += d
			ex1 += incr
			c.setCurrCell(ex1, ey)
		}
	}
	delta = y2 - y1
	c.curr.cover += delta
	c.curr.area += (fx2 + subpixelScale - first) * delta
}

// finish flushes the pending current cell and returns every accumulated
// cell sorted by (y, x), summing the cover and area of duplicate (x,y)
// entries (a pixel revisited by a later segment), so downstream sweep
// code can assume one cell per covered pixel.
func (c *cellAccumulator) finish() []cell {
	c.addCurrCell()
	sort.Slice(c.cells, func(i, j int) bool {
		if c.cells[i].y != c.cells[j].y {
			return c.cells[i].y < c.cells[j].y
		}
		return c.cells[i].x < c.cells[j].x
	})
	merged := c.cells[:0]
	for _, cl := range c.cells {
		if n := len(merged); n > 0 && merged[n-1].x == cl.x && merged[n-1].y == cl.y {
			merged[n-1].cover += cl.cover
			merged[n-1].area += cl.area
			continue
		}
		merged = append(merged, cl)
	}
	c.cells = merged
	return c.cells
}

const (
	aaShift = 8
	aaScale = 1 << aaShift
	aaMask  = aaScale - 1
)

// calcAlpha converts an accumulated area value into an 8-bit coverage,
// per spec.md's even-odd mod-512-reflect-around-256 rule for
// FlagEvenOddFill outlines, or a simple clamp for the default non-zero
// winding rule.
func calcAlpha(area int, evenOdd bool) uint8 {
	cover := area >> (2*subpixelShift + 1 - aaShift)
	if cover < 0 {
		cover = -cover
	}
	if evenOdd {
		cover &= 2*aaScale - 1
		if cover > aaScale {
			cover = 2*aaScale - cover
		}
	}
	if cover > aaMask {
		cover = aaMask
	}
	return uint8(cover)
}
