package raster

import "github.com/inkwell-labs/corefont/outline"

// Gray scan-converts o into bmp using the exact-area cell algorithm from
// SPEC_FULL.md section 4.F, producing 256-level anti-aliased coverage.
// bmp must be a Gray-mode Bitmap. Rasterizing an empty outline succeeds
// and writes nothing, per spec.md section 5.
func Gray(o *outline.Outline, bmp *Bitmap) error {
	if o.NumPoints() == 0 {
		return nil
	}
	acc := newCellAccumulator()
	flattener := &curveFlattener{sink: acc}
	if err := o.Decompose(flattener); err != nil {
		return err
	}
	cells := acc.finish()
	sweepGray(cells, bmp, o.Flags&outline.FlagEvenOddFill != 0)
	return nil
}

// sweepGray walks cells in (y, x) order, accumulating running cover and
// emitting one alpha value per covered pixel, the sweep step described by
// spec.md's "Emit spans to the bitmap target; the sweep guarantees
// linear-in-area time."
func sweepGray(cells []cell, bmp *Bitmap, evenOdd bool) {
	i := 0
	for i < len(cells) {
		y := cells[i].y
		if y < 0 || y >= bmp.Rows {
			for i < len(cells) && cells[i].y == y {
				i++
			}
			continue
		}
		cover := 0
		x := cells[i].x
		for i < len(cells) && cells[i].y == y {
			c := cells[i]
			if c.x > x {
				a := calcAlpha(cover<<(subpixelShift+1), evenOdd)
				if a != 0 {
					fillRow(bmp, x, c.x, y, a)
				}
			}
			cover += c.cover
			area := (cover << (subpixelShift + 1)) - c.area
			a := calcAlpha(area, evenOdd)
			if a != 0 {
				bmp.SetGray(c.x, y, a)
			}
			x = c.x + 1
			i++
		}
	}
}

func fillRow(bmp *Bitmap, x0, x1, y int, a uint8) {
	if x0 < 0 {
		x0 = 0
	}
	if x1 > bmp.Width {
		x1 = bmp.Width
	}
	for x := x0; x < x1; x++ {
		bmp.SetGray(x, y, a)
	}
}
