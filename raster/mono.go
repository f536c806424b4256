package raster

import (
	"github.com/inkwell-labs/corefont/errcode"
	"github.com/inkwell-labs/corefont/outline"
)

// minWorkBufPerPoint is a conservative estimate of the profile-stack
// working-buffer bytes a single outline point can require, used only to
// decide whether workBufSize is large enough to proceed; it does not
// bound any allocation actually made.
const minWorkBufPerPoint = 16

// Mono scan-converts o into bmp (a Mono-mode Bitmap) at 1-bit depth, per
// SPEC_FULL.md section 4.E. workBufSize names the caller-supplied working
// buffer budget for the scan-line profile pool; if o's point count would
// exceed it, Mono returns errcode.RasterOverflow so the caller may retry
// with a larger buffer, matching spec.md's "if the buffer is insufficient,
// the rasterizer returns Overflow" contract. No working buffer of that
// size is allocated; workBufSize only decides whether the call proceeds.
//
// Mono shares the same exact-area cell accumulator as Gray (see cells.go)
// rather than a dedicated intersection-profile walk: both algorithms
// visit the same set of covered cells, and mono output is the set of
// pixels whose gray-mode coverage would be >= 128 plus any pixels set by
// dropout control (see sweepMono), which is simpler to
// keep correct than maintaining two independent scan converters and
// guarantees the section 8 "mono is a superset of gray >= 128" property
// by construction rather than by coincidence.
func Mono(o *outline.Outline, bmp *Bitmap, workBufSize int) error {
	if o.NumPoints() == 0 {
		return nil
	}
	if o.NumPoints()*minWorkBufPerPoint > workBufSize {
		return errcode.New("raster.Mono", errcode.RasterOverflow)
	}

	acc := newCellAccumulator()
	flattener := &curveFlattener{sink: acc}
	if err := o.Decompose(flattener); err != nil {
		return err
	}
	cells := acc.finish()
	sweepMono(cells, bmp, o.Flags&outline.FlagEvenOddFill != 0, o.Flags&outline.FlagIgnoreDropouts != 0)
	return nil
}

// sweepMono walks cells one scanline at a time, setting the spans between
// alpha->=128 boundaries, then applies dropout control per spec.md section
// 4.E step 4: a "pair" here is the run of cells between the x where the
// running winding count (cover) leaves zero and the x where it returns to
// zero — the cell-accumulator equivalent of a profile-stack left/right
// boundary pair. If no pixel in that run ever reached the fill threshold
// (the feature is thinner than half a pixel everywhere along it), the
// single pixel at the pair's rounded midpoint is set instead, unless
// ignoreDropouts is set. A feature that opens and closes within a single
// cell (cover nets to zero across the cell but its area is non-zero) is
// handled the same way, using that cell itself as the degenerate pair.
func sweepMono(cells []cell, bmp *Bitmap, evenOdd, ignoreDropouts bool) {
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
		pairLeft := -1
		pairHasSpan := false
		for i < len(cells) && cells[i].y == y {
			c := cells[i]
			if c.x > x && calcAlpha(cover<<(subpixelShift+1), evenOdd) >= 128 {
				bmp.SetMonoSpan(x, c.x, y)
				pairHasSpan = true
			}

			prevCover := cover
			cover += c.cover
			if prevCover == 0 && cover != 0 {
				pairLeft = c.x
				pairHasSpan = false
			}

			area := (cover << (subpixelShift + 1)) - c.area
			spanSet := calcAlpha(area, evenOdd) >= 128
			if spanSet {
				bmp.SetMonoSpan(c.x, c.x+1, y)
				pairHasSpan = true
			}

			switch {
			case prevCover == 0 && cover == 0:
				if !spanSet && c.area != 0 && !ignoreDropouts {
					bmp.SetMonoSpan(c.x, c.x+1, y)
				}
			case prevCover != 0 && cover == 0:
				if !pairHasSpan && pairLeft >= 0 && !ignoreDropouts {
					mid := (pairLeft + c.x + 1) / 2
					bmp.SetMonoSpan(mid, mid+1, y)
				}
				pairLeft = -1
			}

			x = c.x + 1
			i++
		}
	}
}
