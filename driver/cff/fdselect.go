package cff

import "github.com/inkwell-labs/corefont/errcode"

// fdSelectFn maps a glyph index to an index into Font.fdArray, the Go
// closure equivalent of seehuhn-go-pdf/font/cff/fdselect.go's FdSelectFn.
type fdSelectFn func(gid int) int

// readFDSelect decodes an FDSelect table (format 0: one byte per glyph,
// format 3: sorted first-glyph/FD ranges plus a sentinel), a direct port
// of the teacher's readFDSelect adapted from its parser.Parser reader to
// plain byte-slice decoding.
func readFDSelect(buf []byte, nGlyphs, nFDs int) (fdSelectFn, error) {
	if len(buf) < 1 {
		return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
	}
	format := buf[0]
	buf = buf[1:]

	switch format {
	case 0:
		if len(buf) < nGlyphs {
			return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
		}
		table := make([]byte, nGlyphs)
		copy(table, buf[:nGlyphs])
		for _, fd := range table {
			if int(fd) >= nFDs {
				return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
			}
		}
		return func(gid int) int {
			if gid < 0 || gid >= len(table) {
				return 0
			}
			return int(table[gid])
		}, nil

	case 3:
		if len(buf) < 2 {
			return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
		}
		nRanges := int(buf[0])<<8 | int(buf[1])
		buf = buf[2:]
		if nGlyphs > 0 && nRanges == 0 {
			return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
		}
		if len(buf) < 3*nRanges+2 {
			return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
		}

		starts := make([]int, nRanges+1)
		fds := make([]byte, nRanges)
		prev := -1
		for i := 0; i < nRanges; i++ {
			first := int(buf[0])<<8 | int(buf[1])
			fd := buf[2]
			buf = buf[3:]
			if first <= prev {
				return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
			}
			if int(fd) >= nFDs {
				return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
			}
			starts[i] = first
			fds[i] = fd
			prev = first
		}
		sentinel := int(buf[0])<<8 | int(buf[1])
		if sentinel != nGlyphs {
			return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
		}
		starts[nRanges] = sentinel

		return func(gid int) int {
			lo, hi := 0, nRanges
			for lo < hi {
				mid := (lo + hi) / 2
				if starts[mid+1] <= gid {
					lo = mid + 1
				} else {
					hi = mid
				}
			}
			if lo >= nRanges {
				return 0
			}
			return int(fds[lo])
		}, nil

	default:
		return nil, errcode.New("cff.readFDSelect", errcode.InvalidCFFTable)
	}
}
