package sfio

import (
	"io"
	"os"

	"github.com/inkwell-labs/corefont/errcode"
)

// Stream is a seekable, position-tracking input source, generalizing
// FT_StreamRec's base/size/pos/read/close contract: a single interface
// that a MemoryStream or a FileStream can both satisfy, so drivers never
// need to know which one backs a given face.
type Stream interface {
	// Size returns the total stream length in bytes.
	Size() int64
	// Pos returns the current read position.
	Pos() int64
	// Seek moves the read position to an absolute offset from the start.
	Seek(offset int64) error
	// Read reads up to len(p) bytes starting at the current position,
	// advancing it, mirroring FT_Stream_IO's "always from start" contract
	// only at EnterFrame/Seek boundaries.
	Read(p []byte) (int, error)
	// EnterFrame reads n bytes into an internal cursor/limit pair and
	// returns them, matching FT_Stream_EnterFrame/FT_Stream_ExitFrame's
	// preload-then-cursor-walk pattern used throughout the original
	// parser. Frames nest; ExitFrame must be called once per EnterFrame.
	EnterFrame(n int) ([]byte, error)
	// ExitFrame pops the most recent EnterFrame, returning
	// errcode.NestedFrameAccess if frames are unbalanced.
	ExitFrame() error
	// Close releases any underlying resource (file descriptor, mapping).
	Close() error
}

// frameCounter tracks EnterFrame/ExitFrame nesting depth, the Go
// equivalent of FT_StreamRec's cursor/limit fields (which exist precisely
// so frame access can be validated instead of trusted).
type frameCounter struct {
	depth int
}

func (f *frameCounter) enter() { f.depth++ }

func (f *frameCounter) exit() error {
	if f.depth == 0 {
		return errcode.New("sfio.ExitFrame", errcode.NestedFrameAccess)
	}
	f.depth--
	return nil
}

// MemoryStream is a Stream over an in-memory byte slice, the Go analogue
// of FT_New_Memory_Face's base-pointer stream and the teacher's own
// []byte-oriented truetype.Font parsing.
type MemoryStream struct {
	data []byte
	pos  int64
	frameCounter
}

// NewMemoryStream wraps data; data is not copied, matching FT_StreamRec's
// zero-copy base-pointer semantics.
func NewMemoryStream(data []byte) *MemoryStream {
	return &MemoryStream{data: data}
}

func (s *MemoryStream) Size() int64 { return int64(len(s.data)) }
func (s *MemoryStream) Pos() int64  { return s.pos }

func (s *MemoryStream) Seek(offset int64) error {
	if offset < 0 || offset > int64(len(s.data)) {
		return errcode.New("MemoryStream.Seek", errcode.InvalidStreamSeek)
	}
	s.pos = offset
	return nil
}

func (s *MemoryStream) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *MemoryStream) EnterFrame(n int) ([]byte, error) {
	if n < 0 || s.pos+int64(n) > int64(len(s.data)) {
		return nil, errcode.New("MemoryStream.EnterFrame", errcode.InvalidStreamRead)
	}
	frame := s.data[s.pos : s.pos+int64(n)]
	s.pos += int64(n)
	s.enter()
	return frame, nil
}

func (s *MemoryStream) ExitFrame() error { return s.exit() }
func (s *MemoryStream) Close() error     { return nil }

// FileStream is a Stream backed by an *os.File. Where the platform
// supports it, the file is memory-mapped via golang.org/x/sys/unix so
// EnterFrame can hand back a direct view rather than copying, the same
// zero-copy goal FT_StreamRec's base-pointer stream achieves for
// memory-resident fonts; ReadAt is the portable fallback.
type FileStream struct {
	f       *os.File
	size    int64
	pos     int64
	mapping []byte // non-nil when mmap succeeded
	frameCounter
}

// OpenFileStream opens path for reading and attempts to memory-map it.
func OpenFileStream(path string) (*FileStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errcode.New("OpenFileStream", errcode.CannotOpenResource)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errcode.New("OpenFileStream", errcode.CannotOpenResource)
	}
	fs := &FileStream{f: f, size: info.Size()}
	fs.mapping = mmapFile(f, info.Size())
	return fs, nil
}

func (s *FileStream) Size() int64 { return s.size }
func (s *FileStream) Pos() int64  { return s.pos }

func (s *FileStream) Seek(offset int64) error {
	if offset < 0 || offset > s.size {
		return errcode.New("FileStream.Seek", errcode.InvalidStreamSeek)
	}
	s.pos = offset
	return nil
}

func (s *FileStream) Read(p []byte) (int, error) {
	if s.mapping != nil {
		if s.pos >= int64(len(s.mapping)) {
			return 0, io.EOF
		}
		n := copy(p, s.mapping[s.pos:])
		s.pos += int64(n)
		return n, nil
	}
	n, err := s.f.ReadAt(p, s.pos)
	s.pos += int64(n)
	return n, err
}

func (s *FileStream) EnterFrame(n int) ([]byte, error) {
	if n < 0 || s.pos+int64(n) > s.size {
		return nil, errcode.New("FileStream.EnterFrame", errcode.InvalidStreamRead)
	}
	if s.mapping != nil {
		frame := s.mapping[s.pos : s.pos+int64(n)]
		s.pos += int64(n)
		s.enter()
		return frame, nil
	}
	buf := make([]byte, n)
	if _, err := s.f.ReadAt(buf, s.pos); err != nil {
		return nil, errcode.New("FileStream.EnterFrame", errcode.InvalidStreamRead)
	}
	s.pos += int64(n)
	s.enter()
	return buf, nil
}

func (s *FileStream) ExitFrame() error { return s.exit() }

func (s *FileStream) Close() error {
	if s.mapping != nil {
		unmapFile(s.mapping)
		s.mapping = nil
	}
	return s.f.Close()
}
