package sfio

import (
	"errors"
	"testing"

	"github.com/inkwell-labs/corefont/errcode"
)

func TestMemoryStreamReadAndSeek(t *testing.T) {
	s := NewMemoryStream([]byte("hello world"))
	buf := make([]byte, 5)
	n, err := s.Read(buf)
	if err != nil || n != 5 || string(buf) != "hello" {
		t.Fatalf("read = %q, %v, %v", buf[:n], n, err)
	}
	if err := s.Seek(6); err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	n, err = s.Read(buf)
	if err != nil || string(buf[:n]) != "world" {
		t.Fatalf("read after seek = %q, %v, %v", buf[:n], n, err)
	}
}

func TestMemoryStreamSeekOutOfRange(t *testing.T) {
	s := NewMemoryStream([]byte("abc"))
	if err := s.Seek(10); err == nil {
		t.Fatal("expected error seeking past end")
	}
	if err := s.Seek(-1); err == nil {
		t.Fatal("expected error seeking negative")
	}
}

func TestEnterExitFrameBalance(t *testing.T) {
	s := NewMemoryStream([]byte("0123456789"))
	frame, err := s.EnterFrame(4)
	if err != nil {
		t.Fatalf("enter frame: %v", err)
	}
	if string(frame) != "0123" {
		t.Fatalf("frame = %q, want 0123", frame)
	}
	if err := s.ExitFrame(); err != nil {
		t.Fatalf("exit frame: %v", err)
	}
	if err := s.ExitFrame(); err == nil {
		t.Fatal("expected error on unbalanced exit frame")
	} else {
		var e *errcode.Error
		if !errors.As(err, &e) || e.Code != errcode.NestedFrameAccess {
			t.Fatalf("expected NestedFrameAccess, got %v", err)
		}
	}
}

func TestEnterFrameOverrunsBuffer(t *testing.T) {
	s := NewMemoryStream([]byte("abc"))
	if _, err := s.EnterFrame(10); err == nil {
		t.Fatal("expected error entering a frame larger than the stream")
	}
}

func TestCursorDecode(t *testing.T) {
	c := Cursor([]byte{0x00, 0x01, 0x02, 0x03, 0xAB, 0xCD, 0xFF})
	if got := c.U32(); got != 0x00010203 {
		t.Errorf("U32 = %#x, want 0x00010203", got)
	}
	if got := c.U16(); got != 0xABCD {
		t.Errorf("U16 = %#x, want 0xABCD", got)
	}
	if got := c.U8(); got != 0xFF {
		t.Errorf("U8 = %#x, want 0xFF", got)
	}
	if c.Len() != 0 {
		t.Errorf("expected cursor exhausted, %d bytes remain", c.Len())
	}
}
