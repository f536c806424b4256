package loader

import (
	"testing"

	"github.com/inkwell-labs/corefont/fixedmath"
)

func TestPrepareThenAddAccumulatesIntoBase(t *testing.T) {
	l := New()
	if err := l.CheckPoints(3, 1); err != nil {
		t.Fatalf("check points: %v", err)
	}
	l.Current.Outline.Points = append(l.Current.Outline.Points, fixedmath.Vector{X: 1, Y: 1}, fixedmath.Vector{X: 2, Y: 2}, fixedmath.Vector{X: 3, Y: 3})
	l.Current.Outline.Tags = append(l.Current.Outline.Tags, 1, 1, 1)
	l.Current.Outline.Contours = append(l.Current.Outline.Contours, 2)
	l.Add()

	if len(l.Base.Outline.Points) != 3 {
		t.Fatalf("base should have 3 points, got %d", len(l.Base.Outline.Points))
	}
	if len(l.Current.Outline.Points) != 0 {
		t.Fatalf("current should be empty after Add, got %d points", len(l.Current.Outline.Points))
	}

	// A second component should have its contour ends offset by the first
	// component's point count.
	l.Prepare()
	if err := l.CheckPoints(2, 1); err != nil {
		t.Fatalf("check points: %v", err)
	}
	l.Current.Outline.Points = append(l.Current.Outline.Points, fixedmath.Vector{X: 4, Y: 4}, fixedmath.Vector{X: 5, Y: 5})
	l.Current.Outline.Tags = append(l.Current.Outline.Tags, 1, 1)
	l.Current.Outline.Contours = append(l.Current.Outline.Contours, 1)
	l.Add()

	if len(l.Base.Outline.Points) != 5 {
		t.Fatalf("base should have 5 points after second Add, got %d", len(l.Base.Outline.Points))
	}
	if got, want := l.Base.Outline.Contours, []uint16{2, 4}; len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("contour ends = %v, want %v", got, want)
	}
}

func TestRewindClearsBaseAndCurrent(t *testing.T) {
	l := New()
	l.CheckPoints(1, 1)
	l.Current.Outline.Points = append(l.Current.Outline.Points, fixedmath.Vector{})
	l.Current.Outline.Tags = append(l.Current.Outline.Tags, 1)
	l.Current.Outline.Contours = append(l.Current.Outline.Contours, 0)
	l.Add()
	l.Rewind()
	if len(l.Base.Outline.Points) != 0 || len(l.Current.Outline.Points) != 0 {
		t.Fatal("rewind should empty both base and current")
	}
}

func TestCopyPoints(t *testing.T) {
	src := New()
	src.CheckPoints(2, 1)
	src.Current.Outline.Points = append(src.Current.Outline.Points, fixedmath.Vector{X: 1}, fixedmath.Vector{X: 2})
	src.Current.Outline.Tags = append(src.Current.Outline.Tags, 1, 1)
	src.Current.Outline.Contours = append(src.Current.Outline.Contours, 1)
	src.Add()

	dst := New()
	if err := CopyPoints(dst, src); err != nil {
		t.Fatalf("copy points: %v", err)
	}
	if len(dst.Base.Outline.Points) != 2 {
		t.Fatalf("dst should have 2 points, got %d", len(dst.Base.Outline.Points))
	}
}
