package canvas

import (
	"image/color"
	"testing"
)

func TestClearThenExportIsBlank(t *testing.T) {
	s := NewImage(32, 32)
	s.SetStroke(color.RGBA{R: 0xff, A: 0xff}, 4)
	s.StrokeLine(0, 0, 31, 31)
	s.Clear()
	snap, err := s.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	r := NewImage(32, 32)
	if err := r.Import(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if r.At(x, y) != (color.RGBA{}) {
				t.Fatalf("pixel (%d,%d) not blank: %+v", x, y, r.At(x, y))
			}
		}
	}
}

func TestEraseLeavesTransparentPixels(t *testing.T) {
	s := NewImage(20, 20)
	s.SetStroke(color.RGBA{B: 0xff, A: 0xff}, 6)
	s.StrokeLine(0, 10, 19, 10)
	if s.At(10, 10).A == 0 {
		t.Fatalf("expected painted pixel before erase")
	}
	s.SetComposite(CompositeErase)
	s.StrokeLine(0, 10, 19, 10)
	got := s.At(10, 10)
	if got != (color.RGBA{}) {
		t.Fatalf("expected transparent pixel after erase, got %+v", got)
	}
}

func TestStrokeLineCoversSegment(t *testing.T) {
	s := NewImage(40, 40)
	s.SetStroke(color.RGBA{A: 0xff}, 3)
	s.StrokeLine(5, 5, 30, 30)
	for _, p := range [][2]int{{5, 5}, {17, 17}, {30, 30}} {
		if s.At(p[0], p[1]).A == 0 {
			t.Fatalf("pixel (%d,%d) not painted", p[0], p[1])
		}
	}
	if s.At(5, 30).A != 0 {
		t.Fatalf("pixel off the segment painted")
	}
}

func TestStrokeRectNormalizesSignedDimensions(t *testing.T) {
	a := NewImage(40, 40)
	a.SetStroke(color.RGBA{A: 0xff}, 2)
	a.StrokeRect(30, 30, -20, -20)

	b := NewImage(40, 40)
	b.SetStroke(color.RGBA{A: 0xff}, 2)
	b.StrokeRect(10, 10, 20, 20)

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if a.At(x, y) != b.At(x, y) {
				t.Fatalf("negative-dimension rect differs at (%d,%d)", x, y)
			}
		}
	}
}

func TestStrokeCirclePaintsRadius(t *testing.T) {
	s := NewImage(60, 60)
	s.SetStroke(color.RGBA{A: 0xff}, 2)
	s.StrokeCircle(30, 30, 15)
	if s.At(45, 30).A == 0 || s.At(30, 45).A == 0 {
		t.Fatalf("expected painted pixels on the circle")
	}
	if s.At(30, 30).A != 0 {
		t.Fatalf("circle center should stay unpainted")
	}
}

func TestImportBadSnapshotLeavesSurfaceUnchanged(t *testing.T) {
	s := NewImage(10, 10)
	s.SetStroke(color.RGBA{G: 0xff, A: 0xff}, 2)
	s.StrokeLine(0, 5, 9, 5)
	before := s.At(5, 5)
	if err := s.Import(Snapshot("not a png")); err == nil {
		t.Fatalf("expected import error")
	}
	if s.At(5, 5) != before {
		t.Fatalf("surface changed after failed import")
	}
}

func TestFillTextPaintsPixels(t *testing.T) {
	s := NewImage(80, 30)
	s.SetStroke(color.RGBA{A: 0xff}, 1)
	s.FillText("hi", 5, 20)
	painted := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 80; x++ {
			if s.At(x, y).A != 0 {
				painted++
			}
		}
	}
	if painted == 0 {
		t.Fatalf("expected text to paint pixels")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#ff0000", color.RGBA{R: 0xff, A: 0xff}, true},
		{"#F00", color.RGBA{R: 0xff, A: 0xff}, true},
		{"#00ff0080", color.RGBA{G: 0xff, A: 0x80}, true},
		{"black", color.RGBA{A: 0xff}, true},
		{" White ", color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, true},
		{"", color.RGBA{}, false},
		{"#zzz", color.RGBA{}, false},
		{"chartreuse-ish", color.RGBA{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseColor(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseColor(%q) = %+v, %v; want %+v, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
