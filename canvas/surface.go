// Package canvas provides the raster surface consumed by the action
// interpreter, plus the interpreter itself. The surface is deliberately
// small: primitive stroke operations, a compositing toggle, and opaque
// snapshot export/import. Dimensions are fixed for the lifetime of a
// surface instance.
package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pkt.systems/scrawl/schema"
)

// CompositeMode selects how stroke pixels combine with the surface.
type CompositeMode int

const (
	// CompositeNormal paints stroke pixels with the stroke color.
	CompositeNormal CompositeMode = iota
	// CompositeErase removes pixels, leaving them fully transparent.
	CompositeErase
)

// Snapshot is an opaque serialized capture of full raster state.
type Snapshot []byte

// Surface exposes the primitive draw operations the interpreter renders
// onto. Implementations own pixel storage and compositing; path state lives
// in the interpreter.
type Surface interface {
	Size() (width, height int)
	SetStroke(c color.Color, width float64)
	SetComposite(mode CompositeMode)
	StrokeLine(x0, y0, x1, y1 float64)
	StrokeRect(x, y, w, h float64)
	StrokeCircle(cx, cy, r float64)
	FillText(text string, x, y float64)
	Clear()
	Export() (Snapshot, error)
	Import(snap Snapshot) error
}

// Image is a software raster surface backed by an RGBA pixel buffer.
// Snapshots are PNG blobs.
type Image struct {
	rgba   *image.RGBA
	stroke color.RGBA
	width  float64
	mode   CompositeMode
	face   font.Face
}

var _ Surface = (*Image)(nil)

// NewImage constructs a surface of the given pixel dimensions.
func NewImage(width, height int) *Image {
	if width <= 0 {
		width = schema.DefaultSurfaceWidth
	}
	if height <= 0 {
		height = schema.DefaultSurfaceHeight
	}
	return &Image{
		rgba:   image.NewRGBA(image.Rect(0, 0, width, height)),
		stroke: color.RGBA{A: 0xff},
		width:  2,
		face:   basicfont.Face7x13,
	}
}

// Size returns the fixed surface dimensions.
func (s *Image) Size() (int, int) {
	b := s.rgba.Bounds()
	return b.Dx(), b.Dy()
}

// SetStroke sets the stroke color and line width for subsequent operations.
func (s *Image) SetStroke(c color.Color, width float64) {
	if c != nil {
		s.stroke = color.RGBAModel.Convert(c).(color.RGBA)
	}
	if width > 0 {
		s.width = width
	}
}

// SetComposite switches between normal and subtractive compositing.
func (s *Image) SetComposite(mode CompositeMode) {
	s.mode = mode
}

// StrokeLine strokes a segment between two points with the current width.
// A zero-length segment stamps a single dot.
func (s *Image) StrokeLine(x0, y0, x1, y1 float64) {
	dist := math.Hypot(x1-x0, y1-y0)
	steps := int(math.Ceil(dist * 2))
	if steps < 1 {
		steps = 1
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.stamp(x0+(x1-x0)*t, y0+(y1-y0)*t)
	}
}

// StrokeRect strokes a rectangle outline. Signed dimensions are normalized.
func (s *Image) StrokeRect(x, y, w, h float64) {
	if w < 0 {
		x, w = x+w, -w
	}
	if h < 0 {
		y, h = y+h, -h
	}
	s.StrokeLine(x, y, x+w, y)
	s.StrokeLine(x+w, y, x+w, y+h)
	s.StrokeLine(x+w, y+h, x, y+h)
	s.StrokeLine(x, y+h, x, y)
}

// StrokeCircle strokes a circle outline centered at (cx, cy).
func (s *Image) StrokeCircle(cx, cy, r float64) {
	if r < 0 {
		r = -r
	}
	if r == 0 {
		s.stamp(cx, cy)
		return
	}
	steps := int(math.Ceil(2 * math.Pi * r * 2))
	if steps < 12 {
		steps = 12
	}
	for i := 0; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		s.stamp(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
}

// FillText renders a string with the surface's bitmap face. The baseline
// sits at (x, y). Compositing mode does not apply to text.
func (s *Image) FillText(text string, x, y float64) {
	if text == "" {
		return
	}
	d := &font.Drawer{
		Dst:  s.rgba,
		Src:  image.NewUniform(s.stroke),
		Face: s.face,
		Dot:  fixed.P(int(math.Round(x)), int(math.Round(y))),
	}
	d.DrawString(text)
}

// Clear blanks the entire surface to transparent.
func (s *Image) Clear() {
	pix := s.rgba.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// Export encodes the surface as an opaque snapshot blob.
func (s *Image) Export() (Snapshot, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.rgba); err != nil {
		return nil, fmt.Errorf("export snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Import replaces the surface content with a decoded snapshot blob. An
// undecodable blob leaves the surface unchanged and returns
// schema.ErrBadSnapshot; decoding happens before any pixel is touched so a
// failed import never corrupts the surface.
func (s *Image) Import(snap Snapshot) error {
	img, err := png.Decode(bytes.NewReader(snap))
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrBadSnapshot, err)
	}
	s.Clear()
	draw.Draw(s.rgba, s.rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return nil
}

// At returns the pixel at integer coordinates, for inspection.
func (s *Image) At(x, y int) color.RGBA {
	return s.rgba.RGBAAt(x, y)
}

func (s *Image) stamp(x, y float64) {
	r := s.width / 2
	if r < 0.5 {
		r = 0.5
	}
	b := s.rgba.Bounds()
	minX := int(math.Floor(x - r))
	maxX := int(math.Ceil(x + r))
	minY := int(math.Floor(y - r))
	maxY := int(math.Ceil(y + r))
	rr := r * r
	for py := minY; py <= maxY; py++ {
		if py < b.Min.Y || py >= b.Max.Y {
			continue
		}
		for px := minX; px <= maxX; px++ {
			if px < b.Min.X || px >= b.Max.X {
				continue
			}
			dx := float64(px) + 0.5 - x
			dy := float64(py) + 0.5 - y
			if dx*dx+dy*dy > rr {
				continue
			}
			if s.mode == CompositeErase {
				s.rgba.SetRGBA(px, py, color.RGBA{})
			} else {
				s.rgba.SetRGBA(px, py, s.stroke)
			}
		}
	}
}
