package geo

import (
	"fmt"
	"math"
)

type Box struct {
	TopLeft *Point  `json:"topLeft"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

func NewBox(tl *Point, width, height float64) *Box {
	if tl == nil {
		tl = NewPoint(0, 0)
	}
	return &Box{
		TopLeft: tl,
		Width:   width,
		Height:  height,
	}
}

func (b *Box) Copy() *Box {
	if b == nil {
		return nil
	}
	return NewBox(b.TopLeft.Copy(), b.Width, b.Height)
}

func (b *Box) Equals(other *Box) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.TopLeft.Equals(other.TopLeft) && b.Width == other.Width && b.Height == other.Height
}

// Near reports whether b and other differ by less than e in position and size.
func (b *Box) Near(other *Box, e float64) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.TopLeft.Near(other.TopLeft, e) &&
		PrecisionCompare(b.Width, other.Width, e) == 0 &&
		PrecisionCompare(b.Height, other.Height, e) == 0
}

func (b *Box) Center() *Point {
	return NewPoint(b.TopLeft.X+b.Width/2, b.TopLeft.Y+b.Height/2)
}

// CenterAt moves the box so its center is at p, keeping its size.
func (b *Box) CenterAt(p *Point) {
	b.TopLeft = NewPoint(p.X-b.Width/2, p.Y-b.Height/2)
}

func (b *Box) Right() float64 {
	return b.TopLeft.X + b.Width
}

func (b *Box) Bottom() float64 {
	return b.TopLeft.Y + b.Height
}

func (b *Box) Contains(p *Point) bool {
	return p.X >= b.TopLeft.X && p.X <= b.Right() &&
		p.Y >= b.TopLeft.Y && p.Y <= b.Bottom()
}

// Expand returns a copy of b grown by d on every side.
func (b *Box) Expand(d float64) *Box {
	return NewBox(NewPoint(b.TopLeft.X-d, b.TopLeft.Y-d), b.Width+2*d, b.Height+2*d)
}

// Overlaps reports whether the interiors of b and other intersect.
func (b *Box) Overlaps(other *Box) bool {
	return b.TopLeft.X < other.Right() && other.TopLeft.X < b.Right() &&
		b.TopLeft.Y < other.Bottom() && other.TopLeft.Y < b.Bottom()
}

// Union returns the smallest box containing both boxes. Nil boxes are ignored.
func (b *Box) Union(other *Box) *Box {
	if b == nil {
		return other.Copy()
	}
	if other == nil {
		return b.Copy()
	}
	minX := math.Min(b.TopLeft.X, other.TopLeft.X)
	minY := math.Min(b.TopLeft.Y, other.TopLeft.Y)
	maxX := math.Max(b.Right(), other.Right())
	maxY := math.Max(b.Bottom(), other.Bottom())
	return NewBox(NewPoint(minX, minY), maxX-minX, maxY-minY)
}

func (b *Box) Intersections(s Segment) []*Point {
	pts := []*Point{}

	tl := b.TopLeft
	tr := NewPoint(tl.X+b.Width, tl.Y)
	br := NewPoint(tr.X, tr.Y+b.Height)
	bl := NewPoint(tl.X, br.Y)

	if p := IntersectionPoint(s.Start, s.End, tl, tr); p != nil {
		pts = append(pts, p)
	}
	if p := IntersectionPoint(s.Start, s.End, tr, br); p != nil {
		pts = append(pts, p)
	}
	if p := IntersectionPoint(s.Start, s.End, br, bl); p != nil {
		pts = append(pts, p)
	}
	if p := IntersectionPoint(s.Start, s.End, bl, tl); p != nil {
		pts = append(pts, p)
	}
	return pts
}

func (b *Box) ToString() string {
	if b == nil {
		return ""
	}
	return fmt.Sprintf("{TopLeft: %s, Width: %.0f, Height: %.0f}", b.TopLeft.ToString(), b.Width, b.Height)
}
