package geo

type Intersectable interface {
	Intersections(segment Segment) []*Point
}

type Segment struct {
	Start *Point
	End   *Point
}

func NewSegment(from, to *Point) *Segment {
	return &Segment{from, to}
}

func (segment Segment) Intersections(otherSegment Segment) []*Point {
	point := IntersectionPoint(segment.Start, segment.End, otherSegment.Start, otherSegment.End)
	if point == nil {
		return nil
	}
	return []*Point{point}
}

func (segment Segment) Length() float64 {
	return EuclideanDistance(segment.Start.X, segment.Start.Y, segment.End.X, segment.End.Y)
}

// Clip shortens the segment so it starts where it leaves src and ends where it enters dst.
// Ends that do not cross the corresponding shape border are left unchanged.
func (segment Segment) Clip(src, dst Intersectable) Segment {
	out := Segment{Start: segment.Start, End: segment.End}
	if src != nil {
		if pts := src.Intersections(segment); len(pts) > 0 {
			out.Start = closest(pts, segment.End)
		}
	}
	if dst != nil {
		if pts := dst.Intersections(segment); len(pts) > 0 {
			out.End = closest(pts, segment.Start)
		}
	}
	return out
}

func closest(pts []*Point, to *Point) *Point {
	best := pts[0]
	bestD := EuclideanDistance(best.X, best.Y, to.X, to.Y)
	for _, p := range pts[1:] {
		if d := EuclideanDistance(p.X, p.Y, to.X, to.Y); d < bestD {
			best, bestD = p, d
		}
	}
	return best
}
