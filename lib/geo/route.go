package geo

import (
	"math"
)

type Route []*Point

func (route Route) Length() float64 {
	l := 0.
	for i := 0; i < len(route)-1; i++ {
		l += EuclideanDistance(
			route[i].X, route[i].Y,
			route[i+1].X, route[i+1].Y,
		)
	}
	return l
}

// return the point at _distance_ along the route, and the index of the segment it's on
func (route Route) GetPointAtDistance(distance float64) (*Point, int) {
	remaining := distance
	for i := 0; i < len(route)-1; i++ {
		curr, next := route[i], route[i+1]
		length := EuclideanDistance(curr.X, curr.Y, next.X, next.Y)

		if remaining <= length {
			if length == 0 {
				return curr.Copy(), i
			}
			t := remaining / length
			return curr.Interpolate(next, t), i
		}
		remaining -= length
	}

	return nil, -1
}

// Midpoint is the point halfway along the route by arc length.
func (route Route) Midpoint() *Point {
	switch len(route) {
	case 0:
		return nil
	case 1:
		return route[0].Copy()
	}
	p, _ := route.GetPointAtDistance(route.Length() / 2)
	if p == nil {
		return route[len(route)-1].Copy()
	}
	return p
}

func (route Route) GetBoundingBox() (tl, br *Point) {
	minX := math.Inf(1)
	minY := math.Inf(1)
	maxX := math.Inf(-1)
	maxY := math.Inf(-1)

	for _, p := range route {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return NewPoint(minX, minY), NewPoint(maxX, maxY)
}

func (route Route) Copy() Route {
	if route == nil {
		return nil
	}
	out := make(Route, 0, len(route))
	for _, p := range route {
		out = append(out, p.Copy())
	}
	return out
}

func (route Route) Equals(other Route) bool {
	return Points(route).Equals(Points(other))
}

// IsOrthogonal reports whether every segment is horizontal or vertical.
func (route Route) IsOrthogonal() bool {
	for i := 0; i < len(route)-1; i++ {
		if route[i].X != route[i+1].X && route[i].Y != route[i+1].Y {
			return false
		}
	}
	return true
}

// Simplify drops repeated points and points in the middle of a straight run.
// The first and last points are always kept.
func (route Route) Simplify() Route {
	if len(route) < 3 {
		return route
	}
	deduped := Route{route[0]}
	for _, p := range route[1:] {
		if !p.Equals(deduped[len(deduped)-1]) {
			deduped = append(deduped, p)
		}
	}
	if len(deduped) < 3 {
		if len(deduped) == 1 {
			return Route{route[0], route[len(route)-1]}
		}
		return deduped
	}
	out := Route{deduped[0]}
	for i := 1; i < len(deduped)-1; i++ {
		prev, curr, next := out[len(out)-1], deduped[i], deduped[i+1]
		if (prev.X == curr.X && curr.X == next.X) || (prev.Y == curr.Y && curr.Y == next.Y) {
			continue
		}
		out = append(out, curr)
	}
	return append(out, deduped[len(deduped)-1])
}
