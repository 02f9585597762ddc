package label

import (
	"oss.terrastruct.com/reflow/lib/geo"
)

// These are % locations where labels will be placed along the connection
const LEFT_LABEL_POSITION = 1.0 / 4.0
const CENTER_LABEL_POSITION = 2.0 / 4.0
const RIGHT_LABEL_POSITION = 3.0 / 4.0

// This is the space between a node border and its outside label
const PADDING = 5

type Position int8

const (
	Unset Position = iota

	OutsideTopCenter
	OutsideTopRight
	OutsideBottomCenter
	OutsideBottomRight

	// Corner positions sit diagonally off the box, clear of both its edges.
	CornerTopRight
	CornerBottomRight

	InsideMiddleCenter

	BorderTopCenter
	BorderLeftMiddle
	BorderRightMiddle
	BorderBottomLeft
	BorderBottomCenter
	BorderBottomRight
)

func FromString(s string) Position {
	switch s {
	case "OUTSIDE_TOP_CENTER":
		return OutsideTopCenter
	case "OUTSIDE_TOP_RIGHT":
		return OutsideTopRight
	case "OUTSIDE_BOTTOM_CENTER":
		return OutsideBottomCenter
	case "OUTSIDE_BOTTOM_RIGHT":
		return OutsideBottomRight
	case "CORNER_TOP_RIGHT":
		return CornerTopRight
	case "CORNER_BOTTOM_RIGHT":
		return CornerBottomRight
	case "INSIDE_MIDDLE_CENTER":
		return InsideMiddleCenter
	case "BORDER_TOP_CENTER":
		return BorderTopCenter
	case "BORDER_LEFT_MIDDLE":
		return BorderLeftMiddle
	case "BORDER_RIGHT_MIDDLE":
		return BorderRightMiddle
	case "BORDER_BOTTOM_LEFT":
		return BorderBottomLeft
	case "BORDER_BOTTOM_CENTER":
		return BorderBottomCenter
	case "BORDER_BOTTOM_RIGHT":
		return BorderBottomRight
	default:
		return Unset
	}
}

func (position Position) String() string {
	switch position {
	case OutsideTopCenter:
		return "OUTSIDE_TOP_CENTER"
	case OutsideTopRight:
		return "OUTSIDE_TOP_RIGHT"
	case OutsideBottomCenter:
		return "OUTSIDE_BOTTOM_CENTER"
	case OutsideBottomRight:
		return "OUTSIDE_BOTTOM_RIGHT"
	case CornerTopRight:
		return "CORNER_TOP_RIGHT"
	case CornerBottomRight:
		return "CORNER_BOTTOM_RIGHT"
	case InsideMiddleCenter:
		return "INSIDE_MIDDLE_CENTER"
	case BorderTopCenter:
		return "BORDER_TOP_CENTER"
	case BorderLeftMiddle:
		return "BORDER_LEFT_MIDDLE"
	case BorderRightMiddle:
		return "BORDER_RIGHT_MIDDLE"
	case BorderBottomLeft:
		return "BORDER_BOTTOM_LEFT"
	case BorderBottomCenter:
		return "BORDER_BOTTOM_CENTER"
	case BorderBottomRight:
		return "BORDER_BOTTOM_RIGHT"
	default:
		return ""
	}
}

// GetPointOnBox returns the top left of a width x height box placed at labelPosition relative to box.
// Border positions center the placed box on the border line.
func (labelPosition Position) GetPointOnBox(box *geo.Box, padding, width, height float64) *geo.Point {
	p := box.TopLeft.Copy()
	boxCenter := box.Center()

	switch labelPosition {
	case OutsideTopCenter:
		p.X = boxCenter.X - width/2
		p.Y -= padding + height
	case OutsideTopRight:
		p.X += box.Width - width - padding
		p.Y -= padding + height
	case OutsideBottomCenter:
		p.X = boxCenter.X - width/2
		p.Y += box.Height + padding
	case OutsideBottomRight:
		p.X += box.Width - width - padding
		p.Y += box.Height + padding

	case CornerTopRight:
		p.X += box.Width + padding
		p.Y -= padding + height
	case CornerBottomRight:
		p.X += box.Width + padding
		p.Y += box.Height + padding

	case InsideMiddleCenter:
		p.X = boxCenter.X - width/2
		p.Y = boxCenter.Y - height/2

	case BorderTopCenter:
		p.X = boxCenter.X - width/2
		p.Y -= height / 2
	case BorderLeftMiddle:
		p.X -= width / 2
		p.Y = boxCenter.Y - height/2
	case BorderRightMiddle:
		p.X += box.Width - width/2
		p.Y = boxCenter.Y - height/2
	case BorderBottomLeft:
		p.X += padding
		p.Y += box.Height - height/2
	case BorderBottomCenter:
		p.X = boxCenter.X - width/2
		p.Y += box.Height - height/2
	case BorderBottomRight:
		p.X += box.Width - width - padding
		p.Y += box.Height - height/2
	}

	return p
}

// GetPointOnRoute returns the top left of a width x height label centered at labelPercentage of the route's length.
func GetPointOnRoute(route geo.Route, labelPercentage, width, height float64) (point *geo.Point, index int) {
	if len(route) == 0 {
		return nil, -1
	}
	var center *geo.Point
	if labelPercentage == CENTER_LABEL_POSITION {
		center, index = route.Midpoint(), len(route)/2
	} else {
		center, index = route.GetPointAtDistance(route.Length() * labelPercentage)
		if center == nil {
			center, index = route[len(route)-1].Copy(), len(route)-2
		}
	}
	return geo.NewPoint(chopPrecision(center.X-width/2), chopPrecision(center.Y-height/2)), index
}

// round to 3 decimals to keep outputs stable across machines
func chopPrecision(f float64) float64 {
	return geo.TruncateDecimals(f)
}
