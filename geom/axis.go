package geom

// Axis identifies one of the two layout axes.
type Axis uint8

// Axis values.
const (
	Horizontal Axis = iota
	Vertical
)

// Flip returns the other axis.
func (a Axis) Flip() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

// String returns a human-readable name for the axis.
func (a Axis) String() string {
	if a == Horizontal {
		return "Horizontal"
	}
	return "Vertical"
}

// AxisDirection is an axis with a direction along it: the direction in which
// content grows as scroll offsets increase.
type AxisDirection uint8

// AxisDirection values.
const (
	AxisUp AxisDirection = iota
	AxisRight
	AxisDown
	AxisLeft
)

// Axis returns the axis the direction runs along.
func (d AxisDirection) Axis() Axis {
	if d == AxisLeft || d == AxisRight {
		return Horizontal
	}
	return Vertical
}

// IsReversed reports whether the direction runs opposite to the coordinate
// axis (up or left).
func (d AxisDirection) IsReversed() bool {
	return d == AxisUp || d == AxisLeft
}

// Flip returns the opposite direction along the same axis.
func (d AxisDirection) Flip() AxisDirection {
	switch d {
	case AxisUp:
		return AxisDown
	case AxisDown:
		return AxisUp
	case AxisLeft:
		return AxisRight
	default:
		return AxisLeft
	}
}

// String returns a human-readable name for the direction.
func (d AxisDirection) String() string {
	switch d {
	case AxisUp:
		return "Up"
	case AxisRight:
		return "Right"
	case AxisDown:
		return "Down"
	default:
		return "Left"
	}
}

// GrowthDirection is the direction a sliver's contents are ordered relative
// to the axis direction. Forward slivers fill increasing scroll offsets;
// reverse slivers fill decreasing ones (content before the viewport center).
type GrowthDirection uint8

// GrowthDirection values.
const (
	GrowthForward GrowthDirection = iota
	GrowthReverse
)

// String returns a human-readable name for the growth direction.
func (g GrowthDirection) String() string {
	if g == GrowthForward {
		return "Forward"
	}
	return "Reverse"
}

// ScrollDirection is the user's current scroll activity as seen by a sliver.
type ScrollDirection uint8

// ScrollDirection values.
const (
	ScrollIdle ScrollDirection = iota
	ScrollForward
	ScrollReverse
)

// String returns a human-readable name for the scroll direction.
func (s ScrollDirection) String() string {
	switch s {
	case ScrollIdle:
		return "Idle"
	case ScrollForward:
		return "Forward"
	default:
		return "Reverse"
	}
}
