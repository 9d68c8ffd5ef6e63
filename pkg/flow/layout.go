package flow

// Default layout gaps in layout units.
const (
	DefaultVerticalGap   = 120.0
	DefaultHorizontalGap = 300.0
)

// Layout assigns deterministic coordinates to flow graph nodes.
//
// Turns stack vertically: the user node of turn t sits at
// (0, t*2*VerticalGap). Its assistant branches share the row one VerticalGap
// below and fan out horizontally, branch k at (k+1)*HorizontalGap. Larger
// gaps spread nodes apart without changing the graph topology. There is no
// optimization pass; overlap avoidance for pathological inputs is not a goal.
type Layout struct {
	VerticalGap   float64
	HorizontalGap float64
}

// DefaultLayout returns the layout with the standard gaps.
func DefaultLayout() Layout {
	return Layout{VerticalGap: DefaultVerticalGap, HorizontalGap: DefaultHorizontalGap}
}

// normalized replaces unset gaps with the defaults so the zero value works.
func (l Layout) normalized() Layout {
	if l.VerticalGap == 0 {
		l.VerticalGap = DefaultVerticalGap
	}
	if l.HorizontalGap == 0 {
		l.HorizontalGap = DefaultHorizontalGap
	}
	return l
}

// UserPosition returns the coordinate of the user node of turn turnIndex.
func (l Layout) UserPosition(turnIndex int) Position {
	l = l.normalized()
	return Position{X: 0, Y: float64(turnIndex) * 2 * l.VerticalGap}
}

// AssistantPosition returns the coordinate of assistant branch k of turn
// turnIndex.
func (l Layout) AssistantPosition(turnIndex, branch int) Position {
	l = l.normalized()
	return Position{
		X: float64(branch+1) * l.HorizontalGap,
		Y: l.UserPosition(turnIndex).Y + l.VerticalGap,
	}
}
