package candidate

import "chewingd/internal/engine"

// PagingPolicy decides how the candidate window moves one page and whether
// a move is offered to the host.
type PagingPolicy interface {
	HasPrev(c engine.Client) bool
	HasNext(c engine.Client) bool
	Prev(c engine.Client)
	Next(c engine.Client)
}

// RotatingPaging always offers both directions and leaves wraparound to the
// engine.
type RotatingPaging struct{}

func (RotatingPaging) HasPrev(engine.Client) bool { return true }
func (RotatingPaging) HasNext(engine.Client) bool { return true }
func (RotatingPaging) Prev(c engine.Client)       { c.HandleAction(engine.ActionLeft) }
func (RotatingPaging) Next(c engine.Client)       { c.HandleAction(engine.ActionRight) }

// ClampedPaging only offers moves inside the real page range and refuses the
// rest without calling the engine.
type ClampedPaging struct{}

func (ClampedPaging) HasPrev(c engine.Client) bool {
	return c.CurrentPage() > 0
}

func (ClampedPaging) HasNext(c engine.Client) bool {
	return c.CurrentPage()+1 < c.TotalPages()
}

func (p ClampedPaging) Prev(c engine.Client) {
	if p.HasPrev(c) {
		c.HandleAction(engine.ActionLeft)
	}
}

func (p ClampedPaging) Next(c engine.Client) {
	if p.HasNext(c) {
		c.HandleAction(engine.ActionRight)
	}
}

// VerticalBoundaryPaging pages horizontally inside the list and issues a
// vertical step at either end, for engines that only rotate on Up/Down.
type VerticalBoundaryPaging struct{}

func (VerticalBoundaryPaging) HasPrev(engine.Client) bool { return true }
func (VerticalBoundaryPaging) HasNext(engine.Client) bool { return true }

func (VerticalBoundaryPaging) Prev(c engine.Client) {
	if c.CurrentPage() == 0 {
		c.HandleAction(engine.ActionUp)
		return
	}
	c.HandleAction(engine.ActionLeft)
}

func (VerticalBoundaryPaging) Next(c engine.Client) {
	if c.CurrentPage()+1 >= c.TotalPages() {
		c.HandleAction(engine.ActionDown)
		return
	}
	c.HandleAction(engine.ActionRight)
}

// PagingMode names a built-in PagingPolicy for configuration.
type PagingMode string

const (
	PagingRotate   PagingMode = "rotate"
	PagingClamp    PagingMode = "clamp"
	PagingVertical PagingMode = "vertical-boundary"
)

// Policy returns the policy for m, defaulting to rotation.
func (m PagingMode) Policy() PagingPolicy {
	switch m {
	case PagingClamp:
		return ClampedPaging{}
	case PagingVertical:
		return VerticalBoundaryPaging{}
	default:
		return RotatingPaging{}
	}
}

// Valid reports whether m names a built-in policy.
func (m PagingMode) Valid() bool {
	switch m {
	case PagingRotate, PagingClamp, PagingVertical:
		return true
	}
	return false
}
