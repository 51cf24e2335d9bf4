// Package candidate models the page of candidates an engine offers for the
// text at its cursor.
//
// A Model is a snapshot: it is rebuilt from the engine on every redraw and
// has no identity of its own. Operations on a Model drive the engine and then
// re-read the page.
package candidate

import (
	"errors"
	"fmt"
	"strings"

	"chewingd/internal/engine"
)

const (
	MinPageSize = 3
	MaxPageSize = 10
	// maxLabels is the number of candidates that get a selection key label.
	maxLabels = 10
)

var (
	// ErrOutOfRange is returned when a selection index maps outside the
	// candidate pages. No engine call is made.
	ErrOutOfRange = errors.New("candidate: selection out of range")
	// ErrPagingStall is returned when the engine did not move while walking
	// to the page of a selection. The selection is dropped.
	ErrPagingStall = errors.New("candidate: engine page did not advance")
)

// ClampPageSize bounds n to the supported page sizes.
func ClampPageSize(n int) int {
	return max(MinPageSize, min(n, MaxPageSize))
}

// Layout is a rendering hint for the candidate window.
type Layout uint8

const (
	LayoutNotSet Layout = iota
	LayoutVertical
	LayoutHorizontal
)

func (l Layout) String() string {
	switch l {
	case LayoutVertical:
		return "vertical"
	case LayoutHorizontal:
		return "horizontal"
	default:
		return "not-set"
	}
}

func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Layout) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "not-set", "notset":
		*l = LayoutNotSet
	case "vertical":
		*l = LayoutVertical
	case "horizontal":
		*l = LayoutHorizontal
	default:
		return fmt.Errorf("unknown candidate layout %q", text)
	}
	return nil
}

// CursorPolicy decides where the highlight lands after a cursor step
// crosses a page edge.
type CursorPolicy uint8

const (
	// CursorReset puts the highlight on the first item of the new page.
	CursorReset CursorPolicy = iota
	// CursorFollow puts it on the item adjoining the edge that was crossed.
	CursorFollow
)

func (p CursorPolicy) String() string {
	if p == CursorFollow {
		return "follow"
	}
	return "reset"
}

func (p CursorPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *CursorPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "", "reset":
		*p = CursorReset
	case "follow":
		*p = CursorFollow
	default:
		return fmt.Errorf("unknown cursor policy %q", text)
	}
	return nil
}

// Options configure how a page is built and navigated.
type Options struct {
	SelectionKeys [10]rune
	PageSize      int
	Layout        Layout
	// Paging defaults to RotatingPaging.
	Paging PagingPolicy
	// CursorEnabled turns on arrow key sub-selection inside a page.
	CursorEnabled bool
	Cursor        CursorPolicy
}

// Item is one candidate on the current page.
type Item struct {
	Text string
	// Label is the selection key shown beside the item, empty past the
	// tenth item.
	Label string
	// Index is the item's position on the page.
	Index int
}

// Model is the current candidate page.
type Model struct {
	client engine.Client
	opts   Options
	items  []Item
	cursor int
}

// Build reads the current page from c. It returns nil when the engine has no
// open list or the page is empty. cursor is the highlight carried over from
// the previous model and is clamped to the page.
func Build(c engine.Client, opts Options, cursor int) *Model {
	if !c.CandidatesOpen() {
		return nil
	}
	if opts.Paging == nil {
		opts.Paging = RotatingPaging{}
	}
	opts.PageSize = ClampPageSize(opts.PageSize)

	m := &Model{client: c, opts: opts, cursor: cursor}
	m.reload()
	if len(m.items) == 0 {
		return nil
	}
	return m
}

func (m *Model) reload() {
	texts := m.client.Candidates()
	size := min(len(texts), m.pageSize())
	m.items = make([]Item, 0, size)
	for i, text := range texts[:size] {
		item := Item{Text: text, Index: i}
		if i < maxLabels {
			item.Label = string(m.opts.SelectionKeys[i])
		}
		m.items = append(m.items, item)
	}

	if !m.opts.CursorEnabled {
		m.cursor = -1
		return
	}
	m.cursor = max(0, min(m.cursor, len(m.items)-1))
}

// pageSize is the engine's page size when it reports one, else the
// configured size.
func (m *Model) pageSize() int {
	if ps := m.client.PageSize(); ps > 0 {
		return ps
	}
	return m.opts.PageSize
}

// Items returns the candidates on the current page.
func (m *Model) Items() []Item { return m.items }

// Len returns the number of candidates on the page.
func (m *Model) Len() int { return len(m.items) }

// Layout returns the configured rendering hint.
func (m *Model) Layout() Layout { return m.opts.Layout }

// Page returns the current page number and the total page count.
func (m *Model) Page() (current, total int) {
	return m.client.CurrentPage(), m.client.TotalPages()
}

// HasPrev reports whether a previous page is offered.
func (m *Model) HasPrev() bool { return m.opts.Paging.HasPrev(m.client) }

// HasNext reports whether a next page is offered.
func (m *Model) HasNext() bool { return m.opts.Paging.HasNext(m.client) }

// CursorIndex returns the highlighted item, or -1 when cursor selection is
// disabled.
func (m *Model) CursorIndex() int { return m.cursor }

// SetCursorIndex moves the highlight within the page.
func (m *Model) SetCursorIndex(i int) {
	if !m.opts.CursorEnabled || i < 0 || i >= len(m.items) {
		return
	}
	m.cursor = i
}

// Select picks the index-th candidate counted from the start of the current
// page. Indexes past the page continue onto later pages.
func (m *Model) Select(index int) (engine.Outcome, error) {
	c := m.client
	ps := m.pageSize()
	if index < 0 {
		return engine.Passed, ErrOutOfRange
	}
	page := index/ps + c.CurrentPage()
	offset := index % ps
	if page < 0 || page >= c.TotalPages() || offset >= len(m.opts.SelectionKeys) {
		return engine.Passed, ErrOutOfRange
	}

	last := c.CurrentPage()
	for page != c.CurrentPage() {
		if page < c.CurrentPage() {
			c.HandleAction(engine.ActionLeft)
		} else {
			c.HandleAction(engine.ActionRight)
		}
		if c.CurrentPage() == last {
			m.reload()
			return engine.Passed, ErrPagingStall
		}
		last = c.CurrentPage()
	}

	c.HandleDefault(m.opts.SelectionKeys[offset])
	return engine.Classify(c), nil
}

// SelectCursor picks the highlighted candidate.
func (m *Model) SelectCursor() (engine.Outcome, error) {
	if m.cursor < 0 {
		return engine.Passed, ErrOutOfRange
	}
	return m.Select(m.cursor)
}

// PrevPage moves the window back one page.
func (m *Model) PrevPage() engine.Outcome {
	return m.turn(false)
}

// NextPage moves the window forward one page.
func (m *Model) NextPage() engine.Outcome {
	return m.turn(true)
}

func (m *Model) turn(forward bool) engine.Outcome {
	if forward {
		if !m.HasNext() {
			return engine.Passed
		}
		m.opts.Paging.Next(m.client)
	} else {
		if !m.HasPrev() {
			return engine.Passed
		}
		m.opts.Paging.Prev(m.client)
	}
	out := engine.Classify(m.client)
	if m.opts.CursorEnabled {
		m.cursor = 0
	}
	if m.client.CandidatesOpen() {
		m.reload()
	} else {
		m.items = nil
	}
	return out
}

// PrevCandidate moves the highlight back one item, turning to the previous
// page from the first item.
func (m *Model) PrevCandidate() engine.Outcome {
	if !m.opts.CursorEnabled {
		return m.PrevPage()
	}
	if m.cursor > 0 {
		m.cursor--
		return engine.Outcome{Kind: engine.Consumed, Redraw: true}
	}
	out := m.PrevPage()
	if out.Handled() && m.opts.Cursor == CursorFollow {
		m.cursor = max(0, len(m.items)-1)
	}
	return out
}

// NextCandidate moves the highlight forward one item, turning to the next
// page from the last item.
func (m *Model) NextCandidate() engine.Outcome {
	if !m.opts.CursorEnabled {
		return m.NextPage()
	}
	if m.cursor+1 < len(m.items) {
		m.cursor++
		return engine.Outcome{Kind: engine.Consumed, Redraw: true}
	}
	// Both policies land on the first item after moving forward.
	return m.NextPage()
}

// Advance sends Space to the engine, which moves to the next page or
// candidate group, and puts the highlight back on the first item.
func (m *Model) Advance() engine.Outcome {
	m.client.HandleAction(engine.ActionSpace)
	out := engine.Classify(m.client)
	if m.opts.CursorEnabled {
		m.cursor = 0
	}
	if m.client.CandidatesOpen() {
		m.reload()
	} else {
		m.items = nil
	}
	return out
}
