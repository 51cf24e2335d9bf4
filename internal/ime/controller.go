package ime

import (
	"errors"
	"io"
	"log/slog"

	"chewingd/internal/candidate"
	"chewingd/internal/engine"
	"chewingd/internal/preedit"
)

// Result is what the host does with one key event.
type Result struct {
	// Consumed is false when the host should deliver the key itself.
	Consumed bool
	// Commits are emitted to the document in order, before the key is
	// delivered when it is not consumed.
	Commits []string
}

func (r *Result) add(out engine.Outcome) {
	if out.Kind == engine.Commit && out.Text != "" {
		r.Commits = append(r.Commits, out.Text)
	}
	r.Consumed = r.Consumed || out.Handled()
}

// View is everything the host renders for a session.
type View struct {
	Preedit preedit.Text
	Aux     string
	// Candidates is nil when no list is open.
	Candidates *candidate.Model
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ControllerOption {
	return func(c *Controller) { c.log = l }
}

// WithKeyGuard replaces the printable key guard.
func WithKeyGuard(g DefaultKeyGuard) ControllerOption {
	return func(c *Controller) { c.guard = g }
}

// Controller translates key events for one input context into engine calls
// and keeps the view the host renders. It owns its engine client. A
// Controller is not safe for concurrent use.
type Controller struct {
	client engine.Client
	cfg    SessionConfig
	router *Router
	guard  DefaultKeyGuard
	log    *slog.Logger

	active bool
	view   View
}

// NewController takes ownership of client and applies cfg to it.
func NewController(client engine.Client, cfg SessionConfig, opts ...ControllerOption) *Controller {
	c := &Controller{
		client: client,
		cfg:    cfg,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.router = NewRouter(client, c.guard)
	client.ApplySettings(cfg.Settings())
	return c
}

// Config returns the active session configuration.
func (c *Controller) Config() SessionConfig { return c.cfg }

// Active reports whether the session has focus.
func (c *Controller) Active() bool { return c.active }

// View returns the current rendering state.
func (c *Controller) View() View { return c.view }

// ProcessKey routes one key event.
func (c *Controller) ProcessKey(ev KeyEvent) Result {
	var res Result
	out := c.router.Route(ev, &c.cfg, c.view.Candidates)
	res.add(out)
	c.apply(out)
	if !out.Handled() && !ev.Release {
		c.filter(ev, &res)
	}
	c.log.Debug("key", "event", ev.String(), "outcome", out.Kind.String(), "commits", len(res.Commits))
	return res
}

// filter decides the fate of a key nothing handled. With a list open the
// key is claimed so nothing else acts on it mid-selection. Without one, a
// key that types a character first flushes the pending composition.
func (c *Controller) filter(ev KeyEvent, res *Result) {
	if c.view.Candidates != nil {
		if ev.IsSimple() || ev.IsCursorMove() || ev.Is(KeySpace, ModShift) ||
			ev.Is(KeyTab, 0) || ev.Is(KeyReturn, ModShift) {
			res.Consumed = true
		}
		return
	}
	if ev.Mods == 0 && ev.Rune() != 0 {
		res.Commits = append(res.Commits, c.Flush()...)
	}
}

func (c *Controller) apply(out engine.Outcome) {
	switch {
	case out.Reset:
		c.Reset()
	case out.Redraw:
		c.redraw()
	}
}

// Flush commits what the preedit shows and resets the session. It returns
// nothing when there is no pending composition.
func (c *Controller) Flush() []string {
	if c.pendingEmpty() {
		return nil
	}
	commits := c.commitPreedit()
	c.Reset()
	return commits
}

func (c *Controller) pendingEmpty() bool {
	return c.client.BufferLen() == 0 && c.client.PhoneticText() == ""
}

func (c *Controller) commitPreedit() []string {
	var commits []string
	c.client.HandleAction(engine.ActionEnter)
	if c.client.IsCommitReady() && c.client.CommitText() != "" {
		commits = append(commits, c.client.CommitText())
	}
	if text := c.client.BufferText() + c.client.PhoneticText(); text != "" {
		commits = append(commits, text)
	}
	return commits
}

// Activate marks the session focused and redraws.
func (c *Controller) Activate() {
	c.active = true
	c.redraw()
}

// Deactivate ends the focused period. For focus loss and input method
// switches the configured SwitchBehavior decides what is committed; any
// other reason drops the composition.
func (c *Controller) Deactivate(reason DeactivateReason) []string {
	c.active = false
	if reason != ReasonFocusOut && reason != ReasonSwitchInputMethod {
		c.Reset()
		return nil
	}

	var commits []string
	switch c.cfg.SwitchBehavior {
	case SwitchClear:
		c.client.HandleAction(engine.ActionEsc)
	case SwitchCommitPreedit:
		commits = c.commitPreedit()
	case SwitchCommitDefault:
		c.client.HandleAction(engine.ActionEnter)
		switch {
		case c.client.IsCommitReady() && c.client.CommitText() != "":
			commits = append(commits, c.client.CommitText())
		case c.client.BufferLen() > 0:
			commits = append(commits, c.client.BufferText())
		}
	}
	c.log.Debug("deactivate", "reason", reason.String(),
		"behavior", c.cfg.SwitchBehavior.String(), "commits", len(commits))
	c.Reset()
	return commits
}

// Reset drops all composition, re-applies the settings and redraws.
func (c *Controller) Reset() {
	c.client.Reset()
	c.client.ApplySettings(c.cfg.Settings())
	c.view.Candidates = nil
	c.redraw()
}

// Reload applies a new configuration to the engine in one step.
func (c *Controller) Reload(cfg SessionConfig) {
	c.cfg = cfg
	c.client.ApplySettings(cfg.Settings())
	c.view.Candidates = nil
	c.redraw()
}

// SelectCandidate picks item index counted from the start of the shown
// page. Out of range indexes do nothing.
func (c *Controller) SelectCandidate(index int) Result {
	var res Result
	if c.view.Candidates == nil {
		return res
	}
	out, err := c.view.Candidates.Select(index)
	if err != nil {
		if errors.Is(err, candidate.ErrPagingStall) {
			c.log.Debug("candidate selection abandoned", "index", index, "error", err)
		}
		return res
	}
	res.add(out)
	c.apply(out)
	return res
}

// PageUp shows the previous candidate page.
func (c *Controller) PageUp() Result {
	return c.navigate((*candidate.Model).PrevPage)
}

// PageDown shows the next candidate page.
func (c *Controller) PageDown() Result {
	return c.navigate((*candidate.Model).NextPage)
}

// CursorUp moves the candidate highlight back.
func (c *Controller) CursorUp() Result {
	return c.navigate((*candidate.Model).PrevCandidate)
}

// CursorDown moves the candidate highlight forward.
func (c *Controller) CursorDown() Result {
	return c.navigate((*candidate.Model).NextCandidate)
}

func (c *Controller) navigate(move func(*candidate.Model) engine.Outcome) Result {
	var res Result
	if c.view.Candidates == nil {
		return res
	}
	out := move(c.view.Candidates)
	res.add(out)
	c.apply(out)
	return res
}

// Close resets the session and releases the engine.
func (c *Controller) Close() error {
	c.client.Reset()
	c.view = View{}
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Controller) redraw() {
	cursor := 0
	if c.view.Candidates != nil {
		cursor = c.view.Candidates.CursorIndex()
	}
	c.view.Candidates = candidate.Build(c.client, c.cfg.CandidateOptions(), cursor)

	text, err := preedit.Compose(c.client.BufferText(), c.client.PhoneticText(),
		c.client.CursorIndex(), preedit.Options{HostUnderline: c.cfg.HostUnderline})
	if err != nil {
		c.log.Debug("preedit not updated", "error", err)
	} else {
		c.view.Preedit = text
	}
	c.view.Aux = c.client.AuxText()
}
