package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"chewingd/internal/candidate"
	"chewingd/internal/config"
	"chewingd/internal/engine"
	"chewingd/internal/ime"
	"chewingd/internal/logging"
	"chewingd/internal/preedit"
	"chewingd/internal/store"
	"chewingd/internal/zhuyin"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Type into a terminal session driven by the chewingd controller",
	Long: `Start an interactive composition session in the terminal.

Keys go through the same controller the IBus engine uses, with the
configured keyboard layout and selection keys.

  ctrl+r  reset the session
  ctrl+o  simulate focus loss
  ctrl+c  quit`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

var playNoLearn bool

func init() {
	playCmd.Flags().BoolVar(&playNoLearn, "no-learn", false, "keep learned phrases in memory only")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	lc, err := cfg.Logging.Logger()
	if err != nil {
		return err
	}
	// The terminal belongs to the UI.
	if lc.Output != "file" && lc.Output != "both" {
		lc.Output = "discard"
	} else {
		lc.Output = "file"
	}
	logger, err := logging.New(lc)
	if err != nil {
		return err
	}
	defer logger.Close()

	opts := []zhuyin.Option{zhuyin.WithLogger(logger.WithComponent("zhuyin").Logger)}
	if cfg.Storage.Learn && !playNoLearn {
		st, err := store.Open(cfg.Storage.DBPath())
		if err != nil {
			return err
		}
		defer st.Close()
		opts = append(opts, zhuyin.WithUserDict(st))
	}

	m := newPlayModel(zhuyin.New(opts...), cfg, logger)
	defer m.ctrl.Close()

	_, err = tea.NewProgram(m, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout())).Run()
	return err
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	committedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	underlineStyle = lipgloss.NewStyle().Underline(true)

	phoneticStyle = lipgloss.NewStyle().
			Underline(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#5F5FAF"))

	auxStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFB86C"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const cursorMark = "▏"

type playModel struct {
	ctrl      *ime.Controller
	layout    string
	committed strings.Builder
	// passthrough is the last key the controller left to the host.
	passthrough string
	width       int
}

func newPlayModel(client engine.Client, cfg *config.Config, logger *logging.Logger) *playModel {
	ctrl := ime.NewController(client, cfg.Chewing.Session(), ime.WithLogger(logger.WithComponent("session").Logger))
	ctrl.Activate()
	return &playModel{
		ctrl:   ctrl,
		layout: cfg.Chewing.Layout.String(),
		width:  80,
	}
}

func (m *playModel) Init() tea.Cmd {
	return nil
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.commit(m.ctrl.Flush())
			return m, tea.Quit
		case "ctrl+r":
			m.ctrl.Reset()
			return m, nil
		case "ctrl+o":
			m.commit(m.ctrl.Deactivate(ime.ReasonFocusOut))
			m.ctrl.Activate()
			return m, nil
		}

		ev, ok := keyEvent(msg)
		if !ok {
			return m, nil
		}
		res := m.ctrl.ProcessKey(ev)
		m.commit(res.Commits)
		m.passthrough = ""
		if !res.Consumed {
			m.deliver(ev)
		}
	}
	return m, nil
}

func (m *playModel) commit(texts []string) {
	for _, t := range texts {
		m.committed.WriteString(t)
	}
}

// deliver does what an editor would do with a key the controller did not
// consume.
func (m *playModel) deliver(ev ime.KeyEvent) {
	switch {
	case ev.Mods&(ime.ModControl|ime.ModAlt|ime.ModMeta) != 0:
		m.passthrough = ev.String()
	case ev.Sym == ime.KeyReturn:
		m.committed.WriteByte('\n')
	case ev.Sym == ime.KeyBackSpace:
		s := []rune(m.committed.String())
		if len(s) > 0 {
			m.committed.Reset()
			m.committed.WriteString(string(s[:len(s)-1]))
		}
	case ev.Rune() != 0:
		m.committed.WriteRune(ev.Rune())
	default:
		m.passthrough = ev.String()
	}
}

var teaKeys = map[tea.KeyType]ime.KeyEvent{
	tea.KeySpace:      ime.Key(ime.KeySpace, 0),
	tea.KeyEnter:      ime.Key(ime.KeyReturn, 0),
	tea.KeyBackspace:  ime.Key(ime.KeyBackSpace, 0),
	tea.KeyDelete:     ime.Key(ime.KeyDelete, 0),
	tea.KeyEsc:        ime.Key(ime.KeyEscape, 0),
	tea.KeyTab:        ime.Key(ime.KeyTab, 0),
	tea.KeyShiftTab:   ime.Key(ime.KeyTab, ime.ModShift),
	tea.KeyLeft:       ime.Key(ime.KeyLeft, 0),
	tea.KeyRight:      ime.Key(ime.KeyRight, 0),
	tea.KeyUp:         ime.Key(ime.KeyUp, 0),
	tea.KeyDown:       ime.Key(ime.KeyDown, 0),
	tea.KeyShiftLeft:  ime.Key(ime.KeyLeft, ime.ModShift),
	tea.KeyShiftRight: ime.Key(ime.KeyRight, ime.ModShift),
	tea.KeyShiftUp:    ime.Key(ime.KeyUp, ime.ModShift),
	tea.KeyShiftDown:  ime.Key(ime.KeyDown, ime.ModShift),
	tea.KeyCtrlLeft:   ime.Key(ime.KeyLeft, ime.ModControl),
	tea.KeyCtrlRight:  ime.Key(ime.KeyRight, ime.ModControl),
	tea.KeyHome:       ime.Key(ime.KeyHome, 0),
	tea.KeyEnd:        ime.Key(ime.KeyEnd, 0),
	tea.KeyPgUp:       ime.Key(ime.KeyPageUp, 0),
	tea.KeyPgDown:     ime.Key(ime.KeyPageDown, 0),
	tea.KeyCtrlPgUp:   ime.Key(ime.KeyPageUp, ime.ModControl),
	tea.KeyCtrlPgDown: ime.Key(ime.KeyPageDown, ime.ModControl),
}

// keyEvent translates a terminal key into the keysym form IBus delivers.
// Terminals report Shift only through the case of letters.
func keyEvent(msg tea.KeyMsg) (ime.KeyEvent, bool) {
	var ev ime.KeyEvent
	if msg.Type == tea.KeyRunes {
		if len(msg.Runes) != 1 || msg.Runes[0] > 0x7e {
			return ev, false
		}
		r := msg.Runes[0]
		ev = ime.Key(ime.KeySym(r), 0)
		if r >= 'A' && r <= 'Z' {
			ev.Mods |= ime.ModShift
		}
	} else {
		var ok bool
		if ev, ok = teaKeys[msg.Type]; !ok {
			return ev, false
		}
	}
	if msg.Alt {
		ev.Mods |= ime.ModAlt
	}
	return ev, true
}

func (m *playModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("chewingd") + " " + helpStyle.Render(m.layout) + "\n\n")

	b.WriteString(committedStyle.Render(m.committed.String()))
	b.WriteString(renderPreedit(m.ctrl.View().Preedit))
	b.WriteString("\n\n")

	view := m.ctrl.View()
	if view.Aux != "" {
		b.WriteString(auxStyle.Render(view.Aux) + "\n")
	}
	if view.Candidates != nil {
		b.WriteString(renderCandidates(view.Candidates, m.width) + "\n")
	}
	if m.passthrough != "" {
		b.WriteString(helpStyle.Render("passed through: "+m.passthrough) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("ctrl+r reset • ctrl+o focus out • ctrl+c quit"))
	return b.String()
}

// renderPreedit styles each segment and marks the cursor.
func renderPreedit(t preedit.Text) string {
	if t.Empty() {
		return cursorMark
	}
	var b strings.Builder
	offset := 0
	marked := false
	for _, seg := range t.Segments {
		style := lipgloss.NewStyle()
		if seg.Format&preedit.HighLight != 0 {
			style = phoneticStyle
		} else if seg.Format&preedit.Underline != 0 {
			style = underlineStyle
		}
		text := seg.Text
		if !marked && t.Cursor >= offset && t.Cursor < offset+len(text) {
			split := t.Cursor - offset
			b.WriteString(style.Render(text[:split]))
			b.WriteString(cursorMark)
			text = text[split:]
			marked = true
		}
		b.WriteString(style.Render(text))
		offset += len(seg.Text)
	}
	if !marked {
		b.WriteString(cursorMark)
	}
	return b.String()
}

// renderCandidates lays out one page the way the candidate window would,
// wrapping horizontal pages at width.
func renderCandidates(model *candidate.Model, width int) string {
	cur, total := model.Page()
	items := model.Items()

	textWidth := 0
	for _, it := range items {
		textWidth = max(textWidth, runewidth.StringWidth(it.Text))
	}

	cells := make([]string, len(items))
	for i, it := range items {
		text := it.Text
		if model.Layout() == candidate.LayoutVertical {
			text = runewidth.FillRight(text, textWidth)
		}
		if i == model.CursorIndex() {
			text = selectedStyle.Render(text)
		}
		if it.Label != "" {
			text = labelStyle.Render(it.Label+".") + text
		}
		cells[i] = text
	}

	var b strings.Builder
	if model.Layout() == candidate.LayoutVertical {
		b.WriteString(strings.Join(cells, "\n"))
	} else {
		line := 0
		for i, cell := range cells {
			w := lipgloss.Width(cell) + 1
			if line > 0 && width > 0 && line+w > width {
				b.WriteString("\n")
				line = 0
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(" ")
			}
			line += w
		}
	}

	nav := fmt.Sprintf("%d/%d", cur+1, total)
	if model.HasPrev() {
		nav = "◀ " + nav
	}
	if model.HasNext() {
		nav += " ▶"
	}
	b.WriteString("\n" + helpStyle.Render(nav))
	return b.String()
}
