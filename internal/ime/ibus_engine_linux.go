//go:build linux

package ime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"

	"chewingd/internal/candidate"
	"chewingd/internal/preedit"
)

// IBus D-Bus constants
const (
	IBusService          = "org.freedesktop.IBus"
	IBusFactoryPath      = "/org/freedesktop/IBus/Factory"
	IBusFactoryInterface = "org.freedesktop.IBus.Factory"
	IBusEngineInterface  = "org.freedesktop.IBus.Engine"
	IBusServiceInterface = "org.freedesktop.IBus.Service"

	enginePathPrefix = "/org/freedesktop/IBus/Engine/chewingd/"
)

// IBus key event state masks
const (
	IBusShiftMask   uint32 = 1 << 0
	IBusLockMask    uint32 = 1 << 1
	IBusControlMask uint32 = 1 << 2
	IBusMod1Mask    uint32 = 1 << 3 // Alt
	IBusMod4Mask    uint32 = 1 << 6 // Super/Meta
	IBusReleaseMask uint32 = 1 << 30
)

// Client capabilities reported through SetCapabilities.
const (
	IBusCapPreeditText   uint32 = 1 << 0
	IBusCapAuxiliaryText uint32 = 1 << 1
	IBusCapLookupTable   uint32 = 1 << 2
	IBusCapFocus         uint32 = 1 << 3
)

const (
	ibusAttrUnderline  uint32 = 1
	ibusAttrForeground uint32 = 2
	ibusAttrBackground uint32 = 3

	ibusUnderlineSingle uint32 = 1

	ibusOrientationHorizontal int32 = 0
	ibusOrientationVertical   int32 = 1
	ibusOrientationSystem     int32 = 2

	ibusPreeditClear uint32 = 0

	highlightForeground uint32 = 0xffffff
	highlightBackground uint32 = 0x3465a4
)

// signalEmitter is the part of *dbus.Conn the engines use.
type signalEmitter interface {
	Emit(path dbus.ObjectPath, name string, values ...interface{}) error
}

// IBusServer owns the bus connection and every input context engine.
type IBusServer struct {
	cfg  IBusConfig
	log  *slog.Logger
	conn *dbus.Conn

	mu      sync.Mutex
	session SessionConfig
	engines map[dbus.ObjectPath]*IBusEngine
}

// NewIBusServer validates cfg and prepares a server.
func NewIBusServer(cfg IBusConfig) (*IBusServer, error) {
	if cfg.NewClient == nil {
		return nil, errors.New("ibus: NewClient is required")
	}
	if cfg.BusName == "" {
		cfg.BusName = ChewingdBusName
	}
	if cfg.EngineName == "" {
		cfg.EngineName = ChewingdEngineName
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &IBusServer{
		cfg:     cfg,
		log:     cfg.Logger,
		session: cfg.Session,
		engines: make(map[dbus.ObjectPath]*IBusEngine),
	}, nil
}

// Start connects to the bus and exports the factory.
func (s *IBusServer) Start(ctx context.Context) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	s.conn = conn

	reply, err := conn.RequestName(s.cfg.BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return fmt.Errorf("bus name %s already taken", s.cfg.BusName)
	}

	if err := conn.Export(&IBusFactory{server: s}, IBusFactoryPath, IBusFactoryInterface); err != nil {
		conn.Close()
		return fmt.Errorf("failed to export factory: %w", err)
	}

	s.log.Info("ibus service started", "bus_name", s.cfg.BusName, "engine", s.cfg.EngineName)
	return nil
}

func (s *IBusServer) connect(ctx context.Context) (*dbus.Conn, error) {
	addr := s.cfg.Address
	if addr == "" {
		addr = os.Getenv("IBUS_ADDRESS")
	}
	if addr == "" {
		conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to session bus: %w", err)
		}
		return conn, nil
	}
	conn, err := dbus.Connect(addr, dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ibus at %s: %w", addr, err)
	}
	return conn, nil
}

// Reload applies cfg to every live input context and to those created
// later.
func (s *IBusServer) Reload(cfg SessionConfig) {
	s.mu.Lock()
	s.session = cfg
	engines := make([]*IBusEngine, 0, len(s.engines))
	for _, e := range s.engines {
		engines = append(engines, e)
	}
	s.mu.Unlock()

	for _, e := range engines {
		e.reload(cfg)
	}
	s.log.Info("configuration reloaded", "contexts", len(engines))
}

// Contexts returns the number of live input contexts.
func (s *IBusServer) Contexts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.engines)
}

// Stop destroys every input context and closes the connection.
func (s *IBusServer) Stop() error {
	s.mu.Lock()
	engines := s.engines
	s.engines = make(map[dbus.ObjectPath]*IBusEngine)
	s.mu.Unlock()

	for _, e := range engines {
		e.destroy()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *IBusServer) newEngine() (*IBusEngine, error) {
	client, err := s.cfg.NewClient()
	if err != nil {
		return nil, fmt.Errorf("failed to open engine: %w", err)
	}

	id := uuid.New()
	path := dbus.ObjectPath(enginePathPrefix + strings.ReplaceAll(id.String(), "-", "_"))
	log := s.log.With("context", id.String())

	s.mu.Lock()
	cfg := s.session
	s.mu.Unlock()

	e := &IBusEngine{
		path: path,
		ctrl: NewController(client, cfg, WithLogger(log)),
		log:  log,
		caps: IBusCapPreeditText | IBusCapAuxiliaryText | IBusCapLookupTable | IBusCapFocus,
		onDestroy: func() {
			s.mu.Lock()
			delete(s.engines, path)
			s.mu.Unlock()
		},
	}
	if s.conn != nil {
		e.emit = s.conn
		if err := s.conn.Export(e, path, IBusEngineInterface); err != nil {
			e.ctrl.Close()
			return nil, fmt.Errorf("failed to export engine: %w", err)
		}
		e.unexport = func() { s.conn.Export(nil, path, IBusEngineInterface) }
	}

	s.mu.Lock()
	s.engines[path] = e
	s.mu.Unlock()
	return e, nil
}

// IBusFactory implements the IBus Factory D-Bus interface.
type IBusFactory struct {
	server *IBusServer
}

// CreateEngine creates a new engine instance for IBus.
func (f *IBusFactory) CreateEngine(engineName string) (dbus.ObjectPath, *dbus.Error) {
	if engineName != f.server.cfg.EngineName {
		return "", dbus.NewError("org.freedesktop.IBus.NoEngine",
			[]interface{}{"Unknown engine: " + engineName})
	}
	e, err := f.server.newEngine()
	if err != nil {
		f.server.log.Error("create engine", "error", err)
		return "", dbus.MakeFailedError(err)
	}
	f.server.log.Debug("engine created", "path", string(e.path))
	return e.path, nil
}

// IBusEngine is the D-Bus object for one input context.
type IBusEngine struct {
	path      dbus.ObjectPath
	emit      signalEmitter
	log       *slog.Logger
	onDestroy func()
	unexport  func()

	mu   sync.Mutex
	ctrl *Controller
	caps uint32
}

// ProcessKeyEvent handles key press/release events from IBus.
// Returns true if the key was consumed, false to pass through.
func (e *IBusEngine) ProcessKeyEvent(keyval, keycode, state uint32) (bool, *dbus.Error) {
	ev := KeyEvent{
		Sym:     KeySym(keyval),
		Mods:    modifiersFromState(state),
		Release: state&IBusReleaseMask != 0,
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl == nil {
		return false, nil
	}
	res := e.ctrl.ProcessKey(ev)
	e.commit(res.Commits)
	if res.Consumed || len(res.Commits) > 0 {
		e.update()
	}
	return res.Consumed, nil
}

func modifiersFromState(state uint32) Modifiers {
	var m Modifiers
	if state&IBusShiftMask != 0 {
		m |= ModShift
	}
	if state&IBusControlMask != 0 {
		m |= ModControl
	}
	if state&IBusMod1Mask != 0 {
		m |= ModAlt
	}
	if state&IBusMod4Mask != 0 {
		m |= ModMeta
	}
	return m
}

// FocusIn is called when the engine gains input focus.
func (e *IBusEngine) FocusIn() *dbus.Error {
	e.locked(func(c *Controller) {
		c.Activate()
		e.update()
	})
	return nil
}

// FocusOut is called when the engine loses input focus.
func (e *IBusEngine) FocusOut() *dbus.Error {
	e.deactivate(ReasonFocusOut)
	return nil
}

// Enable is called when the user switches to this input method.
func (e *IBusEngine) Enable() *dbus.Error {
	e.locked(func(c *Controller) {
		c.Activate()
		e.update()
	})
	return nil
}

// Disable is called when the user switches away from this input method.
func (e *IBusEngine) Disable() *dbus.Error {
	e.deactivate(ReasonSwitchInputMethod)
	return nil
}

func (e *IBusEngine) deactivate(reason DeactivateReason) {
	e.locked(func(c *Controller) {
		e.commit(c.Deactivate(reason))
		e.update()
	})
}

// Reset drops the composition of this context.
func (e *IBusEngine) Reset() *dbus.Error {
	e.locked(func(c *Controller) {
		c.Reset()
		e.update()
	})
	return nil
}

// SetCapabilities informs about client capabilities and redraws the
// composition for them.
func (e *IBusEngine) SetCapabilities(caps uint32) *dbus.Error {
	e.mu.Lock()
	e.caps = caps
	if e.ctrl != nil {
		e.update()
	}
	e.mu.Unlock()
	e.log.Debug("capabilities", "caps", caps)
	return nil
}

// SetContentType informs about the type of content being edited.
func (e *IBusEngine) SetContentType(purpose, hints uint32) *dbus.Error {
	return nil
}

// SetCursorLocation informs about cursor position.
func (e *IBusEngine) SetCursorLocation(x, y, w, h int32) *dbus.Error {
	return nil
}

// SetSurroundingText provides context around the cursor.
func (e *IBusEngine) SetSurroundingText(text dbus.Variant, cursorPos, anchorPos uint32) *dbus.Error {
	return nil
}

// PropertyActivate handles property activations.
func (e *IBusEngine) PropertyActivate(propName string, state uint32) *dbus.Error {
	return nil
}

// PageUp handles page up in candidate list.
func (e *IBusEngine) PageUp() *dbus.Error {
	e.navigate((*Controller).PageUp)
	return nil
}

// PageDown handles page down in candidate list.
func (e *IBusEngine) PageDown() *dbus.Error {
	e.navigate((*Controller).PageDown)
	return nil
}

// CursorUp handles cursor up in candidate list.
func (e *IBusEngine) CursorUp() *dbus.Error {
	e.navigate((*Controller).CursorUp)
	return nil
}

// CursorDown handles cursor down in candidate list.
func (e *IBusEngine) CursorDown() *dbus.Error {
	e.navigate((*Controller).CursorDown)
	return nil
}

// CandidateClicked handles candidate selection.
func (e *IBusEngine) CandidateClicked(index, button, state uint32) *dbus.Error {
	e.navigate(func(c *Controller) Result { return c.SelectCandidate(int(index)) })
	return nil
}

// Destroy releases the input context.
func (e *IBusEngine) Destroy() *dbus.Error {
	e.destroy()
	return nil
}

func (e *IBusEngine) destroy() {
	e.mu.Lock()
	ctrl := e.ctrl
	e.ctrl = nil
	e.mu.Unlock()
	if ctrl == nil {
		return
	}

	if err := ctrl.Close(); err != nil {
		e.log.Warn("close engine", "error", err)
	}
	if e.unexport != nil {
		e.unexport()
	}
	if e.onDestroy != nil {
		e.onDestroy()
	}
	e.log.Debug("engine destroyed")
}

func (e *IBusEngine) reload(cfg SessionConfig) {
	e.locked(func(c *Controller) {
		c.Reload(cfg)
		e.update()
	})
}

func (e *IBusEngine) navigate(op func(*Controller) Result) {
	e.locked(func(c *Controller) {
		e.commit(op(c).Commits)
		e.update()
	})
}

func (e *IBusEngine) locked(fn func(*Controller)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ctrl != nil {
		fn(e.ctrl)
	}
}

func (e *IBusEngine) signal(name string, values ...interface{}) {
	if e.emit == nil {
		return
	}
	if err := e.emit.Emit(e.path, IBusEngineInterface+"."+name, values...); err != nil {
		e.log.Warn("emit signal", "signal", name, "error", err)
	}
}

func (e *IBusEngine) commit(texts []string) {
	for _, t := range texts {
		e.signal("CommitText", dbus.MakeVariant(newIBusText(t, nil)))
	}
}

// update pushes the controller view to the client. Callers hold e.mu.
func (e *IBusEngine) update() {
	v := e.ctrl.View()

	aux := v.Aux
	if e.caps&IBusCapPreeditText == 0 {
		// The client cannot draw preedit, so show it in the panel.
		aux = strings.TrimSpace(v.Preedit.String() + " " + v.Aux)
		e.signal("HidePreeditText")
	} else if v.Preedit.Empty() {
		e.signal("HidePreeditText")
	} else {
		text, cursor := preeditText(v.Preedit)
		e.signal("UpdatePreeditText", dbus.MakeVariant(text), cursor, true, ibusPreeditClear)
	}

	if aux == "" {
		e.signal("HideAuxiliaryText")
	} else {
		e.signal("UpdateAuxiliaryText", dbus.MakeVariant(newIBusText(aux, nil)), true)
	}

	if v.Candidates == nil {
		e.signal("HideLookupTable")
	} else {
		e.signal("UpdateLookupTable", dbus.MakeVariant(lookupTable(v.Candidates)), true)
	}
}

// IBus serializable types. Each is a D-Bus struct whose first two fields
// are the type name and an attachment dictionary.
type ibusText struct {
	Name        string
	Attachments map[string]dbus.Variant
	Text        string
	Attrs       dbus.Variant
}

type ibusAttrList struct {
	Name        string
	Attachments map[string]dbus.Variant
	Attrs       []dbus.Variant
}

type ibusAttribute struct {
	Name        string
	Attachments map[string]dbus.Variant
	Type        uint32
	Value       uint32
	Start       uint32
	End         uint32
}

type ibusLookupTable struct {
	Name          string
	Attachments   map[string]dbus.Variant
	PageSize      uint32
	CursorPos     uint32
	CursorVisible bool
	Round         bool
	Orientation   int32
	Candidates    []dbus.Variant
	Labels        []dbus.Variant
}

func newIBusText(text string, attrs []ibusAttribute) ibusText {
	list := ibusAttrList{
		Name:        "IBusAttrList",
		Attachments: map[string]dbus.Variant{},
		Attrs:       make([]dbus.Variant, 0, len(attrs)),
	}
	for _, a := range attrs {
		a.Name = "IBusAttribute"
		a.Attachments = map[string]dbus.Variant{}
		list.Attrs = append(list.Attrs, dbus.MakeVariant(a))
	}
	return ibusText{
		Name:        "IBusText",
		Attachments: map[string]dbus.Variant{},
		Text:        text,
		Attrs:       dbus.MakeVariant(list),
	}
}

// preeditText converts segment formats into IBus attributes. IBus counts
// positions in characters, not bytes.
func preeditText(t preedit.Text) (ibusText, uint32) {
	var attrs []ibusAttribute
	var pos uint32
	for _, seg := range t.Segments {
		n := uint32(utf8.RuneCountInString(seg.Text))
		if seg.Format&preedit.Underline != 0 {
			attrs = append(attrs, ibusAttribute{Type: ibusAttrUnderline, Value: ibusUnderlineSingle, Start: pos, End: pos + n})
		}
		if seg.Format&preedit.HighLight != 0 {
			attrs = append(attrs,
				ibusAttribute{Type: ibusAttrForeground, Value: highlightForeground, Start: pos, End: pos + n},
				ibusAttribute{Type: ibusAttrBackground, Value: highlightBackground, Start: pos, End: pos + n},
			)
		}
		pos += n
	}
	s := t.String()
	cursor := uint32(utf8.RuneCountInString(s[:min(t.Cursor, len(s))]))
	return newIBusText(s, attrs), cursor
}

func lookupTable(m *candidate.Model) ibusLookupTable {
	items := m.Items()
	table := ibusLookupTable{
		Name:        "IBusLookupTable",
		Attachments: map[string]dbus.Variant{},
		PageSize:    uint32(max(len(items), 1)),
		Round:       m.HasPrev() && m.HasNext(),
		Orientation: orientation(m.Layout()),
		Candidates:  make([]dbus.Variant, 0, len(items)),
		Labels:      make([]dbus.Variant, 0, len(items)),
	}
	if i := m.CursorIndex(); i >= 0 {
		table.CursorPos = uint32(i)
		table.CursorVisible = true
	}
	for _, it := range items {
		table.Candidates = append(table.Candidates, dbus.MakeVariant(newIBusText(it.Text, nil)))
		table.Labels = append(table.Labels, dbus.MakeVariant(newIBusText(it.Label, nil)))
	}
	return table
}

func orientation(l candidate.Layout) int32 {
	switch l {
	case candidate.LayoutVertical:
		return ibusOrientationVertical
	case candidate.LayoutHorizontal:
		return ibusOrientationHorizontal
	default:
		return ibusOrientationSystem
	}
}
