//go:build linux

package ime

import (
	"errors"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"

	"github.com/qduc/fcitx5-unikey/internal/composer"
	"github.com/qduc/fcitx5-unikey/internal/config"
	"github.com/qduc/fcitx5-unikey/internal/keysym"
	"github.com/qduc/fcitx5-unikey/internal/logging"
	"github.com/qduc/fcitx5-unikey/internal/phoneng"
	"github.com/qduc/fcitx5-unikey/internal/quirks"
	"github.com/qduc/fcitx5-unikey/internal/surface"
)

// IBus D-Bus constants.
const (
	IBusFactoryInterface = "org.freedesktop.IBus.Factory"
	IBusEngineInterface  = "org.freedesktop.IBus.Engine"
	IBusServiceInterface = "org.freedesktop.IBus.Service"

	UnikeyBusName    = "org.freedesktop.IBus.Unikey"
	UnikeyEngineName = "unikey"

	factoryPath    = "/org/freedesktop/IBus/Factory"
	baseEnginePath = "/org/freedesktop/IBus/Engine/Unikey"
)

// IBus client capability bits.
const (
	CapPreeditText     uint32 = 1 << 0
	CapFocus           uint32 = 1 << 3
	CapSurroundingText uint32 = 1 << 5
)

// BusEngine is the IBus engine: it owns the session bus connection and
// routes key events into a Composer bound to the focused context.
type BusEngine struct {
	conn *dbus.Conn
	log  *logging.Logger

	mu     sync.Mutex
	cfg    *config.Config
	quirks *quirks.Table
	sur    *busSurface
	comp   *composer.Composer
	path   dbus.ObjectPath
	caps   uint32
}

// NewBusEngine builds an engine around the given configuration.
func NewBusEngine(cfg *config.Config, log *logging.Logger) *BusEngine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logging.Default()
	}
	return &BusEngine{
		cfg:    cfg,
		log:    log.WithComponent("ibus"),
		quirks: quirks.NewTable(),
		path:   baseEnginePath,
	}
}

// Start connects to the session bus, claims the engine bus name, and
// exports the factory and engine objects.
func (e *BusEngine) Start() error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return fmt.Errorf("connect session bus: %w", err)
	}
	e.conn = conn

	reply, err := conn.RequestName(UnikeyBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return errors.New("bus name already taken")
	}

	factory := &BusFactory{engine: e}
	if err := conn.Export(factory, factoryPath, IBusFactoryInterface); err != nil {
		return fmt.Errorf("export factory: %w", err)
	}
	if err := conn.Export(e, e.path, IBusEngineInterface); err != nil {
		return fmt.Errorf("export engine: %w", err)
	}

	e.bindContext("")
	e.log.Info("engine registered", "bus_name", UnikeyBusName)
	return nil
}

// Stop flushes any pending composition and drops the bus connection.
func (e *BusEngine) Stop() error {
	e.mu.Lock()
	if e.comp != nil {
		e.comp.FocusOut()
	}
	e.mu.Unlock()

	if e.conn != nil {
		return e.conn.Close()
	}
	return nil
}

// SetConfig swaps in a new configuration, for hot reload.
func (e *BusEngine) SetConfig(cfg *config.Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	if e.comp != nil {
		e.comp.SetConfig(cfg)
	}
	e.log.Info("configuration reloaded", "method", cfg.Input.Method)
}

// bindContext builds a fresh Composer for one editing context. host is
// the client program name when the bus reports one, empty otherwise.
func (e *BusEngine) bindContext(host string) {
	sur := &busSurface{engine: e, host: host}
	e.sur = sur
	e.comp = composer.New(composer.Options{
		Engine:    phoneng.NewEngine(phoneng.SchemeForMethod(e.cfg.Input.Method)),
		Surface:   sur,
		Config:    e.cfg,
		Quirks:    e.quirks,
		Logger:    e.log,
		OnPreedit: e.updatePreedit,
	})
}

// ProcessKeyEvent handles one key event from IBus. True consumes the
// key; false passes it through to the client.
func (e *BusEngine) ProcessKeyEvent(keyval, keycode, state uint32) (bool, *dbus.Error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.comp == nil {
		return false, nil
	}
	return e.comp.ProcessKeystroke(keysym.FromEvent(keyval, state)), nil
}

// FocusIn is called when an unnamed context gains focus.
func (e *BusEngine) FocusIn() *dbus.Error {
	return e.focusIn("")
}

// FocusInId is the focus-id variant: IBus 1.5.27+ reports the client
// program name, which drives quirk lookup.
func (e *BusEngine) FocusInId(objectPath, client string) *dbus.Error {
	return e.focusIn(client)
}

func (e *BusEngine) focusIn(host string) *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()

	// A context switch gets a fresh composer: composition state never
	// crosses input fields.
	e.bindContext(host)
	e.comp.FocusIn()
	e.log.Debug("focus in", "host", host)
	return nil
}

// FocusOut flushes the pending composition.
func (e *BusEngine) FocusOut() *dbus.Error {
	return e.focusOut()
}

// FocusOutId is the focus-id variant of FocusOut.
func (e *BusEngine) FocusOutId(objectPath string) *dbus.Error {
	return e.focusOut()
}

func (e *BusEngine) focusOut() *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.comp != nil {
		e.comp.FocusOut()
	}
	e.log.Debug("focus out")
	return nil
}

// Enable is called when the user switches to this engine.
func (e *BusEngine) Enable() *dbus.Error {
	e.log.Debug("enable")
	return nil
}

// Disable flushes and is called when the user switches away.
func (e *BusEngine) Disable() *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.comp != nil {
		e.comp.FocusOut()
	}
	e.log.Debug("disable")
	return nil
}

// Reset drops the pending composition without committing it.
func (e *BusEngine) Reset() *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.comp != nil {
		e.comp.Reset()
	}
	return nil
}

// SetCapabilities records what the client can do. Surrounding-text
// support gates every retroactive rewrite.
func (e *BusEngine) SetCapabilities(caps uint32) *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.caps = caps
	e.log.Debug("capabilities", "caps", caps,
		"surrounding_text", caps&CapSurroundingText != 0)
	return nil
}

// SetSurroundingText is the host snapshot push: text around the caret
// with cursor and anchor as code-point offsets.
func (e *BusEngine) SetSurroundingText(text dbus.Variant, cursorPos, anchorPos uint32) *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sur == nil {
		return nil
	}
	anchor := int(anchorPos)
	if anchorPos == cursorPos {
		anchor = -1
	}
	e.sur.snap = surface.Snapshot{
		Text:   textFromVariant(text),
		Cursor: int(cursorPos),
		Anchor: anchor,
		Valid:  true,
	}
	return nil
}

// SetContentType marks password and other no-compose fields.
func (e *BusEngine) SetContentType(purpose, hints uint32) *dbus.Error {
	return nil
}

// SetCursorLocation is unused; the composer has no candidate window.
func (e *BusEngine) SetCursorLocation(x, y, w, h int32) *dbus.Error {
	return nil
}

// PropertyActivate handles toolbar property clicks.
func (e *BusEngine) PropertyActivate(propName string, state uint32) *dbus.Error {
	e.log.Debug("property activate", "name", propName, "state", state)
	return nil
}

// PageUp is unused; there is no candidate list.
func (e *BusEngine) PageUp() *dbus.Error { return nil }

// PageDown is unused.
func (e *BusEngine) PageDown() *dbus.Error { return nil }

// CursorUp is unused.
func (e *BusEngine) CursorUp() *dbus.Error { return nil }

// CursorDown is unused.
func (e *BusEngine) CursorDown() *dbus.Error { return nil }

// CandidateClicked is unused.
func (e *BusEngine) CandidateClicked(index, button, state uint32) *dbus.Error {
	return nil
}

// Destroy tears down the engine object.
func (e *BusEngine) Destroy() *dbus.Error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.comp != nil {
		e.comp.FocusOut()
	}
	return nil
}

func (e *BusEngine) updatePreedit(text string) {
	if e.conn == nil {
		return
	}
	visible := text != ""
	cursor := uint32(len([]rune(text)))
	v := makePreeditText(text, e.cfg.Input.DisplayUnderline)
	if err := e.conn.Emit(e.path, IBusEngineInterface+".UpdatePreeditText",
		v, cursor, visible); err != nil {
		e.log.Warn("update preedit failed", "error", err)
	}
}

// busSurface adapts the IBus wire protocol to the Surface contract. The
// snapshot is whatever the client last pushed via SetSurroundingText.
type busSurface struct {
	engine *BusEngine
	host   string
	snap   surface.Snapshot
}

func (s *busSurface) RefreshSnapshot() {
	// Asking for surrounding text makes the client push a fresh
	// SetSurroundingText before the next event.
	if s.engine.conn != nil {
		_ = s.engine.conn.Emit(s.engine.path,
			IBusEngineInterface+".RequireSurroundingText")
	}
}

func (s *busSurface) CurrentSnapshot() surface.Snapshot { return s.snap }

func (s *busSurface) Commit(text string) {
	if s.engine.conn == nil {
		return
	}
	if err := s.engine.conn.Emit(s.engine.path,
		IBusEngineInterface+".CommitText", makeText(text)); err != nil {
		s.engine.log.Warn("commit failed", "error", err)
	}
}

func (s *busSurface) DeleteAroundCursor(offset, length int) {
	if s.engine.conn == nil {
		return
	}
	if err := s.engine.conn.Emit(s.engine.path,
		IBusEngineInterface+".DeleteSurroundingText",
		int32(offset), uint32(length)); err != nil {
		s.engine.log.Warn("delete surrounding failed", "error", err)
	}
}

func (s *busSurface) SupportsDocumentEditing() bool {
	return s.engine.caps&CapSurroundingText != 0
}

func (s *busSurface) HostIdentifier() string { return s.host }

// BusFactory implements the IBus Factory interface: the daemon asks it
// for engine object paths.
type BusFactory struct {
	engine   *BusEngine
	engineID uint32
}

// CreateEngine exports the engine at a fresh object path and returns
// it.
func (f *BusFactory) CreateEngine(engineName string) (dbus.ObjectPath, *dbus.Error) {
	if engineName != UnikeyEngineName {
		return "", dbus.NewError("org.freedesktop.IBus.NoEngine",
			[]interface{}{"unknown engine: " + engineName})
	}

	f.engineID++
	path := dbus.ObjectPath(fmt.Sprintf("%s/%d", baseEnginePath, f.engineID))
	if err := f.engine.conn.Export(f.engine, path, IBusEngineInterface); err != nil {
		return "", dbus.MakeFailedError(err)
	}

	f.engine.mu.Lock()
	f.engine.path = path
	f.engine.mu.Unlock()

	f.engine.log.Debug("engine created", "path", string(path))
	return path, nil
}

// IBusText and IBusAttrList wire structs, serialized as the (sa{sv}sv)
// variants IBus expects.

type ibusAttribute struct {
	Name        string
	Attachments map[string]dbus.Variant
	Type        uint32
	Value       uint32
	Start       uint32
	End         uint32
}

type ibusAttrList struct {
	Name        string
	Attachments map[string]dbus.Variant
	Attributes  []dbus.Variant
}

type ibusText struct {
	Name        string
	Attachments map[string]dbus.Variant
	Text        string
	AttrList    dbus.Variant
}

const attrTypeUnderline = 1

// makeText wraps a plain string as an IBusText variant.
func makeText(s string) dbus.Variant {
	return makeTextWithAttrs(s, nil)
}

// makePreeditText wraps the pending composition, underlined when the
// configuration asks for it.
func makePreeditText(s string, underline bool) dbus.Variant {
	if !underline || s == "" {
		return makeText(s)
	}
	attr := ibusAttribute{
		Name:        "IBusAttribute",
		Attachments: map[string]dbus.Variant{},
		Type:        attrTypeUnderline,
		Value:       1,
		Start:       0,
		End:         uint32(len([]rune(s))),
	}
	return makeTextWithAttrs(s, []dbus.Variant{dbus.MakeVariant(attr)})
}

func makeTextWithAttrs(s string, attrs []dbus.Variant) dbus.Variant {
	if attrs == nil {
		attrs = []dbus.Variant{}
	}
	list := ibusAttrList{
		Name:        "IBusAttrList",
		Attachments: map[string]dbus.Variant{},
		Attributes:  attrs,
	}
	return dbus.MakeVariant(ibusText{
		Name:        "IBusText",
		Attachments: map[string]dbus.Variant{},
		Text:        s,
		AttrList:    dbus.MakeVariant(list),
	})
}

// textFromVariant unwraps an IBusText variant pushed by the client.
// Plain string variants are accepted too.
func textFromVariant(v dbus.Variant) string {
	switch val := v.Value().(type) {
	case string:
		return val
	case []interface{}:
		// (sa{sv}sv) struct: the text is the third member.
		if len(val) >= 3 {
			if s, ok := val[2].(string); ok {
				return s
			}
		}
	}
	return ""
}
