package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"

	"github.com/JehleM/compare-plugin/internal/config"
	"github.com/JehleM/compare-plugin/internal/history"
	"github.com/JehleM/compare-plugin/internal/nav"
	"github.com/JehleM/compare-plugin/internal/sched"
	"github.com/JehleM/compare-plugin/internal/search"
	"github.com/JehleM/compare-plugin/internal/session"
	"github.com/JehleM/compare-plugin/internal/socket"
	"github.com/JehleM/compare-plugin/internal/storage"
	"github.com/JehleM/compare-plugin/internal/textview"
	"github.com/JehleM/compare-plugin/internal/theme"
	"github.com/JehleM/compare-plugin/internal/ui"
)

const (
	statusDisplayTime = 3 * time.Second

	// reloadDelay coalesces bursts of file watcher events into one reload.
	reloadDelay = 30 * time.Millisecond
)

// App is the main application controller
type App struct {
	screen  *ui.Screen
	config  *config.Config
	sch     *sched.Scheduler
	manager *session.Manager
	hist    *history.Manager

	stores [2]*storage.FileStore
	bufs   [2]*textview.Buffer
	panes  [2]*ui.Pane

	// modified tracks buffer text against the store's last-saved snapshot.
	// snapshot marks a pane holding the last saved copy for a :saved compare
	// instead of its own file.
	modified [2]bool
	snapshot [2]bool

	focused textview.Side

	command   *ui.CommandMode
	searchBar *ui.SearchBar
	lineEd    *ui.LineEditor
	overlay   *ui.Overlay
	messages  *ui.MessageLogger

	keybindings []KeyBinding

	server  *socket.Server
	watcher *fsnotify.Watcher

	reloadPending [2]bool
	reloadTask    *sched.Task

	// selAnchor is the start line of an in-progress v selection, -1 when
	// none. Per side so both panes can hold a selection for C.
	selAnchor [2]int

	// lineEdInserted means the active line edit started on a freshly
	// inserted line; cancelling undoes the insertion too.
	lineEdInserted bool

	lastSessionStatus string

	statusMsg  string
	statusTime time.Time
	quit       bool
	debugMode  bool
}

// NewApp creates an App comparing the two files. The config decides the
// theme and the initial comparison settings.
func NewApp(mainPath, subPath string, cfg *config.Config) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	paths := [2]string{mainPath, subPath}
	var stores [2]*storage.FileStore
	var bufs [2]*textview.Buffer

	for side := textview.Main; side <= textview.Sub; side++ {
		abs, err := filepath.Abs(paths[side])
		if err != nil {
			abs = paths[side]
		}
		stores[side] = storage.NewFileStore(abs)
		text, err := stores[side].Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", paths[side], err)
		}
		bufs[side] = textview.NewBuffer(side, filepath.Base(abs), text)
	}

	if bm, err := storage.NewBackupManager(); err != nil {
		log.Printf("app: backups disabled: %v", err)
	} else {
		stores[textview.Main].SetBackupManager(bm)
		stores[textview.Sub].SetBackupManager(bm)
	}

	screen, err := ui.NewScreenWithTheme(theme.LoadThemeOrDefault(cfg.Theme))
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	sch := sched.NewScheduler(nil)
	manager := session.NewManager(sch, settingsFromConfig(cfg))
	manager.MarkFirst(bufs[textview.Main])

	a := &App{
		screen:  screen,
		config:  cfg,
		sch:     sch,
		manager: manager,
		stores:  stores,
		bufs:    bufs,
		panes: [2]*ui.Pane{
			ui.NewPane(bufs[textview.Main]),
			ui.NewPane(bufs[textview.Sub]),
		},
		lineEd:     ui.NewLineEditor(),
		overlay:    ui.NewOverlay(),
		messages:   ui.NewMessageLogger(100),
		selAnchor:  [2]int{-1, -1},
		statusMsg:  "Press c to compare, ? for help",
		statusTime: time.Now(),
	}

	matcher := search.NewMatcher(bufs[textview.Main], bufs[textview.Sub])
	if hist, err := history.NewManager(); err != nil {
		log.Printf("app: input history disabled: %v", err)
		a.command = ui.NewCommandMode()
		a.searchBar = ui.NewSearchBar(matcher)
	} else {
		a.hist = hist
		a.command, err = ui.NewCommandModeWithHistory(hist)
		if err != nil {
			log.Printf("app: command history disabled: %v", err)
			a.command = ui.NewCommandMode()
		}
		a.searchBar = ui.NewSearchBarWithHistory(matcher, hist)
	}

	a.keybindings = a.initKeybindings()
	a.reloadTask = sch.Task("reload", a.processReloads)

	a.initWatcher()

	if server, err := socket.NewServer(os.Getpid()); err != nil {
		log.Printf("app: socket server disabled: %v", err)
	} else {
		server.Start()
		a.server = server
	}

	log.Printf("app: comparing %q with %q", stores[textview.Main].Path, stores[textview.Sub].Path)
	return a, nil
}

// settingsFromConfig translates the persisted comparison toggles into the
// live session settings.
func settingsFromConfig(cfg *config.Config) *session.Settings {
	s := session.DefaultSettings()
	c := cfg.Compare

	s.Engine.IgnoreSpaces = c.IgnoreSpaces
	s.Engine.IgnoreAllSpaces = c.IgnoreAllSpaces
	s.Engine.IgnoreCase = c.IgnoreCase
	s.Engine.IgnoreEmptyLines = c.IgnoreEmptyLines
	s.Engine.DetectMoves = c.DetectMoves
	s.Engine.CharPrecision = c.CharPrecision
	if c.IgnoreRegex != "" {
		re, err := regexp.Compile(c.IgnoreRegex)
		if err != nil {
			log.Printf("app: ignoring bad ignore_regex %q: %v", c.IgnoreRegex, err)
		} else {
			s.Engine.IgnoreRegex = re
		}
	}

	s.RecompareOnChange = c.RecompareOnChange
	s.GotoFirstDiff = c.GotoFirstDiff
	s.WrapAround = c.WrapAround
	s.FollowingCaret = c.FollowingCaret
	s.ShowOnlyDiffs = c.ShowOnlyDiffs

	return s
}

// initWatcher watches the parent directories of both files so edits from
// other programs show up without a manual reload.
func (a *App) initWatcher() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("app: file watching disabled: %v", err)
		return
	}

	dirs := map[string]bool{}
	for _, st := range a.stores {
		dirs[filepath.Dir(st.Path)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			log.Printf("app: failed to watch %s: %v", dir, err)
		}
	}

	a.watcher = w
}

// Run starts the main event loop
func (a *App) Run() error {
	defer a.Close()

	eventChan := make(chan tcell.Event)

	go func() {
		for {
			event := a.screen.PollEvent()
			eventChan <- event
			if event == nil {
				break
			}
		}
	}()

	var watchEvents chan fsnotify.Event
	var watchErrors chan error
	if a.watcher != nil {
		watchEvents = a.watcher.Events
		watchErrors = a.watcher.Errors
	}
	var sockMessages <-chan socket.Message
	if a.server != nil {
		sockMessages = a.server.Messages()
	}

	ticker := time.NewTicker(50 * time.Millisecond) // ~20 FPS
	defer ticker.Stop()

	for !a.quit {
		select {
		case ev := <-eventChan:
			if ev != nil {
				a.handleRawEvent(ev)
			}
		case wev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			a.handleFileEvent(wev)
		case werr, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			log.Printf("app: watcher error: %v", werr)
		case msg := <-sockMessages:
			a.handleSocketMessage(msg)
		case <-ticker.C:
			a.sch.RunDue()
			for _, sess := range a.manager.Sessions() {
				sess.OnPaint()
			}
			a.render()
		}
	}

	return nil
}

// Close closes the application
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.server != nil {
		a.server.Stop()
	}
	if a.screen != nil {
		return a.screen.Close()
	}
	return nil
}

// session returns the session pairing the two panes, nil while unpaired.
func (a *App) session() *session.Session {
	return a.manager.SessionFor(a.bufs[textview.Main])
}

// render renders the current state to the screen
func (a *App) render() {
	a.screen.Clear()

	width, height := a.screen.Size()
	if width < 4 || height < 4 {
		a.screen.Show()
		return
	}

	barY := height - 2
	statusY := height - 1
	paneH := height - 2
	leftW := (width - 1) / 2
	rightW := width - 1 - leftW

	a.syncPaneState()

	a.panes[textview.Main].SetGeometry(0, 0, leftW, paneH)
	a.panes[textview.Sub].SetGeometry(leftW+1, 0, rightW, paneH)

	divider := a.screen.GutterStyle()
	for y := 0; y < paneH; y++ {
		a.screen.SetCell(leftW, y, '│', divider)
	}

	a.panes[textview.Main].Render(a.screen)
	a.panes[textview.Sub].Render(a.screen)

	if a.lineEd.IsActive() {
		a.renderLineEditor(paneH)
	}

	switch {
	case a.command.IsActive():
		a.command.Render(a.screen, barY)
	case a.searchBar.IsActive():
		a.searchBar.Render(a.screen, barY)
	case a.lineEd.IsActive():
		a.screen.DrawString(0, barY, "-- EDIT --  Enter commits, Esc cancels", ui.StyleDim())
	}

	a.renderStatus(statusY, width)

	a.overlay.Render(a.screen)

	a.screen.Show()
}

// syncPaneState pushes the per-frame session state into the panes: focus,
// modified flags, changed spans and the transient block highlight.
func (a *App) syncPaneState() {
	sess := a.session()

	for side := textview.Main; side <= textview.Sub; side++ {
		p := a.panes[side]
		p.Focused = side == a.focused
		p.Modified = a.modified[side]
		p.ReadOnly = a.stores[side].ReadOnly && !a.snapshot[side]
		p.Snapshot = a.snapshot[side]
		p.Spans = nil
		p.ClearTempRange()
	}

	if sess == nil {
		return
	}

	if sum := sess.Summary(); sum != nil {
		a.panes[textview.Main].Spans = sum.ChangedRanges[textview.Main]
		a.panes[textview.Sub].Spans = sum.ChangedRanges[textview.Sub]
	}

	if side, start, end, ok := sess.TempRange(); ok {
		buf := a.bufs[side]
		first := buf.LineFromPosition(start)
		last := buf.LineFromPosition(end)
		if last > first && buf.LineStart(last) == end {
			last--
		}
		a.panes[side].SetTempRange(first, last)
	}
}

func (a *App) renderLineEditor(paneH int) {
	p := a.panes[a.focused]
	buf := a.bufs[a.focused]

	x, y0, maxWidth := p.ContentGeometry()
	row := buf.RowFromLine(a.lineEd.Line()) - buf.FirstVisibleRow()
	if row < 0 || row >= paneH-1 || maxWidth <= 0 {
		return
	}
	a.lineEd.Render(a.screen, x, y0+row, maxWidth)
}

func (a *App) renderStatus(y, width int) {
	style := a.screen.StatusStyle()
	sess := a.session()

	left := ""
	if a.statusMsg != "" && time.Since(a.statusTime) <= statusDisplayTime {
		left = a.statusMsg
	} else if sess != nil {
		left = sess.StatusText()
		if sess.State() == session.StateDirty {
			style = a.screen.StatusWarnStyle()
		}
	}
	if left == "" {
		left = "c compare | n/N jump | : command | ? help"
	}

	buf := a.bufs[a.focused]
	right := fmt.Sprintf(" %s %d/%d %s ",
		a.focused, buf.CaretLine()+1, buf.LineCount(), a.stores[a.focused].Ending())

	line := ui.PadStringToWidth(ui.TruncateToWidth(" "+left, width), width)
	a.screen.DrawString(0, y, line, style)

	if rw := ui.StringWidth(right); rw < width {
		a.screen.DrawString(width-rw, y, right, style)
	}
}

// handleRawEvent routes input by priority: command line, search bar, line
// editor and overlay each capture the keyboard while active.
func (a *App) handleRawEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Size()
		a.screen.Sync()

	case *tcell.EventKey:
		switch {
		case a.command.IsActive():
			cmd, done := a.command.HandleKey(ev)
			if done {
				a.handleCommand(cmd)
			}
		case a.searchBar.IsActive():
			if a.searchBar.HandleKey(ev) {
				a.gotoCurrentMatch()
			}
		case a.lineEd.IsActive():
			if !a.lineEd.HandleKey(ev) {
				a.finishLineEdit(ev.Key() == tcell.KeyEscape)
			}
		case a.overlay.IsVisible():
			a.overlay.HandleKey(ev)
		default:
			a.handleKeypress(ev)
		}
	}
}

// handleKeypress handles a single keypress in normal mode
func (a *App) handleKeypress(ev *tcell.EventKey) {
	if a.debugMode {
		a.SetStatus(fmt.Sprintf("Key: %v | Rune: %q | Modifiers: %v", ev.Key(), ev.Rune(), ev.Modifiers()))
	}

	switch ev.Key() {
	case tcell.KeyTab:
		a.setFocus(a.focused.Other())
		return
	case tcell.KeyDown:
		a.moveCaret(1)
		return
	case tcell.KeyUp:
		a.moveCaret(-1)
		return
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		a.pageMove(1)
		return
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		a.pageMove(-1)
		return
	case tcell.KeyHome:
		a.gotoLine(0)
		return
	case tcell.KeyEnd:
		a.gotoLine(a.bufs[a.focused].LineCount() - 1)
		return
	case tcell.KeyCtrlS:
		a.save(a.focused)
		return
	case tcell.KeyCtrlR:
		a.redo()
		return
	case tcell.KeyEscape:
		a.clearSelections()
		return
	}

	if kb := a.keybindingFor(ev.Rune()); kb != nil {
		kb.Handler(a)
	}
}

// Caret movement

func (a *App) setFocus(side textview.Side) {
	a.focused = side
	if sess := a.session(); sess != nil {
		sess.SetFocused(side)
	}
}

func (a *App) gotoLine(line int) {
	a.bufs[a.focused].GotoLine(line)
	a.afterCaretMove()
}

func (a *App) moveCaret(delta int) {
	a.gotoLine(a.bufs[a.focused].CaretLine() + delta)
}

// pageMove moves the caret a viewport's worth of rows, so blank padding
// counts toward a page like it does on screen.
func (a *App) pageMove(dir int) {
	buf := a.bufs[a.focused]
	row := buf.RowFromLine(buf.CaretLine()) + dir*(buf.RowsOnScreen()-1)
	a.gotoLine(buf.LineFromRow(row))
}

func (a *App) afterCaretMove() {
	buf := a.bufs[a.focused]

	if anchor := a.selAnchor[a.focused]; anchor >= 0 {
		caret := buf.CaretLine()
		if caret >= anchor {
			buf.SetSelection(buf.LineStart(anchor), buf.LineEnd(caret))
		} else {
			buf.SetSelection(buf.LineEnd(anchor), buf.LineStart(caret))
		}
	}

	if sess := a.session(); sess != nil {
		sess.OnUpdateUI(a.focused)
	}
}

// Selections

func (a *App) toggleSelect() {
	buf := a.bufs[a.focused]

	if a.selAnchor[a.focused] >= 0 {
		a.selAnchor[a.focused] = -1
		buf.SetEmptySelection(buf.CaretPosition())
		a.SetStatus("Selection cleared")
		return
	}

	line := buf.CaretLine()
	a.selAnchor[a.focused] = line
	buf.SetSelection(buf.LineStart(line), buf.LineEnd(line))
	a.SetStatus(fmt.Sprintf("Selecting from line %d", line+1))
}

func (a *App) clearSelections() {
	for side := textview.Main; side <= textview.Sub; side++ {
		a.selAnchor[side] = -1
		if a.bufs[side].HasSelection() {
			a.bufs[side].SetEmptySelection(a.bufs[side].CaretPosition())
		}
	}
}

// Comparing

// pair binds the two panes into a session and hooks its callbacks up.
func (a *App) pair() *session.Session {
	sess := a.manager.Pair(a.bufs[textview.Main], a.bufs[textview.Sub])
	sess.SetFocused(a.focused)
	sess.StatusFunc = func() { a.noteSessionStatus(sess) }
	sess.FocusFunc = func(side textview.Side) { a.focused = side }
	a.manager.ClearFirst()
	return sess
}

// noteSessionStatus mirrors status transitions into the message log so
// :messages holds a history of compare results.
func (a *App) noteSessionStatus(sess *session.Session) {
	txt := sess.StatusText()
	if txt == "" || txt == a.lastSessionStatus {
		return
	}
	a.lastSessionStatus = txt
	a.messages.AddMessage(txt)
}

func (a *App) compareFiles(selections, unique bool) {
	sess := a.session()
	if sess == nil {
		sess = a.pair()
	}

	var matched bool
	var err error
	switch {
	case selections && unique:
		matched, err = sess.FindUniqueSelections()
	case selections:
		matched, err = sess.CompareSelections()
	case unique:
		matched, err = sess.FindUnique()
	default:
		matched, err = sess.Compare()
	}

	a.finishCompare(sess, matched, err)
}

// recompare re-runs the session's previous compare kind over refreshed text.
// Selections do not survive a reload, so the whole-document variants run.
func (a *App) recompare(sess *session.Session) {
	var matched bool
	var err error
	if sess.Options().FindUnique {
		matched, err = sess.FindUnique()
	} else {
		matched, err = sess.Compare()
	}
	a.finishCompare(sess, matched, err)
}

// recompareCurrent re-runs the active comparison in its own kind, keeping a
// selection compare scoped to its (revalidated) selections. Without a
// session it starts a fresh whole-document compare.
func (a *App) recompareCurrent() {
	sess := a.session()
	if sess == nil {
		a.compareFiles(false, false)
		return
	}
	opts := sess.Options()
	a.compareFiles(opts.SelectionCompare, opts.FindUnique)
}

func (a *App) finishCompare(sess *session.Session, matched bool, err error) {
	switch {
	case errors.Is(err, session.ErrNoSelections):
		a.SetStatus("Select lines in both panes first (v)")
	case err != nil:
		log.Printf("app: compare failed: %v", err)
		a.SetStatus("Compare failed: " + err.Error())
	case matched:
		a.manager.Clear(sess)
		a.lastSessionStatus = ""
		a.SetStatus("Files match")
		a.messages.AddMessage(fmt.Sprintf("%s and %s match",
			a.bufs[textview.Main].Name(), a.bufs[textview.Sub].Name()))
	default:
		a.searchBar.Refresh()
	}
}

func (a *App) clearComparison() {
	sess := a.session()
	if sess == nil {
		a.SetStatus("No active comparison")
		return
	}
	a.manager.Clear(sess)
	a.lastSessionStatus = ""
	a.searchBar.Refresh()
	a.SetStatus("Comparison cleared")
}

// navigate jumps between differences. Focus changes land through the
// session's FocusFunc.
func (a *App) navigate(kind string) {
	sess := a.session()
	if sess == nil || sess.Summary() == nil {
		a.SetStatus("No active comparison")
		return
	}

	var res nav.Result
	switch kind {
	case "next":
		res = sess.NextDiff()
	case "prev":
		res = sess.PrevDiff()
	case "first":
		res = sess.FirstDiff()
	case "last":
		res = sess.LastDiff()
	}

	if !res.Found {
		a.SetStatus("No differences")
		return
	}
	if res.Wrapped {
		if kind == "next" {
			a.SetStatus("Wrapped to first difference")
		} else {
			a.SetStatus("Wrapped to last difference")
		}
	}
}

func (a *App) selectDiffBlock() {
	sess := a.session()
	if sess == nil || sess.Summary() == nil {
		a.SetStatus("No active comparison")
		return
	}
	if sess.SelectBlock(a.focused, a.bufs[a.focused].CaretLine()) {
		a.selAnchor[a.focused] = -1
		a.SetStatus("Block selected")
	} else {
		a.SetStatus("No diff block at caret")
	}
}

func (a *App) equalizeBlock() {
	sess := a.session()
	if sess == nil || sess.Summary() == nil {
		a.SetStatus("No active comparison")
		return
	}
	if !sess.Equalize(a.focused, a.bufs[a.focused].CaretLine()) {
		a.SetStatus("No diff block at caret")
		return
	}
	a.refreshModified(a.focused)
	a.refreshModified(a.focused.Other())
	a.searchBar.Refresh()
	a.SetStatus("Block equalized")
}

// Editing

func (a *App) editLine() {
	buf := a.bufs[a.focused]
	line := buf.CaretLine()
	buf.GotoLine(line)
	a.lineEdInserted = false
	a.lineEd.Start(line, buf.Line(line))
}

func (a *App) insertLine(before bool) {
	buf := a.bufs[a.focused]
	line := buf.CaretLine()

	if before {
		buf.Insert(buf.LineStart(line), "\n", textview.ActionUser)
	} else {
		buf.Insert(buf.LineEnd(line), "\n", textview.ActionUser)
		line++
	}

	buf.GotoLine(line)
	a.refreshModified(a.focused)
	a.lineEdInserted = true
	a.lineEd.Start(line, "")
}

func (a *App) finishLineEdit(cancelled bool) {
	if cancelled {
		a.lineEd.Cancel()
		if a.lineEdInserted {
			a.bufs[a.focused].Undo()
			a.refreshModified(a.focused)
		}
	} else {
		line, text := a.lineEd.Stop()
		a.replaceLine(line, text)
	}
	a.lineEdInserted = false
}

func (a *App) replaceLine(line int, text string) {
	buf := a.bufs[a.focused]
	if buf.Line(line) == text {
		return
	}

	start, end := buf.LineStart(line), buf.LineEnd(line)
	buf.BeginUndoAction()
	if end > start {
		buf.Delete(start, end, textview.ActionUser)
	}
	if text != "" {
		buf.Insert(start, text, textview.ActionUser)
	}
	buf.EndUndoAction()

	buf.SetEmptySelection(buf.LineStart(line))
	a.refreshModified(a.focused)
	a.searchBar.Refresh()
}

func (a *App) deleteLines() {
	buf := a.bufs[a.focused]

	r := buf.SelectedLineRange()
	if !r.Valid() {
		line := buf.CaretLine()
		r = textview.LineRange{First: line, Last: line}
	}

	start := buf.LineStart(r.First)
	var end int
	switch {
	case r.Last+1 < buf.LineCount():
		end = buf.LineStart(r.Last + 1)
	case r.First > 0:
		// Last line of the document: take the preceding newline instead.
		start = buf.LineEnd(r.First - 1)
		end = buf.Length()
	default:
		end = buf.Length()
	}
	if end <= start {
		return
	}

	buf.Delete(start, end, textview.ActionUser)

	a.selAnchor[a.focused] = -1
	line := r.First
	if line >= buf.LineCount() {
		line = buf.LineCount() - 1
	}
	buf.GotoLine(line)

	a.refreshModified(a.focused)
	a.searchBar.Refresh()
	if n := r.Len(); n == 1 {
		a.SetStatus("Deleted 1 line")
	} else {
		a.SetStatus(fmt.Sprintf("Deleted %d lines", n))
	}
}

func (a *App) undo() {
	buf := a.bufs[a.focused]
	if !buf.Undo() {
		a.SetStatus("Nothing to undo")
		return
	}
	a.refreshModified(a.focused)
	a.searchBar.Refresh()
	a.SetStatus("Undo")
}

func (a *App) redo() {
	buf := a.bufs[a.focused]
	if !buf.Redo() {
		a.SetStatus("Nothing to redo")
		return
	}
	a.refreshModified(a.focused)
	a.searchBar.Refresh()
	a.SetStatus("Redo")
}

func (a *App) refreshModified(side textview.Side) {
	if a.snapshot[side] {
		a.modified[side] = false
		return
	}
	a.modified[side] = a.bufs[side].Text() != a.stores[side].LastSaved()
}

// Files

func (a *App) save(side textview.Side) bool {
	if a.snapshot[side] {
		a.SetStatus("Snapshot pane, press r to restore the file")
		return false
	}

	st, buf := a.stores[side], a.bufs[side]
	if err := st.Save(buf.Text()); err != nil {
		a.SetStatus("Failed to save: " + err.Error())
		return false
	}

	a.modified[side] = false
	if sess := a.session(); sess != nil {
		sess.OnSave(side)
	}

	a.SetStatus("Saved " + buf.Name())
	a.messages.AddMessage("Saved " + st.Path)
	return true
}

func (a *App) reload(force bool) {
	side := a.focused

	if a.snapshot[side] {
		text, err := a.stores[side].Load()
		if err != nil {
			a.SetStatus("Failed to reload: " + err.Error())
			return
		}
		if sess := a.session(); sess != nil {
			a.manager.Clear(sess)
			a.lastSessionStatus = ""
		}
		a.snapshot[side] = false
		a.resetBuffer(side, filepath.Base(a.stores[side].Path), text)
		a.SetStatus("Restored " + a.bufs[side].Name())
		return
	}

	if a.modified[side] && !force {
		a.SetStatus("Unsaved changes, use :reload! to discard them")
		return
	}

	text, err := a.stores[side].Load()
	if err != nil {
		a.SetStatus("Failed to reload: " + err.Error())
		return
	}
	a.setText(side, text)
	a.SetStatus("Reloaded " + a.bufs[side].Name())
}

// setText replaces a buffer's content in place and re-runs the comparison
// when one is active, since SetText resets all markers.
func (a *App) setText(side textview.Side, text string) {
	a.bufs[side].SetText(text)
	a.selAnchor[side] = -1
	a.refreshModified(side)
	a.searchBar.Refresh()

	if sess := a.session(); sess != nil && sess.State() != session.StatePaired {
		a.recompare(sess)
	}
}

// resetBuffer swaps in a brand new buffer for the side. Any session is
// expected to be cleared by the caller; the search bar is rebuilt because
// its matcher holds the old views.
func (a *App) resetBuffer(side textview.Side, name, text string) {
	a.bufs[side] = textview.NewBuffer(side, name, text)
	a.panes[side] = ui.NewPane(a.bufs[side])
	a.selAnchor[side] = -1
	a.refreshModified(side)
	a.rebuildSearch()
}

func (a *App) rebuildSearch() {
	matcher := search.NewMatcher(a.bufs[textview.Main], a.bufs[textview.Sub])
	if a.hist != nil {
		a.searchBar = ui.NewSearchBarWithHistory(matcher, a.hist)
		return
	}
	a.searchBar = ui.NewSearchBar(matcher)
}

func (a *App) externalEdit() {
	side := a.focused
	if a.snapshot[side] {
		a.SetStatus("Snapshot pane, press r to restore the file")
		return
	}
	if a.modified[side] {
		a.SetStatus("Save or reload before editing externally")
		return
	}

	if err := a.screen.Suspend(); err != nil {
		a.SetStatus("Failed to suspend terminal: " + err.Error())
		return
	}
	changed, err := ui.EditFileInExternalEditor(a.stores[side].Path, a.config)
	if rerr := a.screen.Resume(); rerr != nil {
		log.Printf("app: failed to resume screen: %v", rerr)
	}

	if err != nil {
		a.SetStatus("External editor failed: " + err.Error())
		return
	}
	if !changed {
		a.SetStatus("No changes")
		return
	}

	text, err := a.stores[side].Load()
	if err != nil {
		a.SetStatus("Failed to reload: " + err.Error())
		return
	}
	a.setText(side, text)
	a.SetStatus("Reloaded " + a.bufs[side].Name())
}

// compareToLastSave puts the focused file's last saved content into the
// other pane and compares, showing what changed since the save.
func (a *App) compareToLastSave() {
	side := a.focused
	other := side.Other()

	if a.snapshot[side] {
		a.SetStatus("Already comparing against the last save")
		return
	}
	if !a.modified[side] {
		a.SetStatus("No changes since last save")
		return
	}
	if a.modified[other] {
		a.SetStatus("Other pane has unsaved changes, save it first")
		return
	}

	if sess := a.session(); sess != nil {
		a.manager.Clear(sess)
		a.lastSessionStatus = ""
	}

	a.resetBuffer(other, a.bufs[side].Name(), a.stores[side].LastSaved())
	a.snapshot[other] = true
	a.modified[other] = false

	a.messages.AddMessage(fmt.Sprintf("Comparing %s with its last save", a.bufs[side].Name()))
	a.compareFiles(false, false)
}

// swapSides exchanges the two panes. Buffers are rebuilt, so undo history
// does not survive the swap.
func (a *App) swapSides() {
	if sess := a.session(); sess != nil {
		a.manager.Clear(sess)
		a.lastSessionStatus = ""
	}

	a.stores[textview.Main], a.stores[textview.Sub] = a.stores[textview.Sub], a.stores[textview.Main]
	a.snapshot[textview.Main], a.snapshot[textview.Sub] = a.snapshot[textview.Sub], a.snapshot[textview.Main]

	oldMain, oldSub := a.bufs[textview.Main], a.bufs[textview.Sub]
	a.resetBuffer(textview.Main, oldSub.Name(), oldSub.Text())
	a.resetBuffer(textview.Sub, oldMain.Name(), oldMain.Text())

	a.manager.MarkFirst(a.bufs[textview.Main])
	a.SetStatus("Panes swapped")
}

// markFirstFocused makes the focused file the first (main) side of the next
// comparison, swapping panes when needed.
func (a *App) markFirstFocused() {
	if a.focused == textview.Sub {
		a.swapSides()
		a.setFocus(textview.Main)
	}
	a.manager.MarkFirst(a.bufs[textview.Main])
	a.SetStatus("First file: " + a.bufs[textview.Main].Name())
}

// File watching

func (a *App) handleFileEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	name := filepath.Clean(ev.Name)
	for side := textview.Main; side <= textview.Sub; side++ {
		if name == a.stores[side].Path {
			a.reloadPending[side] = true
			a.reloadTask.Post(reloadDelay)
		}
	}
}

// processReloads picks up external file changes. A clean buffer reloads and
// recompares quietly; unsaved edits only get a warning. Saves made by this
// process are filtered out by the store's modification time.
func (a *App) processReloads() {
	for side := textview.Main; side <= textview.Sub; side++ {
		if !a.reloadPending[side] {
			continue
		}
		a.reloadPending[side] = false

		if a.snapshot[side] || !a.stores[side].ModifiedOnDisk() {
			continue
		}

		name := a.bufs[side].Name()
		if a.modified[side] {
			a.SetStatus(name + " changed on disk, buffer has unsaved changes")
			a.messages.AddMessage(name + " changed on disk while modified, reload with :reload!")
			continue
		}

		text, err := a.stores[side].Load()
		if err != nil {
			log.Printf("app: failed to reload %s: %v", a.stores[side].Path, err)
			a.SetStatus("Failed to reload " + name)
			continue
		}
		if text == a.bufs[side].Text() {
			continue
		}

		a.setText(side, text)
		a.SetStatus(name + " reloaded from disk")
		a.messages.AddMessage(name + " reloaded after an external change")
	}
}

// Search

func (a *App) startSearch() {
	sess := a.session()
	if sess == nil || sess.Summary() == nil {
		a.SetStatus("Compare first, search filters difference lines")
		return
	}
	a.searchBar.Start()
}

func (a *App) gotoCurrentMatch() {
	r, ok := a.searchBar.Current()
	if !ok {
		a.SetStatus("No matches")
		return
	}

	a.setFocus(r.Side)
	buf := a.bufs[r.Side]
	buf.GotoLine(r.Line)
	buf.CenterAt(r.Line)
	if sess := a.session(); sess != nil {
		sess.OnUpdateUI(r.Side)
	}

	a.SetStatus(fmt.Sprintf("Match %d of %d", a.searchBar.CurrentNumber(), a.searchBar.MatchCount()))
}

func (a *App) searchNext() {
	if !a.searchBar.HasResults() {
		a.SetStatus("No active search")
		return
	}
	a.searchBar.Next()
	a.gotoCurrentMatch()
}

func (a *App) searchPrev() {
	if !a.searchBar.HasResults() {
		a.SetStatus("No active search")
		return
	}
	a.searchBar.Prev()
	a.gotoCurrentMatch()
}

// Status

func (a *App) requestQuit() {
	if a.modified[textview.Main] || a.modified[textview.Sub] {
		a.SetStatus("Unsaved changes! Use :q! to force quit or w to save")
		return
	}
	a.quit = true
}

// SetStatus sets the status message
func (a *App) SetStatus(msg string) {
	a.statusMsg = msg
	a.statusTime = time.Now()
}

// Quit signals the app to quit
func (a *App) Quit() {
	a.quit = true
}

// SetDebugMode enables or disables debug mode
func (a *App) SetDebugMode(debug bool) {
	a.debugMode = debug
}
