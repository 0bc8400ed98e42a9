package main

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"

	"github.com/milk9111/pathedit/config"
	"github.com/milk9111/pathedit/editor"
	"github.com/milk9111/pathedit/inspector"
	"github.com/milk9111/pathedit/levelapi"
	"github.com/milk9111/pathedit/model"
	"github.com/milk9111/pathedit/scene"
)

const (
	tabBarHeight = 18
	panelWidth   = 280
	rowHeight    = 16
	historyRows  = 12
)

// App is the ebiten game driving the editor window.
type App struct {
	ws           *editor.Workspace
	settings     config.Settings
	settingsPath string
	watcher      *editor.Watcher
	clip         *systemClipboard

	ui     *ebitenui.UI
	status *widget.Text
	pal    palette
	prompt prompt

	width, height int

	panning  bool
	lastPan  cp.Vector
	addLine  bool
	lineFrom *cp.Vector
	quitting bool
}

func newApp(settings config.Settings, settingsPath string) *App {
	a := &App{
		settings:     settings,
		settingsPath: settingsPath,
		ws:           editor.NewWorkspace(levelapi.Bundle{}, tabOptions(settings)),
		clip:         newSystemClipboard(),
	}
	w, err := editor.NewWatcher()
	if err != nil {
		log.Printf("file watching disabled: %v", err)
	} else {
		a.watcher = w
	}
	a.ws.OnTabsChanged = func() {
		if a.watcher != nil {
			a.watcher.Sync(a.ws.Tabs())
		}
	}
	a.buildUI()
	return a
}

func (a *App) buildUI() {
	base := paletteFor(a.settings.Theme)
	a.pal = base
	if a.settings.ItemTransparency {
		a.pal = base.withItemAlpha(itemAlpha)
	}
	label := ""
	if a.status != nil {
		label = a.status.Label
	}
	a.ui, a.status = buildToolbar(base, []toolAction{
		{"Open", a.promptOpen},
		{"Save", a.save},
		{"Save As", a.promptSaveAs},
		{"Export", a.export},
		{"Undo", func() { a.withTab(func(t *editor.Tab) { t.Undo() }) }},
		{"Redo", func() { a.withTab(func(t *editor.Tab) { t.Redo() }) }},
		{"Zoom +", func() { a.withTab(func(t *editor.Tab) { t.ZoomIn() }) }},
		{"Zoom -", func() { a.withTab(func(t *editor.Tab) { t.ZoomOut() }) }},
		{"Add Object", a.promptAddObject},
		{"Add Collision", func() { a.addLine, a.lineFrom = true, nil; a.setStatus("drag to place a collision") }},
		{"Theme", a.toggleTheme},
		{"Grid", a.toggleGrid},
		{"Transparency", a.toggleTransparency},
	})
	a.status.Label = label
}

func (a *App) setStatus(format string, args ...any) {
	a.status.Label = fmt.Sprintf(format, args...)
}

func (a *App) fail(what string, err error) {
	log.Printf("%s: %v", what, err)
	a.setStatus("%s: %s", what, userMessage(err))
}

func userMessage(err error) string {
	if levelapi.KindOf(err) != levelapi.KindUnknown {
		return levelapi.UserMessage(err)
	}
	return err.Error()
}

func (a *App) withTab(fn func(*editor.Tab)) {
	if t := a.ws.Current(); t != nil {
		fn(t)
	}
}

// OpenFile opens a path JSON file directly or starts the path choice for
// a level container.
func (a *App) OpenFile(path string) {
	if strings.EqualFold(filepath.Ext(path), editor.LevelExt) {
		a.promptPathID(path)
		return
	}
	a.open(path, editor.OpenOptions{})
}

func (a *App) open(path string, opts editor.OpenOptions) {
	t, err := a.ws.Open(path, opts)
	if err != nil {
		if !errors.Is(err, editor.ErrCancelled) {
			a.fail("open "+filepath.Base(path), err)
		}
		return
	}
	a.settings.AddRecent(path)
	a.settings.LastOpenDir = filepath.Dir(path)
	a.saveSettings()
	a.setStatus("opened %s", t.Title())
}

func (a *App) promptOpen() {
	initial := a.settings.LastOpenDir
	if initial != "" {
		initial += string(filepath.Separator)
	}
	hints := a.settings.Recent
	if len(hints) > 3 {
		hints = hints[:3]
	}
	a.prompt.Open("Open:", initial, hints, func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			a.OpenFile(s)
		}
	})
}

func (a *App) promptPathID(lvl string) {
	ids, err := levelapi.Bundle{}.EnumeratePaths(lvl)
	if err != nil {
		a.fail("open "+filepath.Base(lvl), err)
		return
	}
	hints := make([]string, len(ids))
	for i, id := range ids {
		hints[i] = strconv.Itoa(id)
	}
	hints = append(hints, "| new <id>")
	a.prompt.Open("Path id:", "", hints, func(s string) {
		fields := strings.Fields(s)
		switch {
		case len(fields) == 2 && fields[0] == "new":
			id, err := parsePathID(fields[1])
			if err != nil {
				a.setStatus("%v", err)
				return
			}
			a.open(lvl, editor.OpenOptions{CreateNewPath: true, NewPathID: id})
		case len(fields) == 1:
			id, err := parsePathID(fields[0])
			if err != nil {
				a.setStatus("%v", err)
				return
			}
			a.open(lvl, editor.OpenOptions{SelectPath: func([]int) (int, bool) { return id, true }})
		}
	})
}

func (a *App) save() {
	t := a.ws.Current()
	if t == nil {
		return
	}
	if t.NeedsSaveAs() {
		a.promptSaveAs()
		return
	}
	if err := t.Save(); err != nil {
		a.fail("save", err)
		return
	}
	a.setStatus("saved %s", t.Path())
}

func (a *App) promptSaveAs() {
	t := a.ws.Current()
	if t == nil {
		return
	}
	initial := t.Path()
	if initial == "" {
		initial = filepath.Join(a.settings.LastOpenDir, t.Title()+".json")
	}
	a.prompt.Open("Save as:", initial, nil, func(s string) {
		if s = strings.TrimSpace(s); s == "" {
			return
		}
		if err := a.ws.SaveAs(t, s); err != nil {
			a.fail("save as", err)
			return
		}
		a.settings.AddRecent(s)
		a.saveSettings()
		if a.watcher != nil {
			a.watcher.Sync(a.ws.Tabs())
		}
		a.setStatus("saved %s", s)
	})
}

func (a *App) export() {
	t := a.ws.Current()
	if t == nil {
		return
	}
	run := func(lvl string) {
		if err := t.Export(lvl); err != nil {
			a.fail("export", err)
			return
		}
		a.setStatus("exported path %d", t.Document().MapInfo().PathID)
	}
	if t.LevelPath() != "" {
		run("")
		return
	}
	a.prompt.Open("Export to level:", a.settings.LastOpenDir, nil, func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			run(s)
		}
	})
}

func (a *App) promptAddObject() {
	t := a.ws.Current()
	if t == nil {
		return
	}
	var names []string
	for _, st := range t.Document().Schema().Structures {
		names = append(names, st.Name)
	}
	center := t.Scene().ViewToScene(cp.Vector{X: float64(a.canvasWidth()) / 2, Y: float64(a.canvasHeight()) / 2})
	a.prompt.Open("Add object:", "", names, func(s string) {
		if _, err := t.AddObject(strings.TrimSpace(s), center, 25, 25); err != nil {
			a.fail("add object", err)
		}
	})
}

func (a *App) closeCurrent() {
	i := a.ws.CurrentIndex()
	t := a.ws.Current()
	if t == nil {
		return
	}
	if t.IsClean() {
		_ = a.ws.Close(i, nil)
		return
	}
	a.prompt.Open(fmt.Sprintf("%s has unsaved changes. Close anyway? (y/n)", t.Title()), "", nil, func(s string) {
		if strings.EqualFold(strings.TrimSpace(s), "y") {
			_ = a.ws.Close(i, nil)
		}
	})
}

func (a *App) toggleTheme() {
	if a.settings.Theme == config.ThemeDark {
		a.settings.Theme = config.ThemeLight
	} else {
		a.settings.Theme = config.ThemeDark
	}
	a.saveSettings()
	a.buildUI()
}

func (a *App) toggleGrid() {
	a.settings.ShowGrid = !a.settings.ShowGrid
	a.saveSettings()
}

func (a *App) toggleTransparency() {
	a.settings.ItemTransparency = !a.settings.ItemTransparency
	a.saveSettings()
	a.buildUI()
}

func (a *App) saveSettings() {
	if a.settingsPath == "" {
		return
	}
	if err := a.settings.Save(a.settingsPath); err != nil {
		log.Printf("save settings: %v", err)
	}
}

func (a *App) copy() {
	if a.ws.Copy() {
		a.clip.Write(a.ws.Clipboard())
		a.setStatus("copied %d item(s)", a.ws.Clipboard().Len())
	}
}

func (a *App) cut() {
	if a.ws.Cut() {
		a.clip.Write(a.ws.Clipboard())
	}
}

func (a *App) paste() {
	if d := a.clip.Read(); d != nil {
		a.ws.SetClipboard(d)
	}
	hs, err := a.ws.Paste()
	if err != nil {
		a.fail("paste", err)
		return
	}
	if len(hs) > 0 {
		a.setStatus("pasted %d item(s)", len(hs))
	}
}

func (a *App) canvasWidth() int  { return max(a.width-panelWidth, 0) }
func (a *App) canvasHeight() int { return max(a.height-a.canvasTop(), 0) }
func (a *App) canvasTop() int    { return toolbarHeight + tabBarHeight }

// viewPoint converts window pixels to view pixels of the canvas.
func (a *App) viewPoint(x, y int) cp.Vector {
	return cp.Vector{X: float64(x), Y: float64(y - a.canvasTop())}
}

func (a *App) Update() error {
	a.ui.Update()
	a.drainWatcher()

	if ebiten.IsWindowBeingClosed() && !a.prompt.IsOpen() {
		if !a.ws.Dirty() {
			a.saveSettings()
			return ebiten.Termination
		}
		a.prompt.Open("Unsaved changes. Quit anyway? (y/n)", "", nil, func(s string) {
			a.quitting = strings.EqualFold(strings.TrimSpace(s), "y")
		})
	}
	if a.prompt.Update() {
		if a.quitting {
			a.saveSettings()
			return ebiten.Termination
		}
		return nil
	}

	a.handleKeys()
	a.handleMouse()
	a.updateTitle()
	return nil
}

func (a *App) drainWatcher() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case f, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if i := a.ws.Find(editor.NormalizePath(f)); i >= 0 {
				a.setStatus("%s changed on disk", filepath.Base(f))
			}
		case err := <-a.watcher.Errors:
			log.Printf("watch: %v", err)
		default:
			return
		}
	}
}

func (a *App) handleKeys() {
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	just := inpututil.IsKeyJustPressed

	if ctrl {
		switch {
		case just(ebiten.KeyZ) && shift, just(ebiten.KeyY):
			a.withTab(func(t *editor.Tab) { t.Redo() })
		case just(ebiten.KeyZ):
			a.withTab(func(t *editor.Tab) { t.Undo() })
		case just(ebiten.KeyS) && shift:
			a.promptSaveAs()
		case just(ebiten.KeyS):
			a.save()
		case just(ebiten.KeyO):
			a.promptOpen()
		case just(ebiten.KeyE):
			a.export()
		case just(ebiten.KeyC):
			a.copy()
		case just(ebiten.KeyX):
			a.cut()
		case just(ebiten.KeyV):
			a.paste()
		case just(ebiten.KeyW):
			a.closeCurrent()
		case just(ebiten.KeyEqual), just(ebiten.KeyKPAdd):
			a.withTab(func(t *editor.Tab) { t.ZoomIn() })
		case just(ebiten.KeyMinus), just(ebiten.KeyKPSubtract):
			a.withTab(func(t *editor.Tab) { t.ZoomOut() })
		case just(ebiten.Key0):
			a.withTab(func(t *editor.Tab) { t.ResetZoom() })
		case just(ebiten.KeyG):
			a.toggleGrid()
		case just(ebiten.KeyT):
			a.toggleTransparency()
		case just(ebiten.KeyTab):
			if n := len(a.ws.Tabs()); n > 0 {
				a.ws.SetCurrent((a.ws.CurrentIndex() + 1) % n)
			}
		}
		return
	}
	switch {
	case just(ebiten.KeyDelete), just(ebiten.KeyBackspace):
		a.withTab(func(t *editor.Tab) { t.Delete() })
	case just(ebiten.KeyEscape):
		a.addLine, a.lineFrom = false, nil
		a.withTab(func(t *editor.Tab) { t.Select(nil) })
	}
}

func (a *App) handleMouse() {
	t := a.ws.Current()
	mx, my := ebiten.CursorPosition()
	inCanvas := mx < a.canvasWidth() && my >= a.canvasTop()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		switch {
		case my >= toolbarHeight && my < a.canvasTop():
			a.clickTabBar(mx)
			return
		case mx >= a.canvasWidth() && my >= a.canvasTop():
			a.clickPanel(my)
			return
		}
	}
	if t == nil {
		return
	}
	sc := t.Scene()
	pt := sc.ViewToScene(a.viewPoint(mx, my))

	if inCanvas {
		if _, wy := ebiten.Wheel(); wy > 0 {
			t.ZoomIn()
		} else if wy < 0 {
			t.ZoomOut()
		}
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) && inCanvas {
		a.panning, a.lastPan = true, cp.Vector{X: float64(mx), Y: float64(my)}
	}
	if a.panning {
		cur := cp.Vector{X: float64(mx), Y: float64(my)}
		sc.Scroll = sc.Scroll.Sub(cur.Sub(a.lastPan))
		a.lastPan = cur
		if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonMiddle) {
			a.panning = false
		}
	}

	if a.addLine {
		if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inCanvas {
			from := pt
			a.lineFrom = &from
		}
		if a.lineFrom != nil && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
			if _, err := t.AddCollision(*a.lineFrom, pt); err != nil {
				a.fail("add collision", err)
			}
			a.addLine, a.lineFrom = false, nil
		}
		return
	}

	var mods scene.Modifiers
	if ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta) {
		mods |= scene.ModCtrl
	}
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		mods |= scene.ModShift
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) && inCanvas {
		sc.Press(scene.ButtonLeft, pt, mods)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && inCanvas {
		sc.Press(scene.ButtonRight, pt, mods)
	}
	if sc.Dragging() {
		if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			sc.Drag(pt)
		} else {
			sc.Release(scene.ButtonLeft, pt)
		}
	}
}

func (a *App) clickTabBar(mx int) {
	x := 0
	for i, t := range a.ws.Tabs() {
		w := tabWidth(t)
		if mx >= x && mx < x+w {
			a.ws.SetCurrent(i)
			return
		}
		x += w
	}
}

func tabWidth(t *editor.Tab) int { return 6*len(tabLabel(t)) + 16 }

func tabLabel(t *editor.Tab) string {
	if t.IsClean() {
		return t.Title()
	}
	return t.Title() + "*"
}

func (a *App) clickPanel(my int) {
	t := a.ws.Current()
	if t == nil {
		return
	}
	i := (my - a.canvasTop() - rowHeight) / rowHeight
	rows := t.Inspector().Rows()
	if i < 0 || i >= len(rows) {
		return
	}
	row := rows[i]
	var hints []string
	switch row.Kind {
	case inspector.RowEnum:
		hints = row.Options
	case inspector.RowBasic:
		hints = []string{fmt.Sprintf("%d..%d", row.Min, row.Max)}
	}
	insp := t.Inspector()
	a.prompt.Open(row.Label+":", row.Value, hints, func(s string) {
		if err := insp.Commit(i, s); err != nil {
			a.fail("edit", err)
		}
	})
}

func (a *App) updateTitle() {
	title := "pathedit"
	if t := a.ws.Current(); t != nil {
		title += " - " + tabLabel(t)
	}
	ebiten.SetWindowTitle(title)
}

func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(a.pal.background)
	if t := a.ws.Current(); t != nil {
		a.drawScene(screen, t)
		a.drawPanel(screen, t)
	} else {
		ebitenutil.DebugPrintAt(screen, "Ctrl+O to open a path (.json) or a level (.lvl)", 16, a.canvasTop()+16)
	}
	a.drawTabBar(screen)
	a.ui.Draw(screen)
	a.prompt.Draw(screen)
}

func (a *App) toScreen(sc *scene.Scene, p cp.Vector) (float32, float32) {
	v := sc.SceneToView(p)
	return float32(v.X), float32(v.Y) + float32(a.canvasTop())
}

func (a *App) drawScene(screen *ebiten.Image, t *editor.Tab) {
	sc := t.Scene()
	for _, c := range sc.Cells() {
		x0, y0 := a.toScreen(sc, cp.Vector{X: c.BB.L, Y: c.BB.B})
		x1, y1 := a.toScreen(sc, cp.Vector{X: c.BB.R, Y: c.BB.T})
		fill := a.pal.cell
		if c.Empty {
			fill = a.pal.emptyCell
		}
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, fill, false)
		if a.settings.ShowGrid {
			vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, a.pal.grid, false)
		}
		if c.Name != "" {
			ebitenutil.DebugPrintAt(screen, c.Name, int(x0)+3, int(y0)+2)
		}
	}

	sel := sc.Selection()
	for _, it := range sc.Items() {
		clr := a.pal.object
		if it.Kind == model.KindCollision {
			clr = a.pal.collision
		}
		if sc.IsSelected(it.Handle) {
			clr = a.pal.selected
		}
		if it.Kind == model.KindCollision {
			pa, pb := it.Endpoints()
			x0, y0 := a.toScreen(sc, pa)
			x1, y1 := a.toScreen(sc, pb)
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, clr, true)
			if len(sel) == 1 && sel[0] == it.Handle {
				a.drawHandle(screen, x0, y0)
				a.drawHandle(screen, x1, y1)
			}
			continue
		}
		bb := it.Bounds()
		x0, y0 := a.toScreen(sc, cp.Vector{X: bb.L, Y: bb.B})
		x1, y1 := a.toScreen(sc, cp.Vector{X: bb.R, Y: bb.T})
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 2, clr, false)
		if len(sel) == 1 && sel[0] == it.Handle {
			for _, p := range [][2]float32{{x0, y0}, {x1, y0}, {x0, y1}, {x1, y1}} {
				a.drawHandle(screen, p[0], p[1])
			}
		}
	}

	if bb, ok := sc.Band(); ok {
		x0, y0 := a.toScreen(sc, cp.Vector{X: bb.L, Y: bb.B})
		x1, y1 := a.toScreen(sc, cp.Vector{X: bb.R, Y: bb.T})
		vector.FillRect(screen, x0, y0, x1-x0, y1-y0, a.pal.band, false)
		vector.StrokeRect(screen, x0, y0, x1-x0, y1-y0, 1, a.pal.selected, false)
	}
	if a.lineFrom != nil {
		mx, my := ebiten.CursorPosition()
		x0, y0 := a.toScreen(sc, *a.lineFrom)
		vector.StrokeLine(screen, x0, y0, float32(mx), float32(my), 1, a.pal.collision, true)
	}
}

func (a *App) drawHandle(screen *ebiten.Image, x, y float32) {
	vector.FillRect(screen, x-3, y-3, 6, 6, a.pal.selected, false)
}

func (a *App) drawTabBar(screen *ebiten.Image) {
	vector.FillRect(screen, 0, toolbarHeight, float32(a.width), tabBarHeight, a.pal.bar, false)
	x := 0
	for i, t := range a.ws.Tabs() {
		w := tabWidth(t)
		if i == a.ws.CurrentIndex() {
			vector.FillRect(screen, float32(x), toolbarHeight, float32(w), tabBarHeight, a.pal.button, false)
		}
		ebitenutil.DebugPrintAt(screen, tabLabel(t), x+8, toolbarHeight+1)
		x += w
	}
}

func (a *App) drawPanel(screen *ebiten.Image, t *editor.Tab) {
	x := a.canvasWidth()
	top := a.canvasTop()
	vector.FillRect(screen, float32(x), float32(top), panelWidth, float32(a.canvasHeight()), a.pal.panel, false)

	ebitenutil.DebugPrintAt(screen, "Properties", x+8, top)
	rows := t.Inspector().Rows()
	for i, r := range rows {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%-14s %s", r.Label, r.Value), x+8, top+rowHeight*(i+1))
	}

	y := top + rowHeight*(len(rows)+3)
	st := t.Stack()
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("History (%d/%d)", st.Index(), st.Count()), x+8, y)
	texts := st.Texts()
	start := max(len(texts)-historyRows, 0)
	for i := start; i < len(texts); i++ {
		y += rowHeight
		prefix := "  "
		if i == st.Index()-1 {
			prefix = "> "
		}
		ebitenutil.DebugPrintAt(screen, prefix+texts[i], x+8, y)
	}

	y = a.height - rowHeight - 2
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("zoom %.0f%%", t.Scene().Zoom()*100), x+8, y)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

var _ ebiten.Game = (*App)(nil)
