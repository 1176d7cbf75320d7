// Package tui is the full-screen dashboard behind the watch command.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"pingwatch/internal/catalog"
	pwerrors "pingwatch/internal/errors"
	"pingwatch/internal/history"
	"pingwatch/internal/logger"
	"pingwatch/internal/models"
	"pingwatch/internal/monitor"
	"pingwatch/internal/ping"
	"pingwatch/internal/report"
)

const (
	pageDashboard = "dashboard"
	pageCatalog   = "catalog"

	logPaneHeight = 6
)

// Options wires the dashboard to the rest of the program.
type Options struct {
	Registry *monitor.Registry
	Queue    *monitor.Queue
	Book     *history.Book

	// Catalog is optional. Without it only literal targets can be added.
	Catalog *catalog.Catalog
	// Sink receives every result before it is drawn, e.g. the CSV log.
	Sink models.Observer
	// Ring, when set, is shown in a log pane below the panels.
	Ring *logger.Ring

	Theme     Theme
	OutputDir string
	Logger    *slog.Logger
}

type panel struct {
	view   *tview.TextView
	handle *monitor.Handle
	label  string
}

// App is the dashboard. Widgets are only touched from the tview event loop;
// results reach it through the monitor queue.
type App struct {
	opts  Options
	theme Theme
	log   *slog.Logger
	now   func() time.Time

	app         *tview.Application
	pages       *tview.Pages
	grid        *tview.Grid
	input       *tview.InputField
	status      *tview.TextView
	logView     *tview.TextView
	catalogList *tview.List
	catalogForm *tview.Form

	panels   []*panel
	selected int
}

// New builds the dashboard. Registry, Queue and Book are required.
func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Theme == (Theme{}) {
		opts.Theme = DefaultTheme()
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	a := &App{
		opts:  opts,
		theme: opts.Theme,
		log:   opts.Logger,
		now:   time.Now,
		app:   tview.NewApplication(),
	}
	a.buildDashboard()
	a.buildCatalog()

	a.pages = tview.NewPages().
		AddPage(pageDashboard, a.dashboardLayout(), true, true).
		AddPage(pageCatalog, a.catalogLayout(), true, false)
	a.app.SetInputCapture(a.handleKey)

	for i := range a.panels {
		a.refresh(i)
	}
	a.setStatus(helpText, false)
	return a
}

var helpText = tview.Escape("[a] add  [p] pause/resume  [x] remove  [s] save details  [c] catalog  [tab/1-9] select  [q] quit")

func (a *App) buildDashboard() {
	rows, cols := gridShape(a.opts.Registry.Capacity())
	a.grid = tview.NewGrid().
		SetRows(make([]int, rows)...).
		SetColumns(make([]int, cols)...)

	for i := 0; i < a.opts.Registry.Capacity(); i++ {
		view := tview.NewTextView().
			SetDynamicColors(true).
			SetWrap(false)
		view.SetTextColor(a.theme.Text)
		view.SetBackgroundColor(a.theme.Background)
		view.SetBorder(true)

		a.panels = append(a.panels, &panel{view: view})
		a.grid.AddItem(view, i/cols, i%cols, 1, 1, 0, 0, false)
	}

	a.input = tview.NewInputField().
		SetLabel("Target or catalog name: ").
		SetFieldWidth(0)
	a.input.SetAutocompleteFunc(a.completeTarget)
	a.input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			if err := a.StartTarget(a.input.GetText()); err != nil {
				a.setStatus(err.Error(), true)
				return
			}
			a.input.SetText("")
			a.setStatus(helpText, false)
		case tcell.KeyEscape:
			a.input.SetText("")
		}
		a.app.SetFocus(a.grid)
	})

	a.status = tview.NewTextView().SetDynamicColors(true)

	a.logView = tview.NewTextView().SetDynamicColors(true)
	a.logView.SetBorder(true).SetTitle(" log ")
	a.logView.SetBorderColor(a.theme.Border)
}

func (a *App) dashboardLayout() tview.Primitive {
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.grid, 0, 1, true).
		AddItem(a.input, 1, 0, false).
		AddItem(a.status, 1, 0, false)
	if a.opts.Ring != nil {
		layout.AddItem(a.logView, logPaneHeight, 0, false)
	}
	return layout
}

func (a *App) buildCatalog() {
	a.catalogList = tview.NewList().ShowSecondaryText(true)
	a.catalogList.SetBorder(true).SetTitle(" catalog: enter starts, d deletes, esc returns ")
	a.catalogList.SetBorderColor(a.theme.Border)
	a.catalogList.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyRune && ev.Rune() == 'd' {
			a.deleteCatalogEntry()
			return nil
		}
		return ev
	})

	a.catalogForm = tview.NewForm().
		AddInputField("Name", "", 30, nil, nil).
		AddInputField("Target", "", 30, nil, nil).
		AddButton("Save", func() {
			if err := a.saveCatalogEntry(); err != nil {
				a.setStatus(err.Error(), true)
			}
		}).
		AddButton("Back", a.showDashboard)
	a.catalogForm.SetBorder(true).SetTitle(" new entry ")
	a.catalogForm.SetBorderColor(a.theme.Border)
}

func (a *App) catalogLayout() tview.Primitive {
	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.catalogList, 0, 1, true).
		AddItem(a.catalogForm, 9, 0, false)
}

func (a *App) handleKey(ev *tcell.EventKey) *tcell.EventKey {
	page, _ := a.pages.GetFrontPage()
	if page == pageCatalog {
		if ev.Key() == tcell.KeyEscape {
			a.showDashboard()
			return nil
		}
		if ev.Key() == tcell.KeyTab && a.app.GetFocus() == a.catalogList {
			a.app.SetFocus(a.catalogForm)
			return nil
		}
		return ev
	}
	if a.app.GetFocus() == a.input {
		return ev
	}

	switch ev.Key() {
	case tcell.KeyTab:
		a.selectPanel(a.selected + 1)
		return nil
	case tcell.KeyBacktab:
		a.selectPanel(a.selected - 1)
		return nil
	case tcell.KeyRune:
	default:
		return ev
	}

	switch r := ev.Rune(); {
	case r == 'q':
		a.app.Stop()
	case r == 'a':
		a.app.SetFocus(a.input)
	case r == 'p':
		a.togglePause()
	case r == 'x':
		a.RemoveSelected()
	case r == 's':
		path, err := a.SaveSelected()
		if err != nil {
			a.setStatus(err.Error(), true)
		} else {
			a.setStatus("saved "+path, false)
		}
	case r == 'c':
		a.showCatalog()
	case r >= '1' && r <= '9':
		a.selectPanel(int(r - '1'))
	default:
		return ev
	}
	return nil
}

// Run starts targets and blocks until the user quits or ctx is cancelled.
// Every monitor is stopped before it returns.
func (a *App) Run(ctx context.Context, targets []string) error {
	for _, t := range targets {
		if err := a.StartTarget(t); err != nil {
			a.log.Warn("could not start monitor", "target", t, "error", err)
			a.setStatus(err.Error(), true)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go a.drain(ctx)
	go func() {
		<-ctx.Done()
		a.app.Stop()
	}()

	unhook := func() {}
	if a.opts.Ring != nil {
		unhook = followLog(ctx, a.opts.Ring, func(f func()) { a.app.QueueUpdateDraw(f) }, a.refreshLog)
		a.refreshLog()
	}
	if a.opts.Catalog != nil {
		go func() {
			err := a.opts.Catalog.Watch(ctx, func() { a.app.QueueUpdateDraw(a.reloadCatalogList) })
			if err != nil {
				a.log.Warn("catalog watch stopped", "error", err)
			}
		}()
	}

	err := a.app.SetRoot(a.pages, true).SetFocus(a.grid).Run()

	// Nothing drains the event loop from here on.
	unhook()
	cancel()
	a.opts.Registry.StopAll()
	if a.opts.Sink != nil {
		a.opts.Queue.Flush(a.opts.Sink)
	}
	return err
}

// drain moves results from the queue onto the event loop.
func (a *App) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case r := <-a.opts.Queue.Results():
			if a.opts.Sink != nil {
				a.opts.Sink.OnResult(r)
			}
			a.app.QueueUpdateDraw(func() { a.apply(r) })
		}
	}
}

// apply records r and redraws its panel. Results for targets that are no
// longer shown are dropped.
func (a *App) apply(r models.ProbeResult) {
	slot := a.slotOf(r.Target)
	if slot < 0 {
		return
	}
	a.opts.Book.OnResult(r)
	a.refresh(slot)
}

// StartTarget resolves nameOrTarget through the catalog and starts
// monitoring it in the first free panel.
func (a *App) StartTarget(nameOrTarget string) error {
	input := strings.TrimSpace(nameOrTarget)
	if input == "" {
		return pwerrors.New(pwerrors.ErrTarget, "no target given", "type an IP address, a host name or a catalog name")
	}

	target, label := input, ""
	if a.opts.Catalog != nil {
		if t, ok := a.opts.Catalog.Lookup(input); ok {
			target, label = t, input
		}
	}
	if a.slotOf(target) >= 0 {
		return pwerrors.New(pwerrors.ErrTarget, fmt.Sprintf("%s is already monitored", target), "")
	}

	slot := a.freeSlot()
	if slot < 0 {
		return pwerrors.New(pwerrors.ErrCapacity,
			fmt.Sprintf("all %d panels are in use", len(a.panels)),
			"remove a monitor with x first")
	}

	a.opts.Book.Forget(target)
	h, err := a.opts.Registry.Register(target, a.opts.Queue)
	if err != nil {
		return err
	}

	p := a.panels[slot]
	p.handle, p.label = h, label
	a.log.Info("monitor started", "target", target, "slot", slot+1)
	a.selectPanel(slot)
	return nil
}

// RemoveSelected stops the monitor in the selected panel and clears it.
func (a *App) RemoveSelected() {
	p := a.panels[a.selected]
	if p.handle == nil {
		return
	}
	h := p.handle
	p.handle, p.label = nil, ""
	a.opts.Book.Forget(h.Target())
	a.refresh(a.selected)

	go a.opts.Registry.Unregister(h)
	a.log.Info("monitor removed", "target", h.Target())
}

func (a *App) togglePause() {
	p := a.panels[a.selected]
	if p.handle == nil {
		return
	}
	if p.handle.Toggle() {
		a.setStatus(p.handle.Target()+" paused", false)
	} else {
		a.setStatus(p.handle.Target()+" resumed", false)
	}
	a.refresh(a.selected)
}

// SaveSelected writes the details export of the selected panel into the
// output directory and returns the file path.
func (a *App) SaveSelected() (string, error) {
	p := a.panels[a.selected]
	if p.handle == nil {
		return "", pwerrors.New(pwerrors.ErrState, "the selected panel is empty", "select a running monitor with tab or 1-9")
	}

	target := p.handle.Target()
	buf, ok := a.opts.Book.Lookup(target)
	if !ok || buf.Len() == 0 {
		return "", report.ErrNoHistory
	}

	now := a.now()
	path := filepath.Join(a.opts.OutputDir, report.DetailsFilename(target, now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create details file: %w", err)
	}
	if err := report.WriteDetails(f, target, buf.Entries(), buf.Stats(), now); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close details file: %w", err)
	}

	a.log.Info("details saved", "target", target, "path", path)
	return path, nil
}

func (a *App) slotOf(target string) int {
	for i, p := range a.panels {
		if p.handle != nil && p.handle.Target() == target {
			return i
		}
	}
	return -1
}

func (a *App) freeSlot() int {
	for i, p := range a.panels {
		if p.handle == nil {
			return i
		}
	}
	return -1
}

func (a *App) selectPanel(i int) {
	n := len(a.panels)
	if n == 0 {
		return
	}
	prev := a.selected
	a.selected = ((i % n) + n) % n
	a.refresh(prev)
	a.refresh(a.selected)
}

func (a *App) refresh(slot int) {
	p := a.panels[slot]
	if slot == a.selected {
		p.view.SetBorderColor(a.theme.Selected)
	} else {
		p.view.SetBorderColor(a.theme.Border)
	}

	if p.handle == nil {
		p.view.SetTitle(fmt.Sprintf(" %d: empty ", slot+1))
		p.view.SetText(tag(a.theme.Muted) + tview.Escape("press [a] to add a target") + "[-]")
		return
	}

	data := PanelData{
		Label:  p.label,
		Target: p.handle.Target(),
		State:  p.handle.State(),
	}
	if buf, ok := a.opts.Book.Lookup(data.Target); ok {
		data.Entries = buf.Entries()
		data.Stats = buf.Stats()
	}
	p.view.SetTitle(data.Title(slot))
	p.view.SetText(RenderPanel(a.theme, data))
	p.view.ScrollToEnd()
}

func (a *App) setStatus(msg string, isErr bool) {
	if isErr {
		a.status.SetText(tag(a.theme.Error) + tview.Escape(msg) + "[-]")
		return
	}
	a.status.SetText(msg)
}

// followLog calls queue(redraw) after writes to ring, from one goroutine
// that exits with ctx. Writes made while a redraw is pending share it.
func followLog(ctx context.Context, ring *logger.Ring, queue func(func()), redraw func()) (unhook func()) {
	dirty := make(chan struct{}, 1)
	ring.OnWrite(func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-dirty:
				queue(redraw)
			}
		}
	}()

	return func() { ring.OnWrite(nil) }
}

func (a *App) refreshLog() {
	lines := a.opts.Ring.Lines()
	for i, l := range lines {
		lines[i] = tview.Escape(l)
	}
	a.logView.SetText(strings.Join(lines, "\n"))
	a.logView.ScrollToEnd()
}

func (a *App) completeTarget(current string) []string {
	if a.opts.Catalog == nil || strings.TrimSpace(current) == "" {
		return nil
	}
	prefix := strings.ToLower(current)
	var out []string
	for _, name := range a.opts.Catalog.Names() {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, name)
		}
	}
	return out
}

func (a *App) showDashboard() {
	a.pages.SwitchToPage(pageDashboard)
	a.app.SetFocus(a.grid)
}

func (a *App) showCatalog() {
	if a.opts.Catalog == nil {
		a.setStatus("no catalog configured", true)
		return
	}
	a.reloadCatalogList()
	a.pages.SwitchToPage(pageCatalog)
	a.app.SetFocus(a.catalogList)
}

func (a *App) reloadCatalogList() {
	if a.opts.Catalog == nil {
		return
	}
	current := a.catalogList.GetCurrentItem()
	a.catalogList.Clear()
	for _, e := range a.opts.Catalog.List() {
		name := e.Name
		a.catalogList.AddItem(tview.Escape(e.Name), tview.Escape(e.Target), 0, func() {
			if err := a.StartTarget(name); err != nil {
				a.setStatus(err.Error(), true)
			}
			a.showDashboard()
		})
	}
	if current < a.catalogList.GetItemCount() {
		a.catalogList.SetCurrentItem(current)
	}
}

func (a *App) saveCatalogEntry() error {
	name := a.catalogForm.GetFormItemByLabel("Name").(*tview.InputField)
	target := a.catalogForm.GetFormItemByLabel("Target").(*tview.InputField)

	if err := ping.ValidateTarget(strings.TrimSpace(target.GetText())); err != nil {
		return err
	}
	added, err := a.opts.Catalog.Add(name.GetText(), target.GetText())
	if err != nil {
		return err
	}
	if !added {
		return pwerrors.New(pwerrors.ErrCatalog, fmt.Sprintf("%q is already in the catalog", name.GetText()), "pick another name")
	}

	name.SetText("")
	target.SetText("")
	a.reloadCatalogList()
	a.app.SetFocus(a.catalogList)
	return nil
}

func (a *App) deleteCatalogEntry() {
	if a.catalogList.GetItemCount() == 0 {
		return
	}
	entries := a.opts.Catalog.List()
	idx := a.catalogList.GetCurrentItem()
	if idx < 0 || idx >= len(entries) {
		return
	}
	if _, err := a.opts.Catalog.Remove(entries[idx].Name); err != nil {
		a.setStatus(err.Error(), true)
		return
	}
	a.reloadCatalogList()
}
