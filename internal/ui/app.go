// Package ui renders the Bubble Tea application UI.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/kpumuk/lazyscope/internal/config"
	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/render"
	"github.com/kpumuk/lazyscope/internal/selection"
	"github.com/kpumuk/lazyscope/internal/series"
	"github.com/kpumuk/lazyscope/internal/source"
	"github.com/kpumuk/lazyscope/internal/ui/components/errorpopup"
	"github.com/kpumuk/lazyscope/internal/ui/components/frame"
	"github.com/kpumuk/lazyscope/internal/ui/components/helpbar"
	"github.com/kpumuk/lazyscope/internal/ui/components/plot"
	"github.com/kpumuk/lazyscope/internal/ui/components/statusbar"
	"github.com/kpumuk/lazyscope/internal/ui/components/table"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs/confirm"
	"github.com/kpumuk/lazyscope/internal/ui/dialogs/inspect"
	"github.com/kpumuk/lazyscope/internal/ui/format"
	"github.com/kpumuk/lazyscope/internal/ui/layer"
	"github.com/kpumuk/lazyscope/internal/ui/theme"
)

const clearTarget = "clear"

// storeChangedMsg is sent when the source appended or cleared samples.
type storeChangedMsg struct{}

// renderReplyMsg carries a worker reply back into the UI loop.
type renderReplyMsg struct {
	reply render.Reply
}

// sourceErrorMsg reports a runtime failure of the source.
type sourceErrorMsg struct {
	err error
}

// sourceStateMsg reports the outcome of a connect or disconnect.
type sourceStateMsg struct {
	connected bool
	err       error
}

// gesture is the mouse interaction in progress.
type gesture int

const (
	gestureNone gesture = iota
	gesturePan
	gestureSelect
)

// App is the main application model.
type App struct {
	keys     KeyMap
	styles   theme.Styles
	cfg      *config.Config
	ctx      context.Context
	logger   *slog.Logger
	tracker  *devtools.Tracker
	location *time.Location

	src      source.Source
	store    *series.Store
	worker   *render.Worker
	graph    *graph.Graph
	renderer *render.Renderer
	selector *selection.Selector
	survey   selection.Survey

	frame    graph.Frame
	analysis *selection.Result
	relative bool
	paused   bool
	readout  string

	gesture  gesture
	dragCol  int
	dragRow  int
	width    int
	height   int
	ready    bool
	status   statusbar.Model
	helpbar  helpbar.Model
	plot     plot.Model
	plotBox  frame.Model
	stats    table.Model
	statsBox frame.Model

	errorPopup errorpopup.Model
	dialogs    dialogs.Stack
}

// Option configures the App.
type Option func(*App)

// WithConfig sets the settings. Without it config.Default is used.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) {
		if cfg != nil {
			a.cfg = cfg
		}
	}
}

// WithContext sets the context sources are connected with.
func WithContext(ctx context.Context) Option {
	return func(a *App) { a.ctx = ctx }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTracker sets the diagnostics tracker shown in the devtools log.
func WithTracker(t *devtools.Tracker) Option {
	return func(a *App) { a.tracker = t }
}

// WithWorker renders paths on w. Without it rendering is synchronous.
func WithWorker(w *render.Worker) Option {
	return func(a *App) { a.worker = w }
}

// WithLocation sets the zone absolute time labels are shown in.
func WithLocation(loc *time.Location) Option {
	return func(a *App) { a.location = loc }
}

// New creates a new App reading from src.
func New(src source.Source, opts ...Option) App {
	a := App{
		keys:    DefaultKeyMap(),
		styles:  theme.NewStyles(),
		cfg:     config.Default(),
		ctx:     context.Background(),
		logger:  slog.New(slog.DiscardHandler),
		src:     src,
		store:   src.Store(),
		dialogs: dialogs.NewStack(),
	}
	for _, opt := range opts {
		opt(&a)
	}
	a.logger = a.logger.With("component", "ui")
	a.relative = a.cfg.Render.RelativeTime

	a.graph = graph.New(
		graph.NewResolver(a.cfg.ResolverOptions()...),
		graph.NewZoom(a.cfg.ZoomOptions()...),
	)
	renderOpts := []render.Option{
		render.WithColors(a.channelColor),
		render.WithLogger(a.logger),
		render.WithTracker(a.tracker),
	}
	if a.worker != nil {
		renderOpts = append(renderOpts, render.WithBackend(a.worker))
	}
	a.renderer = render.NewRenderer(renderOpts...)
	a.selector = selection.New(selection.WithThreshold(a.cfg.Selection.Threshold))

	styles := a.styles
	a.status = statusbar.New(statusbar.WithStyles(statusbar.Styles{
		Bar:   styles.StatusBar,
		Fill:  styles.StatusFill,
		Label: styles.StatusLabel,
		Value: styles.StatusValue,
		Warn:  styles.StatusWarn,
	}))
	a.helpbar = helpbar.New(
		helpbar.WithStyles(helpbar.Styles{
			Bar:   styles.HelpBar,
			Key:   styles.HelpKey,
			Item:  styles.HelpItem,
			Brand: styles.HelpQuit,
		}),
		helpbar.WithBindings(a.keys.ShortHelp()),
		helpbar.WithBrand("lazyscope"),
	)
	a.plot = plot.New(
		plot.WithStyles(plot.Styles{
			Label:     styles.PlotLabel,
			Selection: styles.PlotSelection,
			Edge:      styles.PlotEdge,
			Cursor:    styles.PlotCursor,
			Muted:     styles.PlotMuted,
			Marker:    styles.PlotEdge.Bold(true),
		}),
		plot.WithEmptyMessage("Waiting for samples..."),
	)
	boxStyles := frame.Styles{
		Focused: frame.StyleState{Title: styles.ViewTitle, Meta: styles.ViewMuted, Border: styles.FocusBorder},
		Blurred: frame.StyleState{Title: styles.ViewTitle, Meta: styles.ViewMuted, Border: styles.BorderStyle},
	}
	a.plotBox = frame.New(
		frame.WithStyles(boxStyles),
		frame.WithTitle(src.Name()),
		frame.WithPadding(0),
		frame.WithFocused(true),
	)
	a.stats = newStatisticsTable(styles)
	a.statsBox = frame.New(
		frame.WithStyles(boxStyles),
		frame.WithTitle("Statistics"),
		frame.WithPadding(1),
	)
	a.errorPopup = errorpopup.New(
		errorpopup.WithStyles(errorpopup.Styles{
			Title:   styles.ErrorTitle,
			Message: styles.ViewText,
			Hint:    styles.ViewMuted,
			Border:  styles.ErrorBorder,
		}),
	)
	a.refresh()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.connectCmd(),
		a.waitForChange(),
		a.waitForSourceError(),
	}
	if a.worker != nil {
		cmds = append(cmds, a.waitForReply())
	}
	return tea.Batch(cmds...)
}

func (a App) connectCmd() tea.Cmd {
	src, ctx, logger := a.src, a.ctx, a.logger
	return func() tea.Msg {
		if err := src.Connect(ctx); err != nil {
			logger.Error("connect source", "source", src.Name(), "error", err)
			return sourceStateMsg{err: fmt.Errorf("connect %s: %w", src.Name(), err)}
		}
		return sourceStateMsg{connected: true}
	}
}

func (a App) disconnectCmd() tea.Cmd {
	src := a.src
	return func() tea.Msg {
		src.Disconnect()
		return sourceStateMsg{}
	}
}

func (a App) waitForChange() tea.Cmd {
	ctx, changed := a.ctx, a.store.Changed()
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
			return storeChangedMsg{}
		}
	}
}

func (a App) waitForReply() tea.Cmd {
	ctx, replies := a.ctx, a.worker.Replies()
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case rep := <-replies:
			return renderReplyMsg{reply: rep}
		}
	}
}

func (a App) waitForSourceError() tea.Cmd {
	ctx, errs := a.ctx, a.src.Errors()
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			return sourceErrorMsg{err: err}
		}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case storeChangedMsg:
		a.refresh()
		cmds = append(cmds, a.waitForChange())

	case renderReplyMsg:
		a.renderer.Receive(msg.reply)
		a.plot.SetPaths(a.renderer.Paths())
		cmds = append(cmds, a.waitForReply())

	case sourceErrorMsg:
		a.errorPopup.Push(msg.err.Error())
		cmds = append(cmds, a.waitForSourceError())

	case sourceStateMsg:
		if msg.err != nil {
			a.paused = true
			a.errorPopup.Push(msg.err.Error())
		} else {
			a.paused = !msg.connected
		}

	case confirm.ActionMsg:
		if msg.Confirmed && msg.Target == clearTarget {
			a.clearData()
		}

	case inspect.CopiedMsg:
		if msg.Err != nil {
			a.errorPopup.Push(msg.Err.Error())
		}

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.ready = true
		a.resize()
		var cmd tea.Cmd
		a.dialogs, cmd = a.dialogs.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyPressMsg:
		if key.Matches(msg, a.keys.Quit) && (msg.String() == "ctrl+c" || !a.dialogs.HasDialogs()) {
			return a, tea.Quit
		}
		if a.dialogs.HasDialogs() {
			var cmd tea.Cmd
			a.dialogs, cmd = a.dialogs.Update(msg)
			return a, cmd
		}
		cmds = append(cmds, a.handleKey(msg))

	case tea.MouseMsg:
		if !a.dialogs.HasDialogs() {
			a.handleMouse(msg)
		}

	default:
		var cmd tea.Cmd
		a.dialogs, cmd = a.dialogs.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.syncStatus()
	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	vp := a.graph.Viewport()
	switch {
	case key.Matches(msg, a.keys.Select):
		if a.selector.Toggle() && a.survey.Enabled() {
			a.survey.SetEnabled(false)
			a.plot.SetMarkers(nil)
		}
		a.gesture = gestureNone
		a.analysis = nil
		a.plot.SetSelection(nil)
		a.updateStatistics()

	case key.Matches(msg, a.keys.Survey):
		if a.survey.Toggle() && a.selector.Enabled() {
			a.selector.SetEnabled(false)
			a.analysis = nil
			a.plot.SetSelection(nil)
			a.updateStatistics()
		}
		a.gesture = gestureNone
		a.plot.SetMarkers(a.survey.Points())

	case key.Matches(msg, a.keys.ZoomMode):
		a.graph.Zoom().CycleMode()

	case key.Matches(msg, a.keys.ResetZoom):
		a.graph.ResetZoom()
		a.recompute()

	case key.Matches(msg, a.keys.ZoomIn):
		a.zoomAt(float64(vp.Width)/2, float64(vp.Height)/2, a.cfg.Zoom.Step)

	case key.Matches(msg, a.keys.ZoomOut):
		a.zoomAt(float64(vp.Width)/2, float64(vp.Height)/2, 1/a.cfg.Zoom.Step)

	case key.Matches(msg, a.keys.PanLeft):
		a.pan(float64(vp.Width)/10, 0)

	case key.Matches(msg, a.keys.PanRight):
		a.pan(-float64(vp.Width)/10, 0)

	case key.Matches(msg, a.keys.PanUp):
		a.pan(0, float64(vp.Height)/10)

	case key.Matches(msg, a.keys.PanDown):
		a.pan(0, -float64(vp.Height)/10)

	case key.Matches(msg, a.keys.TimeFormat):
		a.relative = !a.relative
		a.plot.SetXFormatter(a.axisFormatter())
		a.updateStatistics()

	case key.Matches(msg, a.keys.Clear):
		return a.openConfirmClear()

	case key.Matches(msg, a.keys.Pause):
		a.paused = !a.paused
		if a.paused {
			return a.disconnectCmd()
		}
		return a.connectCmd()

	case key.Matches(msg, a.keys.Inspect):
		return a.openInspect()

	case key.Matches(msg, a.keys.DevTools):
		return a.openDevTools()

	case key.Matches(msg, a.keys.Help):
		return a.openHelp()

	case key.Matches(msg, a.keys.Dismiss):
		switch {
		case a.errorPopup.HasError():
			a.errorPopup.Dismiss()
		case a.selector.Rect() != nil:
			a.selector.Clear()
			a.analysis = nil
			a.plot.SetSelection(nil)
			a.updateStatistics()
		}
	}
	return nil
}

// handleMouse maps terminal cells onto engine pixels of the plot area.
// Drags pan the view, or select a time range in selection mode.
func (a *App) handleMouse(msg tea.MouseMsg) {
	m := msg.Mouse()
	col, row, inside := a.plotCell(m.X, m.Y)
	px, py := plot.Dot(col, row)

	switch msg.(type) {
	case tea.MouseWheelMsg:
		if !inside {
			return
		}
		switch m.Button {
		case tea.MouseWheelUp:
			a.zoomAt(px, py, a.cfg.Zoom.Step)
		case tea.MouseWheelDown:
			a.zoomAt(px, py, 1/a.cfg.Zoom.Step)
		}

	case tea.MouseClickMsg:
		if !inside || m.Button != tea.MouseLeft {
			return
		}
		if a.survey.Enabled() {
			t, v := a.frame.Live.Invert(px, py)
			a.survey.Click(selection.Point{T: t, V: v})
			a.plot.SetMarkers(a.survey.Points())
			return
		}
		a.dragCol, a.dragRow = col, row
		if a.selector.Start(px, py) {
			a.gesture = gestureSelect
		} else {
			a.gesture = gesturePan
		}

	case tea.MouseMotionMsg:
		a.updateCursor(col, row, inside)
		switch a.gesture {
		case gesturePan:
			a.pan(float64((col-a.dragCol)*plot.DotsX), float64((row-a.dragRow)*plot.DotsY))
			a.dragCol, a.dragRow = col, row
		case gestureSelect:
			a.selector.Move(px, py)
			a.plot.SetSelection(a.selector.Rect())
		}

	case tea.MouseReleaseMsg:
		if a.gesture == gestureSelect {
			a.selector.Move(px, py)
			if a.selector.Finish() {
				a.analyze()
				a.logger.Debug("selection analyzed",
					"start", a.analysis.Start, "end", a.analysis.End,
					"channels", len(a.analysis.Channels), "samples", a.analysis.TotalSamples)
			} else {
				a.analysis = nil
				a.updateStatistics()
			}
			a.plot.SetSelection(a.selector.Rect())
		}
		a.gesture = gestureNone
	}
}

// plotCell converts screen coordinates to a plot cell. Cells outside the
// drawing area are clamped to its edge and reported as outside.
func (a App) plotCell(x, y int) (col, row int, inside bool) {
	col, row, inside = a.plot.Cell(x-1, y-a.status.Height()-1)
	cols, rows := a.plot.PlotSize()
	return max(min(col, cols-1), 0), max(min(row, rows-1), 0), inside
}

func (a *App) updateCursor(col, row int, inside bool) {
	if !inside || a.frame.Snapshot.Empty() {
		a.plot.HideCursor()
		a.readout = ""
		return
	}
	a.plot.SetCursor(col)
	ms, v := a.frame.Live.Invert(plot.Dot(col, row))
	a.readout = format.AxisTime(ms, a.origin(), a.relative, time.Millisecond, a.location) + " " + format.Value(v)
}

func (a *App) zoomAt(px, py, ratio float64) {
	a.graph.Zoom().ZoomAt(px, py, ratio)
	a.recompute()
}

func (a *App) pan(dx, dy float64) {
	a.graph.Zoom().Pan(dx, dy)
	a.recompute()
}

// refresh takes a new snapshot from the store and recomputes the frame.
func (a *App) refresh() {
	a.graph.SetSnapshot(a.store.Snapshot())
	a.recompute()
}

// recompute runs one graph pass and hands it to the renderer. With a
// worker the geometry arrives later as a renderReplyMsg.
func (a *App) recompute() {
	a.frame = a.graph.Pass()
	a.renderer.Render(a.frame)
	a.plot.SetScales(a.frame.Live)
	a.plot.SetXFormatter(a.axisFormatter())
	a.plot.SetPaths(a.renderer.Paths())
	// A committed selection keeps its pixels, so zoom, pan and new
	// samples change the time range it covers.
	if a.analysis != nil && a.selector.State() == selection.Idle {
		a.analyze()
	}
}

// analyze recomputes the statistics of the committed selection against
// the current frame.
func (a *App) analyze() {
	rect := a.selector.Rect()
	if rect == nil {
		a.analysis = nil
	} else {
		res := selection.Analyze(*rect, a.frame.Live.X, a.frame.Snapshot, a.channelName)
		a.analysis = &res
	}
	a.updateStatistics()
}

func (a *App) clearData() {
	a.src.ClearData()
	a.renderer.Reset()
	a.selector.Clear()
	a.analysis = nil
	a.plot.SetSelection(nil)
	a.survey.Reset()
	a.plot.SetMarkers(nil)
	a.graph.SetSource(a.store.Snapshot())
	a.recompute()
	a.updateStatistics()
	a.logger.Info("data cleared", "source", a.src.Name())
}

// origin is the first sample time, the zero of the relative time axis.
func (a App) origin() float64 {
	if a.frame.Snapshot.Empty() {
		return 0
	}
	return a.frame.Snapshot.Bounds.MinTimestamp
}

func (a App) axisFormatter() plot.XFormatter {
	origin, relative, loc := a.origin(), a.relative, a.location
	return func(ms float64, step time.Duration) string {
		return format.AxisTime(ms, origin, relative, step, loc)
	}
}

// channelName names a channel after its device. Sources without a device
// table keep their channel ids.
func (a App) channelName(id string) string {
	devices := a.src.Devices()
	if len(devices) == 0 {
		return id
	}
	if d, ok := source.Lookup(devices, id); ok {
		return source.DeviceName(d)
	}
	return source.UnknownDeviceName(id)
}

func (a App) channelColor(id string) string {
	if d, ok := source.Lookup(a.src.Devices(), id); ok && d.HasColor {
		return d.Color.Hex()
	}
	return ""
}

func (a *App) resize() {
	a.status.SetWidth(a.width)
	a.helpbar.SetWidth(a.width)

	statsHeight := a.statisticsHeight()
	bodyHeight := max(a.height-a.status.Height()-a.helpbar.Height(), 0)
	plotHeight := max(bodyHeight-statsHeight, 3)

	a.plotBox.SetSize(a.width, plotHeight)
	a.plot.SetSize(a.plotBox.InnerSize())
	a.statsBox.SetSize(a.width, statsHeight)
	a.stats.SetSize(a.statsBox.InnerSize())
	a.errorPopup.SetSize(a.width, bodyHeight)

	a.graph.SetViewport(a.plot.Viewport())
	a.recompute()
}

func (a *App) syncStatus() {
	snap := a.frame.Snapshot
	zoom := a.graph.Zoom()
	a.status.SetData(statusbar.Data{
		Source:    a.src.Name(),
		Connected: a.src.Connected(),
		Paused:    a.paused,
		Channels:  len(snap.Order),
		Samples:   snap.Len(),
		Dropped:   a.store.Dropped(),
		ZoomMode:  zoom.Mode().String(),
		ScaleX:    zoom.X().Scale,
		ScaleY:    zoom.Y().Scale,
		Selecting: a.selector.Enabled(),
		Surveying: a.survey.Enabled(),
		Async:     a.renderer.Async(),
		InFlight:  a.renderer.InFlight(),
		Readout:   a.readout,
	})
}

// View implements tea.Model.
func (a App) View() tea.View {
	var v tea.View
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion

	if !a.ready {
		v.SetContent("Initializing...")
		return v
	}
	v.SetContent(a.screen())
	return v
}

// screen lays out the status bar, plot, statistics and help bar, with
// the error popup and dialogs drawn on top.
func (a App) screen() string {
	plotBox := a.plotBox
	plotBox.SetMeta(a.plotMeta())
	plotBox.SetFooter(a.plotFooter())
	plotBox.SetContent(a.plot.View())

	statsBox := a.statsBox
	statsBox.SetMeta(a.statisticsMeta())
	statsBox.SetContent(a.stats.View())

	body := lipgloss.JoinVertical(lipgloss.Left, plotBox.View(), statsBox.View())
	if a.errorPopup.HasError() {
		body = layer.Center(body, a.errorPopup.View(), a.width, a.height-a.status.Height()-a.helpbar.Height())
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		a.status.View(),
		body,
		a.helpbar.View(),
	)
	return a.dialogs.Render(content)
}

func (a App) plotMeta() string {
	zoom := a.graph.Zoom()
	return fmt.Sprintf("zoom %s %.2fx %.2fx", zoom.Mode(), zoom.X().Scale, zoom.Y().Scale)
}

func (a App) plotFooter() string {
	switch {
	case a.renderer.Err() != nil:
		return "render failed"
	case a.survey.Enabled():
		if d, ok := a.survey.Delta(); ok {
			return fmt.Sprintf("Δt %s ms  Δy %s",
				strconv.FormatFloat(d.Dt, 'f', 0, 64), strconv.FormatFloat(d.Dy, 'f', 2, 64))
		}
		return "click two points to measure"
	case a.selector.Enabled():
		return "drag to select"
	case a.paused:
		return "paused"
	}
	return ""
}

// Selector returns the selection state, for tests and embedding.
func (a App) Selector() *selection.Selector { return a.selector }

// Graph returns the scale pipeline.
func (a App) Graph() *graph.Graph { return a.graph }

// Analysis returns the last selection analysis, or nil.
func (a App) Analysis() *selection.Result { return a.analysis }
