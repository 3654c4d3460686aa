package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/zhixue/internal/catalog"
	"github.com/desertthunder/zhixue/internal/course"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/notify"
	"github.com/desertthunder/zhixue/internal/player"
	"github.com/desertthunder/zhixue/internal/progress"
	"github.com/desertthunder/zhixue/internal/shared"
)

// DefaultFrameRate is how often the player view polls the controller.
const DefaultFrameRate = 250 * time.Millisecond

// ViewState represents the current view in the TUI.
type ViewState int

const (
	CourseListView ViewState = iota
	PlayerView
)

// Options holds the dependencies of a [Model].
type Options struct {
	Catalog      *catalog.Catalog
	Store        *progress.Store
	Calculator   progress.Calculator
	Center       *notify.Center // optional
	Logger       *log.Logger
	SaveInterval time.Duration       // controller save tick
	FrameRate    time.Duration       // defaults to DefaultFrameRate
	SeekStep     float64             // seconds per ←/→, defaults to 10
	Volume       int                 // initial volume
	NewMedia     func() player.Media // defaults to a ClockMedia
}

// Result summarizes a learning session once the program exits.
type Result struct {
	CourseID         string
	StartProgress    int
	EndProgress      int
	LessonsCompleted int
	Err              error
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	opts       Options
	view       ViewState
	width      int
	height     int
	courseList list.Model
	lessonList list.Model
	course     *models.Course
	ctl        *player.Controller
	events     chan player.Event
	stopRun    context.CancelFunc
	runDone    chan struct{}
	notices    <-chan notify.Notification
	unsub      func()
	notice     string
	result     Result
	err        error
	help       help.Model
	keys       keyMap
}

// NewModel creates a TUI model. A non-empty courseID opens that course directly;
// otherwise the model starts on the course list.
func NewModel(ctx context.Context, opts Options, courseID string) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = DefaultFrameRate
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = 10
	}
	if opts.NewMedia == nil {
		opts.NewMedia = func() player.Media { return player.NewClockMedia(nil) }
	}

	m := &Model{
		ctx:  ctx,
		opts: opts,
		view: CourseListView,
		help: help.New(),
		keys: newKeyMap(),
	}

	if courseID != "" {
		c, err := opts.Catalog.Get(courseID)
		if err != nil {
			m.err = err
		} else {
			m.course = c
			m.view = PlayerView
		}
	}
	m.courseList = m.buildCourseList()
	m.lessonList = newLessonList()
	return m
}

// Init subscribes to notifications and opens the preselected course, if any.
// An unread notification published before the model started becomes the initial notice.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.opts.Center != nil {
		if n, ok := m.opts.Center.Latest(); ok && !n.Read {
			m.setNotice(n)
		}
		m.notices, m.unsub = m.opts.Center.Subscribe(8)
		cmds = append(cmds, m.waitForNotification())
	}
	if m.course != nil && m.err == nil {
		cmds = append(cmds, m.openCourse(m.course))
	}
	return tea.Batch(cmds...)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.courseList.SetSize(msg.Width-4, msg.Height-6)
		m.lessonList.SetSize(max(msg.Width/2-4, 20), msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			if key.Matches(msg, m.keys.quit) {
				return m, m.quit()
			}
			return m, nil
		}
		switch m.view {
		case CourseListView:
			return m.handleCourseListKeys(msg)
		case PlayerView:
			return m.handlePlayerKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgCourseOpened:
		data := msg.data.(courseOpened)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.course = data.course
		m.ctl = data.ctl
		m.events = data.events
		m.view = PlayerView
		m.result = Result{CourseID: data.course.ID, StartProgress: data.ctl.Snapshot().Progress}
		m.refreshLessons()

		runCtx, cancel := context.WithCancel(m.ctx)
		m.stopRun = cancel
		m.runDone = make(chan struct{})
		go func(ctl *player.Controller, done chan struct{}) {
			defer close(done)
			_ = ctl.Run(runCtx)
		}(m.ctl, m.runDone)

		return m, tea.Batch(m.frame(), m.waitForEvent())

	case MsgFrame:
		if m.ctl == nil {
			return m, nil
		}
		if err := m.ctl.TimeUpdate(m.ctx); err != nil {
			m.opts.Logger.Warn("time update failed", "err", err)
		}
		return m, m.frame()

	case MsgPlayerEvent:
		m.handleEvent(msg.data.(player.Event))
		return m, m.waitForEvent()

	case MsgNotification:
		m.setNotice(msg.data.(notify.Notification))
		return m, m.waitForNotification()

	case MsgEventsClosed:
		return m, nil
	}
	return m, nil
}

func (m *Model) setNotice(n notify.Notification) {
	m.notice = n.Title
	if n.Message != "" {
		m.notice = fmt.Sprintf("%s: %s", n.Title, n.Message)
	}
}

func (m *Model) handleEvent(e player.Event) {
	switch e.Kind {
	case player.LessonChanged, player.ProgressSaved:
		m.refreshLessons()
	case player.LessonCompleted:
		m.result.LessonsCompleted++
		m.refreshLessons()
	}

	if n, ok := player.Notification(e); ok && m.opts.Center != nil {
		if _, err := m.opts.Center.Publish(n); err != nil {
			m.opts.Logger.Debug("notification dropped", "err", err)
		}
	}
}

func (m *Model) handleCourseListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.courseList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.courseList, cmd = m.courseList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.courseList.SelectedItem().(courseItem); ok {
			return m, m.openCourse(it.course)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.courseList, cmd = m.courseList.Update(msg)
	return m, cmd
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, m.quit()
	}
	if m.ctl == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.toggle):
		if err := m.ctl.Toggle(m.ctx); err != nil {
			m.opts.Logger.Warn("toggle failed", "err", err)
		}
	case key.Matches(msg, m.keys.back):
		m.ctl.SeekBy(-m.opts.SeekStep)
	case key.Matches(msg, m.keys.forward):
		m.ctl.SeekBy(m.opts.SeekStep)
	case key.Matches(msg, m.keys.volUp):
		m.ctl.SetVolume(m.ctl.Status().Volume + 10)
	case key.Matches(msg, m.keys.volDown):
		m.ctl.SetVolume(m.ctl.Status().Volume - 10)
	case key.Matches(msg, m.keys.next):
		if ok, err := m.ctl.Next(m.ctx); err != nil {
			m.opts.Logger.Warn("next lesson failed", "err", err)
		} else if !ok {
			m.notice = "Already on the last lesson"
		}
	case key.Matches(msg, m.keys.enter):
		if it, ok := m.lessonList.SelectedItem().(lessonItem); ok {
			if err := m.ctl.SelectLesson(m.ctx, it.pos); err != nil {
				m.notice = err.Error()
			}
		}
	case key.Matches(msg, m.keys.up, m.keys.down):
		var cmd tea.Cmd
		m.lessonList, cmd = m.lessonList.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case CourseListView:
		m.courseList, cmd = m.courseList.Update(msg)
	case PlayerView:
		m.lessonList, cmd = m.lessonList.Update(msg)
	}
	return m, cmd
}

// quit stops the save ticker, saves once and exits.
func (m *Model) quit() tea.Cmd {
	m.Close()
	return tea.Quit
}

// Close stops background work and writes a final save. It is safe to call more than once.
func (m *Model) Close() {
	if m.stopRun != nil {
		m.stopRun()
		<-m.runDone
		m.stopRun = nil
	}
	if m.ctl != nil {
		if err := m.ctl.Pause(m.ctx); err != nil {
			m.result.Err = err
		}
		m.result.EndProgress = m.ctl.Snapshot().Progress
	}
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

// Result returns the session summary. It is complete after the program exits.
func (m *Model) Result() Result {
	r := m.result
	if r.Err == nil {
		r.Err = m.err
	}
	return r
}

func (m *Model) openCourse(c *models.Course) tea.Cmd {
	opts := m.opts
	ctx := m.ctx
	return func() tea.Msg {
		events := make(chan player.Event, 64)
		ctl := player.NewController(player.ControllerOpts{
			Course:     c,
			Store:      opts.Store,
			Media:      opts.NewMedia(),
			Calculator: opts.Calculator,
			Logger:     opts.Logger,
			Interval:   opts.SaveInterval,
			Events:     events,
			Volume:     opts.Volume,
		})
		err := ctl.Open(ctx)
		return courseOpenedMsg(c, ctl, events, err)
	}
}

func (m *Model) frame() tea.Cmd {
	return tea.Tick(m.opts.FrameRate, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m *Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg()
		}
		return playerEventMsg(e)
	}
}

func (m *Model) waitForNotification() tea.Cmd {
	notices := m.notices
	return func() tea.Msg {
		n, ok := <-notices
		if !ok {
			return eventsClosedMsg()
		}
		return notificationMsg(n)
	}
}

func (m *Model) buildCourseList() list.Model {
	courses := m.opts.Catalog.List()
	items := make([]list.Item, len(courses))
	for i, c := range courses {
		p := m.opts.Store.Load(m.ctx, c.ID)
		items[i] = courseItem{course: c, progress: m.opts.Calculator.Overall(c, p.LessonProgress)}
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Courses"
	l.SetShowHelp(false)
	return l
}

func newLessonList() list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Lessons"
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	return l
}

// refreshLessons rebuilds the outline from the controller's current state and
// moves the cursor to the current lesson.
func (m *Model) refreshLessons() {
	if m.ctl == nil {
		return
	}
	snap := m.ctl.Snapshot()
	current := snap.Position()

	items := []list.Item{}
	selected := 0
	course.Lessons(m.course, func(pos models.Position, l *models.Lesson) {
		elapsed := snap.Elapsed(pos)
		if pos == current {
			selected = len(items)
		}
		items = append(items, lessonItem{
			pos:      pos,
			chapter:  m.course.Chapters[pos.Chapter].Title,
			lesson:   *l,
			elapsed:  elapsed,
			complete: m.opts.Calculator.IsComplete(l, elapsed),
			current:  pos == current,
		})
	})
	m.lessonList.SetItems(items)
	m.lessonList.Select(selected)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case CourseListView:
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.up, m.keys.down, m.keys.enter, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", m.courseList.View(), helpView)
	case PlayerView:
		return m.renderPlayer()
	default:
		return ""
	}
}

func (m *Model) renderPlayer() string {
	if m.ctl == nil {
		return styles.help.Render("Loading course...")
	}
	st := m.ctl.Status()

	title := styles.title.Render(m.course.Title)
	overall := fmt.Sprintf("Course %s %d%%", shared.ProgressBar(st.Progress, 24), st.Progress)

	var b strings.Builder
	if st.Lesson != nil {
		fmt.Fprintf(&b, "%s\n", styles.ok.Render(st.Lesson.Title))
		fmt.Fprintf(&b, "%s\n\n", styles.help.Render(m.course.Chapters[st.Position.Chapter].Title))
	}

	state := "⏸"
	if st.Playing {
		state = "▶"
	}
	pct := 0
	if st.Duration > 0 {
		pct = int(100 * st.Elapsed / st.Duration)
	}
	fmt.Fprintf(&b, "%s %s %s / %s\n", state, shared.ProgressBar(pct, 30),
		shared.FormatDuration(int(st.Elapsed)), shared.FormatDuration(int(st.Duration)))
	fmt.Fprintf(&b, "%s\n", styles.As(fmt.Sprintf("volume %d%%", st.Volume), lipgloss.Color("#626262")))
	if st.Finished {
		fmt.Fprintf(&b, "\n%s\n", styles.ok.Render("✓ Course complete"))
	}

	surface := styles.panel.Render(b.String())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.lessonList.View(), surface)

	notice := ""
	if m.notice != "" {
		notice = styles.warn.Render(m.notice)
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s", title, overall, body, notice, m.help.View(m.keys))
}
