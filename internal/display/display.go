// Package display provides the terminal UI using Bubble Tea.
//
// [RunForm] collects the exam configuration. [UI] then shows the
// countdown fullscreen: the university logo, the clock in large digits, a
// progress bar and a caption of the last announcement. Other goroutines
// post captions through [UI.Caption], which is safe to call at any time.
package display

import (
	"context"
	"image"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/proctor/internal/countdown"
	"github.com/hammamikhairi/proctor/internal/logger"
)

// Clock is what the countdown screen drives. engine.Session satisfies it.
type Clock interface {
	Snapshot() countdown.Snapshot
	Toggle(ctx context.Context)
}

// UIOption configures the countdown screen.
type UIOption func(*UI)

// WithTitle sets the heading shown above the clock.
func WithTitle(course, instructor string) UIOption {
	return func(u *UI) {
		u.course = course
		u.instructor = instructor
	}
}

// WithLogo shows img beside the clock.
func WithLogo(img image.Image) UIOption {
	return func(u *UI) {
		u.logo = img
	}
}

// UI manages the countdown screen.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may call
// [UI.Caption] at any time; captions sent before Run or after it returns
// are logged only.
type UI struct {
	log        *logger.Logger
	course     string
	instructor string
	logo       image.Image
	refresh    time.Duration

	program atomic.Pointer[tea.Program]
}

// NewUI creates the countdown screen. Call Run to start.
func NewUI(log *logger.Logger, opts ...UIOption) *UI {
	u := &UI{
		log:     log,
		refresh: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// captionMsg carries an announcement into the event loop.
type captionMsg struct {
	text   string
	urgent bool
}

// Caption shows text under the clock. Thread-safe.
func (u *UI) Caption(text string, urgent bool) {
	p := u.program.Load()
	if p == nil {
		u.log.Debug("caption before screen is up: %s", text)
		return
	}
	p.Send(captionMsg{text: text, urgent: urgent})
}

// Run shows the countdown until the operator presses q or esc, or ctx is
// cancelled. Blocks.
func (u *UI) Run(ctx context.Context, clock Clock) error {
	m := newClockModel(ctx, clock, u.refresh)
	m.course = u.course
	m.instructor = u.instructor
	m.logo = u.logo

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	u.program.Store(p)
	defer u.program.Store(nil)

	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		// Cancellation is a normal way out.
		return nil
	}
	return err
}

// ── Bubble Tea model ─────────────────────────────────────────────

type clockModel struct {
	ctx     context.Context
	clock   Clock
	refresh time.Duration

	course     string
	instructor string
	logo       image.Image
	logoArt    string

	snap    countdown.Snapshot
	bar     progress.Model
	caption captionMsg
	width   int
	height  int
}

type refreshMsg time.Time

func newClockModel(ctx context.Context, clock Clock, refresh time.Duration) clockModel {
	return clockModel{
		ctx:     ctx,
		clock:   clock,
		refresh: refresh,
		snap:    clock.Snapshot(),
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		width:   80,
		height:  24,
	}
}

func (m clockModel) Init() tea.Cmd {
	return refreshCmd(m.refresh)
}

func refreshCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m clockModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeySpace {
			return m, m.toggleCmd()
		}
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "s", "p":
			return m, m.toggleCmd()
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = max(10, msg.Width-8)
		m.logoArt = RenderLogo(m.logo, m.logoCols(), m.logoRows())
		return m, nil

	case refreshMsg:
		m.snap = m.clock.Snapshot()
		return m, refreshCmd(m.refresh)

	case captionMsg:
		m.caption = msg
		return m, nil
	}
	return m, nil
}

// toggleCmd starts or pauses the clock. Toggle announces, and
// announcements send captions back into the event loop, so it must not
// run inside Update.
func (m clockModel) toggleCmd() tea.Cmd {
	clock, ctx := m.clock, m.ctx
	return func() tea.Msg {
		clock.Toggle(ctx)
		return refreshMsg(time.Now())
	}
}

func (m clockModel) logoCols() int { return max(8, m.width/4) }

func (m clockModel) logoRows() int { return max(4, m.height/3) }

func (m clockModel) View() string {
	var sections []string

	if m.logoArt != "" {
		sections = append(sections, m.logoArt, "")
	}

	title := m.course
	if m.instructor != "" {
		if title != "" {
			title += " · "
		}
		title += m.instructor
	}
	if title != "" {
		sections = append(sections, titleStyle.Render(title), "")
	}

	style := clockStyle
	switch {
	case m.snap.Expired:
		style = clockDoneStyle
	case m.snap.ThreeQuarterAnnounced:
		style = clockLateStyle
	}
	sections = append(sections, style.Render(bigText(formatClock(m.snap.Remaining))), "")
	sections = append(sections, m.bar.ViewAs(m.snap.Elapsed()), "")
	sections = append(sections, m.statusLine())

	if m.caption.text != "" {
		cs := captionStyle
		if m.caption.urgent {
			cs = urgentStyle
		}
		sections = append(sections, "", cs.Width(max(20, m.width-8)).Align(lipgloss.Center).Render(m.caption.text))
	}

	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	body += "\n\n" + secondaryStyle.Render("space start/pause · q quit")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

func (m clockModel) statusLine() string {
	switch {
	case m.snap.Expired:
		return urgentStyle.Render("TIME IS UP")
	case m.snap.Running:
		return primaryStyle.Render("running")
	case m.snap.Remaining == m.snap.Total:
		return secondaryStyle.Render("press space to start the exam")
	default:
		return secondaryStyle.Render("paused")
	}
}
