package display

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/proctor/internal/domain"
)

// Validator checks a configuration before the form closes. Engine.Validate
// satisfies it.
type Validator func(domain.ExamConfig) error

// Form field indexes, in tab order.
const (
	fieldCourse = iota
	fieldInstructor
	fieldHours
	fieldMinutes
	fieldRules
	fieldColumn
	fieldLogo
	fieldReminders
	fieldLeave
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Course",
	"Instructor",
	"Hours",
	"Minutes",
	"Academic rules (.xlsx/.csv)",
	"Rules column",
	"University logo (PNG or JPEG)",
	"Spoken reminders",
	"Allow leaving at half time",
}

const labelWidth = 31

// formModel is the exam setup form. Text fields use bubbles/textinput;
// the two booleans are toggled with space.
type formModel struct {
	inputs    [fieldLogo + 1]textinput.Model
	reminders bool
	leave     bool

	focus     int
	err       string
	validate  Validator
	submitted bool
	cancelled bool
	result    domain.ExamConfig
	width     int
}

func newFormModel(initial domain.ExamConfig, validate Validator) formModel {
	m := formModel{
		reminders: initial.RemindersEnabled,
		leave:     initial.HalfTimeLeaveAllowed,
		validate:  validate,
		width:     80,
	}

	values := [fieldLogo + 1]string{
		fieldCourse:     initial.Course,
		fieldInstructor: initial.Instructor,
		fieldHours:      strconv.Itoa(initial.Hours),
		fieldMinutes:    strconv.Itoa(initial.Minutes),
		fieldRules:      initial.RulesPath,
		fieldColumn:     initial.Column(),
		fieldLogo:       initial.LogoPath,
	}
	placeholders := [fieldLogo + 1]string{
		fieldCourse:     "e.g. Linear Algebra",
		fieldInstructor: "e.g. Dr. Noor",
		fieldHours:      "0-23",
		fieldMinutes:    "0-59",
		fieldRules:      "path/to/rules.xlsx",
		fieldColumn:     domain.DefaultRulesColumn,
		fieldLogo:       "path/to/logo.png",
	}

	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = placeholders[i]
		ti.SetValue(values[i])
		ti.CharLimit = 256
		ti.Width = 40
		if i == fieldHours || i == fieldMinutes {
			ti.CharLimit = 2
			ti.Width = 4
		}
		m.inputs[i] = ti
	}
	m.inputs[fieldCourse].Focus()
	return m
}

func (m formModel) Init() tea.Cmd { return textinput.Blink }

func (m formModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m.moveFocus(1), nil
		case tea.KeyShiftTab, tea.KeyUp:
			return m.moveFocus(-1), nil
		case tea.KeyCtrlS:
			return m.submit()
		case tea.KeyEnter:
			if m.focus == fieldCount-1 {
				return m.submit()
			}
			return m.moveFocus(1), nil
		case tea.KeySpace:
			if m.toggle() {
				return m, nil
			}
		}
	}

	if m.focus <= fieldLogo {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// toggle flips the focused boolean. Returns false when a text field has
// focus so the space reaches the input.
func (m *formModel) toggle() bool {
	switch m.focus {
	case fieldReminders:
		m.reminders = !m.reminders
	case fieldLeave:
		m.leave = !m.leave
	default:
		return false
	}
	return true
}

func (m formModel) moveFocus(delta int) formModel {
	if m.focus <= fieldLogo {
		m.inputs[m.focus].Blur()
	}
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	if m.focus <= fieldLogo {
		m.inputs[m.focus].Focus()
	}
	return m
}

// config reads the current field values. Hours and minutes must be whole
// numbers; range checks are left to the validator.
func (m formModel) config() (domain.ExamConfig, error) {
	hours, err := parseNumber(m.inputs[fieldHours].Value())
	if err != nil {
		return domain.ExamConfig{}, fmt.Errorf("%w: hours %v", domain.ErrInvalidDuration, err)
	}
	minutes, err := parseNumber(m.inputs[fieldMinutes].Value())
	if err != nil {
		return domain.ExamConfig{}, fmt.Errorf("%w: minutes %v", domain.ErrInvalidDuration, err)
	}
	return domain.ExamConfig{
		Course:               strings.TrimSpace(m.inputs[fieldCourse].Value()),
		Instructor:           strings.TrimSpace(m.inputs[fieldInstructor].Value()),
		Hours:                hours,
		Minutes:              minutes,
		RulesPath:            expandPath(m.inputs[fieldRules].Value()),
		RulesColumn:          strings.TrimSpace(m.inputs[fieldColumn].Value()),
		LogoPath:             expandPath(m.inputs[fieldLogo].Value()),
		RemindersEnabled:     m.reminders,
		HalfTimeLeaveAllowed: m.leave,
	}, nil
}

func parseNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (m formModel) submit() (tea.Model, tea.Cmd) {
	cfg, err := m.config()
	if err == nil && m.validate != nil {
		err = m.validate(cfg)
	}
	if err != nil {
		m.err = formError(err)
		return m, nil
	}
	m.err = ""
	m.result = cfg
	m.submitted = true
	return m, tea.Quit
}

// formError turns validation failures into the message shown under the form.
func formError(err error) string {
	if errors.Is(err, domain.ErrMissingRules) || errors.Is(err, domain.ErrMissingLogo) {
		return "Please upload both academic rules and university logo before starting the timer!!! (" + err.Error() + ")"
	}
	return err.Error()
}

// expandPath tidies a pasted path: surrounding quotes from drag-and-drop
// are removed and a leading ~ is expanded.
func expandPath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.Trim(p, `"'`)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (m formModel) View() string {
	var b strings.Builder
	b.WriteString(RenderBanner(m.width))
	b.WriteByte('\n')
	b.WriteString(titleStyle.Render("  Exam setup"))
	b.WriteString("\n\n")

	for i := 0; i < fieldCount; i++ {
		label := fmt.Sprintf("%-*s", labelWidth, fieldLabels[i])
		if i == m.focus {
			label = focusedLabelStyle.Render("> " + label)
		} else {
			label = labelStyle.Render("  " + label)
		}

		var value string
		switch i {
		case fieldReminders:
			value = renderToggle(m.reminders)
		case fieldLeave:
			value = renderToggle(m.leave)
		default:
			value = m.inputs[i].View()
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, label, " ", value))
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.err != "" {
		b.WriteString(errorStyle.Render("  " + m.err))
		b.WriteString("\n\n")
	}
	b.WriteString(secondaryStyle.Render("  tab/↓ next · shift+tab/↑ previous · space toggle · ctrl+s start timer · esc quit"))
	b.WriteByte('\n')
	return b.String()
}

func renderToggle(on bool) string {
	if on {
		return toggleOnStyle.Render("[x] yes")
	}
	return toggleOffStyle.Render("[ ] no")
}

// RunForm shows the setup form pre-filled with initial and returns the
// validated configuration. ok is false when the user quit without starting.
func RunForm(initial domain.ExamConfig, validate Validator) (cfg domain.ExamConfig, ok bool, err error) {
	m := newFormModel(initial, validate)
	m.width = termWidth()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return domain.ExamConfig{}, false, fmt.Errorf("running form: %w", err)
	}
	fm := final.(formModel)
	if !fm.submitted {
		return domain.ExamConfig{}, false, nil
	}
	return fm.result, true, nil
}
