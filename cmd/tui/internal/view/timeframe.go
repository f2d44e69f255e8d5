package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Timeframe is a predefined or custom posting-date range.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeLast90Days
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeLast90Days:
		return "Last 90 Days"
	case TimeframeThisYear:
		return "This Year"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// timeframeRange returns the calendar days covered by tf as of now. Both
// bounds are nil for TimeframeAll and TimeframeCustom.
func timeframeRange(tf Timeframe, now time.Time) (start, end *time.Time) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	firstOfMonth := today.AddDate(0, 0, 1-today.Day())

	switch tf {
	case TimeframeThisMonth:
		return &firstOfMonth, &today
	case TimeframeLastMonth:
		s := firstOfMonth.AddDate(0, -1, 0)
		e := firstOfMonth.AddDate(0, 0, -1)

		return &s, &e
	case TimeframeLast90Days:
		s := today.AddDate(0, 0, -89)
		return &s, &today
	case TimeframeThisYear:
		s := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return &s, &today
	}

	return nil, nil
}

// TimeframeSelectedMsg is emitted when the user has picked a range. A nil
// bound leaves that side open.
type TimeframeSelectedMsg struct {
	Label string
	Start *time.Time
	End   *time.Time
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe
	now      func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		now:        time.Now,
		startInput: dateInput("From: "),
		endInput:   dateInput("To:   "),
	}
}

func dateInput(prompt string) textinput.Model {
	in := textinput.New()
	in.Placeholder = time.DateOnly
	in.CharLimit = len(time.DateOnly)
	in.Width = 12
	in.Prompt = prompt

	return in
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			return m.updateCustom(msg)
		}
	}

	if m.state == timeframeStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeThisMonth {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeCustom {
			m.state = timeframeStateCustom
			m.startInput.Focus()
			m.focusIndex = 0

			return m, textinput.Blink
		}

		start, end := timeframeRange(m.selected, m.now())
		sel := TimeframeSelectedMsg{Label: m.selected.String(), Start: start, End: end}

		return m, func() tea.Msg { return sel }
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = 1 - m.focusIndex
		inputs := [2]*textinput.Model{&m.startInput, &m.endInput}
		inputs[1-m.focusIndex].Blur()
		cmd := inputs[m.focusIndex].Focus()

		return m, cmd

	case "enter":
		sel, err := customRange(m.startInput.Value(), m.endInput.Value())
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, func() tea.Msg { return sel }

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

// customRange parses a typed range. Either side may be left blank.
func customRange(startText, endText string) (TimeframeSelectedMsg, error) {
	sel := TimeframeSelectedMsg{Label: startText + " to " + endText}

	for _, in := range []struct {
		text string
		name string
		dst  **time.Time
	}{{startText, "start", &sel.Start}, {endText, "end", &sel.End}} {
		if in.text == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, in.text)
		if err != nil {
			return sel, fmt.Errorf("invalid %s date (YYYY-MM-DD)", in.name)
		}

		*in.dst = &t
	}

	if sel.Start != nil && sel.End != nil && sel.End.Before(*sel.Start) {
		return sel, fmt.Errorf("end date is before start date")
	}

	return sel, nil
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var startCmd, endCmd tea.Cmd

	m.startInput, startCmd = m.startInput.Update(msg)
	m.endInput, endCmd = m.endInput.Update(msg)

	return m, tea.Batch(startCmd, endCmd)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	var b strings.Builder

	if m.state == timeframeStateCustom {
		b.WriteString("Custom range, leave a side blank to keep it open:\n\n")
		b.WriteString(m.startInput.View() + "\n" + m.endInput.View())
		b.WriteString("\n\n(Enter to apply, Tab to switch field, Esc to return)")

		return b.String() + errStr
	}

	b.WriteString("Posted between:\n\n")

	for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
		marker := "  "
		if tf == m.selected {
			marker = "> "
		}

		b.WriteString(marker + tf.String() + "\n")
	}

	b.WriteString("\n(Enter to apply, Esc to return)")

	return b.String() + errStr
}

// IsSelecting reports whether the picker is on the preset list rather than
// the custom inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
