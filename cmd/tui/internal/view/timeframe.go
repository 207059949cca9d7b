package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/cardcycle/internal/cycle"
)

// Timeframe represents a predefined or custom date range selection.
type Timeframe int

const (
	TimeframeCurrentCycle  Timeframe = 0
	TimeframePreviousCycle Timeframe = 1
	TimeframeThisMonth     Timeframe = 2
	TimeframeLastMonth     Timeframe = 3
	TimeframeAll           Timeframe = 4
	TimeframeCustom        Timeframe = 5
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeCurrentCycle:
		return "Current Statement Cycle"
	case TimeframePreviousCycle:
		return "Previous Statement Cycle"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeLastMonth:
		return "Last Month"
	case TimeframeAll:
		return "All Time"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// timeframePeriod resolves a predefined timeframe into a half-open period.
// Cycle timeframes follow anchorDay; month timeframes are anchored on the 1st.
func timeframePeriod(tf Timeframe, now time.Time, anchorDay int) cycle.Period {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch tf {
	case TimeframeCurrentCycle:
		return cycle.PeriodFor(today, anchorDay)
	case TimeframePreviousCycle:
		current := cycle.PeriodFor(today, anchorDay)
		return cycle.PeriodFor(current.Start.AddDate(0, 0, -1), anchorDay)
	case TimeframeLastMonth:
		current := cycle.PeriodFor(today, 1)
		return cycle.PeriodFor(current.Start.AddDate(0, 0, -1), 1)
	}

	return cycle.PeriodFor(today, 1)
}

// TimeframeSelectedMsg is emitted when the user has selected a valid date range.
// End is exclusive. Start and End are zero values when All is true.
type TimeframeSelectedMsg struct {
	Start time.Time
	End   time.Time
	All   bool
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateCustom
)

// TimeframePicker is a reusable component for selecting a date range.
type TimeframePicker struct {
	state     timeframeState
	selected  Timeframe
	anchorDay int
	now       func() time.Time

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

// NewTimeframePicker creates a picker whose cycle options follow anchorDay.
func NewTimeframePicker(anchorDay int) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	if anchorDay < 1 {
		anchorDay = 1
	}

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   TimeframeCurrentCycle,
		anchorDay:  anchorDay,
		now:        time.Now,
		startInput: si,
		endInput:   ei,
	}
}

// Init returns the initial command for the picker.
func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

// Update handles messages for the timeframe picker.
func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(msg)
		case timeframeStateCustom:
			if next, cmd, handled := m.updateCustom(msg); handled {
				return next, cmd
			}
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
		if m.selected > TimeframeCurrentCycle {
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

		if m.selected == TimeframeAll {
			return m, func() tea.Msg {
				return TimeframeSelectedMsg{All: true}
			}
		}

		p := timeframePeriod(m.selected, m.now(), m.anchorDay)
		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Start: p.Start, End: p.End}
		}
	}

	return m, nil
}

func (m TimeframePicker) updateCustom(msg tea.KeyMsg) (TimeframePicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()
		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink, true
		}
		m.endInput.Focus()
		return m, textinput.Blink, true

	case "enter":
		loc := m.now().Location()

		start, err := time.ParseInLocation(time.DateOnly, m.startInput.Value(), loc)
		if err != nil {
			m.err = fmt.Errorf("invalid start date (YYYY-MM-DD)")
			return m, nil, true
		}

		end, err := time.ParseInLocation(time.DateOnly, m.endInput.Value(), loc)
		if err != nil {
			m.err = fmt.Errorf("invalid end date (YYYY-MM-DD)")
			return m, nil, true
		}

		if end.Before(start) {
			m.err = fmt.Errorf("end date is before start date")
			return m, nil, true
		}

		m.err = nil
		end = end.AddDate(0, 0, 1)
		return m, func() tea.Msg {
			return TimeframeSelectedMsg{Start: start, End: end}
		}, true

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil
		return m, nil, true
	}

	return m, nil, false
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

// View renders the timeframe picker.
func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateCustom {
		return fmt.Sprintf(
			"Enter Custom Range (inclusive):\n\n%s\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	now := m.now()

	s := "Select Timeframe:\n\n"
	for i := TimeframeCurrentCycle; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		label := i.String()
		if i < TimeframeAll {
			label += lipgloss.NewStyle().Faint(true).Render("  " + FormatPeriod(timeframePeriod(i, now, m.anchorDay)))
		}

		s += fmt.Sprintf("%s %s\n", cursor, label)
	}
	s += "\n(Enter to select, Esc to back)"

	return s + errStr
}

// IsSelecting returns true if the picker is in the selection state (not custom input).
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

// Reset returns the picker to its initial selection state.
func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.selected = TimeframeCurrentCycle
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
