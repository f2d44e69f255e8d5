package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
)

const journalLimit = 500

type journalState int

const (
	journalStateBrowse journalState = iota
	journalStateTimeframe
	journalStateAccount
	journalStateDetail
)

type JournalModel struct {
	CommonModel
	ctx      context.Context
	journals *journal.Service

	state   journalState
	table   table.Model
	entries []*ledger.JournalEntry
	picker  TimeframePicker
	form    *huh.Form

	filter         journal.ListFilter
	timeframeLabel string
	accounts       []*ledger.ChartAccount

	loading bool
	err     error
}

func NewJournalModel(ctx context.Context, journals *journal.Service) JournalModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Description", Width: 32},
		{Title: "Account", Width: 30},
		{Title: "Counter", Width: 30},
		{Title: "Amount", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	picker := NewTimeframePicker(TimeframeThisMonth)
	start, end := timeframeRange(TimeframeThisMonth, picker.now())

	return JournalModel{
		ctx:            ctx,
		journals:       journals,
		table:          t,
		picker:         picker,
		filter:         journal.ListFilter{StartDate: start, EndDate: end, Limit: journalLimit},
		timeframeLabel: TimeframeThisMonth.String(),
		loading:        true,
	}
}

func (m JournalModel) Title() string { return "Journal" }

func (m JournalModel) ShortHelp() string {
	switch m.state {
	case journalStateTimeframe, journalStateAccount:
		return "Esc: cancel"
	case journalStateDetail:
		return "Esc/Enter: close"
	}

	return "Esc: back | Enter: postings | t: timeframe | a: account | r: refresh"
}

func (m JournalModel) Init() tea.Cmd {
	return tea.Batch(m.loadEntriesCmd(), m.loadAccountsCmd())
}

func (m JournalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEntriesMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.entries = msg.entries
			m.refreshTable()
		}

		return m, nil

	case loadAccountsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.accounts = msg.accounts

		return m, nil

	case TimeframeSelectedMsg:
		m.filter.StartDate, m.filter.EndDate = msg.Start, msg.End
		m.timeframeLabel = msg.Label
		m.state = journalStateBrowse
		m.loading = true
		m.table.Focus()

		return m, m.loadEntriesCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case journalStateBrowse:
		return m.updateBrowse(msg)
	case journalStateTimeframe:
		return m.updateTimeframe(msg)
	case journalStateAccount:
		return m.updateAccount(msg)
	case journalStateDetail:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && (keyMsg.Type == tea.KeyEsc || keyMsg.Type == tea.KeyEnter) {
			m.state = journalStateBrowse
			m.table.Focus()
		}
	}

	return m, nil
}

func (m JournalModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadEntriesCmd()
		case "t":
			m.state = journalStateTimeframe
			m.picker.Reset()
			m.table.Blur()

			return m, m.picker.Init()
		case "a":
			return m.enterAccountMode()
		case "enter":
			if idx := m.table.Cursor(); idx >= 0 && idx < len(m.entries) {
				m.state = journalStateDetail
				m.table.Blur()
			}

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m JournalModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc && m.picker.IsSelecting() {
		m.state = journalStateBrowse
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m JournalModel) enterAccountMode() (tea.Model, tea.Cmd) {
	options := []huh.Option[string]{huh.NewOption("All accounts", "")}
	for _, a := range m.accounts {
		options = append(options, huh.NewOption(a.ID.String(), a.ID.String()))
	}

	current := ""
	if m.filter.AccountID != nil {
		current = m.filter.AccountID.String()
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("account").
				Title("Account (includes sub-accounts)").
				Options(options...).
				Height(12).
				Value(&current),
		),
	).WithWidth(50).WithShowHelp(false)

	m.state = journalStateAccount
	m.table.Blur()

	return m, m.form.Init()
}

func (m JournalModel) updateAccount(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = journalStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.filter.AccountID = nil
	if account := m.form.GetString("account"); account != "" {
		m.filter.AccountID = new(ledger.AccountID(account))
	}

	m.state = journalStateBrowse
	m.form = nil
	m.loading = true
	m.table.Focus()

	return m, m.loadEntriesCmd()
}

func (m JournalModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to go back)", m.err))
	}

	if m.state == journalStateTimeframe {
		return lipgloss.NewStyle().Padding(2).Render(m.picker.View())
	}

	account := "All"
	if m.filter.AccountID != nil {
		account = m.filter.AccountID.String()
	}

	header := fmt.Sprintf(
		"[t] Timeframe: %s | [a] Account: %s | %d entries",
		activeStyle(m.timeframeLabel),
		activeStyle(account),
		len(m.entries),
	)

	body := m.table.View()
	if m.loading {
		body = "Loading entries..."
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(body),
	)

	var panel string

	switch {
	case m.state == journalStateAccount && m.form != nil:
		panel = m.form.View()
	case m.state == journalStateDetail:
		panel = m.detailView()
	}

	if panel != "" {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content,
			lipgloss.NewStyle().
				Padding(1, 2).
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("63")).
				Width(60).
				Render(panel),
		)
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m JournalModel) detailView() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.entries) {
		return ""
	}

	e := m.entries[idx]

	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", lipgloss.NewStyle().Bold(true).Render(e.Description), e.PostedAt.Format("2006-01-02 15:04"))

	if e.RawDescription != "" && e.RawDescription != e.Description {
		fmt.Fprintf(&b, "Original: %s\n", e.RawDescription)
	}

	if e.Counterparty != nil {
		fmt.Fprintf(&b, "Counterparty: %s\n", *e.Counterparty)
	}

	if e.SourceFile != "" {
		fmt.Fprintf(&b, "Source: %s\n", e.SourceFile)
	}

	b.WriteString("\n")

	for _, p := range e.Postings {
		fmt.Fprintf(&b, "%-34s %14s\n", p.AccountID, FormatAmount(p.AmountMinor, p.Currency))

		if p.Memo != "" {
			fmt.Fprintf(&b, "  %s\n", lipgloss.NewStyle().Faint(true).Render(p.Memo))
		}
	}

	return b.String()
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *JournalModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.entries))
	for _, e := range m.entries {
		rows = append(rows, entryRow(e, m.filter.AccountID))
	}

	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

// entryRow shows an entry from the side of the filtered account when there is
// one, otherwise from its first posting.
func entryRow(e *ledger.JournalEntry, account *ledger.AccountID) table.Row {
	if len(e.Postings) == 0 {
		return table.Row{FormatDate(e.PostedAt), e.Description, "", "", ""}
	}

	side := 0

	if account != nil {
		prefix := account.String() + ":"
		for i, p := range e.Postings {
			if p.AccountID == *account || strings.HasPrefix(p.AccountID.String(), prefix) {
				side = i
				break
			}
		}
	}

	var counters []string

	for i, p := range e.Postings {
		if i != side {
			counters = append(counters, p.AccountID.String())
		}
	}

	p := e.Postings[side]

	return table.Row{
		FormatDate(e.PostedAt),
		e.Description,
		p.AccountID.String(),
		strings.Join(counters, ", "),
		FormatAmount(p.AmountMinor, p.Currency),
	}
}

// Messages

type loadEntriesMsg struct {
	entries []*ledger.JournalEntry
	err     error
}

type loadAccountsMsg struct {
	accounts []*ledger.ChartAccount
	err      error
}

func (m JournalModel) loadEntriesCmd() tea.Cmd {
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := DbCtx(m.ctx)
		defer cancel()

		entries, err := m.journals.ListEntries(ctx, filter)

		return loadEntriesMsg{entries: entries, err: err}
	}
}

func (m JournalModel) loadAccountsCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx(m.ctx)
		defer cancel()

		accounts, err := m.journals.Accounts(ctx)

		return loadAccountsMsg{accounts: accounts, err: err}
	}
}
