package view

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/journal"
)

type BalancesModel struct {
	CommonModel
	ctx      context.Context
	journals *journal.Service

	table      table.Model
	balances   []journal.Balance
	unbalanced int
	showEmpty  bool

	loading bool
	err     error
}

func NewBalancesModel(ctx context.Context, journals *journal.Service) BalancesModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Account", Width: 40},
			{Title: "Balance", Width: 16},
			{Title: "Reported", Width: 16},
			{Title: "Postings", Width: 9},
		}),
		table.WithFocused(true),
		table.WithHeight(20),
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

	return BalancesModel{ctx: ctx, journals: journals, table: t, loading: true}
}

func (m BalancesModel) Title() string { return "Balances" }

func (m BalancesModel) ShortHelp() string {
	return "Esc: back | e: toggle empty accounts | r: refresh"
}

func (m BalancesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m BalancesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadBalancesMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.balances = msg.balances
			m.unbalanced = msg.unbalanced
			m.refreshTable()
		}

		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "e":
			m.showEmpty = !m.showEmpty
			m.refreshTable()

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m BalancesModel) View() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(fmt.Sprintf("Error: %v\n\n(Esc to go back)", m.err))
	}

	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading balances...")
	}

	integrity := lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Render("Every journal entry balances.")
	if m.unbalanced > 0 {
		integrity = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).
			Render(fmt.Sprintf("%d unbalanced journal entries, run tally accounts -check.", m.unbalanced))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(integrity),
		lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View()),
	)

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func (m *BalancesModel) refreshTable() {
	m.table.SetRows(balanceRows(m.balances, m.showEmpty))
	m.table.SetCursor(0)
}

// balanceRows indents each account under its parent. Accounts without postings
// are dropped unless showEmpty is set.
func balanceRows(balances []journal.Balance, showEmpty bool) []table.Row {
	rows := make([]table.Row, 0, len(balances))

	for _, b := range balances {
		if !showEmpty && b.Postings == 0 {
			continue
		}

		reported := ""
		if b.ReportedMinor != nil {
			reported = FormatAmount(*b.ReportedMinor, b.Currency)
		}

		rows = append(rows, table.Row{
			strings.Repeat("  ", len(b.AccountID.Ancestors())) + b.AccountID.Name(),
			FormatAmount(b.BalanceMinor, b.Currency),
			reported,
			strconv.Itoa(b.Postings),
		})
	}

	return rows
}

type loadBalancesMsg struct {
	balances   []journal.Balance
	unbalanced int
	err        error
}

func (m BalancesModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx(m.ctx)
		defer cancel()

		balances, err := m.journals.Balances(ctx)
		if err != nil {
			return loadBalancesMsg{err: err}
		}

		unbalanced, err := m.journals.Unbalanced(ctx)
		if err != nil {
			return loadBalancesMsg{err: err}
		}

		return loadBalancesMsg{balances: balances, unbalanced: len(unbalanced)}
	}
}
