package view

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/tally/internal/pipeline"
)

const importTimeout = 2 * time.Minute

// Importer runs an inbox import.
type Importer interface {
	ImportInbox(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

type importState int

const (
	importStateConfirm importState = iota
	importStateImporting
	importStateResult
)

type ImportModel struct {
	CommonModel
	ctx      context.Context
	importer Importer
	opts     pipeline.Options

	state   importState
	form    *huh.Form
	spinner spinner.Model

	result *pipeline.Result
	err    error
}

func NewImportModel(ctx context.Context, importer Importer, opts pipeline.Options) ImportModel {
	m := ImportModel{
		ctx:      ctx,
		importer: importer,
		opts:     opts,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.form = m.confirmForm()

	return m
}

func (m ImportModel) Title() string { return "Import Inbox" }

func (m ImportModel) ShortHelp() string {
	if m.state == importStateImporting {
		return "Importing..."
	}

	return "Esc: back | Enter: select"
}

func (m ImportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ImportModel) confirmForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Key("confirm").
				Title("Import every statement in the inbox?").
				Description(fmt.Sprintf("Inbox: %s\nArchive: %s\nLedger: %s", m.opts.InboxDir, m.opts.ArchiveDir, m.opts.DBPath)).
				Affirmative("Import").
				Negative("Cancel"),
		),
	).WithWidth(60).WithShowHelp(false)
}

func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case importResultMsg:
		m.state = importStateResult
		m.result, m.err = msg.result, msg.err

		return m, nil

	case spinner.TickMsg:
		if m.state != importStateImporting {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.handleEsc()
		}
	}

	if m.state != importStateConfirm {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if !m.form.GetBool("confirm") {
		return m, Back
	}

	m.state = importStateImporting

	return m, tea.Batch(m.spinner.Tick, m.importCmd())
}

func (m ImportModel) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case importStateImporting:
		return m, nil
	case importStateResult:
		m.state = importStateConfirm
		m.result, m.err = nil, nil
		m.form = m.confirmForm()

		return m, Back
	}

	return m, Back
}

func (m ImportModel) View() string {
	style := lipgloss.NewStyle().Padding(2)

	switch m.state {
	case importStateConfirm:
		return style.Render(m.form.View())
	case importStateImporting:
		return style.Render(m.spinner.View() + " Importing from " + m.opts.InboxDir + "...")
	case importStateResult:
		return style.Render(m.viewResult() + "\n\n(Esc to go back)")
	}

	return ""
}

func (m ImportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Import failed: %v", m.err))
	}

	return ResultSummary(m.result)
}

// ResultSummary renders an import result as plain lines.
func ResultSummary(res *pipeline.Result) string {
	var b strings.Builder

	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	if len(res.ProcessedFiles) == 0 {
		b.WriteString(ok.Render("Nothing to import."))
	} else {
		b.WriteString(ok.Render(fmt.Sprintf(
			"Created %d of %d journal entries from %d file(s).",
			res.JournalEntriesCreated, res.JournalEntriesAttempted, len(res.ProcessedFiles),
		)))
	}

	fmt.Fprintf(&b, "\n\nTransactions:   %d", res.TotalTransactions)
	fmt.Fprintf(&b, "\nDuplicates:     %d", res.DuplicateTransactions)
	fmt.Fprintf(&b, "\nTransfer pairs: %d", res.TransferPairsCreated)
	fmt.Fprintf(&b, "\nArchived:       %d", len(res.ArchivedFiles))

	if len(res.SkippedFiles) > 0 {
		b.WriteString("\n\n" + warn.Render("Skipped files:"))

		for _, s := range res.SkippedFiles {
			fmt.Fprintf(&b, "\n  %s: %s", s.Path, s.Reason)
		}
	}

	if len(res.EntryErrors) > 0 {
		b.WriteString("\n\n" + warn.Render("Entry errors:"))

		for _, e := range res.EntryErrors {
			b.WriteString("\n  " + e)
		}
	}

	if n := len(res.UnmappedDescriptions); n > 0 {
		b.WriteString("\n\n" + warn.Render(fmt.Sprintf("%d description(s) matched no rule.", n)))
	}

	return b.String()
}

type importResultMsg struct {
	result *pipeline.Result
	err    error
}

func (m ImportModel) importCmd() tea.Cmd {
	opts := m.opts

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, importTimeout)
		defer cancel()

		res, err := m.importer.ImportInbox(ctx, opts)

		return importResultMsg{result: res, err: err}
	}
}
