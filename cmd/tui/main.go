package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/journal/store"
	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/pipeline"
)

const logFile = "tally-tui.log"

type model struct {
	ctx      context.Context
	journals *journal.Service
	pipeline *pipeline.Pipeline
	opts     pipeline.Options

	currentView View

	importView   view.ImportModel
	journalView  view.JournalModel
	balancesView view.BalancesModel
}

type View int

const (
	ViewMenu     View = 0
	ViewImport   View = 1
	ViewJournal  View = 2
	ViewBalances View = 3
)

func initialModel(ctx context.Context) (model, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return model{}, nil, fmt.Errorf("loading config: %w", err)
	}

	settings, err := config.LoadSettings(cfg.Import.SettingsFile)
	if err != nil {
		return model{}, nil, err
	}

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		return model{}, nil, err
	}

	if _, err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return model{}, nil, err
	}

	var (
		journals = journal.NewService(store.New(db))
		p        = pipeline.FromSettings(settings, cfg.Import.PdfToTextPath, nil)
		opts     = pipeline.OptionsFrom(cfg)
	)

	return model{
		ctx:          ctx,
		journals:     journals,
		pipeline:     p,
		opts:         opts,
		currentView:  ViewMenu,
		importView:   view.NewImportModel(ctx, p, opts),
		journalView:  view.NewJournalModel(ctx, journals),
		balancesView: view.NewBalancesModel(ctx, journals),
	}, func() { db.Close() }, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewImport
				m.importView = view.NewImportModel(m.ctx, m.pipeline, m.opts)

				return m, m.importView.Init()
			case "2":
				m.currentView = ViewJournal
				m.journalView = view.NewJournalModel(m.ctx, m.journals)

				return m, m.journalView.Init()
			case "3":
				m.currentView = ViewBalances
				m.balancesView = view.NewBalancesModel(m.ctx, m.journals)

				return m, m.balancesView.Init()
			}
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewImport:
		var newModel tea.Model
		newModel, cmd = m.importView.Update(msg)
		m.importView = newModel.(view.ImportModel)
	case ViewJournal:
		var newModel tea.Model
		newModel, cmd = m.journalView.Update(msg)
		m.journalView = newModel.(view.JournalModel)
	case ViewBalances:
		var newModel tea.Model
		newModel, cmd = m.balancesView.Update(msg)
		m.balancesView = newModel.(view.BalancesModel)
	}

	return m, cmd
}

func (m model) View() string {
	var current view.View

	switch m.currentView {
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"Tally\n\n" +
				"1. Import Inbox\n" +
				"2. Journal\n" +
				"3. Balances\n\n" +
				"q. Quit",
		)
	case ViewImport:
		current = m.importView
	case ViewJournal:
		current = m.journalView
	case ViewBalances:
		current = m.balancesView
	default:
		return "Unknown View"
	}

	help := lipgloss.NewStyle().Faint(true).PaddingLeft(2).Render(current.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).PaddingTop(1).Render(current.Title()),
		current.View(),
		help,
	)
}

func main() {
	_ = godotenv.Load()

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	log := logger.New(logger.Options{Level: os.Getenv("LOG_LEVEL"), Format: "json", Out: f})
	ctx := logger.WithContext(context.Background(), log)

	m, closeDB, err := initialModel(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to start")
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}
	defer closeDB()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Error().Err(err).Msg("failed to run TUI")
		os.Exit(1)
	}
}
