package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/database"
	"github.com/MrJamesThe3rd/tally/internal/events"
	"github.com/MrJamesThe3rd/tally/internal/events/kafka"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	"github.com/MrJamesThe3rd/tally/internal/http/importrun"
	ledgerHandler "github.com/MrJamesThe3rd/tally/internal/http/ledger"
	"github.com/MrJamesThe3rd/tally/internal/journal"
	"github.com/MrJamesThe3rd/tally/internal/journal/store"
	"github.com/MrJamesThe3rd/tally/internal/logger"
	"github.com/MrJamesThe3rd/tally/internal/pipeline"
	"github.com/MrJamesThe3rd/tally/internal/sanitize"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: "json"})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx = logger.WithContext(ctx, log)

	db, err := database.Open(cfg.DB.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DB.Migrate {
		n, err := database.Migrate(ctx, db)
		if err != nil {
			return err
		}

		log.Info().Int("applied", n).Msg("schema up to date")
	}

	var publisher events.Publisher = events.Nop{}

	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer p.Close()

		publisher = p
	}

	pipelines := config.NewCached(cfg.Server.SettingsTTL, func() (*pipeline.Pipeline, error) {
		settings, err := config.LoadSettings(cfg.Import.SettingsFile)
		if err != nil {
			return nil, err
		}

		return pipeline.FromSettings(settings, cfg.Import.PdfToTextPath, publisher), nil
	})

	var (
		runner = importrun.RunnerFunc(func(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error) {
			p, err := pipelines.Get()
			if err != nil {
				return nil, err
			}

			return p.ImportInbox(ctx, opts)
		})
		rules = reloadableRules{pipelines: pipelines}
	)

	var (
		ledgerH = ledgerHandler.NewHandler(journal.NewService(store.New(db)))
		importH = importrun.NewHandler(runner, rules, pipeline.OptionsFrom(cfg))
	)

	router := tallyHttp.New(tallyHttp.Options{
		Logger:      log,
		CORSOrigins: cfg.Server.CORSOrigins,
		Timeout:     cfg.Server.Timeout,
	}, ledgerH, importH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

// reloadableRules serves rule diagnostics from the current pipeline. Reset
// drops the cached pipeline so the next import rereads settings and rules.
type reloadableRules struct {
	pipelines *config.Cached[*pipeline.Pipeline]
}

func (r reloadableRules) Diagnostics(ctx context.Context) ([]sanitize.Diagnostic, error) {
	p, err := r.pipelines.Get()
	if err != nil {
		return nil, err
	}

	return p.Rules().Diagnostics(ctx)
}

func (r reloadableRules) Reset() {
	if p, err := r.pipelines.Get(); err == nil {
		p.Rules().Reset()
	}

	r.pipelines.Invalidate()
}
