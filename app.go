package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/helpcomp/camt-harmonizer/camt"
	"github.com/helpcomp/camt-harmonizer/harmonize"
	"github.com/helpcomp/camt-harmonizer/present"
	"github.com/helpcomp/camt-harmonizer/prom"
	"github.com/helpcomp/camt-harmonizer/source"
	"github.com/rs/zerolog/log"
)

// RunSettings are the resolved per-run values (flags over YAML over defaults).
type RunSettings struct {
	Location   string
	Format     string
	OutputFile string
	Options    harmonize.Options
}

// App runs the statement flow: read, extract, harmonize, present.
type App struct {
	source   *source.Source
	service  harmonize.LabelService
	stats    *prom.RunStats
	settings RunSettings
	out      io.Writer
}

// NewApp creates an App. The same App is reused for every watch-mode tick.
func NewApp(src *source.Source, service harmonize.LabelService, stats *prom.RunStats, settings RunSettings, out io.Writer) *App {
	if stats == nil {
		stats = prom.NewRunStats()
	}
	return &App{
		source:   src,
		service:  service,
		stats:    stats,
		settings: settings,
		out:      out,
	}
}

// Run executes one pass. On a fatal error nothing is presented.
func (a *App) Run(ctx context.Context) error {
	runID := uuid.NewString()
	logger := log.With().Str("run_id", runID).Logger()
	start := time.Now()

	logger.Info().Str("Type", "Run").Str("Source", a.settings.Location).Msg("📄 Reading statement")

	transactions, err := a.process(ctx)
	a.stats.ObserveRun(len(transactions), err)
	if err != nil {
		logger.Error().Err(err).Msg("Run failed")
		return err
	}

	if err := a.write(transactions); err != nil {
		logger.Error().Err(err).Msg("Unable to write results")
		return err
	}

	logger.Info().
		Str("Type", "Run").
		Int("Transactions", len(transactions)).
		Dur("Elapsed", time.Since(start)).
		Msg("✅ Statement harmonized")
	return nil
}

func (a *App) process(ctx context.Context) ([]camt.Transaction, error) {
	data, err := a.source.Read(ctx, a.settings.Location)
	if err != nil {
		return nil, &camt.DocumentError{Source: a.settings.Location, Err: err}
	}

	doc, err := camt.Load(data, a.settings.Location)
	if err != nil {
		return nil, err
	}

	transactions, err := camt.Extract(doc)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", a.settings.Location, err)
	}
	log.Info().Int("Transactions", len(transactions)).Msg("Extracted statement entries")

	harmonize.New(a.service, a.settings.Options, a.stats).Harmonize(ctx, transactions)
	return transactions, nil
}

func (a *App) write(transactions []camt.Transaction) error {
	if a.settings.OutputFile == "" {
		return present.Write(a.out, a.settings.Format, transactions)
	}

	f, err := os.Create(a.settings.OutputFile)
	if err != nil {
		return err
	}
	if err := present.Write(f, a.settings.Format, transactions); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Info().Str("Path", a.settings.OutputFile).Str("Format", a.settings.Format).Msg("Results written")
	return nil
}
