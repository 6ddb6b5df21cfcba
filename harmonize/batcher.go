// Package harmonize rewrites transaction labels through an external text service,
// in sequential, correlated batches.
package harmonize

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/helpcomp/camt-harmonizer/camt"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBatchSize = 10
	DefaultDelay     = 2 * time.Second
)

// ErrServiceDisabled is returned by Unavailable.
var ErrServiceDisabled = errors.New("label service is not configured")

// LabelService sends a prompt to a text rewriting service and returns its raw answer.
type LabelService interface {
	Rewrite(ctx context.Context, prompt string) (string, error)
}

// Recorder receives per batch statistics. It may be nil.
type Recorder interface {
	ObserveBatch(size int, err error)
	ObserveLabels(service, fallback, override int)
}

type idleCloser interface {
	CloseIdleConnections()
}

// Unavailable is the LabelService used when no service is configured. Every batch fails,
// so every transaction keeps its original label.
type Unavailable struct{}

func (Unavailable) Rewrite(context.Context, string) (string, error) { return "", ErrServiceDisabled }

// Options tunes the batching policy.
type Options struct {
	BatchSize     int
	Delay         time.Duration
	Substitutions []Substitution
	Overrides     []Override
}

type Batcher struct {
	service  LabelService
	opts     Options
	recorder Recorder
}

// New creates a Batcher. A non-positive batch size falls back to DefaultBatchSize, a
// negative delay is treated as no delay and nil substitutions mean DefaultSubstitutions.
func New(service LabelService, opts Options, recorder Recorder) *Batcher {
	if service == nil {
		service = Unavailable{}
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Substitutions == nil {
		opts.Substitutions = DefaultSubstitutions()
	}
	return &Batcher{service: service, opts: opts, recorder: recorder}
}

// Harmonize sets HarmonizedLabel on every transaction. It never fails: a batch the
// service cannot answer keeps the original labels.
func (b *Batcher) Harmonize(ctx context.Context, transactions []camt.Transaction) {
	if closer, ok := b.service.(idleCloser); ok {
		defer closer.CloseIdleConnections()
	}

	pending, overridden := b.applyOverrides(transactions)
	batches := partition(pending, b.opts.BatchSize)
	log.Info().
		Int("Transactions", len(transactions)).
		Int("Overrides", overridden).
		Int("Batches", len(batches)).
		Msg("Harmonization...")
	b.observeLabels(0, 0, overridden)

	done := overridden
	for i, batch := range batches {
		res := b.submit(ctx, transactions, batch)
		if !res.ok() {
			log.Warn().Err(res.err).Int("Batch", i).Int("Size", len(batch)).Msg("Harmonization batch failed, keeping original labels")
		}
		if b.recorder != nil {
			b.recorder.ObserveBatch(len(batch), res.err)
		}

		harmonized := b.merge(transactions, batch, res.items)
		fallback := 0
		for _, idx := range batch {
			if transactions[idx].HarmonizedLabel == "" {
				transactions[idx].HarmonizedLabel = transactions[idx].OriginalLabel
				fallback++
			}
		}
		b.observeLabels(harmonized, fallback, 0)

		done += len(batch)
		log.Info().Int("Done", done).Int("Total", len(transactions)).Int("Fallback", fallback).Msgf("Progression: %d/%d", done, len(transactions))

		if i < len(batches)-1 {
			sleep(ctx, b.opts.Delay)
		}
	}
	log.Info().Msg("Harmonization done.")
}

// applyOverrides labels configured transactions directly and returns the indexes of the
// ones left for the service.
func (b *Batcher) applyOverrides(transactions []camt.Transaction) (pending []int, overridden int) {
	pending = make([]int, 0, len(transactions))
	for i := range transactions {
		if label, ok := matchOverride(transactions[i].OriginalLabel, b.opts.Overrides); ok {
			transactions[i].HarmonizedLabel = label
			overridden++
			continue
		}
		pending = append(pending, i)
	}
	return pending, overridden
}

func (b *Batcher) submit(ctx context.Context, transactions []camt.Transaction, batch []int) batchResult {
	items := make([]requestItem, len(batch))
	for id, idx := range batch {
		items[id] = requestItem{
			ID:     id,
			Label:  transactions[idx].OriginalLabel,
			Amount: json.Number(transactions[idx].Amount.StringFixed(2)),
		}
	}

	prompt, err := buildPrompt(items)
	if err != nil {
		return batchResult{err: err}
	}
	raw, err := b.service.Rewrite(ctx, prompt)
	if err != nil {
		return batchResult{err: err}
	}
	results, err := parseResponse(raw)
	if err != nil {
		return batchResult{err: err}
	}
	return batchResult{items: results}
}

// merge writes service labels back by correlation id and returns how many were applied.
// Ids outside the batch, repeated ids and empty labels are ignored.
func (b *Batcher) merge(transactions []camt.Transaction, batch []int, items []resultItem) int {
	applied := 0
	for _, item := range items {
		if item.ID < 0 || item.ID >= len(batch) {
			log.Debug().Int("ID", item.ID).Int("Size", len(batch)).Msg("Ignoring harmonized label with unknown id")
			continue
		}
		t := &transactions[batch[item.ID]]
		if t.HarmonizedLabel != "" {
			continue
		}
		if label := cleanLabel(item.HarmonizedLabel, b.opts.Substitutions); label != "" {
			t.HarmonizedLabel = label
			applied++
		}
	}
	return applied
}

func (b *Batcher) observeLabels(service, fallback, override int) {
	if b.recorder != nil {
		b.recorder.ObserveLabels(service, fallback, override)
	}
}

func partition(indexes []int, size int) [][]int {
	var batches [][]int
	for start := 0; start < len(indexes); start += size {
		end := min(start+size, len(indexes))
		batches = append(batches, indexes[start:end])
	}
	return batches
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
