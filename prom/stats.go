package prom

import (
	"sync"
	"time"
)

// Stats collects the counters of every run of the process.
var Stats = NewRunStats()

// RunStats is safe for concurrent use; the metrics endpoint reads it while a run writes it.
type RunStats struct {
	mu            sync.Mutex
	apiCalls      map[string]float64
	apiErrors     map[string]float64
	tokens        map[string]float64
	batches       map[string]float64
	labels        map[string]float64
	programErrors float64
	transactions  float64
	lastRun       time.Time
	lastErr       error
}

func NewRunStats() *RunStats {
	return &RunStats{
		apiCalls:  make(map[string]float64),
		apiErrors: make(map[string]float64),
		tokens:    make(map[string]float64),
		batches:   make(map[string]float64),
		labels:    make(map[string]float64),
	}
}

func (s *RunStats) AddAPICall(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiCalls[kind]++
}

func (s *RunStats) AddAPIError(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apiErrors[kind]++
}

func (s *RunStats) AddTokens(prompt, completion, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens["prompt"] += float64(prompt)
	s.tokens["completion"] += float64(completion)
	s.tokens["total"] += float64(total)
}

// ObserveBatch implements harmonize.Recorder.
func (s *RunStats) ObserveBatch(_ int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.batches["failed"]++
		return
	}
	s.batches["ok"]++
}

// ObserveLabels implements harmonize.Recorder.
func (s *RunStats) ObserveLabels(service, fallback, override int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels["service"] += float64(service)
	s.labels["fallback"] += float64(fallback)
	s.labels["override"] += float64(override)
}

// ObserveRun records the end of a run.
func (s *RunStats) ObserveRun(transactions int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = time.Now()
	s.lastErr = err
	if err != nil {
		s.programErrors++
		return
	}
	s.transactions = float64(transactions)
}

// LastRun returns when the last run ended and its error.
func (s *RunStats) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

type snapshot struct {
	apiCalls      map[string]float64
	apiErrors     map[string]float64
	tokens        map[string]float64
	batches       map[string]float64
	labels        map[string]float64
	programErrors float64
	transactions  float64
	lastRun       time.Time
}

func (s *RunStats) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		apiCalls:      copyMap(s.apiCalls),
		apiErrors:     copyMap(s.apiErrors),
		tokens:        copyMap(s.tokens),
		batches:       copyMap(s.batches),
		labels:        copyMap(s.labels),
		programErrors: s.programErrors,
		transactions:  s.transactions,
		lastRun:       s.lastRun,
	}
}

func copyMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
