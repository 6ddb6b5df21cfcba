package prom

import (
	"github.com/prometheus/client_golang/prometheus"
)

func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	s := e.stats.snapshot()
	e.collectHarmonize(s, ch) // Label service and batches
	e.CollectSys(s, ch)       // Program Collector (runs, statement)
}

func (e *Exporter) collectHarmonize(s snapshot, ch chan<- prometheus.Metric) {
	for kind, v := range s.apiCalls {
		ch <- prometheus.MustNewConstMetric(e.APICalls, prometheus.CounterValue, v, kind)
	}
	for kind, v := range s.apiErrors {
		ch <- prometheus.MustNewConstMetric(e.APIErrors, prometheus.CounterValue, v, kind)
	}
	for kind, v := range s.tokens {
		ch <- prometheus.MustNewConstMetric(e.LLMTokens, prometheus.CounterValue, v, kind)
	}
	for _, result := range []string{"ok", "failed"} {
		ch <- prometheus.MustNewConstMetric(e.HarmonizeBatches, prometheus.CounterValue, s.batches[result], result)
	}
	for _, source := range []string{"service", "fallback", "override"} {
		ch <- prometheus.MustNewConstMetric(e.HarmonizeLabels, prometheus.CounterValue, s.labels[source], source)
	}
}

// CollectSys Collects Program information (errors, last run, etc...)
func (e *Exporter) CollectSys(s snapshot, ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		e.ProgramErrors,
		prometheus.CounterValue,
		s.programErrors,
	)
	ch <- prometheus.MustNewConstMetric(
		e.StatementTxns,
		prometheus.GaugeValue,
		s.transactions,
	)
	var refreshed float64
	if !s.lastRun.IsZero() {
		refreshed = float64(s.lastRun.Unix())
	}
	ch <- prometheus.MustNewConstMetric(
		e.StatementRefresh,
		prometheus.GaugeValue,
		refreshed,
	)
}
