package prom

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Exporter struct {
	APICalls         *prometheus.Desc
	APIErrors        *prometheus.Desc
	ProgramErrors    *prometheus.Desc
	LLMTokens        *prometheus.Desc
	HarmonizeBatches *prometheus.Desc
	HarmonizeLabels  *prometheus.Desc
	StatementTxns    *prometheus.Desc
	StatementRefresh *prometheus.Desc
	stats            *RunStats
}

func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.APICalls
	ch <- e.APIErrors
	ch <- e.ProgramErrors
	ch <- e.LLMTokens
	ch <- e.HarmonizeBatches
	ch <- e.HarmonizeLabels
	ch <- e.StatementTxns
	ch <- e.StatementRefresh
}

func NewExporter(namespace string, stats *RunStats) *Exporter {
	return &Exporter{
		APICalls: labeledDesc(
			namespace,
			"status",
			"api_calls",
			"Count of label service API calls",
		),
		APIErrors: labeledDesc(
			namespace,
			"status",
			"api_errors",
			"Count of label service API errors",
		),
		ProgramErrors: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"status",
				"program_errors",
			),
			"Count of runs that failed before producing output",
			[]string{},
			nil,
		),
		LLMTokens: labeledDesc(
			namespace,
			"llm",
			"tokens",
			"Count of LLM tokens",
		),
		HarmonizeBatches: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"harmonize",
				"batches",
			),
			"Count of harmonization batches by result",
			[]string{"result"},
			nil,
		),
		HarmonizeLabels: prometheus.NewDesc(
			prometheus.BuildFQName(
				namespace,
				"harmonize",
				"labels",
			),
			"Count of harmonized labels by source",
			[]string{"source"},
			nil,
		),
		StatementTxns: prometheusStatementDesc(
			namespace,
			"transactions",
			"Transactions extracted by the last successful run",
		),
		StatementRefresh: prometheusStatementDesc(
			namespace,
			"refresh_time",
			"Time the statement was last processed (Unix Time / Epoch)",
		),
		stats: stats,
	}
}

func labeledDesc(namespace, subsystem, metric, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(
			namespace,
			subsystem,
			metric,
		),
		help,
		[]string{"type"},
		nil,
	)
}

func prometheusStatementDesc(namespace string, metric string, help string) *prometheus.Desc {
	return prometheus.NewDesc(
		prometheus.BuildFQName(
			namespace,
			"statement",
			metric,
		),
		help,
		[]string{},
		nil,
	)
}
