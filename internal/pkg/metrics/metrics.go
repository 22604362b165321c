package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "facilities"

var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	RecordsWritten = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_written_total",
		Help:      "Data records upserted, by variable data type.",
	}, []string{"data_type"})

	CastFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cast_failures_total",
		Help:      "Writes rejected because the raw value could not be cast.",
	}, []string{"data_type"})

	FormulaFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "formula_failures_total",
		Help:      "Calculated variable evaluations that produced no value.",
	}, []string{"variable"})

	UnusedRenameRules = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unused_rename_rules_total",
		Help:      "Key rename rules whose old key was absent from a normalized record.",
	}, []string{"data_source"})

	IngestedRecords = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ingested_records_total",
		Help:      "Raw survey records processed by the facility builder, by outcome.",
	}, []string{"outcome"})
)

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
