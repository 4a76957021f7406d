package metric

import "github.com/prometheus/client_golang/prometheus"

// Exporter mirrors pipeline counters into a Prometheus registry for
// scrape-based dashboards. The flat Counters map stays the source of
// truth; the exporter is optional.
type Exporter struct {
	candidates *prometheus.CounterVec
	documents  *prometheus.CounterVec
	edges      *prometheus.CounterVec
}

// NewExporter registers pipeline metrics with the given registerer.
func NewExporter(reg prometheus.Registerer) *Exporter {
	e := &Exporter{
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lexigraph",
				Subsystem: "validator",
				Name:      "candidates_total",
				Help:      "Candidates processed by validation outcome",
			},
			[]string{"outcome", "rule"},
		),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lexigraph",
				Subsystem: "pipeline",
				Name:      "documents_total",
				Help:      "Documents ingested by status",
			},
			[]string{"status"},
		),
		edges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lexigraph",
				Subsystem: "relations",
				Name:      "edges_committed_total",
				Help:      "Relationship edges committed by type",
			},
			[]string{"type"},
		),
	}

	reg.MustRegister(e.candidates, e.documents, e.edges)
	return e
}

// ObserveValidation records one validation outcome.
func (e *Exporter) ObserveValidation(rule string, accepted bool) {
	if accepted {
		e.candidates.WithLabelValues("accepted", "").Inc()
		return
	}
	e.candidates.WithLabelValues("rejected", rule).Inc()
}

// ObserveDocument records one document ingest by status.
func (e *Exporter) ObserveDocument(status string) {
	e.documents.WithLabelValues(status).Inc()
}

// ObserveEdges records committed edges of one relation type.
func (e *Exporter) ObserveEdges(relType string, n int) {
	e.edges.WithLabelValues(relType).Add(float64(n))
}
