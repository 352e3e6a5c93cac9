package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kev", Name: "document_saves_total", Help: "Number of successful document saves by schema."},
		[]string{"schema"},
	)
	DocumentDeletes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kev", Name: "document_deletes_total", Help: "Number of successful document deletes by schema."},
		[]string{"schema"},
	)
	QueryResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kev", Name: "query_resolutions_total", Help: "Number of query-set resolutions by schema."},
		[]string{"schema"},
	)
	IndexWriteFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "kev", Name: "index_write_failures_total", Help: "Number of index deltas that could not be applied after a primary write."},
		[]string{"schema"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentSaves)
	reg.MustRegister(DocumentDeletes)
	reg.MustRegister(QueryResolutions)
	reg.MustRegister(IndexWriteFailures)
}
