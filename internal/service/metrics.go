package service

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeSuccess  = "success"
	outcomeFailure  = "failure"
	outcomeOrphaned = "orphaned"
)

// Metrics counts upload outcomes. A nil *Metrics records nothing.
type Metrics struct {
	uploads *prometheus.CounterVec
}

// NewMetrics registers the upload counters on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "media_uploads_total",
				Help: "Total number of uploaded files by outcome.",
			},
			[]string{"outcome"},
		),
	}
	if err := reg.Register(m.uploads); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observeUpload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}
