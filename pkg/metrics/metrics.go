package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the agent.
type Metrics struct {
	Turns        prometheus.Counter
	Searches     *prometheus.CounterVec
	CallsStarted prometheus.Counter
	CallsEnded   prometheus.Counter
	Fallbacks    *prometheus.CounterVec
}

func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Turns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns processed.",
		}),
		Searches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Paid property searches by kind.",
		}, []string{"kind"}),
		CallsStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_started_total",
			Help:      "Outbound voice calls initiated.",
		}),
		CallsEnded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_ended_total",
			Help:      "Voice calls or chat sessions that reached a terminal state.",
		}),
		Fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_fallbacks_total",
			Help:      "Local fallbacks taken after collaborator failures, by collaborator.",
		}, []string{"collaborator"}),
	}
}

// Nop returns instruments bound to a throwaway registry, for tests and for
// callers that do not export metrics.
func Nop() *Metrics {
	return New("gharmitra", prometheus.NewRegistry())
}

func Handler() http.Handler {
	return promhttp.Handler()
}
