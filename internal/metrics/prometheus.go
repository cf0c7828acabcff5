package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector backed by Prometheus. Metrics are
// registered lazily on first use.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	suggestions    *prometheus.CounterVec
	aiRequests     *prometheus.CounterVec
	aiLatency      prometheus.Histogram
	deadEnds       prometheus.Counter
	generations    prometheus.Counter
	createdTasks   prometheus.Counter
	assignedTasks  prometheus.Counter
	completedTasks prometheus.Counter
}

var _ Collector = (*PrometheusCollector)(nil)

// NewPrometheus creates a collector registering on reg (the default
// registerer when nil) under namespace ("planner" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "planner"
	}
	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.suggestions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "suggestions_total",
			Help:      "Assignment suggestions produced, by source (ai, fallback).",
		}, []string{"source"})

		p.aiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "ai_requests_total",
			Help:      "Calls to the assignment service by result.",
		}, []string{"result"})

		p.aiLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "ai_request_seconds",
			Help:      "Latency of calls to the assignment service in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		})

		p.deadEnds = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "assignment",
			Name:      "eligibility_dead_ends_total",
			Help:      "Tasks for which no eligible member could be found.",
		})

		p.generations = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "chores",
			Name:      "week_generations_total",
			Help:      "Weekly materialization runs.",
		})

		p.createdTasks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "chores",
			Name:      "instances_created_total",
			Help:      "Task instances created by weekly materialization.",
		})

		p.assignedTasks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "chores",
			Name:      "instances_assigned_total",
			Help:      "Task instances given an assignee by weekly materialization.",
		})

		p.completedTasks = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "chores",
			Name:      "instances_completed_total",
			Help:      "Task instances marked complete.",
		})

		p.reg.MustRegister(p.suggestions)
		p.reg.MustRegister(p.aiRequests)
		p.reg.MustRegister(p.aiLatency)
		p.reg.MustRegister(p.deadEnds)
		p.reg.MustRegister(p.generations)
		p.reg.MustRegister(p.createdTasks)
		p.reg.MustRegister(p.assignedTasks)
		p.reg.MustRegister(p.completedTasks)
	})
}

func (p *PrometheusCollector) RecordSuggestions(source string, count int) {
	p.ensureRegistered()
	p.suggestions.WithLabelValues(source).Add(float64(count))
}

func (p *PrometheusCollector) ObserveAIRequest(result string, seconds float64) {
	p.ensureRegistered()
	p.aiRequests.WithLabelValues(result).Inc()
	p.aiLatency.Observe(seconds)
}

func (p *PrometheusCollector) RecordEligibilityDeadEnd() {
	p.ensureRegistered()
	p.deadEnds.Inc()
}

func (p *PrometheusCollector) RecordWeekGenerated(created, assigned int) {
	p.ensureRegistered()
	p.generations.Inc()
	p.createdTasks.Add(float64(created))
	p.assignedTasks.Add(float64(assigned))
}

func (p *PrometheusCollector) RecordTaskCompleted() {
	p.ensureRegistered()
	p.completedTasks.Inc()
}
