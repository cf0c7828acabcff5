package metrics

// NopMetrics discards everything. Used in tests and by the CLI.
type NopMetrics struct{}

var _ Collector = (*NopMetrics)(nil)

func NewNop() *NopMetrics {
	return &NopMetrics{}
}

func (n *NopMetrics) RecordSuggestions(_ string, _ int) {}

func (n *NopMetrics) ObserveAIRequest(_ string, _ float64) {}

func (n *NopMetrics) RecordEligibilityDeadEnd() {}

func (n *NopMetrics) RecordWeekGenerated(_, _ int) {}

func (n *NopMetrics) RecordTaskCompleted() {}
