// Package metrics records planner activity. Collectors are safe for
// concurrent use.
package metrics

// Collector receives planner events.
type Collector interface {
	// RecordSuggestions counts a batch of suggestions by the source that
	// produced it ("ai" or "fallback").
	RecordSuggestions(source string, count int)
	// ObserveAIRequest records one call to the assignment service with its
	// outcome ("success", "not_configured", "malformed", "error").
	ObserveAIRequest(result string, seconds float64)
	// RecordEligibilityDeadEnd counts tasks no eligible member could take.
	RecordEligibilityDeadEnd()
	// RecordWeekGenerated records one weekly materialization.
	RecordWeekGenerated(created, assigned int)
	// RecordTaskCompleted counts completed task instances.
	RecordTaskCompleted()
}

// Suggestion sources.
const (
	SourceAI       = "ai"
	SourceFallback = "fallback"
)

// Assignment service outcomes.
const (
	ResultSuccess       = "success"
	ResultNotConfigured = "not_configured"
	ResultMalformed     = "malformed"
	ResultError         = "error"
)
