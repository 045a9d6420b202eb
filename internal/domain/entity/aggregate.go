package entity

// NetworkOutcome is the result of one per-network fetch: either a Metric or a failure.
type NetworkOutcome struct {
	Network string
	Metric  *Metric
	Err     error
}

// Succeeded reports whether the outcome carries a metric.
func (o NetworkOutcome) Succeeded() bool {
	return o.Err == nil && o.Metric != nil
}

// NetworkFailure records why a network is missing from an aggregate.
type NetworkFailure struct {
	Network string `json:"network"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// AggregateResult holds the metrics of every network that succeeded, in request order,
// and the networks that failed.
type AggregateResult struct {
	Metrics  []Metric         `json:"metrics"`
	Failures []NetworkFailure `json:"failures,omitempty"`
}

// Degraded reports whether some requested networks are missing.
func (r AggregateResult) Degraded() bool {
	return len(r.Failures) > 0
}
