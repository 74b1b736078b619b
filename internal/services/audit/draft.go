package audit

// Draft is an anomaly produced by a detector or the qualitative reviewer,
// before it is stamped with mission/run identity and persisted.
type Draft struct {
	Cycle          string
	Type           string
	Criticality    string
	Score          float64
	Amount         float64
	AccountNum     string
	Label          string
	Description    string
	Recommendation string
	Source         string
	Details        map[string]any
}
