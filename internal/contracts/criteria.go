package contracts

// WeightedRule is one qualitative investment rule mined from source material
type WeightedRule struct {
	Text   string           `json:"text"`
	Weight float64          `json:"weight"`
	Source *SourceReference `json:"source,omitempty"`
}

// MetricRange is an ideal range for a named metric (예: PER 5~15)
type MetricRange struct {
	Metric      string           `json:"metric"`
	Min         float64          `json:"min"`
	Max         float64          `json:"max"`
	Description string           `json:"description,omitempty"`
	Source      *SourceReference `json:"source,omitempty"`
}

// LearnedInvestmentCriteria is the finished output of the document-learning
// subsystem, consumed here as read-only configuration for one run.
// nil이면 지표 범위 가감점 없이 스코어링한다.
type LearnedInvestmentCriteria struct {
	Rules        []WeightedRule `json:"rules,omitempty"`
	MetricRanges []MetricRange  `json:"metric_ranges,omitempty"`
	Principles   []string       `json:"principles,omitempty"`
}

// Contains reports whether a value falls inside the ideal range
func (r MetricRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}
