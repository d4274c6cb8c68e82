package domain

// Analysis is the result of one AI profanity-analysis call.
type Analysis struct {
	HasFlag bool           `json:"has_flag"`
	Items   []AnalysisItem `json:"items"`
}

// AnalysisItem is one flagged fragment within an analyzed text.
type AnalysisItem struct {
	Word     string `json:"word"`
	Severity string `json:"severity"`
}
