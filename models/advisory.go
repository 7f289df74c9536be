package models

// AdvisoryResult is the latest analysis for a table. It is owned by the
// advisory console and never written back into the table store.
type AdvisoryResult struct {
	Analysis         string   `json:"analysis"`
	SuggestedActions []string `json:"suggested_actions"`
	PriorityScore    int      `json:"priority_score"`
}

const (
	FallbackAnalysis = "Unable to analyze table status at this time."
	MaxPriorityScore = 10
)

// FallbackAdvisory is returned whenever the advisory capability fails.
func FallbackAdvisory() AdvisoryResult {
	return AdvisoryResult{
		Analysis:         FallbackAnalysis,
		SuggestedActions: []string{"Check physical table status", "Verify alerts manually"},
		PriorityScore:    0,
	}
}

func (r AdvisoryResult) Clone() AdvisoryResult {
	out := r
	if r.SuggestedActions != nil {
		out.SuggestedActions = append([]string(nil), r.SuggestedActions...)
	}
	return out
}
