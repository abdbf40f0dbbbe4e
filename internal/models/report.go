package models

// Report is the end-of-session performance report. The oracle produces the
// scored fields; the aggregator derives OverallScoreOutOf10 and
// SessionDurationMinutes before the report is persisted on the session row.
type Report struct {
	OverallScore          float64          `json:"overall_score"`
	Strengths             []string         `json:"strengths"`
	Improvements          []string         `json:"improvements"`
	ImprovedSampleAnswers []ImprovedAnswer `json:"improved_sample_answers"`
	SuggestedTopics       []string         `json:"suggested_topics"`

	OverallScoreOutOf10    string `json:"overall_score_out_of_10,omitempty"`
	SessionDurationMinutes int    `json:"session_duration_minutes"`
}

type ImprovedAnswer struct {
	Question       string `json:"question"`
	ImprovedAnswer string `json:"improved_answer"`
}
