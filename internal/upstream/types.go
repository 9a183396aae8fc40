package upstream

import "encoding/json"

// Query is the filtered profile sent to POST /api/supplement_match.
// Unset attributes are omitted — the service never sees placeholder values.
type Query struct {
	Degree            string   `json:"degree,omitempty"`
	GPA               float64  `json:"gpa,omitempty"`
	Major             []string `json:"major,omitempty"`
	BudgetMax         int      `json:"budget_max,omitempty"`
	RankMax           int      `json:"rank_max,omitempty"`
	Region            []string `json:"region,omitempty"`
	InstitutionRating string   `json:"background_institution_rating,omitempty"`
}

// IsZero reports whether the query carries no attributes at all.
func (q Query) IsZero() bool {
	return q.Degree == "" &&
		q.GPA == 0 &&
		len(q.Major) == 0 &&
		q.BudgetMax == 0 &&
		q.RankMax == 0 &&
		len(q.Region) == 0 &&
		q.InstitutionRating == ""
}

// UserInfo is the reduced profile subset sent with a case-match request.
type UserInfo struct {
	GPA              float64 `json:"gpa,omitempty"`
	BackgroundRating string  `json:"background_rating,omitempty"`
}

// Program is one candidate offering in a match result. Rank ascending means
// better.
type Program struct {
	ProgramID    string  `json:"program_id,omitempty"`
	SchoolNameCN string  `json:"school_name_cn,omitempty"`
	MajorNameCN  string  `json:"major_name_cn,omitempty"`
	Rank         int     `json:"rank,omitempty"`
	Score        float64 `json:"score,omitempty"`
}

// CasesSummary is the case-coverage slice of the initial stats.
type CasesSummary struct {
	CasesPercentage float64 `json:"cases_percentage"`
}

// Stats summarizes one supplement-match pass.
type Stats struct {
	InitialCount   int          `json:"initial_count"`
	FinalCount     int          `json:"final_count"`
	WithCasesCount int          `json:"with_cases_count"`
	TotalTime      float64      `json:"total_time"`
	CasesSummary   CasesSummary `json:"cases_summary"`
}

// InitialResults is the strict-pass portion of a supplement-match response.
type InitialResults struct {
	Stats   Stats     `json:"stats"`
	Results []Program `json:"results,omitempty"`
}

// SupplementaryResult is one relaxation pass appended after the strict pass.
type SupplementaryResult struct {
	RelaxedField string    `json:"relaxed_field"`
	Results      []Program `json:"results"`
}

// MatchSummary is the overall tally of a supplement-match response. Text is
// the service's prose summary; the speculative digest quotes its first
// sentence.
type MatchSummary struct {
	TotalPrograms int    `json:"total_programs"`
	WithCases     int    `json:"with_cases"`
	Text          string `json:"text,omitempty"`
}

// SupplementResult is the decoded POST /api/supplement_match response.
// Raw preserves the exact upstream payload so a follow-up case-match request
// can forward fields this client does not model.
type SupplementResult struct {
	InitialResults       *InitialResults       `json:"initial_results,omitempty"`
	SupplementaryResults []SupplementaryResult `json:"supplementary_results,omitempty"`
	RelaxedConditions    []string              `json:"relaxed_conditions,omitempty"`
	Summary              *MatchSummary         `json:"summary,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// TypeResultPrograms holds the matched program references for one tier.
type TypeResultPrograms struct {
	MatchedPrograms json.RawMessage `json:"matched_programs,omitempty"`
}

// TypeResultDetails carries per-program scoring for one tier.
type TypeResultDetails struct {
	ProgramScores []ProgramScore `json:"program_scores,omitempty"`
}

// ProgramScore is a scored program reference.
type ProgramScore struct {
	ProgramID string  `json:"program_id"`
	Score     float64 `json:"score"`
}

// TypeResult is one of the stretch/normal/safe tiers of a case-match
// response.
type TypeResult struct {
	Results TypeResultPrograms `json:"results"`
	Details TypeResultDetails  `json:"details"`
}

// CaseSummary is the overall tally of a case-match response.
type CaseSummary struct {
	TotalPrograms int `json:"total_programs"`
	TotalCases    int `json:"total_cases"`
}

// CaseResult is the decoded POST /api/case_match response.
type CaseResult struct {
	Status       string                `json:"status"`
	Summary      *CaseSummary          `json:"summary,omitempty"`
	TypeResults  map[string]TypeResult `json:"type_results,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
}
