package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oxygen-anoxia/recommend-Agent/internal/profile"
)

// ExactExecutor runs the two-step matching flow for a complete profile:
// a primary supplement-match query followed by a case-match enrichment of
// its result. Strictly sequential — the second call consumes the first's
// output. Each call is its own failure domain and aborts the operation.
type ExactExecutor struct {
	client Matcher
}

// NewExactExecutor creates an ExactExecutor over the given upstream client.
func NewExactExecutor(client Matcher) *ExactExecutor {
	return &ExactExecutor{client: client}
}

// Run executes the exact match. The profile must classify as Complete;
// otherwise an *IncompleteError is returned before any network call.
func (e *ExactExecutor) Run(ctx context.Context, p *profile.Profile) (Result, error) {
	if p == nil {
		return Result{}, ErrProfileMissing
	}

	state, missing := p.Classify()
	if state != profile.Complete {
		return Result{}, &IncompleteError{Missing: missing}
	}

	query := BuildQuery(p)
	if query.IsZero() {
		return Result{}, ErrEmptyQuery
	}

	slog.Info("running exact match", "query", query)

	supplement, err := e.client.SupplementMatch(ctx, query)
	if err != nil {
		return Result{}, fmt.Errorf("supplement match: %w", err)
	}

	cases, err := e.client.CaseMatch(ctx, supplement, buildUserInfo(p))
	if err != nil {
		return Result{}, fmt.Errorf("case match: %w", err)
	}

	programCount := 0
	if supplement.Summary != nil {
		programCount = supplement.Summary.TotalPrograms
	}
	caseCount := 0
	if cases.Summary != nil {
		caseCount = cases.Summary.TotalCases
	}

	data := map[string]any{
		"supplement_matches": supplement,
		"case_matches":       cases,
		"profile_used":       query,
		"completeness":       state,
	}

	message := fmt.Sprintf("匹配完成！找到 %d 个项目推荐和 %d 个相似案例。", programCount, caseCount)
	return Success(message, data), nil
}
