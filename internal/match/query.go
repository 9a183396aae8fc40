package match

import (
	"context"

	"github.com/oxygen-anoxia/recommend-Agent/internal/profile"
	"github.com/oxygen-anoxia/recommend-Agent/internal/upstream"
)

// Matcher is the slice of the upstream client the executors need.
type Matcher interface {
	SupplementMatch(ctx context.Context, query upstream.Query) (*upstream.SupplementResult, error)
	CaseMatch(ctx context.Context, matches *upstream.SupplementResult, user upstream.UserInfo) (*upstream.CaseResult, error)
}

// BuildQuery serializes a profile into the upstream query contract. Unset
// attributes are dropped entirely.
func BuildQuery(p *profile.Profile) upstream.Query {
	var q upstream.Query

	if p.Degree != nil {
		q.Degree = *p.Degree
	}
	if p.GPA != nil {
		q.GPA = *p.GPA
	}
	if p.Major != nil {
		q.Major = []string{*p.Major}
	}
	if p.BudgetMax != nil {
		q.BudgetMax = *p.BudgetMax
	}
	if p.RankMax != nil {
		q.RankMax = *p.RankMax
	}
	if len(p.Region) > 0 {
		q.Region = append(q.Region, p.Region...)
	}
	if p.InstitutionRating != nil {
		q.InstitutionRating = *p.InstitutionRating
	}

	return q
}

// buildUserInfo extracts the reduced subset sent with case-match requests.
func buildUserInfo(p *profile.Profile) upstream.UserInfo {
	var u upstream.UserInfo
	if p.GPA != nil {
		u.GPA = *p.GPA
	}
	if p.InstitutionRating != nil {
		u.BackgroundRating = *p.InstitutionRating
	}
	return u
}
