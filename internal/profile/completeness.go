package profile

import "math"

// totalTracked is the fixed number of attributes counted by the completion
// rate. The rate is a conversational progress indicator, so the denominator
// stays constant even though only essential and important attributes can be
// reported missing.
const totalTracked = 16

// Summary describes how filled-in a profile is.
type Summary struct {
	Status         Completeness `json:"status"`
	CompletionRate float64      `json:"completion_rate"`
	FilledFields   int          `json:"filled_fields"`
	TotalFields    int          `json:"total_fields"`
	MissingFields  []string     `json:"missing_fields"`
}

// Classify derives the completeness state from the current attribute values.
// The missing-name list is ordered essential-first, then important, each in
// declaration order. Never cached — always recomputed from current state.
func (p *Profile) Classify() (Completeness, []string) {
	var missingEssential, missingImportant []string

	if p.Degree == nil {
		missingEssential = append(missingEssential, FieldDegree)
	}
	if p.Major == nil {
		missingEssential = append(missingEssential, FieldMajor)
	}
	if p.TargetCountry == nil {
		missingEssential = append(missingEssential, FieldTargetCountry)
	}
	if p.TargetMajor == nil {
		missingEssential = append(missingEssential, FieldTargetMajor)
	}

	if p.GPA == nil {
		missingImportant = append(missingImportant, FieldGPA)
	}
	if len(p.Region) == 0 {
		missingImportant = append(missingImportant, FieldRegion)
	}
	if p.InstitutionRating == nil {
		missingImportant = append(missingImportant, FieldInstitutionRating)
	}
	if p.RankMax == nil {
		missingImportant = append(missingImportant, FieldRankMax)
	}
	if p.BudgetMax == nil {
		missingImportant = append(missingImportant, FieldBudgetMax)
	}

	switch {
	case len(missingEssential) == 0 && len(missingImportant) == 0:
		return Complete, nil
	case len(missingEssential) == 0:
		return Minimal, missingImportant
	default:
		return Incomplete, append(missingEssential, missingImportant...)
	}
}

// CompletionSummary reports the completeness state together with a fill rate
// rounded to two decimals. The filled count is the fixed tracked total minus
// the missing essential and important attributes; auxiliary attributes pad
// the denominator but are never reported missing, since they are not worth
// asking the user about.
func (p *Profile) CompletionSummary() Summary {
	state, missing := p.Classify()

	filled := totalTracked - len(missing)
	rate := float64(filled) / float64(totalTracked) * 100

	return Summary{
		Status:         state,
		CompletionRate: math.Round(rate*100) / 100,
		FilledFields:   filled,
		TotalFields:    totalTracked,
		MissingFields:  missing,
	}
}
