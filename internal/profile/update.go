package profile

import (
	"log/slog"
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Update applies a patch of extracted attribute values to the profile and
// returns the names of attributes that actually changed, in declaration
// order.
//
// Merge rules: list attributes append only elements not already present
// (first-seen order preserved); scalar attributes overwrite when the new
// value differs. Unknown keys are skipped with a warning — extraction output
// is collaborator input and must never make this operation fail.
func (p *Profile) Update(patch map[string]any) []string {
	if len(patch) == 0 {
		return nil
	}

	var incoming Profile
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &incoming,
		Metadata:         &md,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		slog.Error("building patch decoder", "error", err)
		return nil
	}

	// A partially malformed patch still decodes the well-formed fields;
	// the rest is discarded.
	if err := dec.Decode(patch); err != nil {
		slog.Warn("patch contains malformed values, keeping valid fields", "error", err)
	}
	for _, key := range md.Unused {
		slog.Warn("patch references unknown profile attribute, skipping", "attribute", key)
	}

	var changed []string

	mergeScalar(&p.Degree, incoming.Degree, FieldDegree, &changed)
	mergeScalar(&p.Major, incoming.Major, FieldMajor, &changed)
	mergeScalar(&p.TargetCountry, incoming.TargetCountry, FieldTargetCountry, &changed)
	mergeScalar(&p.TargetMajor, incoming.TargetMajor, FieldTargetMajor, &changed)

	mergeScalar(&p.GPA, incoming.GPA, FieldGPA, &changed)
	mergeList(&p.Region, incoming.Region, FieldRegion, &changed)
	mergeScalar(&p.InstitutionRating, incoming.InstitutionRating, FieldInstitutionRating, &changed)
	mergeScalar(&p.RankMax, incoming.RankMax, FieldRankMax, &changed)
	mergeScalar(&p.BudgetMax, incoming.BudgetMax, FieldBudgetMax, &changed)

	mergeScalar(&p.School, incoming.School, "school", &changed)
	mergeScalar(&p.GRE, incoming.GRE, "gre", &changed)
	mergeScalar(&p.TOEFL, incoming.TOEFL, "toefl", &changed)
	mergeScalar(&p.IELTS, incoming.IELTS, "ielts", &changed)
	mergeList(&p.Research, incoming.Research, "research", &changed)
	mergeScalar(&p.IfResearch, incoming.IfResearch, "if_research", &changed)
	mergeList(&p.PreferredUniversities, incoming.PreferredUniversities, "preferred_universities", &changed)
	mergeScalar(&p.BudgetMin, incoming.BudgetMin, "budget_min", &changed)
	mergeList(&p.WorkExperience, incoming.WorkExperience, "work_experience", &changed)
	mergeList(&p.Extracurricular, incoming.Extracurricular, "extracurricular", &changed)

	return changed
}

func mergeScalar[T comparable](dst **T, src *T, name string, changed *[]string) {
	if src == nil {
		return
	}
	if *dst != nil && **dst == *src {
		return
	}
	v := *src
	*dst = &v
	*changed = append(*changed, name)
}

func mergeList(dst *[]string, src []string, name string, changed *[]string) {
	appended := false
	for _, item := range src {
		if slices.Contains(*dst, item) {
			continue
		}
		*dst = append(*dst, item)
		appended = true
	}
	if appended {
		*changed = append(*changed, name)
	}
}
