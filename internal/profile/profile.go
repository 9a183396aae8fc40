// Package profile holds the applicant profile: the structured record built
// incrementally from conversation turns, and its completeness classification
// which drives the choice between exact and speculative matching.
package profile

// Completeness classifies how usable a profile is for matching.
type Completeness string

const (
	// Complete means no essential or important attribute is missing.
	Complete Completeness = "complete"
	// Minimal means every essential attribute is present but at least one
	// important (guessable) attribute is missing.
	Minimal Completeness = "minimal"
	// Incomplete means at least one essential attribute is missing.
	Incomplete Completeness = "incomplete"
)

// Profile is the applicant record built up across a conversation session.
//
// Scalars are pointer-typed and lists are slices: a nil pointer or empty
// slice means "not provided yet". There are no reserved sentinel values;
// any legitimate input is representable.
//
// Essential attributes cannot be guessed — their absence blocks matching.
// Important attributes may be substituted from the guess tables when absent.
type Profile struct {
	// Essential.
	Degree        *string `json:"degree,omitempty"`
	Major         *string `json:"major,omitempty"`
	TargetCountry *string `json:"target_country,omitempty"`
	TargetMajor   *string `json:"target_major,omitempty"`

	// Important (guessable).
	GPA               *float64 `json:"gpa,omitempty"`
	Region            []string `json:"region,omitempty"`
	InstitutionRating *string  `json:"background_institution_rating,omitempty"`
	RankMax           *int     `json:"rank_max,omitempty"`
	BudgetMax         *int     `json:"budget_max,omitempty"`

	// Auxiliary.
	School                *string  `json:"school,omitempty"`
	GRE                   *int     `json:"gre,omitempty"`
	TOEFL                 *int     `json:"toefl,omitempty"`
	IELTS                 *float64 `json:"ielts,omitempty"`
	Research              []string `json:"research,omitempty"`
	IfResearch            *bool    `json:"if_research,omitempty"`
	PreferredUniversities []string `json:"preferred_universities,omitempty"`
	BudgetMin             *int     `json:"budget_min,omitempty"`
	WorkExperience        []string `json:"work_experience,omitempty"`
	Extracurricular       []string `json:"extracurricular,omitempty"`
}

// Attribute names as they appear in extraction patches, guess tables, and
// the upstream query contract.
const (
	FieldDegree            = "degree"
	FieldMajor             = "major"
	FieldTargetCountry     = "target_country"
	FieldTargetMajor       = "target_major"
	FieldGPA               = "gpa"
	FieldRegion            = "region"
	FieldInstitutionRating = "background_institution_rating"
	FieldRankMax           = "rank_max"
	FieldBudgetMax         = "budget_max"
)

// EssentialFields lists the attributes that cannot be guessed, in
// declaration order.
var EssentialFields = []string{
	FieldDegree,
	FieldMajor,
	FieldTargetCountry,
	FieldTargetMajor,
}

// ImportantFields lists the guessable attributes, in declaration order.
var ImportantFields = []string{
	FieldGPA,
	FieldRegion,
	FieldInstitutionRating,
	FieldRankMax,
	FieldBudgetMax,
}

// Clone returns a deep copy. Speculative workers mutate clones only; the
// base profile is never touched by an in-flight fan-out.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return &Profile{}
	}
	cp := *p

	cp.Degree = cloneScalar(p.Degree)
	cp.Major = cloneScalar(p.Major)
	cp.TargetCountry = cloneScalar(p.TargetCountry)
	cp.TargetMajor = cloneScalar(p.TargetMajor)
	cp.GPA = cloneScalar(p.GPA)
	cp.Region = cloneList(p.Region)
	cp.InstitutionRating = cloneScalar(p.InstitutionRating)
	cp.RankMax = cloneScalar(p.RankMax)
	cp.BudgetMax = cloneScalar(p.BudgetMax)
	cp.School = cloneScalar(p.School)
	cp.GRE = cloneScalar(p.GRE)
	cp.TOEFL = cloneScalar(p.TOEFL)
	cp.IELTS = cloneScalar(p.IELTS)
	cp.Research = cloneList(p.Research)
	cp.IfResearch = cloneScalar(p.IfResearch)
	cp.PreferredUniversities = cloneList(p.PreferredUniversities)
	cp.BudgetMin = cloneScalar(p.BudgetMin)
	cp.WorkExperience = cloneList(p.WorkExperience)
	cp.Extracurricular = cloneList(p.Extracurricular)

	return &cp
}

func cloneScalar[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneList(v []string) []string {
	if v == nil {
		return nil
	}
	cp := make([]string, len(v))
	copy(cp, v)
	return cp
}
