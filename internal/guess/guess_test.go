package guess

import (
	"reflect"
	"testing"
)

func TestGuessableFollowsTableOrder(t *testing.T) {
	opts := Defaults()

	// Caller order must not matter.
	got := opts.Guessable([]string{"budget_max", "gpa", "rank_max"})
	want := []string{"gpa", "rank_max", "budget_max"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Guessable = %v, want %v", got, want)
	}

	if got := opts.Guessable([]string{"degree", "school"}); got != nil {
		t.Fatalf("Guessable for untabled fields = %v, want nil", got)
	}
}

func TestCombinationsCrossProduct(t *testing.T) {
	opts := Defaults()

	combos := opts.Combinations([]string{"gpa", "background_institution_rating"})
	if len(combos) != 9 {
		t.Fatalf("len = %d, want 3*3=9", len(combos))
	}

	// Table order, last attribute varying fastest.
	first := combos[0]
	if !reflect.DeepEqual(first.Patch(), map[string]any{"gpa": 85, "background_institution_rating": "985"}) {
		t.Fatalf("combos[0] = %v", first.Patch())
	}
	second := combos[1]
	if !reflect.DeepEqual(second.Patch(), map[string]any{"gpa": 85, "background_institution_rating": "211"}) {
		t.Fatalf("combos[1] = %v", second.Patch())
	}
	fourth := combos[3]
	if !reflect.DeepEqual(fourth.Patch(), map[string]any{"gpa": 87, "background_institution_rating": "985"}) {
		t.Fatalf("combos[3] = %v", fourth.Patch())
	}
	last := combos[8]
	if !reflect.DeepEqual(last.Patch(), map[string]any{"gpa": 90, "background_institution_rating": "双非"}) {
		t.Fatalf("combos[8] = %v", last.Patch())
	}
}

func TestCombinationsSingleAttribute(t *testing.T) {
	combos := Defaults().Combinations([]string{"region"})
	if len(combos) != 5 {
		t.Fatalf("len = %d, want 5", len(combos))
	}
	if combos[0].Fields[0].Value != "美国" || combos[4].Fields[0].Value != "香港" {
		t.Fatalf("unexpected candidate order: %v ... %v", combos[0].Fields, combos[4].Fields)
	}
}

func TestCombinationsNoIntersection(t *testing.T) {
	if combos := Defaults().Combinations([]string{"degree", "major"}); combos != nil {
		t.Fatalf("combos = %v, want nil", combos)
	}
	if combos := Defaults().Combinations(nil); combos != nil {
		t.Fatalf("combos for empty missing = %v, want nil", combos)
	}
}

func TestCombinationLabel(t *testing.T) {
	c := Combination{Fields: []Field{
		{Name: "gpa", Value: 85},
		{Name: "region", Value: "美国"},
	}}
	want := `gpa为"85"、region为"美国"`
	if got := c.Label(); got != want {
		t.Fatalf("Label = %q, want %q", got, want)
	}
}

func TestCombinationsAreIndependent(t *testing.T) {
	combos := Defaults().Combinations([]string{"gpa", "rank_max"})

	// Mutating one combination's fields must not leak into siblings that
	// shared a prefix during construction.
	combos[0].Fields[0].Value = 999
	if combos[1].Fields[0].Value == 999 {
		t.Fatal("combinations share backing arrays")
	}
}
