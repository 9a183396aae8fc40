// Package guess enumerates speculative completions for profiles that are
// missing guessable attributes. The candidate tables are business policy
// supplied by deployment, not derived from data.
package guess

import (
	"fmt"
	"slices"
	"strings"
)

// Attribute is one guessable profile attribute and its fixed candidate set.
type Attribute struct {
	Name       string
	Candidates []any
}

// Options is the ordered table of guessable attributes.
type Options []Attribute

// Defaults returns the stock candidate tables.
func Defaults() Options {
	return Options{
		{Name: "gpa", Candidates: []any{85, 87, 90}},
		{Name: "region", Candidates: []any{"美国", "英国", "加拿大", "新加坡", "香港"}},
		{Name: "background_institution_rating", Candidates: []any{"985", "211", "双非"}},
		{Name: "rank_max", Candidates: []any{10, 30, 50, 100}},
		{Name: "budget_max", Candidates: []any{1000000, 800000, 300000, 400000}},
	}
}

// Field is one guessed attribute value within a combination.
type Field struct {
	Name  string
	Value any
}

// Combination is one fully-specified substitution of candidate values for
// the missing guessable attributes, in table order.
type Combination struct {
	Fields []Field
}

// Patch returns the combination as a profile update patch.
func (c Combination) Patch() map[string]any {
	m := make(map[string]any, len(c.Fields))
	for _, f := range c.Fields {
		m[f.Name] = f.Value
	}
	return m
}

// Label renders the combination for user-facing digests,
// e.g. `gpa为"85"、region为"美国"`.
func (c Combination) Label() string {
	parts := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		parts[i] = fmt.Sprintf("%s为%q", f.Name, fmt.Sprint(f.Value))
	}
	return strings.Join(parts, "、")
}

// Guessable filters missing attribute names down to those present in the
// table, in table order.
func (o Options) Guessable(missing []string) []string {
	var names []string
	for _, attr := range o {
		if slices.Contains(missing, attr.Name) {
			names = append(names, attr.Name)
		}
	}
	return names
}

// Combinations produces the cross-product of candidate values for every
// missing attribute found in the table. Enumeration order is deterministic:
// attributes in table order, the last attribute varying fastest. Missing
// attributes absent from the table yield zero combinations.
func (o Options) Combinations(missing []string) []Combination {
	var attrs []Attribute
	for _, attr := range o {
		if slices.Contains(missing, attr.Name) {
			attrs = append(attrs, attr)
		}
	}
	if len(attrs) == 0 {
		return nil
	}

	combos := []Combination{{}}
	for _, attr := range attrs {
		next := make([]Combination, 0, len(combos)*len(attr.Candidates))
		for _, base := range combos {
			for _, v := range attr.Candidates {
				fields := make([]Field, len(base.Fields), len(base.Fields)+1)
				copy(fields, base.Fields)
				fields = append(fields, Field{Name: attr.Name, Value: v})
				next = append(next, Combination{Fields: fields})
			}
		}
		combos = next
	}
	return combos
}
