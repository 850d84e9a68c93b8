package dataset

import (
	"fmt"
	"strings"
)

// Subset identifies one of the two source tables.
type Subset string

const (
	SubsetCrowsPairs Subset = "crowspairs"
	SubsetStereoSet  Subset = "stereoset"
)

// Category labels the kind of gender stereotype an example encodes.
type Category string

const (
	CategoryAttitudesBeliefs        Category = "Attitudes and Beliefs"
	CategoryPersonalityTraits       Category = "Personality Traits"
	CategoryPhysicalCharacteristics Category = "Physical Characteristics"
	CategoryRolesBehaviors          Category = "Roles and Behaviors"
)

// Categories returns every category in canonical order.
func Categories() []Category {
	return []Category{
		CategoryAttitudesBeliefs,
		CategoryPersonalityTraits,
		CategoryPhysicalCharacteristics,
		CategoryRolesBehaviors,
	}
}

// ParseCategory matches a raw category string against the known categories.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Example is one stereotypical/anti-stereotypical sentence pair. Examples are
// loaded once and never mutated.
type Example struct {
	ID                string
	Subset            Subset
	Category          Category
	Stereotypical     string
	AntiStereotypical string
}

// Table holds the examples of one subset in load order.
type Table struct {
	Subset   Subset
	Examples []Example

	// Sampled marks the built-in sample rows used when no data file is
	// present; sampled tables are not held to the published totals.
	Sampled bool
}

// CountByCategory tallies examples per category.
func (t *Table) CountByCategory() map[Category]int {
	counts := make(map[Category]int, len(Categories()))
	if t == nil {
		return counts
	}
	for _, ex := range t.Examples {
		counts[ex.Category]++
	}
	return counts
}

// Filter returns the examples of one category, preserving table order. An
// empty category returns the full table.
func (t *Table) Filter(c Category) []Example {
	if t == nil {
		return nil
	}
	if c == "" {
		out := make([]Example, len(t.Examples))
		copy(out, t.Examples)
		return out
	}
	out := make([]Example, 0, len(t.Examples))
	for _, ex := range t.Examples {
		if ex.Category == c {
			out = append(out, ex)
		}
	}
	return out
}

// IntegrityError reports a table whose category counts disagree with the
// published subset definition. Loads failing this check are unusable.
type IntegrityError struct {
	Subset Subset
	Detail string
}

func (e *IntegrityError) Error() string {
	if e == nil {
		return "dataset: integrity error <nil>"
	}
	return fmt.Sprintf("dataset: %s: integrity: %s", e.Subset, e.Detail)
}
