// Package query builds storage-independent match predicates from sparse
// search criteria. The same Criteria value is evaluated in memory through
// Build and rendered to SQL through Where, so every backend applies the same
// semantics.
package query

// Op is the comparison applied by a Condition.
type Op int

const (
	// Contains is a case-insensitive substring match on text attributes.
	Contains Op = iota + 1
	// Equals is an exact match, used for enumerations and identifiers.
	Equals
)

func (o Op) String() string {
	switch o {
	case Contains:
		return "contains"
	case Equals:
		return "equals"
	default:
		return "unknown"
	}
}

// Condition is one present criterion.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Criteria holds only the criteria that were actually supplied. Conditions
// are combined with logical AND; an empty Criteria matches everything.
type Criteria []Condition

// Contains appends a substring condition.
func (c Criteria) Contains(field, value string) Criteria {
	return append(c, Condition{Field: field, Op: Contains, Value: value})
}

// Equals appends an exact-match condition.
func (c Criteria) Equals(field string, value any) Criteria {
	return append(c, Condition{Field: field, Op: Equals, Value: value})
}

// ContainsIf appends a substring condition when value is set and non-empty.
func (c Criteria) ContainsIf(field string, value *string) Criteria {
	if value == nil || *value == "" {
		return c
	}
	return c.Contains(field, *value)
}

// EqualsIf appends an exact-match condition when value is set.
func EqualsIf[V any](c Criteria, field string, value *V) Criteria {
	if value == nil {
		return c
	}
	return c.Equals(field, *value)
}

// Fields lists the fields referenced by the criteria, in order.
func (c Criteria) Fields() []string {
	out := make([]string, 0, len(c))
	for _, cond := range c {
		out = append(out, cond.Field)
	}
	return out
}

// Order selects the sort key of a result set. TieBreak keeps the ordering
// total when several items share the same Field value.
type Order struct {
	Field    string
	Desc     bool
	TieBreak string
}
