package query

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Predicate reports whether an entity matches.
type Predicate[E any] func(E) bool

// Attributes exposes entity fields by criteria field name.
type Attributes[E any] map[string]func(E) any

// Build folds the present conditions into a single predicate joined with
// AND. Conditions on fields missing from attrs are ignored.
func Build[E any](c Criteria, attrs Attributes[E]) Predicate[E] {
	preds := make([]Predicate[E], 0, len(c))
	for _, cond := range c {
		get, ok := attrs[cond.Field]
		if !ok {
			continue
		}
		if p := match(cond, get); p != nil {
			preds = append(preds, p)
		}
	}
	return And(preds...)
}

// And combines predicates; with no arguments it accepts every entity.
func And[E any](preds ...Predicate[E]) Predicate[E] {
	return func(e E) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

func match[E any](cond Condition, get func(E) any) Predicate[E] {
	switch cond.Op {
	case Contains:
		needle := strings.ToLower(text(cond.Value))
		return func(e E) bool {
			v := get(e)
			if v == nil {
				return false
			}
			return strings.Contains(strings.ToLower(text(v)), needle)
		}
	case Equals:
		want := cond.Value
		return func(e E) bool {
			return reflect.DeepEqual(get(e), want)
		}
	default:
		return nil
	}
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}

// Select returns the items matching c, sorted by order. Strings compare
// byte-wise, like a COLLATE "C" ORDER BY. The input slice is not modified.
func Select[E any](items []E, c Criteria, attrs Attributes[E], order Order) []E {
	pred := Build(c, attrs)
	out := make([]E, 0, len(items))
	for _, it := range items {
		if pred(it) {
			out = append(out, it)
		}
	}

	primary, hasPrimary := attrs[order.Field]
	tie, hasTie := attrs[order.TieBreak]
	slices.SortStableFunc(out, func(a, b E) int {
		if hasPrimary {
			r := compareValues(primary(a), primary(b))
			if order.Desc {
				r = -r
			}
			if r != 0 {
				return r
			}
		}
		if hasTie {
			return compareValues(tie(a), tie(b))
		}
		return 0
	})
	return out
}

// Window applies skip/take to an already ordered slice. A negative skip
// selects nothing.
func Window[E any](items []E, skip, take int) []E {
	if skip < 0 || skip >= len(items) || take <= 0 {
		return []E{}
	}
	end := len(items)
	if take < end-skip {
		end = skip + take
	}
	return items[skip:end]
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer {
		if va.IsNil() {
			return compareValues(nil, b)
		}
		return compareValues(va.Elem().Interface(), b)
	}
	if vb.Kind() == reflect.Pointer {
		if vb.IsNil() {
			return compareValues(a, nil)
		}
		return compareValues(a, vb.Elem().Interface())
	}
	switch {
	case va.CanInt() && vb.CanInt():
		return cmp.Compare(va.Int(), vb.Int())
	case va.CanUint() && vb.CanUint():
		return cmp.Compare(va.Uint(), vb.Uint())
	case va.CanFloat() && vb.CanFloat():
		return cmp.Compare(va.Float(), vb.Float())
	case va.Kind() == reflect.String && vb.Kind() == reflect.String:
		return cmp.Compare(va.String(), vb.String())
	default:
		return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}
