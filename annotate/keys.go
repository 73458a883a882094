package annotate

import "cmp"

// MaxKey tracks the largest key observed in a subtree, the annotation
// spec.md §4.7 names for supporting predecessor/rank-style searches over an
// ordered leaf set. The zero value (Valid == false) is the fold identity:
// Combine with an invalid operand always yields the other side untouched.
type MaxKey[K cmp.Ordered] struct {
	Key   K
	Valid bool
}

// SomeMaxKey wraps a known key.
func SomeMaxKey[K cmp.Ordered](k K) MaxKey[K] { return MaxKey[K]{Key: k, Valid: true} }

// Combine keeps the larger of the two keys, treating an invalid side as
// absent.
func (m MaxKey[K]) Combine(other MaxKey[K]) MaxKey[K] {
	switch {
	case !m.Valid:
		return other
	case !other.Valid:
		return m
	case other.Key > m.Key:
		return other
	default:
		return m
	}
}

// MinMax tracks the smallest and largest keys observed in a subtree.
type MinMax[K cmp.Ordered] struct {
	Min, Max K
	Valid    bool
}

// SomeMinMax wraps a known single key (min == max for a single leaf).
func SomeMinMax[K cmp.Ordered](k K) MinMax[K] { return MinMax[K]{Min: k, Max: k, Valid: true} }

// Combine widens the range to cover both operands.
func (m MinMax[K]) Combine(other MinMax[K]) MinMax[K] {
	switch {
	case !m.Valid:
		return other
	case !other.Valid:
		return m
	default:
		result := m
		if other.Min < result.Min {
			result.Min = other.Min
		}
		if other.Max > result.Max {
			result.Max = other.Max
		}
		return result
	}
}
