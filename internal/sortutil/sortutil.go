// Package sortutil provides a small generic insertion sort shared by the
// handful of call sites across tokendfa that sort a short slice of
// ordered values in place: epsilon-closure state sets, prefix-graph byte
// classes, and similar small fixed-alphabet collections where an
// allocation-free sort beats sort.Slice's reflection-based comparator.
package sortutil

import "golang.org/x/exp/constraints"

// Ascending sorts s in place in ascending order. Insertion sort is the
// right choice here: every caller's input is small (state sets bounded by
// the NFA's state count, byte classes bounded by 256), where its lack of
// allocation and good cache behavior beat an O(n log n) algorithm's
// asymptotics.
func Ascending[T constraints.Ordered](s []T) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
