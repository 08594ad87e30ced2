package snapshot

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// FoldName canonicalizes a name or list item for comparison. All
// set-membership checks on narrative strings are case-insensitive;
// display casing is preserved from whichever occurrence is retained.
func FoldName(s string) string {
	return folder.String(strings.TrimSpace(s))
}

// SameName reports whether two narrative strings are equal under case
// folding.
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// PairKey joins two names into an order-independent, case-folded
// relationship key.
func PairKey(a, b string) string {
	fa, fb := FoldName(a), FoldName(b)
	if fb < fa {
		fa, fb = fb, fa
	}
	return fa + "|" + fb
}

// SamePair reports whether two pairs identify the same relationship
// regardless of order and casing.
func SamePair(a, b [2]string) bool {
	return PairKey(a[0], a[1]) == PairKey(b[0], b[1])
}

// OrderedSet is a slice used as a set with case-insensitive membership
// and stable insertion order.
type OrderedSet []string

// Contains reports case-insensitive membership.
func (s OrderedSet) Contains(item string) bool {
	for _, have := range s {
		if SameName(have, item) {
			return true
		}
	}
	return false
}

// Add appends item unless an equivalent entry is already present. The
// existing display casing wins.
func (s OrderedSet) Add(item string) OrderedSet {
	if strings.TrimSpace(item) == "" || s.Contains(item) {
		return s
	}
	return append(s, item)
}

// Remove drops the entry equivalent to item. Removing an absent item
// is a no-op.
func (s OrderedSet) Remove(item string) OrderedSet {
	for i, have := range s {
		if SameName(have, item) {
			return append(s[:i:i], s[i+1:]...)
		}
	}
	return s
}

// Clone returns an independent copy.
func (s OrderedSet) Clone() OrderedSet {
	if s == nil {
		return nil
	}
	out := make(OrderedSet, len(s))
	copy(out, s)
	return out
}
