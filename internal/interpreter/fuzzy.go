package interpreter

import (
	"strings"

	"github.com/andresuchdata/stockbin/internal/domain"
)

// MaxSupplierDistance is the largest edit distance still offered as a suggestion.
const MaxSupplierDistance = 3

// Levenshtein returns the edit distance between a and b, compared case-insensitively.
func Levenshtein(a, b string) int {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// SupplierMatch is the closest known supplier to a typed name.
type SupplierMatch struct {
	Name     string
	Distance int
}

// Exact reports a case-insensitive exact match.
func (m SupplierMatch) Exact() bool {
	return m.Distance == 0
}

// SuggestSupplier finds the known supplier closest to name. ok is false when
// nothing is within MaxSupplierDistance; the earliest supplier wins ties.
func SuggestSupplier(name string, suppliers []domain.Supplier) (SupplierMatch, bool) {
	name = strings.TrimSpace(name)
	best := SupplierMatch{Distance: MaxSupplierDistance + 1}
	for _, s := range suppliers {
		d := Levenshtein(name, s.Name)
		if d < best.Distance {
			best = SupplierMatch{Name: s.Name, Distance: d}
		}
		if d == 0 {
			break
		}
	}
	if best.Distance > MaxSupplierDistance {
		return SupplierMatch{}, false
	}
	return best, true
}
