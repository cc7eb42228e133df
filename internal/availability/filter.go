package availability

import (
	"strings"
	"unicode"

	"github.com/Houeta/staff-directory/internal/models"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/text/unicode/norm"
)

// StatusAll disables the status filter.
const StatusAll = "All"

// Filter is the combined directory query: free-text search, status label and range.
type Filter struct {
	Search string
	Status string
	Range  Range
	// Fuzzy switches the search from substring matching to subsequence matching.
	Fuzzy bool
}

// Apply returns the employees that pass every stage of f, preserving input order.
//
// The status stage compares the raw availability label exactly. The range stage is skipped
// when the status stage already asks for occupied employees, since occupied employees never
// match a bounded range.
func (m *Matcher) Apply(employees []models.Employee, f Filter) []models.Employee {
	term := fold(f.Search)
	status := strings.TrimSpace(f.Status)
	applyRange := status != string(models.StatusOccupied)

	out := make([]models.Employee, 0, len(employees))
	for _, emp := range employees {
		if term != "" && !matchesSearch(emp, term, f.Fuzzy) {
			continue
		}
		if status != "" && status != StatusAll && emp.AvailabilityText != status {
			continue
		}
		if applyRange && !m.Matches(emp, f.Range) {
			continue
		}
		out = append(out, emp)
	}

	return out
}

func matchesSearch(emp models.Employee, term string, fuzzyMode bool) bool {
	haystacks := []string{emp.Name, strings.Join(emp.Skills, " "), emp.Location, emp.Role}
	for _, hay := range haystacks {
		if hay == "" {
			continue
		}
		if fuzzyMode {
			if fuzzy.MatchNormalizedFold(term, hay) {
				return true
			}
			continue
		}
		if strings.Contains(fold(hay), term) {
			return true
		}
	}
	return false
}

// fold lowercases s and strips diacritics so "José" matches "jose".
func fold(s string) string {
	decomposed := norm.NFD.String(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
