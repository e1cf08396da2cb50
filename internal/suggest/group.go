package suggest

import (
	"sort"

	"github.com/ppiankov/n4lint/internal/model"
)

// CategoryGroup holds the suggestions of one category
type CategoryGroup struct {
	Category    model.Category
	Label       string
	Suggestions []model.Suggestion
}

// Group arranges suggestions by category in declaration order.
// Order within a group is preserved.
func Group(suggestions []model.Suggestion) []CategoryGroup {
	var groups []CategoryGroup
	pos := make(map[model.Category]int)

	for _, s := range suggestions {
		i, ok := pos[s.Category]
		if !ok {
			i = len(groups)
			pos[s.Category] = i
			groups = append(groups, CategoryGroup{Category: s.Category, Label: s.Category.Label()})
		}
		groups[i].Suggestions = append(groups[i].Suggestions, s)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Category.Rank() < groups[j].Category.Rank()
	})
	return groups
}

// BestCategory returns the category holding the most suggestions; ties go to the first seen
func BestCategory(suggestions []model.Suggestion) (model.Category, bool) {
	counts := make(map[model.Category]int)
	var (
		best  model.Category
		top   int
		found bool
	)

	for _, s := range suggestions {
		counts[s.Category]++
	}
	for _, s := range suggestions {
		if n := counts[s.Category]; n > top {
			best, top, found = s.Category, n, true
		}
	}
	return best, found
}
