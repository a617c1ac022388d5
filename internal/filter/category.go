package filter

import (
	"strings"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// CategoryFilter passes only lines of the listed categories.
type CategoryFilter struct {
	allowed []line.Category
}

// NewCategoryFilter creates a filter passing lines in any of categories.
func NewCategoryFilter(categories ...line.Category) *CategoryFilter {
	return &CategoryFilter{allowed: categories}
}

// ParseCategoryFilter builds a CategoryFilter from category names.
func ParseCategoryFilter(names []string) (*CategoryFilter, error) {
	cats := make([]line.Category, 0, len(names))
	for _, n := range names {
		c, err := line.ParseCategory(n)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return NewCategoryFilter(cats...), nil
}

// Match returns true if the line's category is allowed.
func (f *CategoryFilter) Match(l *line.Line) bool {
	for _, c := range f.allowed {
		if l.Category == c {
			return true
		}
	}
	return false
}

// Name returns the filter description.
func (f *CategoryFilter) Name() string {
	names := make([]string, len(f.allowed))
	for i, c := range f.allowed {
		names[i] = c.String()
	}
	return "category:" + strings.Join(names, ",")
}
