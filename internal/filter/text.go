package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// KeywordFilter matches lines whose text contains a keyword.
type KeywordFilter struct {
	keyword string
}

// NewKeywordFilter creates a filter that matches lines containing keyword.
func NewKeywordFilter(keyword string) *KeywordFilter {
	return &KeywordFilter{keyword: keyword}
}

// Match returns true if the line text contains the keyword.
func (f *KeywordFilter) Match(l *line.Line) bool {
	return strings.Contains(l.Text, f.keyword)
}

// Name returns the filter description.
func (f *KeywordFilter) Name() string {
	return "keyword:" + f.keyword
}

// NewExcludeFilter returns a filter rejecting lines that contain any of
// the patterns.
func NewExcludeFilter(patterns ...string) Filter {
	anyOf := NewChain(MatchAny)
	for _, p := range patterns {
		anyOf.Add(NewKeywordFilter(p))
	}
	return Not(anyOf)
}

// RegexFilter matches lines against a pre-compiled regular expression.
type RegexFilter struct {
	pattern string
	re      *regexp.Regexp
}

// NewRegexFilter compiles pattern. Returns an error if it is invalid.
func NewRegexFilter(pattern string) (*RegexFilter, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return &RegexFilter{pattern: pattern, re: re}, nil
}

// Match returns true if the line text matches the regex.
func (f *RegexFilter) Match(l *line.Line) bool {
	return f.re.MatchString(l.Text)
}

// Name returns the filter description.
func (f *RegexFilter) Name() string {
	return "regex:" + f.pattern
}

// FromFilter matches lines by their origin label.
type FromFilter struct {
	from map[string]bool
}

// NewFromFilter matches lines whose From is one of names.
func NewFromFilter(names ...string) *FromFilter {
	from := make(map[string]bool, len(names))
	for _, n := range names {
		from[n] = true
	}
	return &FromFilter{from: from}
}

// Match returns true if the line's origin is listed.
func (f *FromFilter) Match(l *line.Line) bool {
	return f.from[l.From]
}

// Name returns the filter description.
func (f *FromFilter) Name() string {
	names := make([]string, 0, len(f.from))
	for n := range f.from {
		names = append(names, n)
	}
	return "from:" + strings.Join(names, ",")
}
