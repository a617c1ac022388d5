// Package parser extracts line metadata from raw input text.
package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// Capture names with special meaning to Parse.
const (
	FieldFrom     = "from"
	FieldText     = "text"
	FieldCategory = "category"
)

// builtinPatterns provides commonly used Grok-style named patterns.
var builtinPatterns = map[string]string{
	"IP":         `(?:\d{1,3}\.){3}\d{1,3}`,
	"WORD":       `\w+`,
	"INT":        `[+-]?\d+`,
	"NUMBER":     `[+-]?(?:\d+\.?\d*|\.\d+)`,
	"NOTSPACE":   `\S+`,
	"DATA":       `.*?`,
	"GREEDYDATA": `.*`,
	"TIMESTAMP":  `\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`,
	"CLOCK":      `\d{2}:\d{2}(?::\d{2})?`,
	"LOGLEVEL":   `(?:DEBUG|INFO|WARN(?:ING)?|ERROR|ERR|FATAL|PANIC|CRITICAL|TRACE)`,
	"NICK":       `[A-Za-z\[\]\\` + "`" + `_^{|}][A-Za-z0-9\[\]\\` + "`" + `_^{|}-]*`,
	"CHANNEL":    `[#&!+][^\s,]+`,
	"PATH":       `(?:/[\w.]+)+`,
	"URI":        `\S+://\S+`,
	"UUID":       `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
	"QS":         `"[^"]*"`,
}

var grokToken = regexp.MustCompile(`%\{(\w+)(?::(\w+))?\}`)

// GrokParser parses unstructured input using Grok-style patterns.
// Pattern format: %{PATTERN_NAME:capture_name}
// Example: "%{CLOCK} <%{NICK:from}> %{GREEDYDATA:text}"
//
// Captures named from, text and category fill the matching Line fields.
type GrokParser struct {
	pattern    string
	regex      *regexp.Regexp
	fieldNames []string
}

// NewGrokParser compiles a Grok pattern string into a regex-based parser.
func NewGrokParser(pattern string) (*GrokParser, error) {
	regexStr, fieldNames, err := compileGrokPattern(pattern)
	if err != nil {
		return nil, err
	}

	re, err := regexp.Compile(regexStr)
	if err != nil {
		return nil, fmt.Errorf("compiled grok regex invalid: %w (regex: %s)", err, regexStr)
	}

	return &GrokParser{
		pattern:    pattern,
		regex:      re,
		fieldNames: fieldNames,
	}, nil
}

// Fields returns the named captures of text, or nil when the pattern does
// not match.
func (g *GrokParser) Fields(text string) map[string]string {
	matches := g.regex.FindStringSubmatch(text)
	if matches == nil {
		return nil
	}

	fields := make(map[string]string, len(g.fieldNames))
	for i, name := range g.fieldNames {
		if i+1 < len(matches) {
			fields[name] = matches[i+1]
		}
	}
	return fields
}

// Parse rewrites l from the captures of its text. A category capture that
// does not name a known category is ignored.
// Returns true if the pattern matched.
func (g *GrokParser) Parse(l *line.Line) bool {
	fields := g.Fields(l.Text)
	if fields == nil {
		return false
	}

	if from, ok := fields[FieldFrom]; ok {
		l.From = from
	}
	if c, ok := fields[FieldCategory]; ok {
		if cat, err := line.ParseCategory(c); err == nil {
			l.Category = cat
		}
	}
	if text, ok := fields[FieldText]; ok {
		l.Text = text
	}
	return true
}

// Pattern returns the original Grok pattern string.
func (g *GrokParser) Pattern() string {
	return g.pattern
}

// compileGrokPattern converts a Grok pattern to a Go regex.
// %{PATTERN_NAME:field_name} → (regex_for_PATTERN_NAME)
// %{PATTERN_NAME} → (?:regex_for_PATTERN_NAME)
// Literal text between tokens is kept as a regular expression.
func compileGrokPattern(pattern string) (string, []string, error) {
	var fieldNames []string
	var sb strings.Builder

	last := 0
	for _, loc := range grokToken.FindAllStringSubmatchIndex(pattern, -1) {
		sb.WriteString(pattern[last:loc[0]])
		last = loc[1]

		patternName := pattern[loc[2]:loc[3]]
		fieldName := ""
		if loc[4] >= 0 {
			fieldName = pattern[loc[4]:loc[5]]
		}

		builtinRegex, ok := builtinPatterns[patternName]
		if !ok {
			return "", nil, fmt.Errorf("unknown grok pattern: %s", patternName)
		}

		if fieldName != "" {
			sb.WriteString("(" + builtinRegex + ")")
			fieldNames = append(fieldNames, fieldName)
		} else {
			sb.WriteString("(?:" + builtinRegex + ")")
		}
	}
	sb.WriteString(pattern[last:])

	return sb.String(), fieldNames, nil
}
