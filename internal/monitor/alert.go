package monitor

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// AlertRule defines a pattern that triggers an alert when matched.
type AlertRule struct {
	Name    string
	Pattern *regexp.Regexp
	Count   int
}

// AlertEngine evaluates lines against a set of alert rules.
type AlertEngine struct {
	mu    sync.Mutex
	rules []*AlertRule
}

// NewAlertEngine creates an alert engine. Each definition is either a regex or
// "name=regex".
func NewAlertEngine(defs []string) (*AlertEngine, error) {
	engine := &AlertEngine{}
	for _, def := range defs {
		name, pattern := def, def
		if i := strings.Index(def, "="); i > 0 {
			name, pattern = def[:i], def[i+1:]
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid alert pattern %q: %w", pattern, err)
		}
		engine.rules = append(engine.rules, &AlertRule{Name: name, Pattern: re})
	}
	return engine, nil
}

// Check evaluates a line against all rules. Returns matched rule names.
func (e *AlertEngine) Check(l *line.Line) []string {
	if e == nil || len(e.rules) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var triggered []string
	for _, r := range e.rules {
		if r.Pattern.MatchString(l.Text) {
			r.Count++
			triggered = append(triggered, r.Name)
		}
	}
	return triggered
}

// Summary returns a formatted summary of alert counts.
func (e *AlertEngine) Summary() string {
	if e == nil {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.rules) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("── Alerts ──\n")
	for _, r := range e.rules {
		fmt.Fprintf(&sb, "  %-30s %d hits\n", r.Name, r.Count)
	}
	sb.WriteString("────────────")
	return sb.String()
}

// TotalAlerts returns the total number of alerts triggered.
func (e *AlertEngine) TotalAlerts() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	total := 0
	for _, r := range e.rules {
		total += r.Count
	}
	return total
}
