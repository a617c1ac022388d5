// Package line defines the Line type held by the scrollback store.
package line

import (
	"fmt"
	"strings"
	"time"
)

// Category tags where a line came from. The store carries it opaquely;
// sinks and the TUI use it for styling and filtering.
type Category int

const (
	CategoryOther Category = iota
	CategoryServerInfo
	CategoryServerError
	CategoryJoin
	CategoryNick
	CategoryPart
	CategoryQuit
	CategoryChat
	CategoryPinged
)

var categoryNames = [...]string{
	CategoryOther:       "other",
	CategoryServerInfo:  "info",
	CategoryServerError: "error",
	CategoryJoin:        "join",
	CategoryNick:        "nick",
	CategoryPart:        "part",
	CategoryQuit:        "quit",
	CategoryChat:        "chat",
	CategoryPinged:      "pinged",
}

// String returns the lower-case name of a Category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "other"
	}
	return categoryNames[c]
}

// ParseCategory converts a name to a Category. Case-insensitive.
// A few common aliases are accepted ("err", "server", "msg", "ping").
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "other", "":
		return CategoryOther, nil
	case "info", "server", "server_info":
		return CategoryServerInfo, nil
	case "error", "err", "server_error":
		return CategoryServerError, nil
	case "join":
		return CategoryJoin, nil
	case "nick":
		return CategoryNick, nil
	case "part":
		return CategoryPart, nil
	case "quit":
		return CategoryQuit, nil
	case "chat", "msg", "message":
		return CategoryChat, nil
	case "pinged", "ping", "mention":
		return CategoryPinged, nil
	default:
		return CategoryOther, fmt.Errorf("unknown category %q", s)
	}
}

// Line is one stored unit of text. Lines handed out by the store are
// copies; mutating one does not affect the store.
type Line struct {
	Time     time.Time
	Category Category
	From     string // origin label (sender, stream, source)
	Text     string
}

// Len returns the number of valid bytes in Text.
func (l Line) Len() int {
	return len(l.Text)
}

// Format returns a single-line representation of the line.
func (l Line) Format() string {
	ts := l.Time.Format(time.RFC3339)
	if l.Category != CategoryOther {
		return fmt.Sprintf("[%s][%s][%s]: %s", ts, l.From, l.Category, l.Text)
	}
	return fmt.Sprintf("[%s][%s]: %s", ts, l.From, l.Text)
}
