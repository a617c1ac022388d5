package parser

import (
	"regexp"
	"strings"

	"github.com/Geun-Oh/scrollback/internal/line"
)

var (
	chatRe  = regexp.MustCompile(`^<([^<>\s]+)>\s?(.*)$`)
	joinRe  = regexp.MustCompile(`(?i)^-->|\bhas joined\b`)
	partRe  = regexp.MustCompile(`(?i)^<--|\bhas left\b`)
	quitRe  = regexp.MustCompile(`(?i)\bhas quit\b`)
	nickRe  = regexp.MustCompile(`(?i)\bis now known as\b`)
	errorRe = regexp.MustCompile(`(?i)\b(ERROR|ERR|FATAL|PANIC|CRITICAL)\b`)
	infoRe  = regexp.MustCompile(`^(\*\*\*|--|\*|-!-)\s`)
)

// Classifier assigns a category to lines that arrive without one, using
// the conventions of chat transcripts and log output.
type Classifier struct {
	// Nick, when set, marks chat lines mentioning it as pinged.
	Nick string
}

// Classify sets the category of l if it is still CategoryOther. Chat lines
// of the form "<nick> message" also get From and Text split out.
func (c Classifier) Classify(l *line.Line) {
	if l.Category != line.CategoryOther {
		return
	}

	if m := chatRe.FindStringSubmatch(l.Text); m != nil {
		l.From = m[1]
		l.Text = m[2]
		l.Category = line.CategoryChat
		if c.Nick != "" && m[1] != c.Nick && strings.Contains(strings.ToLower(m[2]), strings.ToLower(c.Nick)) {
			l.Category = line.CategoryPinged
		}
		return
	}

	l.Category = Detect(l.Text)
}

// Detect returns the category suggested by the text alone.
func Detect(text string) line.Category {
	switch {
	case joinRe.MatchString(text):
		return line.CategoryJoin
	case partRe.MatchString(text):
		return line.CategoryPart
	case quitRe.MatchString(text):
		return line.CategoryQuit
	case nickRe.MatchString(text):
		return line.CategoryNick
	case errorRe.MatchString(text):
		return line.CategoryServerError
	case infoRe.MatchString(text):
		return line.CategoryServerInfo
	default:
		return line.CategoryOther
	}
}
