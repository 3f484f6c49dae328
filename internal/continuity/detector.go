package continuity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrUnknownDetector = errors.New("unknown break detector")

// BreakDetector decides whether scene text announces an intentional scene break.
type BreakDetector interface {
	// DetectBreak returns the matched cue and true if text contains a break cue.
	DetectBreak(text string) (string, bool)
}

// BreakFunc adapts a plain function to BreakDetector.
type BreakFunc func(text string) (string, bool)

func (f BreakFunc) DetectBreak(text string) (string, bool) {
	return f(text)
}

// DefaultCues are phrases that signal a cut, fade or location change.
var DefaultCues = []string{
	"cut to",
	"smash cut",
	"jump cut",
	"fade in",
	"fade out",
	"fade to",
	"dissolve to",
	"meanwhile",
	"elsewhere",
	"later that",
	"the next day",
	"years later",
	"hours later",
	"flashback",
	"new location",
	"scene change",
	"ext.",
	"int.",
}

// KeywordDetector matches whole-word cue phrases, case-insensitive.
type KeywordDetector struct {
	cues []string
	re   *regexp.Regexp
}

// NewKeywordDetector builds a detector for cues; empty cues use DefaultCues.
func NewKeywordDetector(cues ...string) *KeywordDetector {
	if len(cues) == 0 {
		cues = DefaultCues
	}
	parts := make([]string, 0, len(cues))
	for _, c := range cues {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			continue
		}
		p := regexp.QuoteMeta(c)
		p = strings.ReplaceAll(p, " ", `\s+`)
		if !strings.HasSuffix(c, ".") {
			p += `\b`
		}
		parts = append(parts, p)
	}
	d := &KeywordDetector{cues: cues}
	if len(parts) > 0 {
		d.re = regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `)`)
	}
	return d
}

func (d *KeywordDetector) DetectBreak(text string) (string, bool) {
	if d.re == nil {
		return "", false
	}
	m := d.re.FindString(text)
	if m == "" {
		return "", false
	}
	return strings.ToLower(strings.Join(strings.Fields(m), " ")), true
}

type neverBreak struct{}

func (neverBreak) DetectBreak(string) (string, bool) { return "", false }

// NewBreakDetector creates a detector based on the specified variant
func NewBreakDetector(variant string) (BreakDetector, error) {
	switch variant {
	case "keyword", "":
		return NewKeywordDetector(), nil
	case "none":
		return neverBreak{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, variant)
	}
}
