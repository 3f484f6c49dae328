package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ivlev/storyboard/internal/scene"
)

// Format is the input-format hint.
type Format string

const (
	FormatAuto      Format = "auto"
	FormatTimestamp Format = "timestamp"
	FormatSections  Format = "sections"
	FormatPlain     Format = "plain"
)

// ParseFormat maps a CLI value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatTimestamp, FormatSections, FormatPlain:
		return f, nil
	default:
		return "", fmt.Errorf("unknown input format: %q", s)
	}
}

type Options struct {
	Format Format
	// TargetDuration is carried through for the timing estimator; 0 means unset.
	TargetDuration float64
}

type Result struct {
	Scenes         []scene.Scene
	TargetDuration float64
	Warnings       scene.Warnings
}

var (
	// [3], [3.5], [3.5s] as prefix or suffix
	rePrefixMarker = regexp.MustCompile(`^\[\s*(\d+(?:\.\d+)?)\s*s?\s*\]\s*(.*)$`)
	reSuffixMarker = regexp.MustCompile(`^(.*?)\s*\[\s*(\d+(?:\.\d+)?)\s*s?\s*\]$`)

	// Something that looks like an attempt at a marker but does not parse.
	reBrokenPrefix = regexp.MustCompile(`^\[\s*[-+.\d][^\]]*(\]|$)`)
	reBrokenSuffix = regexp.MustCompile(`\[\s*[-+.\d][^\]]*\]$|\[\s*\]$|^\[\s*\]`)

	reBracketHeader = regexp.MustCompile(`^\[\s*([A-Za-z][A-Za-z \-]*?)\s*(\d+)?\s*\]$`)
	reColonHeader   = regexp.MustCompile(`^([A-Za-z][A-Za-z \-]*?)\s*(\d+)?\s*:$`)
	reHashHeader    = regexp.MustCompile(`^#+\s*([A-Za-z][A-Za-z \-]*?)\s*(\d+)?$`)
)

// Parse turns raw text into ordered scene stubs. Blank lines are dropped,
// section headers update the current section, and inline markers become
// explicit durations. Malformed markers never fail the parse.
func Parse(text string, opts Options) Result {
	res := Result{TargetDuration: opts.TargetDuration}

	format := opts.Format
	if format == "" {
		format = FormatAuto
	}
	if _, err := ParseFormat(string(format)); err != nil {
		res.Warnings.Addf("%v, falling back to %s", err, FormatAuto)
		format = FormatAuto
	}
	parseMarkers := format == FormatAuto || format == FormatTimestamp
	parseHeaders := format == FormatAuto || format == FormatSections

	current := scene.SectionNone
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if parseHeaders {
			if sec, ok := sectionHeader(line); ok {
				current = sec
				continue
			}
		}

		sc := scene.Scene{
			Order:      len(res.Scenes),
			SourceText: line,
			Section:    current,
		}

		if parseMarkers {
			body, dur, state := splitMarker(line)
			switch state {
			case markerOK:
				sc.SourceText = body
				sc.DurationSec = dur
				sc.Explicit = true
				if dur == 0 {
					res.Warnings.Addf("line %d: zero-duration marker", lineNo)
				}
				if body == "" {
					res.Warnings.Addf("line %d: timing marker without text", lineNo)
				}
			case markerBroken:
				res.Warnings.Addf("line %d: malformed timing marker, treated as plain text", lineNo)
			}
		}

		res.Scenes = append(res.Scenes, sc)
	}

	return res
}

type markerState int

const (
	markerNone markerState = iota
	markerOK
	markerBroken
)

func splitMarker(line string) (string, float64, markerState) {
	if m := rePrefixMarker.FindStringSubmatch(line); m != nil {
		if d, err := strconv.ParseFloat(m[1], 64); err == nil {
			return strings.TrimSpace(m[2]), d, markerOK
		}
		return line, 0, markerBroken
	}
	if m := reSuffixMarker.FindStringSubmatch(line); m != nil {
		if d, err := strconv.ParseFloat(m[2], 64); err == nil {
			return strings.TrimSpace(m[1]), d, markerOK
		}
		return line, 0, markerBroken
	}
	if reBrokenPrefix.MatchString(line) || reBrokenSuffix.MatchString(line) {
		return line, 0, markerBroken
	}
	return line, 0, markerNone
}

// sectionHeader recognises "[Verse 2]", "Chorus:" and "# Bridge".
func sectionHeader(line string) (scene.Section, bool) {
	for _, re := range []*regexp.Regexp{reBracketHeader, reColonHeader, reHashHeader} {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if sec, ok := scene.ParseSection(m[1]); ok {
			return sec, true
		}
	}
	return scene.SectionNone, false
}
