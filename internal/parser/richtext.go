package parser

import (
	"html"
	"regexp"
	"strings"
)

// Segment is one renderable run of question text. Emphasis marks a run that
// was authored inside {...} (braces stripped). LineBreak marks a run that
// must start on a new line.
type Segment struct {
	Text      string `json:"text"`
	Emphasis  bool   `json:"emphasis,omitempty"`
	LineBreak bool   `json:"line_break,omitempty"`
}

var (
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	emphasisRe  = regexp.MustCompile(`\{([^{}]*)\}`)
)

// SegmentText splits authored question text into renderable segments.
// HTML entities are decoded, <br> / <br/> (any case) become line breaks, and
// {...} spans become emphasis runs. When the text contains both conventions,
// each emphasis run is additionally surrounded by forced line breaks; this is
// the content-authoring contract, not general markup handling.
func SegmentText(text string) []Segment {
	decoded := html.UnescapeString(text)
	lines := lineBreakRe.Split(decoded, -1)
	breakEmphasis := len(lines) > 1

	var segments []Segment
	for lineIdx, line := range lines {
		runs := splitEmphasis(line)
		for runIdx, run := range runs {
			if run.Text == "" {
				continue
			}
			if runIdx == 0 && lineIdx > 0 {
				run.LineBreak = true
			}
			if breakEmphasis && len(segments) > 0 {
				// Force a break before the emphasis run and before whatever
				// follows it.
				if run.Emphasis || segments[len(segments)-1].Emphasis {
					run.LineBreak = true
				}
			}
			segments = append(segments, run)
		}
	}
	return segments
}

func splitEmphasis(line string) []Segment {
	var runs []Segment
	rest := line
	for {
		loc := emphasisRe.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		if before := rest[:loc[0]]; strings.TrimSpace(before) != "" {
			runs = append(runs, Segment{Text: before})
		}
		runs = append(runs, Segment{Text: rest[loc[2]:loc[3]], Emphasis: true})
		rest = rest[loc[1]:]
	}
	if strings.TrimSpace(rest) != "" {
		runs = append(runs, Segment{Text: rest})
	}
	return runs
}
