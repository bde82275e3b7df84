package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Segment
	}{
		{
			name:     "plain text",
			input:    "Choose the correct answer",
			expected: []Segment{{Text: "Choose the correct answer"}},
		},
		{
			name:  "emphasis span with braces stripped",
			input: "Pick the {best} option",
			expected: []Segment{
				{Text: "Pick the "},
				{Text: "best", Emphasis: true},
				{Text: " option"},
			},
		},
		{
			name:  "line breaks split lines",
			input: "First line<br/>Second line",
			expected: []Segment{
				{Text: "First line"},
				{Text: "Second line", LineBreak: true},
			},
		},
		{
			name:  "break tag is case-insensitive and tolerates spacing",
			input: "One<BR>Two<br />Three",
			expected: []Segment{
				{Text: "One"},
				{Text: "Two", LineBreak: true},
				{Text: "Three", LineBreak: true},
			},
		},
		{
			name:  "emphasis forced onto own line when breaks present",
			input: "Read this<br/>word {carefully} now",
			expected: []Segment{
				{Text: "Read this"},
				{Text: "word ", LineBreak: true},
				{Text: "carefully", Emphasis: true, LineBreak: true},
				{Text: " now", LineBreak: true},
			},
		},
		{
			name:  "html entities decoded",
			input: "Tom &amp; Jerry",
			expected: []Segment{
				{Text: "Tom & Jerry"},
			},
		},
		{
			name:  "encoded break tag",
			input: "One&lt;br/&gt;Two",
			expected: []Segment{
				{Text: "One"},
				{Text: "Two", LineBreak: true},
			},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments := SegmentText(tt.input)
			require.Equal(t, len(tt.expected), len(segments))
			for i := range tt.expected {
				assert.Equal(t, tt.expected[i], segments[i], "segment %d", i)
			}
		})
	}
}
