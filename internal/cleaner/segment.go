package cleaner

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// markerRegex matches a segment marker such as "[12.50 - 14.00]" and captures the time range
var markerRegex = regexp.MustCompile(`\[(\d+\.\d+ - \d+\.\d+)\]`)

// Segment represents a timestamp-bounded span of transcript text
type Segment struct {
	TimeRange string `json:"time_range"`
	Text      string `json:"text"`
}

// ExtractSegments splits normalized transcript text into segments in source order.
// Each body runs from the end of one marker up to the next marker or the end of input.
// Returns an empty slice when no marker is found.
func ExtractSegments(text string) []Segment {
	locs := markerRegex.FindAllStringSubmatchIndex(text, -1)
	segments := make([]Segment, 0, len(locs))

	for i, loc := range locs {
		bodyEnd := len(text)
		if i+1 < len(locs) {
			bodyEnd = locs[i+1][0]
		}

		segments = append(segments, Segment{
			TimeRange: text[loc[2]:loc[3]],
			Text:      strings.TrimSpace(text[loc[1]:bodyEnd]),
		})
	}

	return segments
}

// String renders the segment as a cleaned transcript line
func (s Segment) String() string {
	if s.Text == "" {
		return "[" + s.TimeRange + "]"
	}
	return "[" + s.TimeRange + "] " + s.Text
}

// Bounds parses the start and end of the time range as exact decimal seconds
func (s Segment) Bounds() (start, end decimal.Decimal, err error) {
	parts := strings.SplitN(s.TimeRange, " - ", 2)
	if len(parts) != 2 {
		return decimal.Zero, decimal.Zero, fmt.Errorf("malformed time range %q", s.TimeRange)
	}

	start, err = decimal.NewFromString(parts[0])
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid start in time range %q: %w", s.TimeRange, err)
	}

	end, err = decimal.NewFromString(parts[1])
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("invalid end in time range %q: %w", s.TimeRange, err)
	}

	return start, end, nil
}

// Duration returns the length of the segment in seconds
func (s Segment) Duration() (decimal.Decimal, error) {
	start, end, err := s.Bounds()
	if err != nil {
		return decimal.Zero, err
	}
	return end.Sub(start), nil
}

// Validate checks if the Segment has a usable time range
func (s Segment) Validate() error {
	start, end, err := s.Bounds()
	if err != nil {
		return err
	}

	if end.LessThan(start) {
		return fmt.Errorf("end must not be before start in time range %q", s.TimeRange)
	}

	return nil
}

// Transcript is the cleaned, resegmented result of one raw transcript
type Transcript struct {
	Segments []Segment `json:"segments"`
}

// Empty reports whether no timestamped segments were found
func (t Transcript) Empty() bool {
	return len(t.Segments) == 0
}

// String joins the segment lines with newlines
func (t Transcript) String() string {
	lines := make([]string, len(t.Segments))
	for i, segment := range t.Segments {
		lines[i] = segment.String()
	}
	return strings.Join(lines, "\n")
}

// SpeechDuration sums the durations of all segments, skipping segments whose time range does not parse
func (t Transcript) SpeechDuration() decimal.Decimal {
	total := decimal.Zero
	for _, segment := range t.Segments {
		if d, err := segment.Duration(); err == nil {
			total = total.Add(d)
		}
	}
	return total
}
