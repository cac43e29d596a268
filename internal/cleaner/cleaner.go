package cleaner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// ContinuationPolicy decides whether the continuation flag survives a segment boundary
type ContinuationPolicy int

const (
	// ResetPerSegment clears the continuation flag at the start of every segment
	ResetPerSegment ContinuationPolicy = iota
	// CarryAcrossSegments keeps the flag from the last sentence of the previous segment
	CarryAcrossSegments
)

// ParseContinuationPolicy maps a configuration value onto a ContinuationPolicy
func ParseContinuationPolicy(value string) (ContinuationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "reset":
		return ResetPerSegment, nil
	case "carry":
		return CarryAcrossSegments, nil
	default:
		return ResetPerSegment, fmt.Errorf("unknown continuation policy %q (expected reset or carry)", value)
	}
}

func (p ContinuationPolicy) String() string {
	switch p {
	case ResetPerSegment:
		return "reset"
	case CarryAcrossSegments:
		return "carry"
	default:
		return fmt.Sprintf("ContinuationPolicy(%d)", int(p))
	}
}

// Cleaner turns raw timestamped transcripts into readable, resegmented text.
// It holds no per-call state and is safe for concurrent use.
type Cleaner struct {
	splitter SentenceSplitter
	policy   ContinuationPolicy
	logger   *zap.Logger
}

// NewCleaner creates a Cleaner with the given splitter and policy
func NewCleaner(splitter SentenceSplitter, policy ContinuationPolicy) *Cleaner {
	return NewCleanerWithLogger(splitter, policy, nil)
}

// NewCleanerWithLogger creates a Cleaner with the given splitter, policy and logger
func NewCleanerWithLogger(splitter SentenceSplitter, policy ContinuationPolicy, logger *zap.Logger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cleaner{
		splitter: splitter,
		policy:   policy,
		logger:   logger,
	}
}

// NewDefaultCleaner creates a Cleaner backed by the English Punkt splitter
func NewDefaultCleaner(policy ContinuationPolicy, logger *zap.Logger) (*Cleaner, error) {
	splitter, err := NewPunktSplitter()
	if err != nil {
		return nil, err
	}
	return NewCleanerWithLogger(splitter, policy, logger), nil
}

// Policy returns the continuation policy in use
func (c *Cleaner) Policy() ContinuationPolicy {
	return c.policy
}

// Clean normalizes raw, extracts its segments and resegments each body.
// A transcript without markers yields an empty Transcript and no error.
func (c *Cleaner) Clean(raw string) (Transcript, error) {
	normalized := Normalize(raw)
	segments := ExtractSegments(normalized)

	if len(segments) == 0 {
		c.logger.Debug("no timestamped segments found",
			zap.Int("input_length", len(raw)))
		return Transcript{}, nil
	}

	cleaned := make([]Segment, 0, len(segments))
	continuing := false

	for i, segment := range segments {
		if c.policy == ResetPerSegment {
			continuing = false
		}

		text, next, err := c.resegment(segment.Text, continuing)
		if err != nil {
			return Transcript{}, fmt.Errorf("segment %d [%s]: %w", i, segment.TimeRange, err)
		}
		continuing = next

		cleaned = append(cleaned, Segment{
			TimeRange: segment.TimeRange,
			Text:      strings.TrimSpace(text),
		})
	}

	c.logger.Debug("cleaned transcript",
		zap.Int("segments", len(cleaned)),
		zap.String("policy", c.policy.String()))

	return Transcript{Segments: cleaned}, nil
}

// Resegment splits body into sentences and rejoins them with continuation lowercasing,
// starting with a cleared continuation flag
func (c *Cleaner) Resegment(body string) (string, error) {
	text, _, err := c.resegment(body, false)
	return text, err
}

// resegment returns the rejoined sentences and the continuation flag left by the last sentence
func (c *Cleaner) resegment(body string, continuing bool) (string, bool, error) {
	if c.splitter == nil {
		return "", continuing, fmt.Errorf("%w: no sentence splitter configured", ErrTokenization)
	}

	sentences, err := c.splitter.Split(body)
	if err != nil {
		if !errors.Is(err, ErrTokenization) {
			err = fmt.Errorf("%w: %w", ErrTokenization, err)
		}
		return "", continuing, err
	}

	processed := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		sentence = FixStandaloneI(sentence)

		if continuing {
			sentence = lowerFirst(sentence)
		}

		continuing = !endsSentence(sentence)
		processed = append(processed, sentence)
	}

	return strings.Join(processed, " "), continuing, nil
}

func endsSentence(sentence string) bool {
	return strings.HasSuffix(sentence, ".") ||
		strings.HasSuffix(sentence, "!") ||
		strings.HasSuffix(sentence, "?")
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}
