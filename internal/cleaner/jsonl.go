package cleaner

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// segmentRecord is the JSON Lines shape of one cleaned segment
type segmentRecord struct {
	TimeRange string          `json:"time_range"`
	Start     decimal.Decimal `json:"start"`
	End       decimal.Decimal `json:"end"`
	Text      string          `json:"text"`
}

// JSONLinesEncoder writes cleaned segments as one JSON object per line
type JSONLinesEncoder struct {
	writer io.Writer
	logger *zap.Logger
}

// NewJSONLinesEncoder creates a JSONLinesEncoder over writer
func NewJSONLinesEncoder(writer io.Writer, logger *zap.Logger) *JSONLinesEncoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JSONLinesEncoder{
		writer: writer,
		logger: logger,
	}
}

// EncodeSegment writes segment as a JSON line
func (e *JSONLinesEncoder) EncodeSegment(segment Segment) error {
	if err := segment.Validate(); err != nil {
		e.logger.Error("invalid segment", zap.Error(err))
		return fmt.Errorf("invalid segment: %w", err)
	}

	start, end, _ := segment.Bounds()
	jsonBytes, err := json.Marshal(segmentRecord{
		TimeRange: segment.TimeRange,
		Start:     start,
		End:       end,
		Text:      segment.Text,
	})
	if err != nil {
		e.logger.Error("failed to marshal segment to JSON", zap.Error(err))
		return fmt.Errorf("failed to marshal segment to JSON: %w", err)
	}

	if _, err := fmt.Fprintf(e.writer, "%s\n", jsonBytes); err != nil {
		e.logger.Error("failed to write JSON output", zap.Error(err))
		return fmt.Errorf("failed to write JSON output: %w", err)
	}

	e.logger.Debug("encoded JSON segment",
		zap.String("time_range", segment.TimeRange),
		zap.Int("text_length", len(segment.Text)))

	return nil
}

// Encode writes every segment of transcript in order, stopping at the first failure
func (e *JSONLinesEncoder) Encode(transcript Transcript) error {
	for i, segment := range transcript.Segments {
		if err := e.EncodeSegment(segment); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}
