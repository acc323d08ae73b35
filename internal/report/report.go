// Package report renders interview responses as JSON, PDF, and HTML summaries.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/rbright/mockview/internal/session"
)

// Title heads every rendered report.
const Title = "AI Interview Chatbot - Summary"

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// FileName returns the suggested download name for a session export.
func FileName(sessionID string, f Format) string {
	return fmt.Sprintf("report_%s.%s", sessionID, f)
}

// Average returns the mean score, or 0 for no responses.
func Average(responses []session.Response) float64 {
	if len(responses) == 0 {
		return 0
	}
	sum := 0
	for _, r := range responses {
		sum += r.Score
	}
	return float64(sum) / float64(len(responses))
}

// FormatAverage renders the mean score with two decimals.
func FormatAverage(responses []session.Response) string {
	return fmt.Sprintf("%.2f", Average(responses))
}

// JSON encodes responses as an indented array in submission order.
func JSON(responses []session.Response) ([]byte, error) {
	if responses == nil {
		responses = []session.Response{}
	}
	out, err := json.MarshalIndent(responses, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report json: %w", err)
	}
	return out, nil
}
