package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/rbright/mockview/internal/session"
)

var markdown = goldmark.New()

// SummaryMarkdown renders the summary as a Markdown document.
func SummaryMarkdown(responses []session.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "## Final Score: %s/10\n", FormatAverage(responses))
	for i, r := range responses {
		fmt.Fprintf(&b, "\n### Q%d: %s\n\n", i+1, inline(r.Question))
		fmt.Fprintf(&b, "**Answer:** %s\n\n", inline(r.Answer))
		fmt.Fprintf(&b, "**Feedback:** %s\n\n", inline(r.Feedback))
		fmt.Fprintf(&b, "**Score:** %d/10\n", r.Score)
	}
	return b.String()
}

// SummaryHTML renders the Markdown summary to an HTML fragment. Raw HTML in answers is omitted.
func SummaryHTML(responses []session.Response) ([]byte, error) {
	var out bytes.Buffer
	if err := markdown.Convert([]byte(SummaryMarkdown(responses)), &out); err != nil {
		return nil, fmt.Errorf("render report summary: %w", err)
	}
	return out.Bytes(), nil
}

// inline keeps free text on one Markdown line.
func inline(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
