package lowher

import (
	"fmt"
	"strings"

	"lowher/internal/mask"
	"lowher/internal/types"
)

// validateTransformed reports placeholders that the case transform
// destroyed. Their spans cannot be restored; the output degrades but
// the call still succeeds.
func validateTransformed(transformed string, mapping types.Mapping) []string {
	var warnings []string
	for _, placeholder := range mask.Missing(transformed, mapping) {
		warnings = append(warnings, fmt.Sprintf(
			"placeholder %s lost during transform, its span will not be restored", placeholder))
	}
	return warnings
}

// validateOutput checks the restored text: no placeholder may survive,
// and every code span must appear verbatim. Placeholder-shaped text
// that was part of a protected span in the input is legitimate output,
// not a leak.
func validateOutput(output string, spans []types.Span) []string {
	var warnings []string
	for _, leaked := range mask.Leaked(output) {
		fromInput := false
		for _, span := range spans {
			if strings.Contains(span.Text, leaked) {
				fromInput = true
				break
			}
		}
		if !fromInput {
			warnings = append(warnings, fmt.Sprintf("placeholder %s leaked into output", leaked))
		}
	}
	for _, span := range spans {
		if span.Category != types.SpanCodeBlock && span.Category != types.SpanInlineCode {
			continue
		}
		if !strings.Contains(output, span.Text) {
			warnings = append(warnings, fmt.Sprintf(
				"code span altered in output: %q", span.Text))
		}
	}
	return warnings
}
