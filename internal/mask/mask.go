// Package mask replaces protected spans with placeholder tokens before
// the case transform and restores them afterwards. Placeholders follow
// the template <<<span_N>>>: digits, underscores and lowercase letters
// only, so a blind lowercase pass leaves them byte-identical.
package mask

import (
	"fmt"
	"regexp"
	"strings"

	"lowher/internal/logger"
	"lowher/internal/types"
)

var placeholderPattern = regexp.MustCompile(`<<<span_\d+>>>`)

// Placeholder returns the placeholder token for span index n.
func Placeholder(n int) string {
	return fmt.Sprintf("<<<span_%d>>>", n)
}

// Mask carves each span out of text by its byte interval and substitutes
// a placeholder unique to that span instance. Spans must be sorted by
// start offset and non-overlapping (the extractor guarantees both).
// Replacement runs highest offset first so earlier intervals stay valid;
// the returned mapping is in discovery (ascending) order.
//
// Because replacement is positional, two spans with identical literal
// text can never consume one another: each instance restores to its own
// original location.
func Mask(text string, spans []types.Span) (string, types.Mapping) {
	if len(spans) == 0 {
		return text, nil
	}

	mapping := make(types.Mapping, len(spans))
	for i, s := range spans {
		mapping[i] = types.MappingEntry{
			Placeholder: Placeholder(i),
			Original:    s.Text,
		}
	}

	var sb strings.Builder
	sb.Grow(len(text))
	prev := 0
	for i, s := range spans {
		sb.WriteString(text[prev:s.Start])
		sb.WriteString(mapping[i].Placeholder)
		prev = s.End
	}
	sb.WriteString(text[prev:])

	masked := sb.String()
	logger.Debug("masked protected spans",
		logger.Int("spanCount", len(spans)),
		logger.Int("originalLength", len(text)),
		logger.Int("maskedLength", len(masked)))

	return masked, mapping
}

// Restore substitutes the placeholders in text back with their original
// spans in a single pass. Scanning the transformed text once means text
// introduced by a replacement is never rescanned, so a restored code
// block that itself contains placeholder-shaped characters cannot be
// matched a second time. Placeholders are unique per span instance, so
// the order entries were created in does not affect the result. A
// placeholder missing from text (destroyed by the transform) is skipped
// with a warning; the transform never fails over it.
func Restore(text string, mapping types.Mapping) string {
	byPlaceholder := make(map[string]string, len(mapping))
	for _, entry := range mapping {
		byPlaceholder[entry.Placeholder] = entry.Original
	}

	restored := make(map[string]bool, len(mapping))
	result := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		original, ok := byPlaceholder[match]
		if !ok {
			// Placeholder-shaped text that is not ours; leave it.
			return match
		}
		restored[match] = true
		return original
	})

	for _, entry := range mapping {
		if !restored[entry.Placeholder] {
			logger.Warn("placeholder lost during transform, span not restored",
				logger.String("placeholder", entry.Placeholder))
		}
	}

	return result
}

// Missing reports the placeholders from mapping that are absent from
// text. Useful for validating the transform output before restoration.
func Missing(text string, mapping types.Mapping) []string {
	var missing []string
	for _, entry := range mapping {
		if !strings.Contains(text, entry.Placeholder) {
			missing = append(missing, entry.Placeholder)
		}
	}
	return missing
}

// Leaked returns any placeholder tokens still present in text. After
// restoration the result should be empty; leftovers mean a placeholder
// was corrupted into a shape Restore could not match, or the input
// contained a placeholder-shaped literal that extraction failed to
// protect.
func Leaked(text string) []string {
	return placeholderPattern.FindAllString(text, -1)
}
