package normalize

import (
	"strings"

	"github.com/temirov/cmnorm/internal/types"
)

var summaryPlaceholders = []string{
	FileNamePlaceholder,
	MethodNamePlaceholder,
	URLPlaceholder,
	VersionPlaceholder,
	IssuePlaceholder,
}

// Summarize counts changed records and placeholder occurrences across a batch.
// originals and normalized must be positionally aligned.
func Summarize(originals []string, normalized []string) types.NormalizationSummary {
	summary := types.NormalizationSummary{TotalRecords: len(normalized)}
	counts := make([]int, len(summaryPlaceholders))
	for recordIndex, normalizedMessage := range normalized {
		if recordIndex < len(originals) && originals[recordIndex] != normalizedMessage {
			summary.ChangedRecords++
		}
		for placeholderIndex, placeholder := range summaryPlaceholders {
			counts[placeholderIndex] += strings.Count(normalizedMessage, placeholder)
		}
	}
	for placeholderIndex, placeholder := range summaryPlaceholders {
		if counts[placeholderIndex] == 0 {
			continue
		}
		summary.Placeholders = append(summary.Placeholders, types.PlaceholderCount{
			Placeholder: placeholder,
			Count:       counts[placeholderIndex],
		})
	}
	return summary
}
