package normalize

import (
	"strings"
	"unicode"
)

// substitute rewrites the message, replacing each span with its placeholder.
// Text between spans is copied byte for byte from the source, so bytes that
// are not valid UTF-8 survive. A space separates the placeholder from
// neighbouring text unless that text already ends or begins with whitespace.
func substitute(text message, spans SpanSet) string {
	if len(spans) == 0 {
		return text.source
	}
	var builder strings.Builder
	builder.Grow(len(text.source) + len(spans)*len(MethodNamePlaceholder))

	cursor := 0
	lastWritten := rune(-1)
	write := func(from, to int) {
		if from >= to {
			return
		}
		builder.WriteString(text.source[text.byteOffsets[from]:text.byteOffsets[to]])
		lastWritten = text.original[to-1]
	}

	for _, span := range spans {
		if span.Start < cursor {
			continue
		}
		write(cursor, span.Start)
		if lastWritten != -1 && !unicode.IsSpace(lastWritten) {
			builder.WriteByte(' ')
		}
		builder.WriteString(span.Kind.Placeholder())
		lastWritten = '>'
		if span.End < len(text.original) && !unicode.IsSpace(text.original[span.End]) {
			builder.WriteByte(' ')
			lastWritten = ' '
		}
		cursor = span.End
	}
	write(cursor, len(text.original))
	return builder.String()
}
