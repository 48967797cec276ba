package normalize

import "unicode"

// locateReferences returns a FileName span for every whole-word occurrence of
// each candidate in the original message. An occurrence preceded by an
// alphanumeric rune or an annotation marker, or followed by an alphanumeric
// rune, is part of a longer token and is skipped.
func (tables compiledTables) locateReferences(original []rune, candidates []string) []Span {
	var located []Span
	for _, candidate := range candidates {
		needle := []rune(candidate)
		if len(needle) == 0 {
			continue
		}
		searchFrom := 0
		for searchFrom < len(original) {
			start := indexRunes(original, needle, searchFrom)
			if start == -1 {
				break
			}
			end := start + len(needle)
			searchFrom = end
			if start > 0 && tables.continuesWord(original[start-1]) {
				continue
			}
			if end < len(original) && isAlphanumeric(original[end]) {
				continue
			}
			located = append(located, Span{Start: start, End: end, Kind: FileName})
		}
	}
	return located
}

// extendSpans grows each located reference over its package path and member
// suffix. Other occurrences of a package path found this way are added as
// FileName spans running to the next whitespace, unless they continue a word.
func (tables compiledTables) extendSpans(original []rune, located []Span) []Span {
	extended := make([]Span, 0, len(located))
	for _, reference := range located {
		start, end := reference.Start, reference.End
		kind := FileName

		var packagePath []rune
		if start > 0 && contains(tables.packageSeparators, original[start-1]) {
			pathStart := start - 1
			for pathStart > 0 && !unicode.IsSpace(original[pathStart-1]) {
				pathStart--
			}
			packagePath = original[pathStart:start]
			start = pathStart
		}

		if end < len(original) && contains(tables.memberSeparators, original[end]) {
			end = runToWhitespace(original, end+1)
			kind = MethodName
		}
		extended = append(extended, Span{Start: start, End: end, Kind: kind})

		if len(packagePath) == 0 {
			continue
		}
		searchFrom := 0
		for {
			occurrence := indexRunes(original, packagePath, searchFrom)
			if occurrence == -1 {
				break
			}
			if occurrence == start {
				searchFrom = end
				continue
			}
			if occurrence > 0 && tables.continuesWord(original[occurrence-1]) {
				searchFrom = occurrence + 1
				continue
			}
			extended = append(extended, Span{
				Start: occurrence,
				End:   runToWhitespace(original, occurrence+len(packagePath)),
				Kind:  FileName,
			})
			searchFrom = occurrence + 1
		}
	}
	return extended
}

// continuesWord reports whether a reference starting right after previous
// would be part of a longer token.
func (tables compiledTables) continuesWord(previous rune) bool {
	return isAlphanumeric(previous) || contains(tables.annotationMarkers, previous)
}

// runToWhitespace returns the offset of the first whitespace rune at or after from.
func runToWhitespace(text []rune, from int) int {
	position := from
	for position < len(text) && !unicode.IsSpace(text[position]) {
		position++
	}
	return position
}
