package normalize

import "unicode"

// placeholderMask replaces every rune of a placeholder token in the masked
// form of a message. It is whitespace, so no search or extension crosses it.
const placeholderMask = '\n'

var placeholderRunes = [][]rune{
	[]rune(FileNamePlaceholder),
	[]rune(MethodNamePlaceholder),
	[]rune(URLPlaceholder),
	[]rune(VersionPlaceholder),
	[]rune(IssuePlaceholder),
}

// maskPlaceholders returns a copy of input with every placeholder token
// overwritten by placeholderMask.
func maskPlaceholders(input []rune) []rune {
	masked := append([]rune(nil), input...)
	for _, placeholder := range placeholderRunes {
		searchFrom := 0
		for {
			start := indexRunes(input, placeholder, searchFrom)
			if start == -1 {
				break
			}
			for position := start; position < start+len(placeholder); position++ {
				masked[position] = placeholderMask
			}
			searchFrom = start + len(placeholder)
		}
	}
	return masked
}

// lowerRunes lowercases rune by rune so offsets in the result line up with the input.
func lowerRunes(input []rune) []rune {
	lowered := make([]rune, len(input))
	for runeIndex, value := range input {
		lowered[runeIndex] = unicode.ToLower(value)
	}
	return lowered
}

// indexRunes returns the first offset at or after from where needle occurs in
// haystack, or -1.
func indexRunes(haystack, needle []rune, from int) int {
	if from < 0 {
		from = 0
	}
	if len(needle) == 0 || len(needle) > len(haystack) {
		return -1
	}
	lastStart := len(haystack) - len(needle)
	for start := from; start <= lastStart; start++ {
		if haystack[start] != needle[0] {
			continue
		}
		matched := true
		for offset := 1; offset < len(needle); offset++ {
			if haystack[start+offset] != needle[offset] {
				matched = false
				break
			}
		}
		if matched {
			return start
		}
	}
	return -1
}

func equalRunes(left, right []rune) bool {
	if len(left) != len(right) {
		return false
	}
	for runeIndex := range left {
		if left[runeIndex] != right[runeIndex] {
			return false
		}
	}
	return true
}

func isAlphanumeric(value rune) bool {
	return unicode.IsLetter(value) || unicode.IsNumber(value)
}

// wordBounds splits text[from:] on single spaces and returns the [start, end)
// offsets of at most limit words. Consecutive spaces produce empty words.
func wordBounds(text []rune, from int, limit int) [][2]int {
	var bounds [][2]int
	wordStart := from
	for position := from; position < len(text) && len(bounds) < limit; position++ {
		if text[position] == ' ' {
			bounds = append(bounds, [2]int{wordStart, position})
			wordStart = position + 1
		}
	}
	if len(bounds) < limit {
		bounds = append(bounds, [2]int{wordStart, len(text)})
	}
	return bounds
}
