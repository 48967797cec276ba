package tokenizer

import "unicode"

// SplitIdentifier breaks an identifier into camelCase and digit-boundary sub-words.
// A boundary is placed before an uppercase rune that follows a lowercase rune or
// precedes one, and after a digit that is followed by a non-digit.
// "CommitProcessor" yields ["Commit", "Processor"], "HTTPServer2Go" yields
// ["HTTP", "Server2", "Go"].
func SplitIdentifier(identifier string) []string {
	identifierRunes := []rune(identifier)
	if len(identifierRunes) == 0 {
		return nil
	}

	var subWords []string
	wordStart := 0
	closeWord := func(position int) {
		if position > wordStart {
			subWords = append(subWords, string(identifierRunes[wordStart:position]))
			wordStart = position
		}
	}

	for runeIndex := 1; runeIndex < len(identifierRunes); runeIndex++ {
		current := identifierRunes[runeIndex]
		previous := identifierRunes[runeIndex-1]
		nextIsLower := runeIndex+1 < len(identifierRunes) && unicode.IsLower(identifierRunes[runeIndex+1])
		if unicode.IsUpper(current) && (unicode.IsLower(previous) || nextIsLower) {
			closeWord(runeIndex)
		}
		if unicode.IsDigit(current) && runeIndex+1 < len(identifierRunes) && !unicode.IsDigit(identifierRunes[runeIndex+1]) {
			closeWord(runeIndex + 1)
		}
	}
	closeWord(len(identifierRunes))
	return subWords
}
