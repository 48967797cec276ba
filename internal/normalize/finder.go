package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/temirov/cmnorm/internal/tokenizer"
)

const pathSeparator = "/"

var embeddedVersionPattern = regexp.MustCompile(`\d+(?:\.\w+)+`)

// message carries one commit message in the forms the stages search.
// original keeps the decoded runes, masked blanks out placeholder tokens left
// by an earlier pass, and lowered is the lowercase form of masked. All three
// have equal length. byteOffsets maps each rune index to its byte offset in
// source, with a final entry for len(source).
type message struct {
	source      string
	byteOffsets []int
	original    []rune
	masked      []rune
	lowered     []rune
}

func newMessage(text string) message {
	originalRunes := make([]rune, 0, len(text))
	byteOffsets := make([]int, 0, len(text)+1)
	for byteOffset, value := range text {
		originalRunes = append(originalRunes, value)
		byteOffsets = append(byteOffsets, byteOffset)
	}
	byteOffsets = append(byteOffsets, len(text))
	maskedRunes := maskPlaceholders(originalRunes)
	return message{
		source:      text,
		byteOffsets: byteOffsets,
		original:    originalRunes,
		masked:      maskedRunes,
		lowered:     lowerRunes(maskedRunes),
	}
}

// findCandidates returns the distinct message substrings that refer to any of
// the changed paths, sorted for deterministic downstream processing.
func (tables compiledTables) findCandidates(text message, changedPaths []string) []string {
	found := make(map[string]struct{})
	for _, changedPath := range changedPaths {
		for _, candidate := range tables.candidatesForPath(text, changedPath) {
			if candidate != "" {
				found[candidate] = struct{}{}
			}
		}
	}
	candidates := make([]string, 0, len(found))
	for candidate := range found {
		candidates = append(candidates, candidate)
	}
	sort.Strings(candidates)
	return candidates
}

// candidatesForPath applies the exact, extension-stripped and camelCase tiers to one path.
func (tables compiledTables) candidatesForPath(text message, changedPath string) []string {
	fileName := changedPath
	if separatorIndex := strings.LastIndex(changedPath, pathSeparator); separatorIndex >= 0 {
		fileName = changedPath[separatorIndex+len(pathSeparator):]
	}
	if fileName == "" || tables.isDocumentation(fileName) {
		return nil
	}

	var candidates []string
	fileNameRunes := []rune(fileName)
	if start := indexRunes(text.lowered, lowerRunes(fileNameRunes), 0); start >= 0 {
		candidates = append(candidates, string(text.original[start:start+len(fileNameRunes)]))
	}
	if !strings.Contains(fileName, ".") {
		return candidates
	}

	reducedName := reduceFileName(fileName)
	if reducedName == "" {
		return candidates
	}
	reducedRunes := []rune(reducedName)
	reducedLower := lowerRunes(reducedRunes)
	reducedStart := indexRunes(text.lowered, reducedLower, 0)

	switch {
	case contains(tables.skipWords, string(reducedLower)):
	case contains(tables.ambiguousWords, string(reducedLower)):
		if candidate, ok := capitalizedOccurrence(text, reducedLower); ok {
			candidates = append(candidates, candidate)
		}
	case reducedStart >= 0:
		candidates = append(candidates, string(text.original[reducedStart:reducedStart+len(reducedRunes)]))
	default:
		if candidate, ok := tables.camelCaseOccurrence(text, reducedName); ok {
			candidates = append(candidates, candidate)
		}
	}
	return candidates
}

// reduceFileName strips embedded dotted versions and the trailing extension.
// A leading dot is kept, so ".travis.yml" reduces to ".travis".
func reduceFileName(fileName string) string {
	reduced := fileName
	for _, version := range embeddedVersionPattern.FindAllString(fileName, -1) {
		if version != fileName {
			reduced = strings.ReplaceAll(reduced, version, "")
		}
	}
	if reduced == "" {
		return ""
	}
	if lastDot := strings.LastIndex(reduced[1:], "."); lastDot >= 0 {
		return reduced[:lastDot+1]
	}
	return reduced
}

// capitalizedOccurrence scans for word whose first rune is uppercase in the
// original message. Each search resumes one rune past the previous match, and
// the first search starts at offset one.
func capitalizedOccurrence(text message, word []rune) (string, bool) {
	position := 0
	for {
		next := indexRunes(text.lowered, word, position+1)
		if next == -1 {
			return "", false
		}
		position = next
		if unicode.IsUpper(text.original[position]) {
			return string(text.original[position : position+len(word)]), true
		}
	}
}

// camelCaseOccurrence looks for the sub-words of identifier written as
// space-separated words, e.g. "commit processor" for CommitProcessor.
func (tables compiledTables) camelCaseOccurrence(text message, identifier string) (string, bool) {
	subWords := tokenizer.SplitIdentifier(identifier)
	if len(subWords) < 2 {
		return "", false
	}
	loweredWords := make([][]rune, len(subWords))
	for wordIndex, subWord := range subWords {
		loweredWords[wordIndex] = lowerRunes([]rune(subWord))
	}

	start := indexRunes(text.lowered, loweredWords[0], 0)
	for start >= 0 && start < len(text.lowered) {
		if end, ok := tables.matchWordSequence(text.lowered, start, loweredWords); ok {
			return string(text.original[start:end]), true
		}
		start = indexRunes(text.lowered, loweredWords[0], start+1)
	}
	return "", false
}

// matchWordSequence checks that the space-separated words at start equal
// expected, tolerating one trailing punctuation mark per word, and returns the
// end offset of the match including one trailing punctuation mark.
func (tables compiledTables) matchWordSequence(lowered []rune, start int, expected [][]rune) (int, bool) {
	bounds := wordBounds(lowered, start, len(expected))
	if len(bounds) < len(expected) {
		return 0, false
	}
	if !equalRunes(lowered[bounds[0][0]:bounds[0][1]], expected[0]) {
		return 0, false
	}
	for wordIndex, bound := range bounds {
		word := lowered[bound[0]:bound[1]]
		if len(word) >= 2 && contains(tables.punctuation, word[len(word)-1]) {
			word = word[:len(word)-1]
		}
		if !equalRunes(word, expected[wordIndex]) {
			return 0, false
		}
	}

	lastWord := bounds[len(bounds)-1]
	end := lastWord[0] + len(expected[len(expected)-1])
	if end < len(lowered) && contains(tables.punctuation, lowered[end]) {
		end++
	}
	return end, true
}
