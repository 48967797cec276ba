package normalize

import "strings"

// Tables holds the fixed lookup lists consulted while locating file and method
// references. A Tables value is read-only once handed to NewPipeline.
type Tables struct {
	// SkipWords are extension-stripped file names of documentation files that
	// are never redacted.
	SkipWords []string
	// AmbiguousWords are file names that double as ordinary English words and
	// only match when capitalized in the message.
	AmbiguousWords []string
	// Punctuation lists the single-rune marks that may trail a camelCase word.
	Punctuation []string
	// PackageSeparators precede a reference and extend it backward.
	PackageSeparators []string
	// MemberSeparators follow a reference and turn it into a method reference.
	MemberSeparators []string
	// AnnotationMarkers invalidate a reference they immediately precede.
	AnnotationMarkers []string
	// DocumentationExtensions mark changed files that are never redacted.
	DocumentationExtensions []string
}

// DefaultTables returns the lookup lists used when no configuration overrides them.
func DefaultTables() Tables {
	return Tables{
		SkipWords:               []string{"changelog", "contributing", "release", "releasenote", "readme", "releasenotes"},
		AmbiguousWords:          []string{"version", "test", "assert", "junit"},
		Punctuation:             []string{",", ".", "?", "!", ";", ":", "、"},
		PackageSeparators:       []string{".", "/"},
		MemberSeparators:        []string{".", "#"},
		AnnotationMarkers:       []string{"@"},
		DocumentationExtensions: []string{".md"},
	}
}

// compiledTables is the lookup form of Tables shared by all workers.
type compiledTables struct {
	skipWords               map[string]struct{}
	ambiguousWords          map[string]struct{}
	punctuation             map[rune]struct{}
	packageSeparators       map[rune]struct{}
	memberSeparators        map[rune]struct{}
	annotationMarkers       map[rune]struct{}
	documentationExtensions []string
}

func compileTables(tables Tables) compiledTables {
	return compiledTables{
		skipWords:               wordSet(tables.SkipWords),
		ambiguousWords:          wordSet(tables.AmbiguousWords),
		punctuation:             runeSet(tables.Punctuation),
		packageSeparators:       runeSet(tables.PackageSeparators),
		memberSeparators:        runeSet(tables.MemberSeparators),
		annotationMarkers:       runeSet(tables.AnnotationMarkers),
		documentationExtensions: append([]string(nil), tables.DocumentationExtensions...),
	}
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		trimmed := strings.TrimSpace(word)
		if trimmed == "" {
			continue
		}
		set[string(lowerRunes([]rune(trimmed)))] = struct{}{}
	}
	return set
}

// runeSet keeps the first rune of every entry; multi-rune entries are not
// meaningful as single-character marks.
func runeSet(marks []string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(marks))
	for _, mark := range marks {
		for _, markRune := range mark {
			set[markRune] = struct{}{}
			break
		}
	}
	return set
}

func (tables compiledTables) isDocumentation(fileName string) bool {
	for _, extension := range tables.documentationExtensions {
		if extension != "" && strings.HasSuffix(fileName, extension) {
			return true
		}
	}
	return false
}

func contains[T comparable](set map[T]struct{}, value T) bool {
	_, found := set[value]
	return found
}
