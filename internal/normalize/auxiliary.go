package normalize

import (
	"regexp"
	"sort"
	"strings"
)

const (
	codeFence         = "```"
	signOffMarker     = "Signed-off-by"
	signOffTerminator = ">"
	svnMarker         = "git-svn-id: "
)

var (
	urlPattern     = regexp.MustCompile(`http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	svnURLPattern  = regexp.MustCompile(`git-svn-id:\s+(?:http[s]?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+\s+(?:[a-z]|[0-9])+(?:-(?:[a-z]|[0-9])+){4})`)
	taggedVersion  = regexp.MustCompile(`[vVr]?\d+(?:\.\w+)+(?:-\w*){1,2}`)
	plainVersion   = regexp.MustCompile(`[vVr]?\d+(?:\.\w+)+`)
	issueReference = regexp.MustCompile(`#\d*`)
	signOffQuotes  = []byte{'"', '\''}
)

// StripCodeBlocks deletes every balanced pair of triple-backtick fences together
// with the text between them. An unmatched trailing fence is left in place.
func StripCodeBlocks(text string) string {
	var builder strings.Builder
	copied := 0
	searchFrom := 0
	for {
		open := strings.Index(text[searchFrom:], codeFence)
		if open == -1 {
			break
		}
		open += searchFrom
		closing := strings.Index(text[open+len(codeFence):], codeFence)
		if closing == -1 {
			break
		}
		closing += open + len(codeFence)
		builder.WriteString(text[copied:open])
		copied = closing + len(codeFence)
		searchFrom = copied
	}
	if copied == 0 {
		return text
	}
	builder.WriteString(text[copied:])
	return builder.String()
}

// StripSignOff removes the first unquoted Signed-off-by trailer through the
// closing angle bracket of its e-mail address. A trailer without a closing
// bracket is left untouched.
func StripSignOff(text string) string {
	searchFrom := 0
	for {
		found := strings.Index(text[searchFrom:], signOffMarker)
		if found == -1 {
			return text
		}
		start := searchFrom + found
		if start > 0 && isQuote(text[start-1]) {
			searchFrom = start + len(signOffMarker)
			continue
		}
		terminator := strings.Index(text[start:], signOffTerminator)
		if terminator == -1 {
			return text
		}
		return text[:start] + text[start+terminator+len(signOffTerminator):]
	}
}

func isQuote(value byte) bool {
	for _, quote := range signOffQuotes {
		if value == quote {
			return true
		}
	}
	return false
}

// RedactURLs replaces http and https links with <url>. Messages carrying a
// git-svn-id trailer only have the trailer's repository URL and UUID replaced.
func RedactURLs(text string) string {
	pattern := urlPattern
	if strings.Contains(text, svnMarker) {
		pattern = svnURLPattern
	}
	return replaceDescending(text, pattern.FindAllString(text, -1), URLPlaceholder)
}

// RedactVersions replaces version strings with <version>, first those carrying
// pre-release or build suffixes, then plain dotted versions.
func RedactVersions(text string) string {
	redacted := replaceDescending(text, taggedVersion.FindAllString(text, -1), VersionPlaceholder)
	return replaceDescending(redacted, plainVersion.FindAllString(redacted, -1), VersionPlaceholder)
}

// RedactIssues replaces #-prefixed issue references with <issue_link>.
func RedactIssues(text string) string {
	return replaceDescending(text, issueReference.FindAllString(text, -1), IssuePlaceholder)
}

// replaceDescending replaces every distinct match, visiting matches in
// descending lexicographic order.
func replaceDescending(text string, matches []string, placeholder string) string {
	if len(matches) == 0 {
		return text
	}
	distinct := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		if _, duplicate := seen[match]; duplicate || match == "" {
			continue
		}
		seen[match] = struct{}{}
		distinct = append(distinct, match)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(distinct)))
	for _, match := range distinct {
		text = strings.ReplaceAll(text, match, placeholder)
	}
	return text
}
