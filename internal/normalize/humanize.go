package normalize

import "strings"

var humanizedPlaceholders = strings.NewReplacer(
	URLPlaceholder, "$url",
	VersionPlaceholder, "$versionNumber",
	IssuePlaceholder, "$issueLink",
	MethodNamePlaceholder, "$methodName",
	FileNamePlaceholder, "$fileName",
)

// Humanize rewrites placeholders into the $-prefixed word tokens expected by
// sentence classifiers whose vocabularies split on angle brackets.
func Humanize(normalized string) string {
	return humanizedPlaceholders.Replace(normalized)
}
