package output

import "encoding/xml"

const (
	indentSpacer = "  "

	separatorLine = "----------------------------------------"

	xmlHeader      = xml.Header
	xmlRootElement = "result"
	xmlRecordsName = "records"
	xmlSummaryName = "summary"

	jsonRecordsKey = "records"
	jsonSummaryKey = "summary"

	recordHeaderFormat      = "Record %d\n"
	tokenLineFormat         = "Tokens: %d\n"
	truncatedLine           = "Truncated: exceeds token limit\n"
	spanLineFormat          = "  [%d, %d) %s %s\n"
	noSpansLine             = "  (no spans)\n"
	summaryHeaderFormat     = "Summary: %d record%s, %d changed\n"
	summaryPlaceholderLine  = "  %s: %d\n"
	summaryTokensFormat     = "Tokens: %d"
	summaryModelFormat      = " (model: %s)"
	summaryTruncationFormat = "Over limit: %d\n"
)

func pluralSuffix(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
