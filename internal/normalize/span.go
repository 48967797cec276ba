package normalize

// SpanKind selects the placeholder that replaces a span.
type SpanKind int

const (
	// FileName marks a bare file or class reference.
	FileName SpanKind = iota
	// MethodName marks a member access such as AClass.getInt() or Type#method.
	MethodName
)

// Placeholder tokens written into normalized messages.
const (
	FileNamePlaceholder   = "<file_name>"
	MethodNamePlaceholder = "<method_name>"
	URLPlaceholder        = "<url>"
	VersionPlaceholder    = "<version>"
	IssuePlaceholder      = "<issue_link>"
)

// String returns the kind name used in rendered output.
func (kind SpanKind) String() string {
	if kind == MethodName {
		return "method_name"
	}
	return "file_name"
}

// Placeholder returns the token written in place of a span of this kind.
func (kind SpanKind) Placeholder() string {
	if kind == MethodName {
		return MethodNamePlaceholder
	}
	return FileNamePlaceholder
}

// Span is a half-open rune interval [Start, End) of a message.
type Span struct {
	Start int
	End   int
	Kind  SpanKind
}

// Len reports the number of runes covered by the span.
func (span Span) Len() int {
	return span.End - span.Start
}

// Overlaps reports whether the two spans share at least one rune.
func (span Span) Overlaps(other Span) bool {
	return span.Start < other.End && other.Start < span.End
}

// SpanSet is an ordered, non-overlapping sequence of spans for one message.
type SpanSet []Span

// Text returns the substring of message covered by span, in runes.
func (span Span) Text(message []rune) string {
	return string(message[span.Start:span.End])
}
