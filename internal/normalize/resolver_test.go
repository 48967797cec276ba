package normalize

import "testing"

func TestResolveSpans(t *testing.T) {
	testCases := []struct {
		name     string
		spans    []Span
		expected SpanSet
	}{
		{
			name:     "sorted_by_start",
			spans:    []Span{{Start: 10, End: 12}, {Start: 0, End: 4}},
			expected: SpanSet{{Start: 0, End: 4}, {Start: 10, End: 12}},
		},
		{
			name:     "same_start_keeps_longer",
			spans:    []Span{{Start: 0, End: 4}, {Start: 0, End: 9}},
			expected: SpanSet{{Start: 0, End: 9}},
		},
		{
			name:     "same_start_keeps_longer_when_first",
			spans:    []Span{{Start: 0, End: 9}, {Start: 0, End: 4}},
			expected: SpanSet{{Start: 0, End: 9}},
		},
		{
			name:     "identical_intervals_prefer_method",
			spans:    []Span{{Start: 2, End: 6, Kind: FileName}, {Start: 2, End: 6, Kind: MethodName}},
			expected: SpanSet{{Start: 2, End: 6, Kind: MethodName}},
		},
		{
			name:     "contained_span_dropped",
			spans:    []Span{{Start: 0, End: 10}, {Start: 3, End: 5}, {Start: 4, End: 10}},
			expected: SpanSet{{Start: 0, End: 10}},
		},
		{
			name:     "partial_overlap_first_wins",
			spans:    []Span{{Start: 0, End: 5}, {Start: 3, End: 8}, {Start: 8, End: 9}},
			expected: SpanSet{{Start: 0, End: 5}, {Start: 8, End: 9}},
		},
		{
			name:     "touching_spans_kept",
			spans:    []Span{{Start: 0, End: 5}, {Start: 5, End: 8}},
			expected: SpanSet{{Start: 0, End: 5}, {Start: 5, End: 8}},
		},
		{
			name:     "empty",
			spans:    nil,
			expected: SpanSet{},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := resolveSpans(testCase.spans)
			if len(actual) != len(testCase.expected) {
				t.Fatalf("expected %v, got %v", testCase.expected, actual)
			}
			for spanIndex := range actual {
				if actual[spanIndex] != testCase.expected[spanIndex] {
					t.Fatalf("span %d = %+v, expected %+v", spanIndex, actual[spanIndex], testCase.expected[spanIndex])
				}
			}
		})
	}
}

func TestSubstitutePlaceholderSpacing(t *testing.T) {
	actual := substitute(newMessage("a.Foo#bar,baz"), SpanSet{{Start: 0, End: 9, Kind: MethodName}})
	if actual != "<method_name> ,baz" {
		t.Fatalf("unexpected substitution %q", actual)
	}
}

func TestSubstituteSkipsOverlappingSpan(t *testing.T) {
	actual := substitute(newMessage("alpha beta gamma"), SpanSet{{Start: 0, End: 5}, {Start: 3, End: 10}})
	if actual != "<file_name> beta gamma" {
		t.Fatalf("unexpected substitution %q", actual)
	}
}

func TestSubstituteKeepsInvalidBytesBetweenSpans(t *testing.T) {
	source := "Foo \xff bar Foo\xfe"
	actual := substitute(newMessage(source), SpanSet{{Start: 0, End: 3}, {Start: 10, End: 13}})
	expected := "<file_name> \xff bar <file_name> \xfe"
	if actual != expected {
		t.Fatalf("substitute = %q, expected %q", actual, expected)
	}
}
