package normalize

import (
	"context"
	"testing"

	"github.com/temirov/cmnorm/internal/types"
)

type normalizeTestCase struct {
	name         string
	message      string
	changedPaths []string
	expected     string
}

func TestNormalizeScenarios(t *testing.T) {
	testCases := []normalizeTestCase{
		{
			name:         "file_name_without_extension",
			message:      "Update CommitProcessor logic",
			changedPaths: []string{"src/utils/CommitProcessor.py"},
			expected:     "Update <file_name> logic",
		},
		{
			name:     "url",
			message:  "See https://github.com/foo/bar for details",
			expected: "See <url> for details",
		},
		{
			name:     "issue_reference",
			message:  "fixes #456 today",
			expected: "fixes <issue_link> today",
		},
		{
			name:     "tagged_version",
			message:  "Bump dependency to v2.3.1-rc1",
			expected: "Bump dependency to <version>",
		},
		{
			name:     "sign_off_trailer",
			message:  "Fix bug\n\nSigned-off-by: Jane Doe <jane@x.com>",
			expected: "Fix bug\n\n",
		},
		{
			name:         "empty_message",
			message:      "",
			changedPaths: []string{"a.py"},
			expected:     "",
		},
		{
			name:         "exact_file_name",
			message:      "Tidy parser.go",
			changedPaths: []string{"internal/parser.go"},
			expected:     "Tidy <method_name>",
		},
		{
			name:         "message_starts_with_reference",
			message:      "CommitProcessor cleanup",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     "<file_name> cleanup",
		},
		{
			name:         "method_suffix",
			message:      "Call CommitProcessor.run() now",
			changedPaths: []string{"src/CommitProcessor.py"},
			expected:     "Call <method_name> now",
		},
		{
			name:         "package_prefix_and_member_suffix",
			message:      "Move org.junit.Description#getTestClass to util",
			changedPaths: []string{"src/Description.java"},
			expected:     "Move <method_name> to util",
		},
		{
			name:         "repeated_package_path",
			message:      "Use org.example.Parser and org.example.Lexer",
			changedPaths: []string{"src/Parser.java"},
			expected:     "Use <file_name> and <file_name>",
		},
		{
			name:         "camel_case_words",
			message:      "Refactor commit processor, then ship",
			changedPaths: []string{"src/CommitProcessor.java"},
			expected:     "Refactor <file_name> then ship",
		},
		{
			name:         "camel_case_retries_next_occurrence",
			message:      "the commit stage and commit processor",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     "the commit stage and <file_name>",
		},
		{
			name:         "camel_case_requires_every_word",
			message:      "update commit",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     "update commit",
		},
		{
			name:         "annotation_is_not_a_reference",
			message:      "Mark @Deprecated usage",
			changedPaths: []string{"src/Deprecated.java"},
			expected:     "Mark @Deprecated usage",
		},
		{
			name:         "substring_of_longer_identifier",
			message:      "Update ProcessorFactory wiring",
			changedPaths: []string{"Processor.java"},
			expected:     "Update ProcessorFactory wiring",
		},
		{
			name:         "markdown_file_skipped",
			message:      "Update README.md",
			changedPaths: []string{"README.md"},
			expected:     "Update README.md",
		},
		{
			name:         "documentation_name_skipped",
			message:      "Update changelog entries",
			changedPaths: []string{"CHANGELOG.txt"},
			expected:     "Update changelog entries",
		},
		{
			name:         "dotfile",
			message:      "Fix .travis config",
			changedPaths: []string{".travis.yml"},
			expected:     "Fix <file_name> config",
		},
		{
			name:         "ambiguous_word_capitalized",
			message:      "Add Test for parser",
			changedPaths: []string{"src/Test.java"},
			expected:     "Add <file_name> for parser",
		},
		{
			name:         "ambiguous_word_resumes_past_lowercase_match",
			message:      "fix test in Test runner",
			changedPaths: []string{"Test.java"},
			expected:     "fix test in <file_name> runner",
		},
		{
			name:         "ambiguous_word_lowercase_only",
			message:      "add version bump",
			changedPaths: []string{"Version.java"},
			expected:     "add version bump",
		},
		{
			name:         "placeholder_separated_from_punctuation",
			message:      "Fix (CommitProcessor)",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     "Fix ( <file_name> )",
		},
		{
			name:         "cjk_passthrough",
			message:      "修复 CommitProcessor 的问题",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     "修复 <file_name> 的问题",
		},
		{
			name:         "cjk_adjacent_letters_block_match",
			message:      "修复CommitProcessor问题",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     "修复CommitProcessor问题",
		},
		{
			name:         "embedded_version_in_file_name",
			message:      "Upgrade jquery-1.7.2",
			changedPaths: []string{"lib/jquery-1.7.2.min.js"},
			expected:     "Upgrade jquery-<version>",
		},
		{
			name:     "versions_replaced_in_descending_order",
			message:  "Release 1.2 and 1.2.3",
			expected: "Release <version> and <version>",
		},
		{
			name:     "svn_trailer",
			message:  "Fix\ngit-svn-id: https://svn.example.org/repo/trunk@123 6a7b8c9d-1234-5678-9abc-def012345678",
			expected: "Fix\n<url>",
		},
		{
			name:     "code_block",
			message:  "Fix parser\n```\ncode();\n```\ndone",
			expected: "Fix parser\n\ndone",
		},
		{
			name:     "unbalanced_code_fence",
			message:  "Fix ``` dangling",
			expected: "Fix ``` dangling",
		},
		{
			name:     "quoted_sign_off_marker",
			message:  `Mention "Signed-off-by" rules`,
			expected: `Mention "Signed-off-by" rules`,
		},
		{
			name:     "bare_hash",
			message:  "use # sign",
			expected: "use <issue_link> sign",
		},
		{
			name:         "repeated_package_path_on_other_class",
			message:      "Use org.junit.Foo here; see org.junit.Bar",
			changedPaths: []string{"src/Foo.java"},
			expected:     "Use <file_name> here; see <file_name>",
		},
		{
			name:         "package_path_inside_longer_word",
			message:      "Use org.junit.Foo here; see zorg.junit.Bar",
			changedPaths: []string{"src/Foo.java"},
			expected:     "Use <file_name> here; see zorg.junit.Bar",
		},
		{
			name:         "invalid_bytes_beside_reference",
			message:      "Update Foo \xff\xfe bytes",
			changedPaths: []string{"a/Foo.java"},
			expected:     "Update <file_name> \xff\xfe bytes",
		},
		{
			name:         "no_changed_paths",
			message:      "Refactor the commit processor",
			changedPaths: nil,
			expected:     "Refactor the commit processor",
		},
	}

	pipeline := NewPipeline(DefaultSettings())
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := pipeline.Normalize(testCase.message, testCase.changedPaths)
			if actual != testCase.expected {
				t.Fatalf("Normalize(%q, %v) = %q, expected %q", testCase.message, testCase.changedPaths, actual, testCase.expected)
			}
		})
	}
}

func TestNormalizeWithAlternateTables(t *testing.T) {
	tables := DefaultTables()
	tables.AmbiguousWords = nil
	pipeline := NewPipeline(Settings{Tables: tables})

	actual := pipeline.Normalize("Test the parser", []string{"src/Test.java"})
	if actual != "<file_name> the parser" {
		t.Fatalf("expected ambiguous word to match without capitalization rule, got %q", actual)
	}
}

func TestNormalizeStageToggles(t *testing.T) {
	pipeline := NewPipeline(Settings{
		Tables: DefaultTables(),
		Stages: StageToggles{DisableIssues: true, DisableSignOff: true},
	})
	message := "fixes #456\n\nSigned-off-by: Jane Doe <jane@x.com>"
	actual := pipeline.Normalize(message, nil)
	if actual != message {
		t.Fatalf("expected disabled stages to leave message untouched, got %q", actual)
	}
}

func TestSpansReportsRuneOffsets(t *testing.T) {
	pipeline := NewPipeline(DefaultSettings())

	testCases := []struct {
		name         string
		message      string
		changedPaths []string
		expected     SpanSet
	}{
		{
			name:         "method_reference",
			message:      "Call CommitProcessor.run() now",
			changedPaths: []string{"src/CommitProcessor.py"},
			expected:     SpanSet{{Start: 5, End: 26, Kind: MethodName}},
		},
		{
			name:         "cjk_offsets",
			message:      "修复 CommitProcessor 的问题",
			changedPaths: []string{"CommitProcessor.java"},
			expected:     SpanSet{{Start: 3, End: 18, Kind: FileName}},
		},
		{
			name:         "no_paths",
			message:      "Call CommitProcessor.run() now",
			changedPaths: nil,
			expected:     nil,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			actual := pipeline.Spans(testCase.message, testCase.changedPaths)
			if len(actual) != len(testCase.expected) {
				t.Fatalf("expected %d spans, got %d (%v)", len(testCase.expected), len(actual), actual)
			}
			for spanIndex := range actual {
				if actual[spanIndex] != testCase.expected[spanIndex] {
					t.Fatalf("span %d = %+v, expected %+v", spanIndex, actual[spanIndex], testCase.expected[spanIndex])
				}
			}
		})
	}
}

func TestNormalizeBatchPreservesOrder(t *testing.T) {
	pipeline := NewPipeline(Settings{Tables: DefaultTables(), Concurrency: 3})
	records := []types.CommitRecord{
		{Message: "Update CommitProcessor logic", ChangedPaths: []string{"src/utils/CommitProcessor.py"}},
		{Message: "", ChangedPaths: []string{"a.py"}},
		{Message: "fixes #456 today"},
		{Message: "Bump dependency to v2.3.1-rc1"},
		{Message: "See https://github.com/foo/bar for details"},
	}
	expected := []string{
		"Update <file_name> logic",
		"",
		"fixes <issue_link> today",
		"Bump dependency to <version>",
		"See <url> for details",
	}

	actual, err := pipeline.NormalizeBatch(context.Background(), records)
	if err != nil {
		t.Fatalf("NormalizeBatch error: %v", err)
	}
	if len(actual) != len(expected) {
		t.Fatalf("expected %d results, got %d", len(expected), len(actual))
	}
	for recordIndex := range expected {
		if actual[recordIndex] != expected[recordIndex] {
			t.Fatalf("record %d = %q, expected %q", recordIndex, actual[recordIndex], expected[recordIndex])
		}
	}
}

func TestNormalizeBatchEmpty(t *testing.T) {
	actual, err := NewPipeline(DefaultSettings()).NormalizeBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("NormalizeBatch error: %v", err)
	}
	if len(actual) != 0 {
		t.Fatalf("expected no results, got %d", len(actual))
	}
}

func TestNormalizeBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records := []types.CommitRecord{{Message: "fixes #1"}}
	if _, err := NewPipeline(DefaultSettings()).NormalizeBatch(ctx, records); err == nil {
		t.Fatalf("expected cancellation error")
	}
}

type expiredContext struct {
	context.Context
}

func (expiredContext) Err() error {
	return context.Canceled
}

func TestNormalizeBatchKeepsCompletedResults(t *testing.T) {
	records := []types.CommitRecord{{Message: "fixes #1"}, {Message: "plain"}}
	actual, err := NewPipeline(DefaultSettings()).NormalizeBatch(expiredContext{Context: context.Background()}, records)
	if err != nil {
		t.Fatalf("NormalizeBatch error: %v", err)
	}
	if len(actual) != 2 || actual[0] != "fixes <issue_link>" || actual[1] != "plain" {
		t.Fatalf("unexpected results %q", actual)
	}
}

func TestNormalizeLeavesPlaceholdersAlone(t *testing.T) {
	pipeline := NewPipeline(DefaultSettings())
	testCases := []struct {
		name         string
		message      string
		changedPaths []string
		once         string
	}{
		{name: "file_stem", message: "Refactor file handling", changedPaths: []string{"pkg/file.go"}, once: "Refactor <file_name> handling"},
		{name: "name_stem", message: "Fix name lookup", changedPaths: []string{"core/name.go"}, once: "Fix <file_name> lookup"},
		{name: "url_stem", message: "Check url and https://example.com/a", changedPaths: []string{"a/url.py"}, once: "Check <file_name> and <url>"},
		{name: "method_stem", message: "Call Foo.run() in method", changedPaths: []string{"a/Foo.java", "x/method.go", "y/name.go"}, once: "Call <method_name> in <file_name>"},
		{name: "issue_link_stems", message: "fixes #9", changedPaths: []string{"a/issue.go", "b/link.go"}, once: "fixes <issue_link>"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			once := pipeline.Normalize(testCase.message, testCase.changedPaths)
			if once != testCase.once {
				t.Fatalf("first pass = %q, expected %q", once, testCase.once)
			}
			if twice := pipeline.Normalize(once, testCase.changedPaths); twice != once {
				t.Fatalf("second pass = %q, expected %q", twice, once)
			}
		})
	}
}

// Only the first unquoted trailer is removed per pass.
func TestStripSignOffRemovesFirstTrailer(t *testing.T) {
	message := "Fix\n\nSigned-off-by: A <a@x.com>\nSigned-off-by: B <b@x.com>"
	once := StripSignOff(message)
	if once != "Fix\n\n\nSigned-off-by: B <b@x.com>" {
		t.Fatalf("first pass = %q", once)
	}
	if twice := StripSignOff(once); twice != "Fix\n\n\n" {
		t.Fatalf("second pass = %q", twice)
	}
}

func TestHumanize(t *testing.T) {
	actual := Humanize("Call <method_name> in <file_name> see <url> for <version> <issue_link>")
	expected := "Call $methodName in $fileName see $url for $versionNumber $issueLink"
	if actual != expected {
		t.Fatalf("Humanize = %q, expected %q", actual, expected)
	}
}

func TestSummarize(t *testing.T) {
	originals := []string{"fixes #1 and #2", "plain", "Update CommitProcessor"}
	normalized := []string{"fixes <issue_link> and <issue_link>", "plain", "Update <file_name>"}
	summary := Summarize(originals, normalized)
	if summary.TotalRecords != 3 || summary.ChangedRecords != 2 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	counts := make(map[string]int)
	for _, entry := range summary.Placeholders {
		counts[entry.Placeholder] = entry.Count
	}
	if counts[IssuePlaceholder] != 2 || counts[FileNamePlaceholder] != 1 {
		t.Fatalf("unexpected placeholder counts: %v", counts)
	}
	if _, present := counts[URLPlaceholder]; present {
		t.Fatalf("expected zero counts to be omitted: %v", counts)
	}
}

func TestNormalizeLeavesInvalidUTF8Untouched(t *testing.T) {
	message := string([]byte{'f', 'i', 'x', ' ', 0xff, 0xfe})
	actual := NewPipeline(DefaultSettings()).Normalize(message, []string{"src/Parser.java"})
	if actual != message {
		t.Fatalf("expected invalid UTF-8 message to pass through, got %q", actual)
	}
}
