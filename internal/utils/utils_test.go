package utils_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/temirov/cmnorm/internal/utils"
)

// TestDeduplicateStrings verifies duplicate and blank removal with order preserved.
func TestDeduplicateStrings(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		values   []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			values:   []string{"a", "b", "a"},
			expected: []string{"a", "b"},
		},
		{
			testName: "keeps unique",
			values:   []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			testName: "trims and drops blanks",
			values:   []string{" version ", "", "   ", "version", "test"},
			expected: []string{"version", "test"},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicateStrings(testCase.values)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestContainsString verifies that ContainsString locates strings in a slice.
func TestContainsString(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		slice    []string
		target   string
		expected bool
	}{
		{
			testName: "contains target",
			slice:    []string{"alpha", "beta"},
			target:   "beta",
			expected: true,
		},
		{
			testName: "missing target",
			slice:    []string{"alpha", "beta"},
			target:   "gamma",
			expected: false,
		},
	}
	for index, testCase := range testCases {
		actual := utils.ContainsString(testCase.slice, testCase.target)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestNewApplicationLogger verifies logger construction at both verbosity levels.
func TestNewApplicationLogger(testingInstance *testing.T) {
	for _, verbose := range []bool{false, true} {
		logger, err := utils.NewApplicationLogger(verbose)
		if err != nil {
			testingInstance.Fatalf("verbose=%t: unexpected error %v", verbose, err)
		}
		if logger.Core().Enabled(zapcore.DebugLevel) != verbose {
			testingInstance.Fatalf("verbose=%t: debug level enablement mismatch", verbose)
		}
	}
}
