package main_test

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/temirov/cmnorm/internal/types"
)

// #nosec G204
func buildBinary(testSetup *testing.T) string {
	testSetup.Helper()
	binaryName := "cmnorm_integration_test_binary"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(testSetup.TempDir(), binaryName)

	buildCommand := exec.Command("go", "build", "-o", binaryPath, ".")
	outputData, buildErr := buildCommand.CombinedOutput()
	if buildErr != nil {
		testSetup.Fatalf("Failed to build binary: %v\nBuild Output:\n%s", buildErr, string(outputData))
	}
	return binaryPath
}

// #nosec G204
func runCommand(testSetup *testing.T, binaryPath string, standardInput string, arguments ...string) (string, string, error) {
	testSetup.Helper()
	command := exec.Command(binaryPath, arguments...)
	command.Dir = testSetup.TempDir()
	command.Env = append(os.Environ(), "HOME="+testSetup.TempDir())
	command.Stdin = strings.NewReader(standardInput)

	var standardOutputBuffer, standardErrorBuffer bytes.Buffer
	command.Stdout = &standardOutputBuffer
	command.Stderr = &standardErrorBuffer
	runError := command.Run()
	return standardOutputBuffer.String(), standardErrorBuffer.String(), runError
}

func TestBinaryNormalizesRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test builds the binary")
	}
	binaryPath := buildBinary(t)

	records := []types.CommitRecord{
		{Message: "Update CommitProcessor logic", ChangedPaths: []string{"src/CommitProcessor.java"}},
		{Message: "See ```x = 1``` and https://example.com\nSigned-off-by: Dev <d@x.org>", ChangedPaths: nil},
	}
	var lines []string
	for _, record := range records {
		encoded, err := json.Marshal(record)
		if err != nil {
			t.Fatalf("encode record: %v", err)
		}
		lines = append(lines, string(encoded))
	}
	input := strings.Join(lines, "\n") + "\nnot a record\n"

	standardOutput, standardError, runErr := runCommand(t, binaryPath, input, "normalize", "--format", "json")
	if runErr != nil {
		t.Fatalf("normalize failed: %v\n%s", runErr, standardError)
	}
	var document struct {
		Records []types.NormalizedRecord `json:"records"`
	}
	if err := json.Unmarshal([]byte(standardOutput), &document); err != nil {
		t.Fatalf("decode output: %v\n%s", err, standardOutput)
	}
	expected := []string{"Update <file_name> logic", "See  and <url>\n"}
	if len(document.Records) != len(expected) {
		t.Fatalf("expected %d records, got %d", len(expected), len(document.Records))
	}
	for index, record := range document.Records {
		if record.Normalized != expected[index] {
			t.Fatalf("record %d: expected %q, got %q", index, expected[index], record.Normalized)
		}
	}
	if !strings.Contains(standardError, "skipped malformed input") {
		t.Fatalf("expected malformed line warning on stderr, got %q", standardError)
	}
}

func TestBinaryFailsOnInvalidFormat(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test builds the binary")
	}
	binaryPath := buildBinary(t)
	_, standardError, runErr := runCommand(t, binaryPath, "", "message", "text", "--format", "yaml")
	if runErr == nil {
		t.Fatalf("expected failure for invalid format")
	}
	if !strings.Contains(standardError, "invalid format value") {
		t.Fatalf("expected format error on stderr, got %q", standardError)
	}
}
