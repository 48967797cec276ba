// Package input decodes commit records from JSON arrays or JSON Lines streams.
package input

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/cmnorm/internal/types"
)

const (
	// StandardInputName selects standard input as the record source.
	StandardInputName = "-"

	maximumLineBytes = 16 * 1024 * 1024

	openSourceErrorFormat     = "open records %q: %w"
	decodeArrayErrorFormat    = "decode record array: %w"
	readLinesErrorFormat      = "read record lines: %w"
	malformedLineWarnFormat   = "skipping line %d: %v"
	trailingContentErrorLabel = "unexpected content after record array"
)

// Warning describes input skipped while decoding.
type Warning struct {
	Line    int
	Message string
}

// Batch is the decoded content of one record source.
type Batch struct {
	Source   string
	Records  []types.CommitRecord
	Warnings []Warning
}

// Open returns a reader for path. An empty path or "-" selects stdin, which
// the returned closer leaves open.
func Open(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if path == "" || path == StandardInputName {
		return io.NopCloser(stdin), StandardInputName, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, path, fmt.Errorf(openSourceErrorFormat, path, err)
	}
	return file, path, nil
}

// Load opens path and decodes every record in it.
func Load(path string, stdin io.Reader) (Batch, error) {
	reader, source, err := Open(path, stdin)
	if err != nil {
		return Batch{Source: source}, err
	}
	defer reader.Close()
	batch, err := Decode(reader)
	batch.Source = source
	return batch, err
}

// Decode reads records from reader. Input whose first non-space byte is '['
// is decoded as one JSON array and must be well formed. Anything else is read
// as JSON Lines: blank lines are ignored and malformed lines are reported as
// warnings instead of failing the batch.
func Decode(reader io.Reader) (Batch, error) {
	buffered := bufio.NewReader(reader)
	firstByte, err := peekFirstSignificantByte(buffered)
	if errors.Is(err, io.EOF) {
		return Batch{Records: []types.CommitRecord{}}, nil
	}
	if err != nil {
		return Batch{}, fmt.Errorf(readLinesErrorFormat, err)
	}
	if firstByte == '[' {
		return decodeArray(buffered)
	}
	return decodeLines(buffered)
}

func peekFirstSignificantByte(reader *bufio.Reader) (byte, error) {
	for {
		next, err := reader.ReadByte()
		if err != nil {
			return 0, err
		}
		if !isJSONSpace(next) {
			return next, reader.UnreadByte()
		}
	}
}

func isJSONSpace(value byte) bool {
	return value == ' ' || value == '\t' || value == '\n' || value == '\r'
}

func decodeArray(reader io.Reader) (Batch, error) {
	decoder := json.NewDecoder(reader)
	records := []types.CommitRecord{}
	if err := decoder.Decode(&records); err != nil {
		return Batch{}, fmt.Errorf(decodeArrayErrorFormat, err)
	}
	var trailing json.RawMessage
	if err := decoder.Decode(&trailing); !errors.Is(err, io.EOF) {
		return Batch{}, fmt.Errorf(decodeArrayErrorFormat, errors.New(trailingContentErrorLabel))
	}
	return Batch{Records: records}, nil
}

func decodeLines(reader io.Reader) (Batch, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maximumLineBytes)
	batch := Batch{Records: []types.CommitRecord{}}
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record types.CommitRecord
		if err := json.Unmarshal(line, &record); err != nil {
			batch.Warnings = append(batch.Warnings, Warning{
				Line:    lineNumber,
				Message: fmt.Sprintf(malformedLineWarnFormat, lineNumber, err),
			})
			continue
		}
		batch.Records = append(batch.Records, record)
	}
	if err := scanner.Err(); err != nil {
		return batch, fmt.Errorf(readLinesErrorFormat, err)
	}
	return batch, nil
}

// FromMessage builds a single-record batch from inline text and paths.
func FromMessage(message string, changedPaths []string) Batch {
	paths := make([]string, 0, len(changedPaths))
	for _, changedPath := range changedPaths {
		if trimmed := strings.TrimSpace(changedPath); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	return Batch{
		Source:  types.CommandMessage,
		Records: []types.CommitRecord{{Message: message, ChangedPaths: paths}},
	}
}
