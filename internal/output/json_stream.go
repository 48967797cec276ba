package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/temirov/cmnorm/internal/services/stream"
	"github.com/temirov/cmnorm/internal/types"
)

// jsonStreamRenderer writes a single document of the form
// {"records": [...], "summary": {...}} while records arrive.
type jsonStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	command        string
	includeSummary bool
	opened         bool
	recordCount    int
	summary        *types.NormalizationSummary
}

func NewJSONStreamRenderer(stdout, stderr io.Writer, command string, includeSummary bool) StreamRenderer {
	return &jsonStreamRenderer{
		stdout:         stdout,
		stderr:         stderr,
		command:        command,
		includeSummary: includeSummary,
	}
}

func (renderer *jsonStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindWarning, stream.EventKindError:
		return reportDiagnostics(renderer.stderr, event)
	case stream.EventKindRecord:
		if event.Record == nil {
			return nil
		}
		return renderer.writeRecord(event.Record)
	case stream.EventKindSpans:
		if event.Spans == nil {
			return nil
		}
		return renderer.writeRecord(event.Spans)
	case stream.EventKindSummary:
		if event.Summary != nil {
			summary := *event.Summary
			renderer.summary = &summary
		}
	}
	return nil
}

func (renderer *jsonStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	if err := renderer.open(); err != nil {
		return err
	}
	closing := "]"
	if renderer.recordCount > 0 {
		closing = "\n" + indentSpacer + "]"
	}
	if _, err := io.WriteString(renderer.stdout, closing); err != nil {
		return err
	}
	if renderer.includeSummary && renderer.summary != nil {
		encodedSummary, err := json.MarshalIndent(renderer.summary, indentSpacer, indentSpacer)
		if err != nil {
			return fmt.Errorf("json stream: encode summary: %w", err)
		}
		if _, err := fmt.Fprintf(renderer.stdout, ",\n%s%q: %s", indentSpacer, jsonSummaryKey, encodedSummary); err != nil {
			return err
		}
	}
	_, err := io.WriteString(renderer.stdout, "\n}\n")
	return err
}

func (renderer *jsonStreamRenderer) open() error {
	if renderer.opened {
		return nil
	}
	renderer.opened = true
	_, err := fmt.Fprintf(renderer.stdout, "{\n%s%q: [", indentSpacer, jsonRecordsKey)
	return err
}

func (renderer *jsonStreamRenderer) writeRecord(record any) error {
	if renderer.stdout == nil {
		return nil
	}
	if err := renderer.open(); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(record, indentSpacer+indentSpacer, indentSpacer)
	if err != nil {
		return fmt.Errorf("json stream: encode record: %w", err)
	}
	separator := "\n"
	if renderer.recordCount > 0 {
		separator = ",\n"
	}
	renderer.recordCount++
	_, err = fmt.Fprintf(renderer.stdout, "%s%s%s%s", separator, indentSpacer, indentSpacer, encoded)
	return err
}
