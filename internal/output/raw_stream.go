package output

import (
	"fmt"
	"io"

	"github.com/temirov/cmnorm/internal/services/stream"
	"github.com/temirov/cmnorm/internal/types"
)

type rawStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	command        string
	includeSummary bool
	recordCount    int
	summary        *types.NormalizationSummary
}

func NewRawStreamRenderer(stdout, stderr io.Writer, command string, includeSummary bool) StreamRenderer {
	return &rawStreamRenderer{
		stdout:         stdout,
		stderr:         stderr,
		command:        command,
		includeSummary: includeSummary,
	}
}

func (renderer *rawStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindWarning, stream.EventKindError:
		return reportDiagnostics(renderer.stderr, event)
	case stream.EventKindRecord:
		return renderer.handleRecord(event.Record)
	case stream.EventKindSpans:
		return renderer.handleSpans(event.Spans)
	case stream.EventKindSummary:
		if event.Summary != nil {
			summary := *event.Summary
			renderer.summary = &summary
		}
	}
	return nil
}

func (renderer *rawStreamRenderer) Flush() error {
	if renderer.stdout == nil || !renderer.includeSummary || renderer.summary == nil {
		return nil
	}
	if renderer.recordCount > 0 {
		if _, err := fmt.Fprintln(renderer.stdout, separatorLine); err != nil {
			return err
		}
	}
	return writeRawSummary(renderer.stdout, renderer.summary)
}

func (renderer *rawStreamRenderer) writeSeparator() error {
	renderer.recordCount++
	if renderer.recordCount == 1 {
		return nil
	}
	_, err := fmt.Fprintln(renderer.stdout, separatorLine)
	return err
}

func (renderer *rawStreamRenderer) handleRecord(record *types.NormalizedRecord) error {
	if renderer.stdout == nil || record == nil {
		return nil
	}
	if err := renderer.writeSeparator(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(renderer.stdout, record.Normalized); err != nil {
		return err
	}
	if record.Tokens > 0 {
		if _, err := fmt.Fprintf(renderer.stdout, tokenLineFormat, record.Tokens); err != nil {
			return err
		}
	}
	if record.Truncated {
		if _, err := io.WriteString(renderer.stdout, truncatedLine); err != nil {
			return err
		}
	}
	return nil
}

func (renderer *rawStreamRenderer) handleSpans(record *types.SpanRecord) error {
	if renderer.stdout == nil || record == nil {
		return nil
	}
	if err := renderer.writeSeparator(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(renderer.stdout, recordHeaderFormat, record.Index); err != nil {
		return err
	}
	if len(record.Spans) == 0 {
		_, err := io.WriteString(renderer.stdout, noSpansLine)
		return err
	}
	for _, span := range record.Spans {
		if _, err := fmt.Fprintf(renderer.stdout, spanLineFormat, span.Start, span.End, span.Kind, span.Text); err != nil {
			return err
		}
	}
	return nil
}

func writeRawSummary(writer io.Writer, summary *types.NormalizationSummary) error {
	if _, err := fmt.Fprintf(writer, summaryHeaderFormat, summary.TotalRecords, pluralSuffix(summary.TotalRecords), summary.ChangedRecords); err != nil {
		return err
	}
	for _, placeholder := range summary.Placeholders {
		if _, err := fmt.Fprintf(writer, summaryPlaceholderLine, placeholder.Placeholder, placeholder.Count); err != nil {
			return err
		}
	}
	if summary.TotalTokens > 0 {
		line := fmt.Sprintf(summaryTokensFormat, summary.TotalTokens)
		if summary.Model != "" {
			line += fmt.Sprintf(summaryModelFormat, summary.Model)
		}
		if _, err := fmt.Fprintln(writer, line); err != nil {
			return err
		}
	}
	if summary.TruncatedRecords > 0 {
		if _, err := fmt.Fprintf(writer, summaryTruncationFormat, summary.TruncatedRecords); err != nil {
			return err
		}
	}
	return nil
}
