package output

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/temirov/cmnorm/internal/services/stream"
	"github.com/temirov/cmnorm/internal/types"
)

type xmlStreamRenderer struct {
	stdout         io.Writer
	stderr         io.Writer
	command        string
	includeSummary bool
	started        bool
	summary        *types.NormalizationSummary
}

func NewXMLStreamRenderer(stdout, stderr io.Writer, command string, includeSummary bool) StreamRenderer {
	return &xmlStreamRenderer{stdout: stdout, stderr: stderr, command: command, includeSummary: includeSummary}
}

func (renderer *xmlStreamRenderer) Handle(event stream.Event) error {
	switch event.Kind {
	case stream.EventKindWarning, stream.EventKindError:
		return reportDiagnostics(renderer.stderr, event)
	case stream.EventKindRecord:
		if event.Record == nil {
			return nil
		}
		return renderer.writeElement(event.Record, xml.StartElement{Name: xml.Name{Local: "record"}})
	case stream.EventKindSpans:
		if event.Spans == nil {
			return nil
		}
		return renderer.writeElement(event.Spans, xml.StartElement{Name: xml.Name{Local: "record"}})
	case stream.EventKindSummary:
		if event.Summary != nil {
			summary := *event.Summary
			renderer.summary = &summary
		}
	}
	return nil
}

func (renderer *xmlStreamRenderer) Flush() error {
	if renderer.stdout == nil {
		return nil
	}
	if err := renderer.start(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(renderer.stdout, "%s</%s>\n", indentSpacer, xmlRecordsName); err != nil {
		return err
	}
	if renderer.includeSummary && renderer.summary != nil {
		if err := renderer.encode(renderer.summary, xml.StartElement{Name: xml.Name{Local: xmlSummaryName}}, indentSpacer); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(renderer.stdout, "</%s>\n", xmlRootElement)
	return err
}

func (renderer *xmlStreamRenderer) start() error {
	if renderer.started {
		return nil
	}
	renderer.started = true
	_, err := fmt.Fprintf(renderer.stdout, "%s<%s command=%q>\n%s<%s>\n", xmlHeader, xmlRootElement, renderer.command, indentSpacer, xmlRecordsName)
	return err
}

func (renderer *xmlStreamRenderer) writeElement(value any, element xml.StartElement) error {
	if renderer.stdout == nil {
		return nil
	}
	if err := renderer.start(); err != nil {
		return err
	}
	return renderer.encode(value, element, indentSpacer+indentSpacer)
}

func (renderer *xmlStreamRenderer) encode(value any, element xml.StartElement, prefix string) error {
	encoder := xml.NewEncoder(renderer.stdout)
	encoder.Indent(prefix, indentSpacer)
	if err := encoder.EncodeElement(value, element); err != nil {
		return fmt.Errorf("xml stream: encode %s: %w", element.Name.Local, err)
	}
	if err := encoder.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(renderer.stdout, "\n")
	return err
}
