package output

import (
	"fmt"
	"io"

	"github.com/temirov/cmnorm/internal/services/stream"
	"github.com/temirov/cmnorm/internal/types"
)

const invalidFormatMessageFormat = "unsupported output format %q"

type StreamRenderer interface {
	Handle(event stream.Event) error
	Flush() error
}

// NewStreamRenderer selects the renderer for format.
func NewStreamRenderer(format string, stdout, stderr io.Writer, command string, includeSummary bool) (StreamRenderer, error) {
	switch format {
	case types.FormatRaw:
		return NewRawStreamRenderer(stdout, stderr, command, includeSummary), nil
	case types.FormatJSON:
		return NewJSONStreamRenderer(stdout, stderr, command, includeSummary), nil
	case types.FormatXML:
		return NewXMLStreamRenderer(stdout, stderr, command, includeSummary), nil
	default:
		return nil, fmt.Errorf(invalidFormatMessageFormat, format)
	}
}

func reportDiagnostics(stderr io.Writer, event stream.Event) error {
	if stderr == nil {
		return nil
	}
	switch {
	case event.Kind == stream.EventKindWarning && event.Message != nil:
		_, err := fmt.Fprintln(stderr, event.Message.Message)
		return err
	case event.Kind == stream.EventKindError && event.Err != nil:
		_, err := fmt.Fprintln(stderr, event.Err.Message)
		return err
	}
	return nil
}
