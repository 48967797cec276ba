// Package clipboard provides access to the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/atotto/clipboard"
)

// ErrUnsupported reports that no clipboard utility is available on this system.
var ErrUnsupported = errors.New("clipboard is not supported on this system")

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	writeAll func(text string) error
}

// NewService constructs a Clipboard service implementation.
func NewService() *Service {
	return &Service{writeAll: clipboard.WriteAll}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := service.writeAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

var _ Copier = (*Service)(nil)

// Recorder passes rendered output through to a destination while keeping a
// copy that can later be placed on the clipboard.
type Recorder struct {
	destination io.Writer
	recorded    bytes.Buffer
}

// NewRecorder wraps destination. A nil destination records without echoing.
func NewRecorder(destination io.Writer) *Recorder {
	return &Recorder{destination: destination}
}

func (recorder *Recorder) Write(data []byte) (int, error) {
	recorder.recorded.Write(data)
	if recorder.destination == nil {
		return len(data), nil
	}
	return recorder.destination.Write(data)
}

// Text returns everything written so far.
func (recorder *Recorder) Text() string {
	return recorder.recorded.String()
}

// CopyTo hands the recorded output to copier. Empty output is not copied.
func (recorder *Recorder) CopyTo(copier Copier) error {
	if copier == nil || recorder.recorded.Len() == 0 {
		return nil
	}
	return copier.Copy(recorder.recorded.String())
}
