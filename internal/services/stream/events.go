package stream

import (
	"encoding/xml"
	"time"

	"github.com/temirov/cmnorm/internal/types"
)

const SchemaVersion = 1

type EventKind string

const (
	EventKindStart   EventKind = "start"
	EventKindRecord  EventKind = "record"
	EventKindSpans   EventKind = "spans"
	EventKindSummary EventKind = "summary"
	EventKindWarning EventKind = "warning"
	EventKindError   EventKind = "error"
	EventKindDone    EventKind = "done"
)

type Event struct {
	XMLName   xml.Name  `json:"-" xml:"event"`
	Version   int       `json:"version" xml:"version,attr"`
	Kind      EventKind `json:"kind" xml:"kind,attr"`
	Command   string    `json:"command,omitempty" xml:"command,attr,omitempty"`
	Source    string    `json:"source,omitempty" xml:"source,attr,omitempty"`
	EmittedAt time.Time `json:"emittedAt,omitempty" xml:"emittedAt,attr,omitempty"`

	Record  *types.NormalizedRecord     `json:"record,omitempty" xml:"record,omitempty"`
	Spans   *types.SpanRecord           `json:"spans,omitempty" xml:"spans,omitempty"`
	Summary *types.NormalizationSummary `json:"summary,omitempty" xml:"summary,omitempty"`
	Message *LogEvent                   `json:"message,omitempty" xml:"message,omitempty"`
	Err     *ErrorEvent                 `json:"error,omitempty" xml:"error,omitempty"`
}

type LogEvent struct {
	Level   string `json:"level,omitempty" xml:"level,attr,omitempty"`
	Message string `json:"message" xml:",chardata"`
}

type ErrorEvent struct {
	Message string `json:"message" xml:",chardata"`
}
