// Package stream turns a batch of commit records into an ordered sequence of
// events that renderers consume one at a time.
package stream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/temirov/cmnorm/internal/normalize"
	"github.com/temirov/cmnorm/internal/tokenizer"
	"github.com/temirov/cmnorm/internal/types"
)

const (
	warningTokenCountFormat   = "failed to count tokens for record %d: %v"
	warningTokenSkippedFormat = "record %d is not valid UTF-8; token count skipped"
)

var errNilPipeline = errors.New("stream: normalization pipeline is nil")

// NormalizeOptions configures StreamNormalized.
type NormalizeOptions struct {
	Source         string
	Records        []types.CommitRecord
	Pipeline       *normalize.Pipeline
	Humanize       bool
	TokenCounter   tokenizer.Counter
	TokenModel     string
	MaxTokens      int
	IncludeSummary bool
}

// SpanOptions configures StreamSpans.
type SpanOptions struct {
	Source   string
	Records  []types.CommitRecord
	Pipeline *normalize.Pipeline
}

type emitter struct {
	ctx     context.Context
	out     chan<- Event
	command string
	source  string
}

func newEmitter(ctx context.Context, out chan<- Event, command string, source string) *emitter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &emitter{ctx: ctx, out: out, command: command, source: source}
}

func (e *emitter) send(event Event) error {
	if e.out == nil {
		return fmt.Errorf("stream: event channel is nil")
	}
	event.Version = SchemaVersion
	if event.Command == "" {
		event.Command = e.command
	}
	if event.Source == "" {
		event.Source = e.source
	}
	if event.EmittedAt.IsZero() {
		event.EmittedAt = time.Now().UTC()
	}
	select {
	case <-e.ctx.Done():
		return e.ctx.Err()
	case e.out <- event:
		return nil
	}
}

func (e *emitter) warn(message string) error {
	trimmed := strings.TrimRight(message, "\n")
	if trimmed == "" {
		return nil
	}
	return e.send(Event{
		Kind:    EventKindWarning,
		Message: &LogEvent{Level: "warning", Message: trimmed},
	})
}

type tokenTracker struct {
	total     int
	truncated int
	model     string
}

func (tracker *tokenTracker) add(tokens int, truncated bool, model string) {
	tracker.total += tokens
	if truncated {
		tracker.truncated++
	}
	if tracker.model == "" && model != "" && tokens > 0 {
		tracker.model = model
	}
}

// StreamNormalized normalizes opts.Records and emits a start event, one record
// event per input record in input order, an optional summary and a done event.
func StreamNormalized(ctx context.Context, opts NormalizeOptions, out chan<- Event) error {
	if opts.Pipeline == nil {
		return errNilPipeline
	}
	emitter := newEmitter(ctx, out, types.CommandNormalize, opts.Source)
	if err := emitter.send(Event{Kind: EventKindStart}); err != nil {
		return err
	}

	normalized, batchErr := opts.Pipeline.NormalizeBatch(ctx, opts.Records)
	if batchErr != nil {
		return batchErr
	}

	originals := make([]string, len(opts.Records))
	tracker := &tokenTracker{}
	for recordIndex, record := range opts.Records {
		originals[recordIndex] = record.Message
		rendered := normalized[recordIndex]
		if opts.Humanize {
			rendered = normalize.Humanize(rendered)
		}
		outputRecord := &types.NormalizedRecord{
			Index:      recordIndex,
			Message:    record.Message,
			Normalized: rendered,
		}
		if opts.TokenCounter != nil {
			countResult, countErr := tokenizer.CountText(opts.TokenCounter, rendered)
			switch {
			case countErr != nil:
				if err := emitter.warn(fmt.Sprintf(warningTokenCountFormat, recordIndex, countErr)); err != nil {
					return err
				}
			case !countResult.Counted:
				if err := emitter.warn(fmt.Sprintf(warningTokenSkippedFormat, recordIndex)); err != nil {
					return err
				}
			default:
				outputRecord.Tokens = countResult.Tokens
				outputRecord.Truncated = opts.MaxTokens > 0 && countResult.Tokens > opts.MaxTokens
				tracker.add(countResult.Tokens, outputRecord.Truncated, opts.TokenModel)
			}
		}
		if err := emitter.send(Event{Kind: EventKindRecord, Record: outputRecord}); err != nil {
			return err
		}
	}

	if opts.IncludeSummary {
		summary := normalize.Summarize(originals, normalized)
		summary.TotalTokens = tracker.total
		summary.TruncatedRecords = tracker.truncated
		summary.Model = tracker.model
		if err := emitter.send(Event{Kind: EventKindSummary, Summary: &summary}); err != nil {
			return err
		}
	}
	return emitter.send(Event{Kind: EventKindDone})
}

// StreamSpans emits the resolved reference spans of every record.
func StreamSpans(ctx context.Context, opts SpanOptions, out chan<- Event) error {
	if opts.Pipeline == nil {
		return errNilPipeline
	}
	emitter := newEmitter(ctx, out, types.CommandSpans, opts.Source)
	if err := emitter.send(Event{Kind: EventKindStart}); err != nil {
		return err
	}
	for recordIndex, record := range opts.Records {
		if err := emitter.ctx.Err(); err != nil {
			return err
		}
		spanSet := opts.Pipeline.Spans(record.Message, record.ChangedPaths)
		messageRunes := []rune(record.Message)
		spanRecord := &types.SpanRecord{
			Index:   recordIndex,
			Message: record.Message,
			Spans:   make([]types.SpanOutput, 0, len(spanSet)),
		}
		for _, span := range spanSet {
			spanRecord.Spans = append(spanRecord.Spans, types.SpanOutput{
				Start: span.Start,
				End:   span.End,
				Kind:  span.Kind.String(),
				Text:  span.Text(messageRunes),
			})
		}
		if err := emitter.send(Event{Kind: EventKindSpans, Spans: spanRecord}); err != nil {
			return err
		}
	}
	return emitter.send(Event{Kind: EventKindDone})
}
