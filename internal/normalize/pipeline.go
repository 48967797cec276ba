// Package normalize rewrites commit messages into a canonical form in which
// references to changed files, methods, URLs, versions, issues, code blocks and
// sign-off trailers are replaced by fixed placeholders.
package normalize

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/temirov/cmnorm/internal/types"
)

const batchCanceledMessageFormat = "normalize batch: %w"

// StageToggles disables individual auxiliary passes. The zero value runs every pass.
type StageToggles struct {
	DisableCodeBlocks bool
	DisableSignOff    bool
	DisableURLs       bool
	DisableVersions   bool
	DisableIssues     bool
}

// Settings configures a Pipeline.
type Settings struct {
	Tables      Tables
	Stages      StageToggles
	Concurrency int
}

// DefaultSettings returns settings with the default tables, every stage enabled
// and one worker per available CPU.
func DefaultSettings() Settings {
	return Settings{Tables: DefaultTables()}
}

// Pipeline normalizes commit messages. It holds only read-only state and is
// safe for concurrent use.
type Pipeline struct {
	tables      compiledTables
	stages      StageToggles
	concurrency int
}

// NewPipeline compiles settings into a ready pipeline.
func NewPipeline(settings Settings) *Pipeline {
	concurrency := settings.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		tables:      compileTables(settings.Tables),
		stages:      settings.Stages,
		concurrency: concurrency,
	}
}

// Concurrency reports the worker limit used by NormalizeBatch.
func (pipeline *Pipeline) Concurrency() int {
	return pipeline.concurrency
}

// Spans returns the resolved reference spans of message, in rune offsets.
func (pipeline *Pipeline) Spans(messageText string, changedPaths []string) SpanSet {
	if messageText == "" {
		return nil
	}
	return pipeline.spans(newMessage(messageText), changedPaths)
}

func (pipeline *Pipeline) spans(text message, changedPaths []string) SpanSet {
	candidates := pipeline.tables.findCandidates(text, changedPaths)
	if len(candidates) == 0 {
		return nil
	}
	located := pipeline.tables.locateReferences(text.masked, candidates)
	return resolveSpans(pipeline.tables.extendSpans(text.masked, located))
}

// Normalize rewrites one message. Empty messages are returned unchanged.
func (pipeline *Pipeline) Normalize(messageText string, changedPaths []string) string {
	if messageText == "" {
		return messageText
	}
	normalized := messageText
	text := newMessage(messageText)
	if spans := pipeline.spans(text, changedPaths); len(spans) > 0 {
		normalized = substitute(text, spans)
	}

	if !pipeline.stages.DisableCodeBlocks {
		normalized = StripCodeBlocks(normalized)
	}
	if !pipeline.stages.DisableSignOff {
		normalized = StripSignOff(normalized)
	}
	if !pipeline.stages.DisableURLs {
		normalized = RedactURLs(normalized)
	}
	if !pipeline.stages.DisableVersions {
		normalized = RedactVersions(normalized)
	}
	if !pipeline.stages.DisableIssues {
		normalized = RedactIssues(normalized)
	}
	return normalized
}

// NormalizeBatch normalizes every record concurrently and returns the results
// in input order. The only error is cancellation of ctx.
func (pipeline *Pipeline) NormalizeBatch(ctx context.Context, records []types.CommitRecord) ([]string, error) {
	normalized := make([]string, len(records))
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(pipeline.concurrency)

	var scheduleError error
	for recordIndex, record := range records {
		if scheduleError = groupContext.Err(); scheduleError != nil {
			break
		}
		group.Go(func() error {
			if contextError := groupContext.Err(); contextError != nil {
				return contextError
			}
			normalized[recordIndex] = pipeline.Normalize(record.Message, record.ChangedPaths)
			return nil
		})
	}

	if waitError := group.Wait(); waitError != nil {
		return nil, fmt.Errorf(batchCanceledMessageFormat, waitError)
	}
	if scheduleError != nil {
		return nil, fmt.Errorf(batchCanceledMessageFormat, scheduleError)
	}
	return normalized, nil
}
