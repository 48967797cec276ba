// Package types defines the cross-package data structures used by the cmnorm CLI.
package types

import "encoding/xml"

const (
	CommandNormalize = "normalize"
	CommandSpans     = "spans"
	CommandMessage   = "message"

	FormatRaw  = "raw"
	FormatJSON = "json"
	FormatXML  = "xml"
)

// CommitRecord is one commit message together with the paths it touched.
type CommitRecord struct {
	Message      string   `json:"message" mapstructure:"message"`
	ChangedPaths []string `json:"changed_paths" mapstructure:"changed_paths"`
}

// NormalizedRecord is the rendered result for one input record.
type NormalizedRecord struct {
	XMLName    xml.Name `json:"-" xml:"record"`
	Index      int      `json:"index" xml:"index,attr"`
	Message    string   `json:"message" xml:"message"`
	Normalized string   `json:"normalized" xml:"normalized"`
	Tokens     int      `json:"tokens,omitempty" xml:"tokens,omitempty"`
	Truncated  bool     `json:"truncated,omitempty" xml:"truncated,omitempty"`
}

// SpanOutput describes one resolved reference span of a message.
type SpanOutput struct {
	Start int    `json:"start" xml:"start,attr"`
	End   int    `json:"end" xml:"end,attr"`
	Kind  string `json:"kind" xml:"kind,attr"`
	Text  string `json:"text" xml:",chardata"`
}

// SpanRecord lists the resolved spans of one input record.
type SpanRecord struct {
	XMLName xml.Name     `json:"-" xml:"record"`
	Index   int          `json:"index" xml:"index,attr"`
	Message string       `json:"message" xml:"message"`
	Spans   []SpanOutput `json:"spans" xml:"spans>span"`
}

// PlaceholderCount reports how many times a placeholder appears across a batch.
type PlaceholderCount struct {
	Placeholder string `json:"placeholder" xml:"placeholder,attr"`
	Count       int    `json:"count" xml:"count,attr"`
}

// NormalizationSummary captures aggregate information about a normalized batch.
type NormalizationSummary struct {
	TotalRecords     int                `json:"totalRecords" xml:"totalRecords"`
	ChangedRecords   int                `json:"changedRecords" xml:"changedRecords"`
	Placeholders     []PlaceholderCount `json:"placeholders,omitempty" xml:"placeholders>placeholder,omitempty"`
	TotalTokens      int                `json:"totalTokens,omitempty" xml:"totalTokens,omitempty"`
	TruncatedRecords int                `json:"truncatedRecords,omitempty" xml:"truncatedRecords,omitempty"`
	Model            string             `json:"model,omitempty" xml:"model,omitempty"`
}
