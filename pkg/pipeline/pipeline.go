// Package pipeline provides the core conversation-to-graph pipeline for
// convoflow.
//
// This package implements the complete fetch → build → render pipeline that
// can be used by CLI, API, and worker components. By centralizing this logic,
// we ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load the ordered message stream from a conversation source
//  2. Build: Group messages into turns and assemble the flow graph
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// Building is always recomputed from the message stream; only rendered
// artifacts are cached, keyed by graph content hash. Each stage can be run
// independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(src, cache, nil, logger)
//	opts := pipeline.Options{
//	    ConversationID: "conv-42",
//	    Formats:        []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/convoflow/convoflow/pkg/cache"
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/flow"
	"github.com/convoflow/convoflow/pkg/message"
	"github.com/convoflow/convoflow/pkg/render"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for the conversation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options. Exactly one input is used, in this precedence:
	// Entries (inline), Input (transcript file), ConversationID (source).
	ConversationID string          `json:"conversation_id,omitempty"`
	Input          string          `json:"input,omitempty"`
	Entries        []message.Entry `json:"messages,omitempty"`

	// Build options
	VerticalGap    float64 `json:"vertical_gap,omitempty"`
	HorizontalGap  float64 `json:"horizontal_gap,omitempty"`
	UserLabel      string  `json:"user_label,omitempty"`
	AssistantLabel string  `json:"assistant_label,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	LabelLimit int      `json:"label_limit,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"` // Bypass the artifact cache

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built flow graph.
	Graph flow.Graph

	// GraphHash is the content hash of the serialized graph.
	GraphHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MessageCount int
	NodeCount    int
	EdgeCount    int
	FetchTime    time.Duration
	BuildTime    time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
// Building is never cached, so only rendering can hit.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks that the options name an input.
func (o *Options) ValidateForFetch() error {
	if len(o.Entries) == 0 && o.Input == "" && o.ConversationID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "conversation_id, input, or messages is required")
	}
	if o.ConversationID != "" {
		if err := errors.ValidateConversationID(o.ConversationID); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// Layout returns the flow layout configured by the options.
// Zero gaps fall back to the flow package defaults.
func (o *Options) Layout() flow.Layout {
	return flow.Layout{
		VerticalGap:   o.VerticalGap,
		HorizontalGap: o.HorizontalGap,
	}
}

// Labels returns the fallback display labels configured by the options.
func (o *Options) Labels() message.Labels {
	return message.Labels{
		User:      o.UserLabel,
		Assistant: o.AssistantLabel,
	}
}

// Builder returns a flow graph builder configured by the options.
func (o *Options) Builder() flow.Builder {
	return flow.Builder{
		Layout: o.Layout(),
		Labels: o.Labels(),
	}
}

// RenderOptions returns the render configuration.
func (o *Options) RenderOptions() render.Options {
	return render.Options{LabelLimit: o.LabelLimit}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		LabelLimit: o.LabelLimit,
	}
}
