package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/convoflow/convoflow/pkg/cache"
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/flow"
	"github.com/convoflow/convoflow/pkg/message"
	"github.com/convoflow/convoflow/pkg/observability"
	"github.com/convoflow/convoflow/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the source, cache, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Source source.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given source and cache.
// If src is nil, only inline messages and transcript files can be built.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src source.Source, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → build → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	entries, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.MessageCount = len(entries)

	r.Logger.Info("fetched conversation",
		"messages", len(entries),
		"duration", result.Stats.FetchTime)

	// Stage 2: Build (always recomputed, never cached)
	buildStart := time.Now()
	g := r.Build(ctx, entries, opts)
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Content hash for cache keys and API responses
	if data, err := flow.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("built flow graph",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.BuildTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch resolves the message stream named by the options.
// Inline messages win over a transcript file, which wins over a source fetch.
func (r *Runner) Fetch(ctx context.Context, opts Options) ([]message.Entry, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, err
	}

	switch {
	case len(opts.Entries) > 0:
		return opts.Entries, nil
	case opts.Input != "":
		return source.ReadTranscript(opts.Input)
	default:
		if r.Source == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no conversation source configured for id %s", opts.ConversationID)
		}
		return r.Source.Fetch(ctx, opts.ConversationID)
	}
}

// Build assembles the flow graph from a message stream.
// Building never fails and is never cached; the graph is recomputed on every
// call so output always reflects the input.
func (r *Runner) Build(ctx context.Context, entries []message.Entry, opts Options) flow.Graph {
	observability.Pipeline().OnBuildStart(ctx, len(entries))
	start := time.Now()

	g := opts.Builder().Build(entries)

	observability.Pipeline().OnBuildComplete(ctx, g.NodeCount(), g.EdgeCount(), time.Since(start))
	return g
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g flow.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	graphData, err := flow.MarshalGraph(g)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize graph for cache key")
	}
	graphHash := cache.Hash(graphData)

	// Try to get all formats from cache (unless refresh requested)
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		allCached := true
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
		if allCached && len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return artifacts, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	rendered, err := RenderFormats(g, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g flow.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner.
func (r *Runner) Close(ctx context.Context) error {
	var firstErr error
	if r.Source != nil {
		firstErr = r.Source.Close(ctx)
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
