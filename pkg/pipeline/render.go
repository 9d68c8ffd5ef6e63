package pipeline

import (
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/flow"
	"github.com/convoflow/convoflow/pkg/render"
)

// RenderFormats renders the graph into every requested format.
// Formats must already be validated.
func RenderFormats(g flow.Graph, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		data, err := renderOne(g, format, opts)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

func renderOne(g flow.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.SVG(g, opts.RenderOptions())
	case FormatPNG:
		return render.PNG(g, opts.RenderOptions())
	case FormatDOT:
		return []byte(render.ToDOT(g, opts.RenderOptions())), nil
	case FormatJSON:
		return flow.MarshalGraph(g)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", format)
	}
}
