package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/convoflow/convoflow/pkg/buildinfo"
	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/flow"
	"github.com/convoflow/convoflow/pkg/pipeline"
)

// graphResponse is the JSON body returned by the graph endpoints.
type graphResponse struct {
	Graph     flow.Graph        `json:"graph"`
	GraphHash string            `json:"graph_hash"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
}

var artifactContentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// buildGraph builds a flow graph from messages supplied in the request body.
// The body is a pipeline.Options document; inline messages are required
// since this endpoint never touches the conversation source.
func (s *Server) buildGraph(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse request body"))
		return
	}

	// Server requests never read local files or the source by id here
	opts.Input = ""
	opts.ConversationID = ""
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatJSON}
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, graphResponse{
		Graph:     result.Graph,
		GraphHash: result.GraphHash,
		Artifacts: result.Artifacts,
	})
}

func (s *Server) listConversations(w http.ResponseWriter, r *http.Request) {
	if s.runner.Source == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no conversation source configured"))
		return
	}

	infos, err := s.runner.Source.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// conversationGraph builds the graph for one stored conversation.
// With ?format=svg|png|dot the raw artifact bytes are returned instead of
// the JSON graph document.
func (s *Server) conversationGraph(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.Options{
		ConversationID: chi.URLParam(r, "id"),
		Refresh:        r.URL.Query().Get("refresh") == "true",
	}

	format := r.URL.Query().Get("format")
	if format != "" {
		if err := pipeline.ValidateFormat(format); err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}
	} else {
		opts.Formats = []string{pipeline.FormatJSON}
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if format != "" {
		w.Header().Set("Content-Type", artifactContentTypes[format])
		w.Header().Set("X-Graph-Hash", result.GraphHash)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
		return
	}

	writeJSON(w, http.StatusOK, graphResponse{
		Graph:     result.Graph,
		GraphHash: result.GraphHash,
	})
}

// writeError maps error codes onto HTTP statuses and renders a JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidGraph:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeConversationNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"err", err)
	}

	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(errors.GetCode(err)),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
