package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/convoflow/convoflow/pkg/errors"
	"github.com/convoflow/convoflow/pkg/message"
)

// FileSource reads conversations from JSON transcript files in a directory.
// A conversation with id "abc" lives at <dir>/abc.json.
type FileSource struct {
	dir string
}

// NewFileSource creates a file-backed source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

// Fetch reads and parses the transcript for the given conversation id.
func (s *FileSource) Fetch(ctx context.Context, conversationID string) ([]message.Entry, error) {
	if err := errors.ValidateConversationID(conversationID); err != nil {
		return nil, err
	}

	path := filepath.Join(s.dir, conversationID+".json")
	entries, err := ReadTranscript(path)
	if err != nil {
		if errors.Is(err, errors.ErrCodeFileNotFound) {
			return nil, errors.New(errors.ErrCodeConversationNotFound, "conversation %s not found", conversationID)
		}
		return nil, err
	}
	return entries, nil
}

// List enumerates the transcript files in the directory, sorted by id.
func (s *FileSource) List(ctx context.Context) ([]Info, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "list transcripts in %s", s.dir)
	}

	infos := make([]Info, 0, len(dirents))
	for _, d := range dirents {
		name := d.Name()
		if d.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")

		info := Info{ID: id}
		if t, err := readTranscriptFile(filepath.Join(s.dir, name)); err == nil {
			info.Title = t.Title
			info.MessageCount = len(t.Messages)
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// Close does nothing for file sources.
func (s *FileSource) Close(ctx context.Context) error {
	return nil
}

// ReadTranscript parses a transcript file into its message stream.
// Both shapes are accepted: a Transcript object with a messages field, or a
// bare JSON array of messages.
func ReadTranscript(path string) ([]message.Entry, error) {
	t, err := readTranscriptFile(path)
	if err != nil {
		return nil, err
	}
	return t.Messages, nil
}

func readTranscriptFile(path string) (Transcript, error) {
	var t Transcript

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, errors.New(errors.ErrCodeFileNotFound, "transcript %s not found", path)
	}
	if err != nil {
		return t, errors.Wrap(errors.ErrCodeInternal, err, "read transcript %s", path)
	}

	// Bare array shape first
	var entries []message.Entry
	if err := json.Unmarshal(data, &entries); err == nil {
		t.Messages = entries
		return t, nil
	}

	if err := json.Unmarshal(data, &t); err != nil {
		return t, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse transcript %s", path)
	}
	return t, nil
}

// Ensure FileSource implements Source.
var _ Source = (*FileSource)(nil)
