package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/convoflow/convoflow/pkg/errors"
)

func writeTranscript(t *testing.T, dir, id, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, id+".json"), []byte(content), 0644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
}

func TestFileSourceFetch(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "conv-1", `{
		"id": "conv-1",
		"title": "Monads",
		"messages": [
			{"id": "m1", "role": "user", "content": "What is a monad?"},
			{"id": "m2", "role": "assistant", "content": "A structure.", "model": "gpt-4o"}
		]
	}`)

	s := NewFileSource(dir)
	defer s.Close(context.Background())

	entries, err := s.Fetch(context.Background(), "conv-1")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Role != "user" || entries[1].Model != "gpt-4o" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestFileSourceFetchBareArray(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "bare", `[
		{"role": "user", "content": "hi"},
		{"role": "assistant", "content": "hello"}
	]`)

	s := NewFileSource(dir)
	entries, err := s.Fetch(context.Background(), "bare")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("len(entries) = %d, want 2", len(entries))
	}
}

func TestFileSourceFetchErrors(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "broken", `{not json`)
	s := NewFileSource(dir)

	tests := []struct {
		name string
		id   string
		code errors.Code
	}{
		{"missing conversation", "nope", errors.ErrCodeConversationNotFound},
		{"invalid id", "../etc/passwd", errors.ErrCodeInvalidInput},
		{"malformed transcript", "broken", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Fetch(context.Background(), tt.id)
			if err == nil {
				t.Fatal("Fetch should fail")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %q, want %q", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestFileSourceList(t *testing.T) {
	dir := t.TempDir()
	writeTranscript(t, dir, "b-conv", `{"title": "Second", "messages": [{"role": "user", "content": "hi"}]}`)
	writeTranscript(t, dir, "a-conv", `{"title": "First", "messages": []}`)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignore me"), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewFileSource(dir)
	infos, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(infos) = %d, want 2", len(infos))
	}

	// Sorted by id, non-JSON files skipped
	if infos[0].ID != "a-conv" || infos[1].ID != "b-conv" {
		t.Errorf("unexpected order: %+v", infos)
	}
	if infos[0].Title != "First" {
		t.Errorf("Title = %q, want %q", infos[0].Title, "First")
	}
	if infos[1].MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", infos[1].MessageCount)
	}
}

func TestFileSourceListMissingDir(t *testing.T) {
	s := NewFileSource(filepath.Join(t.TempDir(), "absent"))
	infos, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("missing dir should list nothing, got %+v", infos)
	}
}
