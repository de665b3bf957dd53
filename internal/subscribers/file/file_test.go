package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

func TestStore_AddRemoveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()

	added, err := s.Add(ctx, 200)
	if err != nil || !added {
		t.Fatalf("Add(200) = %v, %v; want true, nil", added, err)
	}
	if added, _ := s.Add(ctx, 200); added {
		t.Error("Add(200) twice reported a second insert")
	}
	if _, err := s.Add(ctx, 100); err != nil {
		t.Fatalf("Add(100): %v", err)
	}

	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	if ok, _ := s.Exists(ctx, 100); !ok {
		t.Error("Exists(100) = false after Add")
	}

	removed, err := s.Remove(ctx, 200)
	if err != nil || !removed {
		t.Fatalf("Remove(200) = %v, %v; want true, nil", removed, err)
	}
	if removed, _ := s.Remove(ctx, 200); removed {
		t.Error("Remove(200) twice reported a second delete")
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || all[0] != 100 {
		t.Errorf("All = %v, want [100]", all)
	}
}

func TestStore_FileFormatIsSortedArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	for _, chat := range []domain.ChatID{300, 100, 200} {
		if _, err := s.Add(ctx, chat); err != nil {
			t.Fatalf("Add(%d): %v", chat, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got := string(data); got != "[100,200,300]" {
		t.Errorf("file contents = %q, want sorted array", got)
	}
}

func TestNewStore_CreatesParentDirAndEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "subscribers.json")
	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("fresh file = %q, want empty array", data)
	}
	if n, _ := s.Count(context.Background()); n != 0 {
		t.Errorf("fresh store Count = %d, want 0", n)
	}
}

func TestNewStore_ReadsHandEditedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	if err := os.WriteFile(path, []byte("[42, 7]"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()
	for _, chat := range []domain.ChatID{7, 42} {
		if ok, _ := s.Exists(ctx, chat); !ok {
			t.Errorf("Exists(%d) = false for hand-edited entry", chat)
		}
	}
}

func TestStore_CorruptFileSurfacesError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := s.All(context.Background()); err == nil {
		t.Error("All on corrupt file returned nil error")
	}
}
