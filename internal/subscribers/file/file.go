// Package file persists subscribers as a sorted JSON array of chat ids.
// The format matches what operators already hand-edit: a flat list like
// [123, 456].
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// Store reads and writes the subscriber file under a process-local lock.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore ensures the parent directory and file exist.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create subscriber dir: %w", err)
		}
	}
	s := &Store{path: path}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat subscriber file: %w", err)
	}
	return s, nil
}

func (s *Store) Add(_ context.Context, chat domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := set[chat]; ok {
		return false, nil
	}
	set[chat] = struct{}{}
	return true, s.write(set)
}

func (s *Store) Remove(_ context.Context, chat domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.read()
	if err != nil {
		return false, err
	}
	if _, ok := set[chat]; !ok {
		return false, nil
	}
	delete(set, chat)
	return true, s.write(set)
}

func (s *Store) All(_ context.Context) ([]domain.ChatID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]domain.ChatID, 0, len(set))
	for chat := range set {
		out = append(out, chat)
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	all, err := s.All(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

func (s *Store) Exists(_ context.Context, chat domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, err := s.read()
	if err != nil {
		return false, err
	}
	_, ok := set[chat]
	return ok, nil
}

func (s *Store) read() (map[domain.ChatID]struct{}, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[domain.ChatID]struct{}{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read subscriber file: %w", err)
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse subscriber file: %w", err)
	}
	set := make(map[domain.ChatID]struct{}, len(ids))
	for _, id := range ids {
		set[domain.ChatID(id)] = struct{}{}
	}
	return set, nil
}

func (s *Store) write(set map[domain.ChatID]struct{}) error {
	ids := make([]int64, 0, len(set))
	for chat := range set {
		ids = append(ids, int64(chat))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to encode subscribers: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write subscriber file: %w", err)
	}
	return nil
}
