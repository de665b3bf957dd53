// Package memory provides an ephemeral in-process subscriber store.
package memory

import (
	"context"
	"sync"

	"github.com/slotwatchhq/slotwatch/internal/core/domain"
)

// Store keeps subscribers in a mutex-guarded set.
type Store struct {
	mu    sync.RWMutex
	chats map[domain.ChatID]struct{}
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{chats: make(map[domain.ChatID]struct{})}
}

func (s *Store) Add(_ context.Context, chat domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chat]; ok {
		return false, nil
	}
	s.chats[chat] = struct{}{}
	return true, nil
}

func (s *Store) Remove(_ context.Context, chat domain.ChatID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chat]; !ok {
		return false, nil
	}
	delete(s.chats, chat)
	return true, nil
}

func (s *Store) All(_ context.Context) ([]domain.ChatID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ChatID, 0, len(s.chats))
	for chat := range s.chats {
		out = append(out, chat)
	}
	return out, nil
}

func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chats), nil
}

func (s *Store) Exists(_ context.Context, chat domain.ChatID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chats[chat]
	return ok, nil
}
