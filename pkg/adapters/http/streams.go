package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Commit is one message of the /events stream.
type Commit struct {
	Command string
	Data    []byte
}

// StreamManager fans committed render states out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Commit]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager. A nil logger discards.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StreamManager{
		subscribers: make(map[chan Commit]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel; the returned func unregisters and closes it.
func (sm *StreamManager) Subscribe() (<-chan Commit, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Commit, 10)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast never blocks: a subscriber with a full buffer misses the message.
func (sm *StreamManager) Broadcast(msg Commit) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping commit", "command", msg.Command)
		}
	}
}

// Hooks returns lifecycle hooks broadcasting every commit.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			data, err := json.Marshal(e)
			if err != nil {
				sm.logger.Error("SSE: failed to encode commit", "error", err)
				return
			}
			sm.Broadcast(Commit{Command: e.Command, Data: data})
		},
	}
}
