package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/pkg/domain"
)

// StreamManager handles active SSE connections, keyed by page ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logging.NewNop(),
	}
}

// SetLogger replaces the logger.
func (sm *StreamManager) SetLogger(logger *slog.Logger) {
	sm.logger = logger
}

// Subscribe registers a listener for a page. The returned function unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(pageID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[pageID]; !ok {
		sm.subscribers[pageID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[pageID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[pageID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, pageID)
			}
		}
	}
}

// Subscribers returns the number of listeners of a page.
func (sm *StreamManager) Subscribers(pageID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[pageID])
}

// Broadcast sends msg to every listener of a page without blocking.
func (sm *StreamManager) Broadcast(pageID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[pageID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "page_id", pageID)
		}
	}
}

// Hooks broadcasts every state transition of a page to its listeners.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			if e.PageID == "" {
				return
			}
			b, err := json.Marshal(e)
			if err != nil {
				sm.logger.Error("SSE: failed to encode transition", "error", err)
				return
			}
			sm.Broadcast(e.PageID, string(b))
		},
	}
}
