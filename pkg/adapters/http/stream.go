package http

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/cells/pkg/domain"
)

// StreamManager fans records out to active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan<- domain.Record]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan<- domain.Record]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a connection. The returned function closes it.
func (sm *StreamManager) Subscribe() (<-chan domain.Record, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan domain.Record, 16)
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

// Broadcast delivers rec to every connection. It is a domain.Observer and
// never blocks: slow clients drop records.
func (sm *StreamManager) Broadcast(rec domain.Record) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- rec:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping record", "node", rec.NodeID, "attribute", rec.Attribute)
		}
	}
}

func encodeRecord(rec domain.Record) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
