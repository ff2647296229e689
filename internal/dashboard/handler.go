package dashboard

import (
	"encoding/json"
	"log"
	gosync "sync"
	"time"

	"github.com/paperdesk/paperdesk/internal/schema"
)

// Handler turns sync-engine events into dashboard messages. It
// implements the engine's Notifier interface.
type Handler struct {
	server *Server
	logger *log.Logger

	statsMu gosync.Mutex
	stats   StatsData
}

// NewHandler creates an event handler connected to a dashboard server
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// PaperUpdated broadcasts a paper lifecycle event.
func (h *Handler) PaperUpdated(id, action string) {
	h.logger.Printf("Paper %s: %s", action, id)

	data, err := json.Marshal(PaperUpdateData{PaperID: id, Action: action})
	if err != nil {
		h.logger.Printf("Failed to marshal paper update: %v", err)
		return
	}
	h.server.Broadcast(Message{
		Type:      MessageTypePaperUpdate,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SyncCompleted broadcasts the result of a finished sync pass.
func (h *Handler) SyncCompleted(pushed, added int) {
	h.logger.Printf("Sync complete: %d pushed, %d added", pushed, added)

	data, err := json.Marshal(SyncCompleteData{Pushed: pushed, Added: added})
	if err != nil {
		h.logger.Printf("Failed to marshal sync data: %v", err)
		return
	}
	h.server.Broadcast(Message{
		Type:      MessageTypeSyncComplete,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// UpdateStats recomputes collection statistics from a full paper list
// and broadcasts them.
func (h *Handler) UpdateStats(papers []*schema.Paper) {
	h.statsMu.Lock()
	h.stats = StatsData{Total: len(papers)}
	for _, p := range papers {
		if p.ID.Temporary() {
			h.stats.Pending++
		} else {
			h.stats.Confirmed++
		}
	}
	stats := h.stats
	h.statsMu.Unlock()

	data, err := json.Marshal(stats)
	if err != nil {
		h.logger.Printf("Failed to marshal stats: %v", err)
		return
	}
	h.server.Broadcast(Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// GetStats returns the most recently computed statistics.
func (h *Handler) GetStats() StatsData {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()
	return h.stats
}
