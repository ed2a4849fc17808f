//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"sync"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// SpyMessageHandler records every message and answers with Reply.
type SpyMessageHandler struct {
	Reply entities.Response

	mu       sync.Mutex
	received []entities.Message
}

var _ repositories.MessageHandler = (*SpyMessageHandler)(nil)

func (h *SpyMessageHandler) Handle(_ context.Context, msg entities.Message) entities.Response {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.received = append(h.received, msg)
	return h.Reply
}

// Received returns the messages handled so far.
func (h *SpyMessageHandler) Received() []entities.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]entities.Message(nil), h.received...)
}
