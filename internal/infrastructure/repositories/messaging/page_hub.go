package messaging

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// PagesPath is where page scans of other processes subscribe to a background.
const PagesPath = "/pages"

const socketBufferSize = 1024

// PageHub is the background's view of the page scans attached to it over
// WebSocket. Sending on it pushes the message to every attached page.
type PageHub struct {
	mu       sync.Mutex
	pages    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
}

// NewPageHub creates a hub with no pages attached.
func NewPageHub() *PageHub {
	return &PageHub{
		pages: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  socketBufferSize,
			WriteBufferSize: socketBufferSize,
		},
	}
}

var _ repositories.MessageChannel = (*PageHub)(nil)

// HandleWebSocket upgrades the request and keeps the page attached until it
// disconnects.
func (h *PageHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("Failed to attach page: %v", err)
		return
	}

	h.mu.Lock()
	h.pages[conn] = struct{}{}
	h.mu.Unlock()
	logger.Debugf("Page attached from %s", r.RemoteAddr)

	// pages never write; reading only detects the disconnect
	for {
		if _, _, readErr := conn.ReadMessage(); readErr != nil {
			break
		}
	}

	h.detach(conn)
	logger.Debugf("Page detached from %s", r.RemoteAddr)
}

// Send pushes msg to every attached page. Delivery is one-way: the returned
// Response is empty. It fails with entities.ErrNoReceiver when no page is
// attached.
func (h *PageHub) Send(_ context.Context, msg entities.Message) (entities.Response, error) {
	data, err := entities.EncodeMessage(msg)
	if err != nil {
		return entities.Response{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.pages) == 0 {
		return entities.Response{}, entities.ErrNoReceiver
	}
	for conn := range h.pages {
		if writeErr := conn.WriteMessage(websocket.TextMessage, data); writeErr != nil {
			logger.Warnf("Dropping page that failed to receive %s: %v", msg.Action(), writeErr)
			delete(h.pages, conn)
			_ = conn.Close()
		}
	}
	return entities.Response{}, nil
}

// PageCount returns the number of attached pages.
func (h *PageHub) PageCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pages)
}

// Close disconnects every attached page.
func (h *PageHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.pages {
		_ = conn.Close()
		delete(h.pages, conn)
	}
}

func (h *PageHub) detach(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pages, conn)
	_ = conn.Close()
}
