package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-cleanhttp"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

// MessagesPath is where a background server accepts messages.
const MessagesPath = "/messages"

// HTTPChannel sends messages to a background running `npmdiffscan serve`.
type HTTPChannel struct {
	client   *http.Client
	baseURL  string
	endpoint string
}

// NewHTTPChannel creates a channel to the background at baseURL.
func NewHTTPChannel(baseURL string) *HTTPChannel {
	baseURL = strings.TrimRight(baseURL, "/")
	return &HTTPChannel{
		client:   cleanhttp.DefaultPooledClient(),
		baseURL:  baseURL,
		endpoint: baseURL + MessagesPath,
	}
}

var _ repositories.MessageChannel = (*HTTPChannel)(nil)

// Send posts msg and decodes the reply. An unreachable background is
// reported as entities.ErrNoReceiver.
func (c *HTTPChannel) Send(ctx context.Context, msg entities.Message) (entities.Response, error) {
	body, err := entities.EncodeMessage(msg)
	if err != nil {
		return entities.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return entities.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return entities.Response{}, fmt.Errorf("%w: %w", entities.ErrNoReceiver, err)
		}
		return entities.Response{}, fmt.Errorf("failed to send %s: %w", msg.Action(), err)
	}
	defer resp.Body.Close()

	var reply entities.Response
	if decodeErr := json.NewDecoder(resp.Body).Decode(&reply); decodeErr != nil {
		return entities.Response{}, fmt.Errorf(
			"failed to parse %s reply (HTTP %d): %w", msg.Action(), resp.StatusCode, decodeErr,
		)
	}
	if resp.StatusCode != http.StatusOK && reply.Error == "" {
		reply.Error = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return reply, nil
}

// Subscribe attaches handler to the background as a page, so messages the
// background sends to its pages reach it. The returned function detaches it
// and waits for the reader to stop. An unreachable background is reported as
// entities.ErrNoReceiver.
func (c *HTTPChannel) Subscribe(ctx context.Context, handler repositories.MessageHandler) (func(), error) {
	pagesURL := c.baseURL + PagesPath
	switch {
	case strings.HasPrefix(pagesURL, "https://"):
		pagesURL = "wss://" + strings.TrimPrefix(pagesURL, "https://")
	case strings.HasPrefix(pagesURL, "http://"):
		pagesURL = "ws://" + strings.TrimPrefix(pagesURL, "http://")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, pagesURL, nil)
	if err != nil {
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return nil, fmt.Errorf("%w: %w", entities.ErrNoReceiver, err)
		}
		return nil, fmt.Errorf("failed to subscribe to %s: %w", pagesURL, err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, readErr := conn.ReadMessage()
			if readErr != nil {
				return
			}
			msg, decodeErr := entities.DecodeMessage(data)
			if decodeErr != nil {
				logger.Warnf("Ignoring message from background: %v", decodeErr)
				continue
			}
			if resp := handler.Handle(subCtx, msg); resp.Error != "" {
				logger.Warnf("Page failed to handle %s: %s", msg.Action(), resp.Error)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = conn.Close()
			<-done
		})
	}, nil
}
