package messaging

import (
	"context"
	"sync"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
	"github.com/rios0rios0/npmdiffscan/internal/domain/repositories"
)

type request struct {
	ctx   context.Context
	msg   entities.Message
	reply chan entities.Response
}

// LocalChannel connects two execution contexts of the same process. Requests
// travel over Go channels to the attached handler's own goroutine; the two
// sides share no mutable state.
type LocalChannel struct {
	mu    sync.Mutex
	inbox chan request
	stop  chan struct{}
}

// NewLocalChannel creates a channel with no handler attached.
func NewLocalChannel() *LocalChannel {
	return &LocalChannel{}
}

var _ repositories.MessageChannel = (*LocalChannel)(nil)

// Attach makes handler the receiver, replacing any previous one. Each request
// is handled on its own goroutine. The returned function detaches it.
func (c *LocalChannel) Attach(handler repositories.MessageHandler) func() {
	inbox := make(chan request)
	stop := make(chan struct{})

	c.mu.Lock()
	previousStop := c.stop
	c.inbox, c.stop = inbox, stop
	c.mu.Unlock()
	if previousStop != nil {
		close(previousStop)
	}

	go func() {
		for {
			select {
			case req := <-inbox:
				go func() { req.reply <- handler.Handle(req.ctx, req.msg) }()
			case <-stop:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.stop == stop {
				c.inbox, c.stop = nil, nil
				close(stop)
			}
		})
	}
}

// Send delivers msg and waits for the reply. It fails with
// entities.ErrNoReceiver when no handler is attached.
func (c *LocalChannel) Send(ctx context.Context, msg entities.Message) (entities.Response, error) {
	c.mu.Lock()
	inbox, stop := c.inbox, c.stop
	c.mu.Unlock()
	if inbox == nil {
		return entities.Response{}, entities.ErrNoReceiver
	}

	req := request{ctx: ctx, msg: msg, reply: make(chan entities.Response, 1)}
	select {
	case inbox <- req:
	case <-stop:
		return entities.Response{}, entities.ErrNoReceiver
	case <-ctx.Done():
		return entities.Response{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp, nil
	case <-ctx.Done():
		return entities.Response{}, ctx.Err()
	}
}

// PageChannel reaches the active page context of this process, if any.
type PageChannel struct {
	*LocalChannel
}

// NewPageChannel creates an empty PageChannel.
func NewPageChannel() *PageChannel {
	return &PageChannel{LocalChannel: NewLocalChannel()}
}
