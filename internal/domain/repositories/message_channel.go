package repositories

import (
	"context"

	"github.com/rios0rios0/npmdiffscan/internal/domain/entities"
)

// MessageHandler answers boundary messages. Failures are reported through
// Response.Error and never as a Go error.
type MessageHandler interface {
	Handle(ctx context.Context, msg entities.Message) entities.Response
}

// MessageChannel delivers a message to whatever handler sits on the other side
// of an execution-context boundary. The returned error is only about delivery
// (for example entities.ErrNoReceiver); handler failures come back in the
// Response.
type MessageChannel interface {
	Send(ctx context.Context, msg entities.Message) (entities.Response, error)
}
