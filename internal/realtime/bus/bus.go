package bus

import (
	"context"

	"github.com/mkarlin/chatdeck-backend/internal/realtime"
)

// Bus moves stream-part events between instances. Publish sends an event
// out; StartForwarder invokes onMsg for every event received, including
// this instance's own publishes, so the hub has a single delivery path.
type Bus interface {
	Publish(ctx context.Context, event realtime.Event) error
	StartForwarder(ctx context.Context, onMsg func(event realtime.Event)) error
	Close() error
}
