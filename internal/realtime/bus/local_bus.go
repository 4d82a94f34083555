package bus

import (
	"context"
	"sync"

	"github.com/mkarlin/chatdeck-backend/internal/realtime"
)

// localBus is the single-instance fallback used when Redis is not
// configured: publishes loop straight back to the forwarder.
type localBus struct {
	mu    sync.RWMutex
	onMsg func(event realtime.Event)
}

func NewLocalBus() Bus {
	return &localBus{}
}

func (b *localBus) Publish(_ context.Context, event realtime.Event) error {
	b.mu.RLock()
	onMsg := b.onMsg
	b.mu.RUnlock()
	if onMsg != nil {
		onMsg(event)
	}
	return nil
}

func (b *localBus) StartForwarder(_ context.Context, onMsg func(event realtime.Event)) error {
	b.mu.Lock()
	b.onMsg = onMsg
	b.mu.Unlock()
	return nil
}

func (b *localBus) Close() error {
	return nil
}
