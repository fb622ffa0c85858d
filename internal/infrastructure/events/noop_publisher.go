package events

import (
	"context"

	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

// NoopPublisher drops events; it backs events.driver=none.
type NoopPublisher struct{}

var _ ports.EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishStatusChanged(context.Context, ports.StatusChangedEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
