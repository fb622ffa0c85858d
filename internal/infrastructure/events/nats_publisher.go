package events

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

const statusChangedSuffix = "qualification.status_changed"

// NATSPublisher publishes status changes as JSON on <prefix>.qualification.status_changed.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

var _ ports.EventPublisher = (*NATSPublisher)(nil)

func ConnectNATS(url string, prefix string) (*NATSPublisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("nats url is required")
	}
	conn, err := nats.Connect(url, nats.Name("railsync-compliance"))
	if err != nil {
		return nil, errs.Wrap(err, "connect nats")
	}
	return NewNATSPublisher(conn, prefix), nil
}

func NewNATSPublisher(conn *nats.Conn, prefix string) *NATSPublisher {
	return &NATSPublisher{conn: conn, subject: StatusChangedSubject(prefix)}
}

func StatusChangedSubject(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return statusChangedSuffix
	}
	return prefix + "." + statusChangedSuffix
}

func (p *NATSPublisher) PublishStatusChanged(ctx context.Context, event ports.StatusChangedEvent) error {
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal status changed event")
	}
	if err := p.conn.Publish(p.subject, payload); err != nil {
		return errs.Wrapf(err, "publish %s", p.subject)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.conn == nil {
		return nil
	}
	if err := p.conn.Drain(); err != nil && !errors.Is(err, nats.ErrConnectionClosed) {
		return errs.Wrap(err, "drain nats connection")
	}
	return nil
}
