package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Event is the JSON envelope published for payroll and leave lifecycle changes.
type Event struct {
	EventType    string                 `json:"event_type"`
	CompanyID    string                 `json:"company_id"`
	ActorID      string                 `json:"actor_id,omitempty"`
	ResourceType string                 `json:"resource_type"`
	ResourceID   string                 `json:"resource_id"`
	OccurredAt   time.Time              `json:"occurred_at"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
}

// Subject follows notifications.<resource>.<event>.
func (e Event) Subject() string {
	return fmt.Sprintf("notifications.%s.%s", e.ResourceType, e.EventType)
}

// Publisher delivers events. Publishing is best effort: failures are logged and
// never returned to the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type NATSPublisher struct {
	conn *nats.Conn
	log  *slog.Logger
}

// NewNATSPublisher connects to url. An empty url yields a publisher that drops events.
func NewNATSPublisher(url string, log *slog.Logger) (*NATSPublisher, error) {
	if url == "" {
		return &NATSPublisher{log: log}, nil
	}
	conn, err := nats.Connect(url,
		nats.Name("simplehr-payroll"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &NATSPublisher{conn: conn, log: log}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) {
	if p.conn == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.WarnContext(ctx, "events: failed to marshal event", slog.String("event_type", event.EventType), slog.Any("error", err))
		return
	}

	subject := event.Subject()
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.WarnContext(ctx, "events: failed to publish (non-fatal)",
			slog.String("subject", subject),
			slog.String("resource_id", event.ResourceID),
			slog.Any("error", err),
		)
		return
	}

	p.log.DebugContext(ctx, "events: published", slog.String("subject", subject), slog.String("resource_id", event.ResourceID))
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
