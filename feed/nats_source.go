package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSSource consumes table deltas from a core NATS subject.
type NATSSource struct {
	url     string
	subject string
}

func NewNATSSource(url, subject string) *NATSSource {
	return &NATSSource{url: url, subject: subject}
}

func (n *NATSSource) Name() string {
	return "nats:" + n.subject
}

func (n *NATSSource) Run(ctx context.Context, sink Sink) error {
	nc, err := nats.Connect(n.url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer nc.Drain()

	// NATS delivers a subscription's messages in order on one goroutine,
	// which keeps per-table delivery order intact.
	sub, err := nc.Subscribe(n.subject, func(msg *nats.Msg) {
		Apply(n.Name(), msg.Data, sink)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", n.subject, err)
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	return nil
}
