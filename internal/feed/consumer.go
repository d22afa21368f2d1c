package feed

import (
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// Handler processes one decoded batch. Returning an error logs the
// failure; the subscription stays active.
type Handler func(batch *Batch) error

// Consumer subscribes to an observation feed subject on NATS.
type Consumer struct {
	nc *nats.Conn
}

// NewConsumer connects to the NATS server at url.
func NewConsumer(url string) (*Consumer, error) {
	nc, err := nats.Connect(url,
		nats.Name("obs_ingest"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}
	return &Consumer{nc: nc}, nil
}

// Subscribe starts delivering decoded batches from subject to h.
// Undecodable payloads are logged and dropped.
func (c *Consumer) Subscribe(subject string, h Handler) error {
	_, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		batch, err := DecodeBatch(msg.Data)
		if err != nil {
			log.Printf("feed: drop message on %s: %v", msg.Subject, err)
			return
		}
		if err := h(batch); err != nil {
			log.Printf("feed: handle batch from %s: %v", batch.SourceName(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection so in-flight batches finish before the
// subscription is torn down.
func (c *Consumer) Close() {
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
	}
}
