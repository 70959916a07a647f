package broker

import (
	"fmt"
	"log"

	"github.com/nats-io/nats.go"
)

// Consumer receives raw events from one or more subjects.
type Consumer struct {
	conn *nats.Conn
	subs []*nats.Subscription
}

// StartConsumer subscribes handler to subjects on the NATS server at url.
// handler runs on the NATS delivery goroutine.
func StartConsumer(url string, subjects []string, handler func(Message)) (*Consumer, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}

	c := &Consumer{conn: conn}
	for _, subject := range subjects {
		sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
			handler(Message{Subject: msg.Subject, Data: msg.Data})
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		c.subs = append(c.subs, sub)
	}

	log.Printf("NATS consumer started, listening to subjects: %v", subjects)
	return c, nil
}

func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil && err != nats.ErrConnectionClosed {
			log.Printf("Failed to unsubscribe from %s: %v", sub.Subject, err)
		}
	}
	c.subs = nil
	if c.conn != nil {
		c.conn.Close()
	}
}
