package broker

import (
	"errors"
	"fmt"
	"log"
	"time"

	"sakudo-app/sakudo/models"

	"github.com/nats-io/nats.go"
)

// Publisher delivers change events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(subject string, event *models.Event) error
	Close()
}

// Message is a raw event as carried on the bus.
type Message struct {
	Subject string
	Data    []byte
}

// NatsPublisher publishes events to a NATS server.
type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(url string) (*NatsPublisher, error) {
	conn, err := Connect(url)
	if err != nil {
		return nil, err
	}
	log.Printf("NATS publisher connected to %s", conn.ConnectedUrl())
	return &NatsPublisher{conn: conn}, nil
}

// Connect opens a NATS connection with the options shared by publishers and
// consumers.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name("sakudo"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return conn, nil
}

func (p *NatsPublisher) Publish(subject string, event *models.Event) error {
	if p.conn == nil {
		return nats.ErrConnectionClosed
	}

	data, err := event.ToJSON()
	if err != nil {
		return err
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Event, err)
	}
	return nil
}

func (p *NatsPublisher) Close() {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			log.Printf("Failed to drain NATS connection: %v", err)
			p.conn.Close()
		}
	}
}

// MultiPublisher forwards each event to every publisher in order.
type MultiPublisher []Publisher

func (m MultiPublisher) Publish(subject string, event *models.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(subject, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m MultiPublisher) Close() {
	for _, p := range m {
		p.Close()
	}
}
