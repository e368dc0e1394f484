package broker

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Producer forwards serialized change events to an external message bus.
type Producer interface {
	Publish(subject string, data []byte) error
	Close()
}

type NatsProducer struct {
	conn *nats.Conn
}

func NewNatsProducer(url string) (*NatsProducer, error) {
	conn, err := nats.Connect(url,
		nats.Name("spoolman-notifier"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("Disconnected from NATS")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("Reconnected to NATS")
		}),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "connecting to NATS at %s", url)
	}

	log.Info().Str("url", conn.ConnectedUrl()).Msg("NATS producer initialized")
	return &NatsProducer{conn: conn}, nil
}

func (p *NatsProducer) Publish(subject string, data []byte) error {
	if p.conn == nil || p.conn.IsClosed() {
		return nats.ErrConnectionClosed
	}
	return p.conn.Publish(subject, data)
}

func (p *NatsProducer) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Warn().Err(err).Msg("Failed to drain NATS connection")
		p.conn.Close()
	}
}
