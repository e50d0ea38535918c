package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

type AMQPConfig struct {
	URL          string
	Exchange     string
	ExchangeType string // "fanout" or "topic"
	RoutingKey   string
	Durable      bool
}

type publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQP publishes each settled hand as one persistent JSON message.
type AMQP struct {
	conn *amqp.Connection
	ch   publisher
	cfg  AMQPConfig
}

func NewAMQP(cfg AMQPConfig) (*AMQP, error) {
	if cfg.ExchangeType == "" {
		cfg.ExchangeType = "topic"
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(cfg.Exchange, cfg.ExchangeType, cfg.Durable, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %v", err)
	}
	return &AMQP{conn: conn, ch: ch, cfg: cfg}, nil
}

func (a *AMQP) WriteHand(_ context.Context, h Hand) error {
	body, err := json.Marshal(h)
	if err != nil {
		return err
	}
	err = a.ch.Publish(a.cfg.Exchange, a.cfg.RoutingKey, false, false, amqp.Publishing{
		Headers:         amqp.Table{"match_id": h.MatchID, "hand_id": h.ID, "hand_index": int64(h.Index)},
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		MessageId:       uuid.NewString(),
		Type:            "hand.settled",
		Body:            body,
		DeliveryMode:    amqp.Persistent,
		Timestamp:       time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish hand %s: %v", h.ID, err)
	}
	return nil
}

func (a *AMQP) Close() error {
	err := a.ch.Close()
	if a.conn != nil {
		if cerr := a.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
