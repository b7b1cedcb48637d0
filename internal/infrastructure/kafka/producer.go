package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/Ahorro-api/internal/infrastructure/events"
)

var _ events.Publisher = (*Producer)(nil)

// Producer publica los eventos del libro mayor en un tópico Kafka, con clave = agregado.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer crea el productor para brokers y tópico dados.
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		WriteTimeout: 10 * time.Second,
		ReadTimeout:  10 * time.Second,
	}
	return &Producer{writer: writer}
}

// Publish serializa el mensaje a JSON y lo escribe en el tópico.
func (p *Producer) Publish(ctx context.Context, msg events.Message) error {
	km, err := encode(msg)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("kafka write %s: %w", msg.Event, err)
	}
	return nil
}

// Close cierra el writer (vacía los lotes pendientes).
func (p *Producer) Close() error {
	return p.writer.Close()
}

func encode(msg events.Message) (kafka.Message, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal evento %s: %w", msg.Event, err)
	}
	return kafka.Message{
		Key:   []byte(msg.Key),
		Value: body,
		Time:  msg.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(msg.Event)},
		},
	}, nil
}
