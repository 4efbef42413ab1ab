package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher publica eventos de cambio de stock en Kafka, particionados por SKU
// para preservar el orden por clave. Implementa outbox.Publisher.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher construye el productor para el tópico indicado.
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Publish envía un mensaje con la clave de partición dada.
func (p *Publisher) Publish(ctx context.Context, key string, payload []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publicar en %s: %w", p.writer.Topic, err)
	}
	return nil
}

// Close cierra el productor.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
