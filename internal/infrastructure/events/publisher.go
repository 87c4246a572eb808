// Package events publica en Kafka los cambios de stock ya confirmados.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

var _ inventory.EventPublisher = (*KafkaPublisher)(nil)

// MessageWriter es la parte de *kafka.Writer que se usa (tests).
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublishObserver recibe el resultado de cada publicación (métricas).
type PublishObserver interface {
	ObservePublish(eventType string, err error)
}

// KafkaPublisher escribe cada StockEvent como JSON, con el código de barra como clave para que los
// eventos de un producto queden en la misma partición y en orden.
type KafkaPublisher struct {
	writer  MessageWriter
	source  string
	timeout time.Duration
	obs     PublishObserver
	log     *logger.Logger
}

// NewKafkaPublisher construye el publicador sobre un kafka.Writer síncrono.
func NewKafkaPublisher(cfg config.KafkaConfig, source string, log *logger.Logger, obs PublishObserver) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return NewPublisherWithWriter(w, source, log, obs)
}

// NewPublisherWithWriter permite inyectar el writer.
func NewPublisherWithWriter(w MessageWriter, source string, log *logger.Logger, obs PublishObserver) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  w,
		source:  source,
		timeout: 5 * time.Second,
		obs:     obs,
		log:     log.Component("events"),
	}
}

// Publish serializa y escribe el evento.
func (p *KafkaPublisher) Publish(ctx context.Context, ev inventory.StockEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stock event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.Barcode),
		Value: data,
		Headers: []kafka.Header{
			{Key: "ce-type", Value: []byte(ev.Type)},
			{Key: "ce-source", Value: []byte(p.source)},
			{Key: "ce-time", Value: []byte(ev.At.Format(time.RFC3339))},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: ev.At,
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	err = p.writer.WriteMessages(ctx, msg)
	if p.obs != nil {
		p.obs.ObservePublish(ev.Type, err)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	p.log.Debug().Str("type", ev.Type).Str("barcode", ev.Barcode).Msg("evento publicado")
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop descarta los eventos. Se usa cuando no hay brokers configurados.
type Nop struct{}

// Publish no hace nada.
func (Nop) Publish(context.Context, inventory.StockEvent) error { return nil }

// Close no hace nada.
func (Nop) Close() error { return nil }

// Publisher publicador con cierre.
type Publisher interface {
	inventory.EventPublisher
	Close() error
}

// New devuelve un KafkaPublisher si hay brokers, o Nop.
func New(cfg config.KafkaConfig, source string, log *logger.Logger, obs PublishObserver) Publisher {
	if !cfg.Enabled() {
		log.Info().Msg("KAFKA_BROKERS vacío: eventos de stock deshabilitados")
		return Nop{}
	}
	return NewKafkaPublisher(cfg, source, log, obs)
}
