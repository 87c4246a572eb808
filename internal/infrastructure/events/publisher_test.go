package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sistema-bodega/internal/application/inventory"
	"github.com/jhoicas/sistema-bodega/pkg/config"
	"github.com/jhoicas/sistema-bodega/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeObserver struct{ calls map[string]int }

func (o *fakeObserver) ObservePublish(eventType string, err error) {
	key := eventType + ":ok"
	if err != nil {
		key = eventType + ":error"
	}
	o.calls[key]++
}

func TestPublish_ClavePorCodigoYCuerpoJSON(t *testing.T) {
	w := &fakeWriter{}
	obs := &fakeObserver{calls: map[string]int{}}
	p := NewPublisherWithWriter(w, "sistema-bodega", logger.Nop(), obs)
	at := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), inventory.StockEvent{
		Type: inventory.EventMovementRecorded, Barcode: "770001", Direction: "salida",
		Quantity: 50, PreviousStock: 100, Stock: 50, At: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "770001", string(w.msgs[0].Key))

	var got inventory.StockEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, 50, got.Stock)
	assert.Equal(t, 1, obs.calls[inventory.EventMovementRecorded+":ok"])
}

func TestPublish_ErrorSeInforma(t *testing.T) {
	w := &fakeWriter{err: errors.New("sin líder")}
	obs := &fakeObserver{calls: map[string]int{}}
	p := NewPublisherWithWriter(w, "sistema-bodega", logger.Nop(), obs)

	err := p.Publish(context.Background(), inventory.StockEvent{Type: inventory.EventStockReconciled, Barcode: "1"})
	assert.Error(t, err)
	assert.Equal(t, 1, obs.calls[inventory.EventStockReconciled+":error"])
}

func TestNew_SinBrokersEsNop(t *testing.T) {
	p := New(config.KafkaConfig{Topic: "bodega.stock"}, "sistema-bodega", logger.Nop(), nil)
	_, ok := p.(Nop)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), inventory.StockEvent{}))
}
