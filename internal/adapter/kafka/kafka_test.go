package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/crime-data-etl/internal/config"
	"github.com/couchcryptid/crime-data-etl/internal/domain"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func testIncident(id string, severity int) domain.Incident {
	return domain.Incident{
		ID:       id,
		Type:     domain.TypeBurglary,
		Date:     time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		Location: domain.Point{Lat: 40.65, Lng: -75.37},
		Address:  "300 Block Willow Park Rd",
		Status:   domain.StatusReported,
		Severity: severity,
	}
}

func TestSerializeToMessage(t *testing.T) {
	msg, err := serializeToMessage(testIncident("BT-1", 4))
	require.NoError(t, err)

	assert.Equal(t, []byte("BT-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"type":"BURGLARY"`)
	assert.NotContains(t, string(msg.Value), "Source")
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "type", msg.Headers[0].Key)
	assert.Equal(t, []byte("BURGLARY"), msg.Headers[0].Value)
	assert.Equal(t, "severity", msg.Headers[1].Key)
	assert.Equal(t, []byte("4"), msg.Headers[1].Value)
}

func TestSerializeToMessage_NonFiniteLocation(t *testing.T) {
	inc := testIncident("BT-2", 3)
	inc.Location = domain.NoPoint
	_, err := serializeToMessage(inc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BT-2")
}

func TestPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, p.Publish(context.Background(), nil))
	assert.Empty(t, w.msgs)

	require.NoError(t, p.Publish(context.Background(), []domain.Incident{testIncident("a", 1), testIncident("b", 5)}))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, []byte("a"), w.msgs[0].Key)
	assert.Equal(t, []byte("b"), w.msgs[1].Key)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	w := &recordingWriter{err: errors.New("leader not available")}
	p := &Publisher{writer: w, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := p.Publish(context.Background(), []domain.Incident{testIncident("a", 1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "crime-incidents"}, slog.Default())

	w, ok := p.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "crime-incidents", w.Topic)
	assert.Equal(t, kafkago.RequireAll, w.RequiredAcks)
}
