package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigIsValidForIdempotentWrites(t *testing.T) {
	cfg := NewConfig("stayhub-test")
	require.NoError(t, cfg.Validate())
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
}

func TestPublishSendsKeyAndHeaders(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig("stayhub-test"))
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "booking.events.v1" {
			return errors.New("unexpected topic " + msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil || string(key) != "listing-1" {
			return errors.New("unexpected key")
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != "content-type" {
			return errors.New("unexpected headers")
		}
		return nil
	})
	p := newProducerWith(mock)
	defer p.Close()

	err := p.Publish(context.Background(), "booking.events.v1", "listing-1", []byte(`{"id":"e-1"}`), map[string]string{
		"content-type": "application/cloudevents+json",
	})
	require.NoError(t, err)
}

func TestPublishReportsBrokerFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewConfig("stayhub-test"))
	mock.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)
	p := newProducerWith(mock)
	defer p.Close()

	err := p.Publish(context.Background(), "listing.events.v1", "listing-1", []byte(`{}`), nil)
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
}
