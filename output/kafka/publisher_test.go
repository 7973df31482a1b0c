package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/vitalstream/errors"
	"github.com/c360/vitalstream/types/vital"
)

func TestNewPublisherRequiresBrokers(t *testing.T) {
	_, err := NewPublisher(Config{})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNewPublisherDefaults(t *testing.T) {
	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	assert.Equal(t, DefaultConfig().Topic, p.writer.Topic)
}

func TestPublishEmptyBatchIsNoop(t *testing.T) {
	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	defer func() { _ = p.Close() }()

	assert.NoError(t, p.Publish(context.Background(), nil))
	published, failed := p.Stats()
	assert.Zero(t, published)
	assert.Zero(t, failed)
}

func TestPublishAfterClose(t *testing.T) {
	p, err := NewPublisher(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	require.NoError(t, p.Close())

	err = p.Publish(context.Background(), []vital.AlertResult{{ID: "a1"}})
	assert.Error(t, err)

	// Double close is safe.
	assert.NoError(t, p.Close())
}
