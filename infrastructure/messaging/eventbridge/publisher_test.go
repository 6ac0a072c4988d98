package eventbridge

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"memorylane-backend/domain/events"
)

// unmarshalableEvent cannot be serialized; channels have no JSON encoding
type unmarshalableEvent struct {
	events.BaseEvent
	Blocker chan struct{} `json:"blocker"`
}

func testPublisher(t *testing.T) *EventBridgePublisher {
	t.Helper()

	publisher, ok := NewEventBridgePublisher(nil, "test-bus", zap.NewNop()).(*EventBridgePublisher)
	require.True(t, ok)
	return publisher
}

func storedEvent(id string) events.MemoryStored {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return events.NewMemoryStored(id, "alice", 0, 0, now.Add(time.Hour), now)
}

func TestBuildEntries_SkipsUnmarshalableAndStaysAligned(t *testing.T) {
	publisher := testPublisher(t)

	bad := unmarshalableEvent{Blocker: make(chan struct{})}
	bad.EventType = "memory.stored"
	bad.AggregateID = "broken"

	batch := []events.DomainEvent{
		storedEvent("memory-1"),
		bad,
		storedEvent("memory-2"),
	}

	entries, published := publisher.buildEntries(batch)

	require.Len(t, entries, 2)
	require.Len(t, published, 2)
	assert.Equal(t, "memory-1", published[0].GetAggregateID())
	assert.Equal(t, "memory-2", published[1].GetAggregateID())
	assert.Equal(t, "arn:aws:memorylane::memory-2", entries[1].Resources[0])
	assert.Equal(t, "test-bus", aws.ToString(entries[1].EventBusName))
}

func TestPublishBatch_AllEntriesUnmarshalableIsNoop(t *testing.T) {
	publisher := testPublisher(t)

	bad := unmarshalableEvent{Blocker: make(chan struct{})}
	bad.EventType = "memory.stored"

	// Nothing survives marshalling, so no PutEvents call is attempted
	require.NoError(t, publisher.PublishBatch(context.Background(), []events.DomainEvent{bad, bad}))
}
