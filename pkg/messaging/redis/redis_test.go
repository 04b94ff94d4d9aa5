package redis

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/pdf-api/pkg/circuitbreaker"
	"github.com/jwalitptl/pdf-api/pkg/messaging"
)

func TestBroker_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	b := NewBroker(db)

	mock.ExpectPublish("pdfapi:audit", []byte(`{"type":"audit","payload":{"action":"auth.login"}}`)).SetVal(1)

	err := b.Publish(context.Background(), "pdfapi:audit", messaging.Message{
		Type:    "audit",
		Payload: map[string]string{"action": "auth.login"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBroker_OpensAfterFailures(t *testing.T) {
	db, mock := redismock.NewClientMock()
	b := NewBroker(db)

	for i := 0; i < 5; i++ {
		mock.ExpectPublish("ch", []byte(`1`)).SetErr(stderrors.New("connection refused"))
		require.Error(t, b.Publish(context.Background(), "ch", 1))
	}

	err := b.Publish(context.Background(), "ch", 1)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
}

func TestBroker_MarshalError(t *testing.T) {
	db, _ := redismock.NewClientMock()
	b := NewBroker(db)

	err := b.Publish(context.Background(), "ch", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal message")
}
