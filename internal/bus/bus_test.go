package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurakshaKumari/gt-3D-backend/internal/config"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		Origin:    "node-a",
		ProjectID: "p1",
		Exclude:   "conn-1",
		Frame:     json.RawMessage(`{"event":"chatPosted","data":{"id":"m1"}}`),
	}

	data, err := encode(msg)
	require.NoError(t, err)

	got, err := decode(data)
	require.NoError(t, err)
	assert.Equal(t, msg.Origin, got.Origin)
	assert.Equal(t, msg.ProjectID, got.ProjectID)
	assert.Equal(t, msg.Exclude, got.Exclude)
	assert.JSONEq(t, string(msg.Frame), string(got.Frame))
}

func TestDecodeGarbage(t *testing.T) {
	_, err := decode([]byte("not json"))
	assert.Error(t, err)
}

func TestLocalDeliversToAllSubscribers(t *testing.T) {
	l := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 4)
	for _, name := range []string{"a", "b"} {
		name := name
		go l.Subscribe(ctx, func(m Message) { got <- name + ":" + m.ProjectID })
	}
	require.Eventually(t, func() bool { return l.Subscribers() == 2 }, time.Second, time.Millisecond)

	require.NoError(t, l.Publish(ctx, Message{Origin: "x", ProjectID: "p1"}))

	received := []string{<-got, <-got}
	assert.ElementsMatch(t, []string{"a:p1", "b:p1"}, received)
}

func TestLocalUnsubscribeOnCancel(t *testing.T) {
	l := NewLocal()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		_ = l.Subscribe(ctx, func(Message) {})
		close(done)
	}()
	require.Eventually(t, func() bool { return l.Subscribers() == 1 }, time.Second, time.Millisecond)

	cancel()
	<-done
	assert.Zero(t, l.Subscribers())
}

func TestLocalClosed(t *testing.T) {
	l := NewLocal()
	require.NoError(t, l.Close())

	err := l.Publish(context.Background(), Message{})
	assert.True(t, errors.Is(err, ErrClosed))
	assert.True(t, errors.Is(l.Subscribe(context.Background(), func(Message) {}), ErrClosed))
}

func TestNewNone(t *testing.T) {
	b, err := New(config.BusConfig{Driver: config.BusNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = New(config.BusConfig{Driver: "kafka"}, nil)
	assert.Error(t, err)
}
