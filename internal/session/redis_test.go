package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/nutriplan/backend/internal/testhelpers"
)

func TestRedisStore(t *testing.T) {
	client := testhelpers.SetupRedis(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	s := &Session{ID: uuid.NewString(), UserID: uuid.New(), ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Save(ctx, s))

	got, err := store.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)

	ttl, err := client.TTL(ctx, sessionKey(s.ID)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Minute)

	require.NoError(t, store.Delete(ctx, s.ID))
	_, err = store.Get(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNoSession)

	expired := &Session{ID: uuid.NewString(), ExpiresAt: time.Now().Add(-time.Second)}
	assert.Error(t, store.Save(ctx, expired))
}

func TestRedisBridge_RelaysBetweenInstances(t *testing.T) {
	client := testhelpers.SetupRedis(t)

	localA, localB := NewBroker(zap.NewNop()), NewBroker(zap.NewNop())
	bridgeA := NewRedisBridge(client, localA, zap.NewNop())
	bridgeB := NewRedisBridge(client, localB, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 2)
	go func() { done <- bridgeA.Run(ctx) }()
	go func() { done <- bridgeB.Run(ctx) }()

	gotA, gotB := make(chan Change, 4), make(chan Change, 4)
	defer localA.OnAuthStateChange(func(c Change) { gotA <- c }).Unsubscribe()
	defer localB.OnAuthStateChange(func(c Change) { gotB <- c }).Unsubscribe()

	change := Change{Event: SignedOut, Session: Session{ID: "abc"}}
	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, EventsChannel).Result()
		return err == nil && n[EventsChannel] == 2
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, bridgeA.Publish(ctx, change))

	select {
	case c := <-gotB:
		assert.Equal(t, change, c)
	case <-time.After(5 * time.Second):
		t.Fatal("remote instance did not receive change")
	}

	// The publisher sees its own change exactly once.
	assert.Equal(t, change, <-gotA)
	select {
	case c := <-gotA:
		t.Fatalf("duplicate local delivery: %+v", c)
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("bridge did not stop")
		}
	}
}
