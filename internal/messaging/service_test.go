package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brocantic/marketplace/internal/events"
	kafkax "github.com/brocantic/marketplace/internal/kafka"
)

type memMessageStore struct {
	messages []Message
	nextID   int
}

func (m *memMessageStore) Insert(ctx context.Context, msg Message) (Message, error) {
	m.nextID++
	msg.ID = "m" + string(rune('0'+m.nextID))
	msg.Created = time.Now()
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memMessageStore) ConversationPage(ctx context.Context, userID, otherID, productID string, page, perPage int) ([]Message, int, error) {
	var out []Message
	for _, msg := range m.messages {
		same := (msg.SenderID == userID && msg.ReceiverID == otherID) ||
			(msg.SenderID == otherID && msg.ReceiverID == userID)
		if same && msg.ProductID == productID {
			out = append(out, msg)
		}
	}
	return out, len(out), nil
}

func (m *memMessageStore) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	return nil, nil
}

func (m *memMessageStore) MarkRead(ctx context.Context, userID, otherID, productID string) (int, error) {
	n := 0
	for i := range m.messages {
		msg := &m.messages[i]
		if msg.ReceiverID == userID && msg.SenderID == otherID && msg.ProductID == productID && !msg.IsRead {
			msg.IsRead = true
			n++
		}
	}
	return n, nil
}

func (m *memMessageStore) UnreadCount(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *memMessageStore) Exists(ctx context.Context, userID, otherID, productID string) (bool, error) {
	msgs, _, err := m.ConversationPage(ctx, userID, otherID, productID, 1, 1)
	return len(msgs) > 0, err
}

type recordingPublisher struct {
	envelopes []events.Envelope
}

func (r *recordingPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	var env events.Envelope
	if err := json.Unmarshal(value, &env); err == nil {
		r.envelopes = append(r.envelopes, env)
	}
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and emits", func(t *testing.T) {
		store := &memMessageStore{}
		pub := &recordingPublisher{}
		svc := &Service{Store: store, Producer: pub, Service: "test"}

		msg, err := svc.Send(ctx, "alice", "bob", "p1", "  Bonjour, toujours disponible ?  ")
		require.NoError(t, err)
		assert.Equal(t, "Bonjour, toujours disponible ?", msg.Content)
		assert.False(t, msg.IsRead)
		assert.NotEmpty(t, msg.ID)

		require.Len(t, pub.envelopes, 1)
		env := pub.envelopes[0]
		assert.Equal(t, events.EventMessageCreated, env.EventType)
		assert.Equal(t, "bob", env.CorrelationID)

		payload, err := kafkax.UnwrapPayload[events.MessageCreatedPayload](env.Payload)
		require.NoError(t, err)
		assert.Equal(t, msg.ID, payload.MessageID)
		assert.Equal(t, "alice", payload.SenderID)
		assert.Equal(t, "bob", payload.ReceiverID)
	})

	t.Run("blank content", func(t *testing.T) {
		svc := &Service{Store: &memMessageStore{}}
		_, err := svc.Send(ctx, "alice", "bob", "p1", "   ")
		assert.ErrorIs(t, err, ErrEmptyContent)
	})

	t.Run("self message", func(t *testing.T) {
		svc := &Service{Store: &memMessageStore{}}
		_, err := svc.Send(ctx, "alice", "alice", "p1", "hi")
		assert.ErrorIs(t, err, ErrSelfMessage)
	})
}

func TestMarkReadAndUnread(t *testing.T) {
	ctx := context.Background()
	store := &memMessageStore{}
	svc := &Service{Store: store}

	_, err := svc.Send(ctx, "alice", "bob", "p1", "un")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "alice", "bob", "p1", "deux")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "alice", "bob", "p2", "trois")
	require.NoError(t, err)

	n, err := svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// only the (alice, p1) thread is read
	read, err := svc.MarkRead(ctx, "bob", "alice", "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, read)

	n, err = svc.UnreadCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// a second pass flips nothing
	read, err = svc.MarkRead(ctx, "bob", "alice", "p1")
	require.NoError(t, err)
	assert.Zero(t, read)
}

func TestConversation(t *testing.T) {
	ctx := context.Background()
	store := &memMessageStore{}
	svc := &Service{Store: store}

	_, err := svc.Send(ctx, "alice", "bob", "p1", "question")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "bob", "alice", "p1", "réponse")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "alice", "carol", "p1", "autre fil")
	require.NoError(t, err)

	msgs, total, err := svc.Conversation(ctx, "alice", "bob", "p1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, "réponse", msgs[1].Content)

	ok, err := svc.ConversationExists(ctx, "alice", "bob", "p1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.ConversationExists(ctx, "bob", "carol", "p1")
	require.NoError(t, err)
	assert.False(t, ok)
}
