package messaging

import (
	"context"
	"strings"

	"github.com/brocantic/marketplace/internal/events"
)

type Store interface {
	Insert(ctx context.Context, m Message) (Message, error)
	// ConversationPage lists both directions of one (user, other, product)
	// thread, oldest first.
	ConversationPage(ctx context.Context, userID, otherID, productID string, page, perPage int) ([]Message, int, error)
	// Conversations projects the user's threads: last message plus unread
	// count per (other user, product) pair, most recent first.
	Conversations(ctx context.Context, userID string) ([]Conversation, error)
	// MarkRead flags the unread messages the other user sent in one thread;
	// returns how many rows flipped.
	MarkRead(ctx context.Context, userID, otherID, productID string) (int, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Exists(ctx context.Context, userID, otherID, productID string) (bool, error)
}

type Service struct {
	Store    Store
	Producer events.Publisher
	Service  string
}

func (s *Service) Send(ctx context.Context, senderID, receiverID, productID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	if senderID == receiverID {
		return Message{}, ErrSelfMessage
	}
	msg, err := s.Store.Insert(ctx, Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		ProductID:  productID,
		Content:    content,
	})
	if err != nil {
		return Message{}, err
	}
	if s.Producer != nil {
		events.Emit(s.Producer, events.EventMessageCreated, s.Service, "", receiverID,
			events.MessageCreatedPayload{
				MessageID:  msg.ID,
				SenderID:   senderID,
				ReceiverID: receiverID,
				ProductID:  productID,
			})
	}
	return msg, nil
}

func (s *Service) Conversation(ctx context.Context, userID, otherID, productID string, page, perPage int) ([]Message, int, error) {
	return s.Store.ConversationPage(ctx, userID, otherID, productID, page, perPage)
}

func (s *Service) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	return s.Store.Conversations(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, otherID, productID string) (int, error) {
	return s.Store.MarkRead(ctx, userID, otherID, productID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.Store.UnreadCount(ctx, userID)
}

func (s *Service) ConversationExists(ctx context.Context, userID, otherID, productID string) (bool, error) {
	return s.Store.Exists(ctx, userID, otherID, productID)
}
