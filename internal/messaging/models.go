package messaging

import (
	"errors"
	"time"
)

var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrSelfMessage  = errors.New("cannot message yourself")
)

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	ProductID  string    `json:"product_id"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"is_read"`
	Created    time.Time `json:"created"`
}

type Party struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

type ProductRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Conversation is the derived thread view: one per (other user, product)
// pair, carrying the latest message and how many are still unread.
type Conversation struct {
	Other       Party      `json:"other"`
	Product     ProductRef `json:"product"`
	LastMessage Message    `json:"last_message"`
	UnreadCount int        `json:"unread_count"`
}
