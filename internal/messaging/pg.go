package messaging

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PG struct{ DB *pgxpool.Pool }

func (s *PG) Insert(ctx context.Context, m Message) (Message, error) {
	m.ID = uuid.NewString()
	err := s.DB.QueryRow(ctx, `
		INSERT INTO messages (id, sender_id, receiver_id, product_id, content, is_read)
		VALUES ($1,$2,$3,$4,$5,false)
		RETURNING created`,
		m.ID, m.SenderID, m.ReceiverID, m.ProductID, m.Content).Scan(&m.Created)
	if err != nil {
		return Message{}, err
	}
	return m, nil
}

const threadFilter = `((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
	AND product_id = $3`

func (s *PG) ConversationPage(ctx context.Context, userID, otherID, productID string, page, perPage int) ([]Message, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	var total int
	err := s.DB.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE `+threadFilter, userID, otherID, productID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.DB.Query(ctx, `
		SELECT id, sender_id, receiver_id, product_id, content, is_read, created
		FROM messages WHERE `+threadFilter+`
		ORDER BY created LIMIT $4 OFFSET $5`,
		userID, otherID, productID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ProductID, &m.Content, &m.IsRead, &m.Created); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

// Conversations is an indexed projection: latest message per (other user,
// product) pair via DISTINCT ON, then unread counts in a second grouped
// query, merged here. No full-log scan client-side.
func (s *PG) Conversations(ctx context.Context, userID string) ([]Conversation, error) {
	rows, err := s.DB.Query(ctx, `
		SELECT DISTINCT ON (t.other_id, t.product_id)
		       t.id, t.sender_id, t.receiver_id, t.product_id, t.content, t.is_read, t.created,
		       u.id, u.username, u.avatar, p.id, p.title
		FROM (
			SELECT m.*,
			       CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END AS other_id
			FROM messages m
			WHERE m.sender_id = $1 OR m.receiver_id = $1
		) t
		JOIN users u ON u.id = t.other_id
		JOIN products p ON p.id = t.product_id
		ORDER BY t.other_id, t.product_id, t.created DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		var c Conversation
		var m Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.ProductID, &m.Content, &m.IsRead, &m.Created,
			&c.Other.ID, &c.Other.Username, &c.Other.Avatar, &c.Product.ID, &c.Product.Title); err != nil {
			return nil, err
		}
		c.LastMessage = m
		convs = append(convs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	unread, err := s.DB.Query(ctx, `
		SELECT sender_id, product_id, count(*)
		FROM messages
		WHERE receiver_id = $1 AND NOT is_read
		GROUP BY sender_id, product_id`, userID)
	if err != nil {
		return nil, err
	}
	defer unread.Close()

	counts := map[[2]string]int{}
	for unread.Next() {
		var sender, product string
		var n int
		if err := unread.Scan(&sender, &product, &n); err != nil {
			return nil, err
		}
		counts[[2]string{sender, product}] = n
	}
	if err := unread.Err(); err != nil {
		return nil, err
	}

	for i := range convs {
		convs[i].UnreadCount = counts[[2]string{convs[i].Other.ID, convs[i].Product.ID}]
	}

	// Most recently active thread first.
	sort.Slice(convs, func(i, j int) bool {
		return convs[i].LastMessage.Created.After(convs[j].LastMessage.Created)
	})
	return convs, nil
}

func (s *PG) MarkRead(ctx context.Context, userID, otherID, productID string) (int, error) {
	ct, err := s.DB.Exec(ctx, `
		UPDATE messages SET is_read = true
		WHERE receiver_id = $1 AND sender_id = $2 AND product_id = $3 AND NOT is_read`,
		userID, otherID, productID)
	if err != nil {
		return 0, err
	}
	return int(ct.RowsAffected()), nil
}

func (s *PG) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE receiver_id = $1 AND NOT is_read`, userID).Scan(&n)
	return n, err
}

func (s *PG) Exists(ctx context.Context, userID, otherID, productID string) (bool, error) {
	var ok bool
	err := s.DB.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM messages WHERE `+threadFilter+`)`,
		userID, otherID, productID).Scan(&ok)
	return ok, err
}
