package redisx

import "time"

const (
	// Seller dashboard stats cache: seller_stats:{seller_id} -> JSON stats
	KeySellerStats = "seller_stats:%s"

	// Unread message counter: unread:{user_id} -> int
	KeyUnread = "unread:%s"

	// Fulfillment status cache: item_status:{item_id} -> {"status": "..."}
	KeyItemStatus = "item_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSellerStats = 2 * time.Minute
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
