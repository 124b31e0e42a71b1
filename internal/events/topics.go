package events

const (
	TopicCheckoutCompleted = "marketplace.checkout.completed"
	TopicOrderItemUpdated  = "marketplace.fulfillment.item.updated"
	TopicMessageCreated    = "marketplace.message.created"
)

// Partition key keeps every event of one entity on one partition.
func PartitionKey(id string) []byte { return []byte(id) }
