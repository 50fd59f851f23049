package workshop

const (
	TopicStatusChanged = "workorder.status.changed"
	TopicOrderDeleted  = "workorder.deleted"
)

// Partition key = order id, so all events for one work order stay ordered.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
