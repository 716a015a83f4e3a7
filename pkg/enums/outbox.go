package enums

// OutboxEventType names the domain events queued in the transactional outbox.
type OutboxEventType string

const (
	EventItemStatusChanged OutboxEventType = "order.item_status_changed"
	EventRefundInitiated   OutboxEventType = "refund.initiated"
)

// OutboxAggregateType names the entity an outbox event is anchored to.
type OutboxAggregateType string

const (
	AggregateOrderItem OutboxAggregateType = "order_item"
	AggregateRefund    OutboxAggregateType = "refund"
)
