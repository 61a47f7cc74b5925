package events

import "time"

const (
	TypeStepAdvanced      = "WORKFLOW_STEP_ADVANCED"
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeOrderCreated      = "ORDER_CREATED"
)

// NewStepAdvancedEvent marks the workflow entering a step for a session.
func NewStepAdvancedEvent(sessionID, step string) Event {
	return BaseEvent{
		Type: TypeStepAdvanced,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"step":       step,
		},
		OccurredAt: time.Now(),
	}
}

// NewChatTurnCompletedEvent marks a finished turn, with the route taken
// and how many products were recommended.
func NewChatTurnCompletedEvent(sessionID, route string, productCount int) Event {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id":    sessionID,
			"route":         route,
			"product_count": productCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewOrderCreatedEvent marks a checkout transaction created for a product.
func NewOrderCreatedEvent(orderID, sessionID, productURL string, amount int64) Event {
	return BaseEvent{
		Type: TypeOrderCreated,
		Data: map[string]interface{}{
			"order_id":    orderID,
			"session_id":  sessionID,
			"product_url": productURL,
			"amount":      amount,
		},
		OccurredAt: time.Now(),
	}
}
