package dto

// StepProgressMessage is published on the internal event bus each time
// the workflow enters a step, and forwarded to NATS by the consumer.
type StepProgressMessage struct {
	SessionID string `json:"session_id"`
	Step      string `json:"step"`
}
