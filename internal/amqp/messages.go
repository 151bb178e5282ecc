package amqp

import (
	"encoding/json"
	"time"
)

const (
	EventTransactionsChanged = "transactions.changed"
	EventGoalCompleted       = "goal.completed"
)

// LedgerEvent is the lightweight message published whenever tracker data
// changes. Consumers fetch current state from the store themselves; the event
// only says that something happened.
type LedgerEvent struct {
	Event     string    `json:"event"`
	Reason    string    `json:"reason,omitempty"`
	GoalID    string    `json:"goal_id,omitempty"`
	GoalName  string    `json:"goal_name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionsChangedEvent(reason string) *LedgerEvent {
	return &LedgerEvent{
		Event:     EventTransactionsChanged,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func NewGoalCompletedEvent(goalID, goalName string) *LedgerEvent {
	return &LedgerEvent{
		Event:     EventGoalCompleted,
		GoalID:    goalID,
		GoalName:  goalName,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON creates an event from JSON bytes
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
