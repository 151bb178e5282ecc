package services

import "context"

// Publisher is the outbound event port. The amqp client implements it; a nil
// publisher disables events without changing service behavior.
type Publisher interface {
	PublishTransactionsChanged(ctx context.Context, reason string) error
	PublishGoalCompleted(ctx context.Context, goalID, name string) error
	Close() error
}
