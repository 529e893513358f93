package interfaces

import "context"

// Notifier publishes a titled markdown message somewhere a human will see it.
type Notifier interface {
	Publish(ctx context.Context, title, body string) error
}
