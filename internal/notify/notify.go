// Package notify publishes run reports to humans.
package notify

import (
	"context"
	"errors"
	"fmt"

	"dcabot/internal/interfaces"
	"dcabot/internal/logger"
)

var (
	_ interfaces.Notifier = (*GitHub)(nil)
	_ interfaces.Notifier = (*Telegram)(nil)
	_ interfaces.Notifier = (*Webhook)(nil)
	_ interfaces.Notifier = (*Multi)(nil)
	_ interfaces.Notifier = Log{}
)

// Named is a notifier with a name for log and error messages.
type Named struct {
	Name     string
	Notifier interfaces.Notifier
}

// Multi fans a message out to every target. All targets are attempted;
// failures are joined.
type Multi struct {
	targets []Named
}

func NewMulti(targets ...Named) *Multi {
	return &Multi{targets: targets}
}

// Len returns the number of targets.
func (m *Multi) Len() int { return len(m.targets) }

func (m *Multi) Publish(ctx context.Context, title, body string) error {
	var errs []error
	for _, t := range m.targets {
		if err := t.Notifier.Publish(ctx, title, body); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", t.Name, err))
			continue
		}
		logger.Debug(ctx, "Notification published", "target", t.Name, "title", title)
	}
	return errors.Join(errs...)
}

// Log writes the report to the structured log. It is the fallback when no
// remote target is configured.
type Log struct{}

func (Log) Publish(ctx context.Context, title, body string) error {
	logger.Info(ctx, "Report", "title", title, "body", body)
	return nil
}
