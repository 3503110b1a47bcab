package notify

import (
	"context"

	"github.com/smartcommute/smartcommute/core/advisor/logging"
)

// Notifier pushes served advice records to subscribers outside the
// process, typically over a message broker.
type Notifier interface {
	// PublishAdvice delivers one advice record. Implementations must be
	// safe for concurrent use.
	PublishAdvice(ctx context.Context, rec logging.AdviceRecord) error

	// Close releases the underlying connection.
	Close() error
}

// NopNotifier drops every record. It stands in when notifications are
// disabled.
type NopNotifier struct{}

func (NopNotifier) PublishAdvice(context.Context, logging.AdviceRecord) error { return nil }
func (NopNotifier) Close() error                                              { return nil }
