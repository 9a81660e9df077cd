// Package notify delivers user-facing notifications. Delivery is fire and
// forget: a sink failing or having no listeners never fails the caller's
// operation beyond the returned error.
package notify

import (
	"context"
	"errors"

	"starcg-market-api/internal/metrics"
	"starcg-market-api/internal/model"

	"go.uber.org/zap"
)

// Notifier accepts a notification for delivery.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notify")}
}

func (l *LogNotifier) Notify(ctx context.Context, n model.Notification) error {
	l.logger.Infow(n.Title, "message", n.Message, "priority", n.Priority, "item", n.ItemName)
	return nil
}

// Fanout delivers to every sink and joins their errors.
type Fanout struct {
	sinks   []Notifier
	metrics *metrics.Metrics
}

func NewFanout(m *metrics.Metrics, sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks, metrics: m}
}

func (f *Fanout) Notify(ctx context.Context, n model.Notification) error {
	var errs []error
	for _, sink := range f.sinks {
		if err := sink.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	if f.metrics != nil {
		f.metrics.RecordNotification(ctx, int(n.Priority))
	}
	return errors.Join(errs...)
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*Fanout)(nil)
)
