package poller

import "go.uber.org/zap"

// Notifier receives the "new data" signal. A push-based transport can
// implement it without changing the poller's callers.
type Notifier[T Stamped] interface {
	NewData(record T)
}

type NotifierFunc[T Stamped] func(record T)

func (f NotifierFunc[T]) NewData(record T) { f(record) }

// LogNotifier reports new records on a zap logger.
type LogNotifier[T Stamped] struct {
	Logger *zap.Logger
}

func (n LogNotifier[T]) NewData(record T) {
	n.Logger.Info("New dashboard data received", zap.String("stamp", record.Stamp()))
}
