package notify

import (
	"context"

	"storefront/internal/types"

	log "github.com/sirupsen/logrus"
)

// Log writes notifications to the process log. Success messages go out at
// info level, failures at warn.
type Log struct {
	entry *log.Entry
}

func NewLog(logger *log.Logger) *Log {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Log{entry: log.NewEntry(logger).WithField("component", "notify")}
}

func (l *Log) Notify(_ context.Context, n types.Notification) error {
	e := l.entry.WithFields(log.Fields{
		"id":        n.ID,
		"signal":    n.Signal,
		"productID": n.ProductID,
	})
	if n.Error {
		e.Warn(n.Message)
	} else {
		e.Info(n.Message)
	}
	return nil
}
