package logging

import (
	"go.uber.org/zap"

	"github.com/entrhq/dossier/pkg/events"
	"github.com/entrhq/dossier/pkg/types"
)

// EventSink copies every event on bus into l: log lines at info, status
// changes at info, and failures at warn with the error. Call the returned
// function to stop.
func EventSink(bus *events.Bus, l *Logger) (unsubscribe func()) {
	z := l.Zap()
	return bus.Subscribe(func(e events.Event) {
		switch e.Type {
		case events.EventTypeLog:
			z.Info(e.Message)
		case events.EventTypeStatusChange:
			fields := []zap.Field{
				zap.String("identifier", e.Identifier),
				zap.String("status", string(e.Status)),
			}
			if e.Status == types.StatusFailed {
				z.Warn("record failed", append(fields, zap.String("error", e.Error))...)
				return
			}
			z.Info("record status", fields...)
		}
	})
}
