package logs

import (
	"github.com/bartek5186/supplier2woo/internal/reconcile"
	"github.com/rs/zerolog"
)

type sink struct {
	log zerolog.Logger
}

// EventSink przepina zdarzenia z reconcile na zerologa
func EventSink(l zerolog.Logger) reconcile.EventSink {
	return sink{log: l.With().Str("component", "reconcile").Logger()}
}

func (s sink) Record(level reconcile.Level, event string, fields map[string]any) {
	var ev *zerolog.Event
	switch level {
	case reconcile.LevelDebug:
		ev = s.log.Debug()
	case reconcile.LevelWarn:
		ev = s.log.Warn()
	default:
		ev = s.log.Info()
	}
	ev.Fields(fields).Msg(event)
}
