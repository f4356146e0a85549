package events

import (
	"context"

	"karukuresize/internal/logging"
)

func logRuntimeEvent(_ context.Context, event Event) {
	fields := []any{"id", event.ID, "run", event.RunID, "path", event.Path}
	log := logging.Get()
	switch event.Type {
	case EventError:
		log.Errorw(event.Message, fields...)
	case EventWarn:
		log.Warnw(event.Message, fields...)
	default:
		log.Infow(event.Message, fields...)
	}
}
