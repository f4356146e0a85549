package events

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// Emit delivers an event. It is a no-op until EnableRuntimeEmitter or
// SetCustomEmitter installs a sink.
var Emit = func(ctx context.Context, name string, evt Event) {}

func tagRun(ctx context.Context, evt Event) Event {
	if evt.RunID == "" {
		evt.RunID = RunFromContext(ctx)
	}
	return evt
}

// EnableRuntimeEmitter forwards events to the Wails frontend. ctx must be the
// context passed to OnStartup.
func EnableRuntimeEmitter() {
	Emit = func(ctx context.Context, name string, evt Event) {
		evt = tagRun(ctx, evt)
		runtime.EventsEmit(ctx, name, evt)
		if evt.Type != EventProgress {
			logRuntimeEvent(ctx, evt)
		}
	}
}

func SetCustomEmitter(f func(ctx context.Context, name string, evt Event)) {
	if f == nil {
		Emit = func(context.Context, string, Event) {}
		return
	}
	Emit = func(ctx context.Context, name string, evt Event) {
		f(ctx, name, tagRun(ctx, evt))
	}
}
