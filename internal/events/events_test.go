package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRun(t *testing.T) {
	ctx := WithRun(context.Background(), "run-1")
	assert.Equal(t, "run-1", RunFromContext(ctx))
	assert.Equal(t, "", RunFromContext(WithRun(context.Background(), "  ")))
}

func TestCustomEmitterTagsRun(t *testing.T) {
	var got []Event
	SetCustomEmitter(func(_ context.Context, name string, evt Event) {
		assert.Equal(t, ResizeProgress, name)
		got = append(got, evt)
	})
	defer SetCustomEmitter(nil)

	Emit(WithRun(context.Background(), "abc"), ResizeProgress, NewProgress("a.jpg", 1, 3))
	require.Len(t, got, 1)
	assert.Equal(t, "abc", got[0].RunID)
	assert.Equal(t, EventProgress, got[0].Type)
	assert.Equal(t, 1, got[0].Done)
	assert.Equal(t, 3, got[0].Total)
	assert.NotEmpty(t, got[0].ID)
}
