package execution

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEngine_ScriptedOutputs(t *testing.T) {
	engine := NewMockEngine("one", "two")
	ctx := context.Background()

	var got []string
	for i := 0; i < 4; i++ {
		resp, err := engine.Complete(ctx, NewCompletionRequest("m", "prompt", 0))
		require.NoError(t, err)
		got = append(got, resp.Text())
	}

	assert.Equal(t, []string{"one", "two", "two", "two"}, got)
	assert.Len(t, engine.Requests(), 4)
}

func TestMockEngine_DefaultOutput(t *testing.T) {
	resp, err := NewMockEngine().Complete(context.Background(), NewCompletionRequest("m", "p", 0))
	require.NoError(t, err)
	assert.Equal(t, DefaultMockOutput, resp.Text())
	assert.NotNil(t, resp.RawUsage)
}

func TestMockEngine_FailWith(t *testing.T) {
	boom := errors.New("boom")
	engine := NewMockEngine("x").FailWith(boom)

	_, err := engine.Complete(context.Background(), NewCompletionRequest("m", "p", 0))
	require.ErrorIs(t, err, boom)
	assert.Len(t, engine.Requests(), 1)
}

func TestMockEngine_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMockEngine().Complete(ctx, NewCompletionRequest("m", "p", 0))
	require.ErrorIs(t, err, context.Canceled)
}

func TestCompletionResponse_TextOnEmpty(t *testing.T) {
	var r *CompletionResponse
	assert.Equal(t, "", r.Text())
	assert.Equal(t, "", (&CompletionResponse{}).Text())
}
