package dialograph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialograph/dialograph/pkg/dialograph/config"
)

// TestActionRegistry verifies registration and lookup.
func TestActionRegistry(t *testing.T) {
	t.Run("register and get", func(t *testing.T) {
		reg := NewActionRegistry()
		h := &recordingHandler{result: "ok"}

		reg.Register("send_email", h)

		got, ok := reg.Get("send_email")
		require.True(t, ok)
		assert.Same(t, Handler(h), got)
		assert.True(t, reg.Has("send_email"))
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("missing handler", func(t *testing.T) {
		reg := NewActionRegistry()
		_, ok := reg.Get("nope")
		assert.False(t, ok)
		assert.False(t, reg.Has("nope"))
	})

	t.Run("register replaces", func(t *testing.T) {
		reg := NewActionRegistry()
		first := &recordingHandler{result: "first"}
		second := &recordingHandler{result: "second"}

		reg.Register("send_email", first)
		reg.Register("send_email", second)

		got, _ := reg.Get("send_email")
		result, err := got.Execute(context.Background(), config.New(nil), config.New(nil))
		require.NoError(t, err)
		assert.Equal(t, "second", result)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("types are sorted", func(t *testing.T) {
		reg := NewActionRegistry()
		reg.RegisterFunc("webhook", func(context.Context, config.Config, config.Config) (any, error) { return nil, nil })
		reg.RegisterFunc("create_ticket", func(context.Context, config.Config, config.Config) (any, error) { return nil, nil })
		reg.RegisterFunc("send_email", func(context.Context, config.Config, config.Config) (any, error) { return nil, nil })

		assert.Equal(t, []string{"create_ticket", "send_email", "webhook"}, reg.Types())
	})
}

// TestHandlerFunc verifies the function adapter satisfies Handler.
func TestHandlerFunc(t *testing.T) {
	var gotQueue string
	fn := HandlerFunc(func(_ context.Context, cfg config.Config, _ config.Config) (any, error) {
		gotQueue = cfg.String("queue", "default")
		return "ticket-42", nil
	})

	result, err := fn.Execute(context.Background(), config.New(map[string]any{"queue": "billing"}), config.New(nil))
	require.NoError(t, err)
	assert.Equal(t, "ticket-42", result)
	assert.Equal(t, "billing", gotQueue)
}
