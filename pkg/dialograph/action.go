package dialograph

import (
	"context"
	"sort"

	"github.com/dialograph/dialograph/pkg/dialograph/config"
	"github.com/dialograph/dialograph/pkg/dialograph/registry"
)

// Handler executes one action type. The engine calls Execute synchronously
// during a turn, so handlers should respect ctx and keep slow work behind
// their own queues.
//
// cfg is the action's config after ${var} expansion. vars is a
// read-only snapshot of the conversation vars; mutating it has no effect on
// the conversation. A non-nil result is folded back into the vars under
// last_<type>, where later actions, node instructions, and the model can
// see it.
type Handler interface {
	Execute(ctx context.Context, cfg config.Config, vars config.Config) (any, error)
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, cfg config.Config, vars config.Config) (any, error)

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, cfg config.Config, vars config.Config) (any, error) {
	return f(ctx, cfg, vars)
}

// ActionRegistry maps action type names to handlers. One registry is
// typically shared by every engine in a process: register handlers during
// setup, then treat it as read-only. Reads are safe for concurrent use.
type ActionRegistry struct {
	handlers *registry.Registry[string, Handler]
}

// NewActionRegistry creates an empty action registry.
func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		handlers: registry.New[string, Handler](),
	}
}

// Register binds a handler to an action type, replacing any previous
// binding for that type.
func (r *ActionRegistry) Register(actionType string, h Handler) {
	r.handlers.Register(actionType, h)
}

// RegisterFunc binds a plain function to an action type.
func (r *ActionRegistry) RegisterFunc(actionType string, fn HandlerFunc) {
	r.handlers.Register(actionType, fn)
}

// Get returns the handler for an action type.
func (r *ActionRegistry) Get(actionType string) (Handler, bool) {
	return r.handlers.Get(actionType)
}

// Has reports whether a handler is registered for the action type.
func (r *ActionRegistry) Has(actionType string) bool {
	return r.handlers.Has(actionType)
}

// Types returns the registered action types in sorted order.
func (r *ActionRegistry) Types() []string {
	types := r.handlers.Keys()
	sort.Strings(types)
	return types
}

// Len returns the number of registered handlers.
func (r *ActionRegistry) Len() int {
	return r.handlers.Len()
}
