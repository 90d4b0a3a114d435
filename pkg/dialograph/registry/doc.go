// Package registry provides a generic thread-safe registry for values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. It supports
// any comparable key type and any value type through Go generics.
//
// # Basic Usage
//
// Create a registry and register values:
//
//	r := registry.New[string, int]()
//	r.Register("one", 1)
//	r.Register("two", 2)
//
//	value, ok := r.Get("one")
//	if ok {
//	    fmt.Println(value) // Output: 1
//	}
//
// # Handler Dispatch
//
// Registries work well for dispatch tables where you register handlers by
// type string and look them up when an action fires:
//
//	type ActionHandler func(ctx context.Context, action Action) error
//
//	handlers := registry.New[string, ActionHandler]()
//	handlers.Register("send_email", sendEmail)
//	handlers.Register("create_ticket", createTicket)
//	handlers.Register("log_event", logEvent)
//
//	// Later, dispatch an action by type
//	handler, ok := handlers.Get(action.Type)
//	if ok {
//	    err := handler(ctx, action)
//	    // handle err...
//	}
//
// # Lazy Initialization
//
// Use GetOrCreate for thread-safe lazy initialization:
//
//	// One transcript buffer per conversation
//	buffers := registry.New[string, *Buffer]()
//
//	// First call creates the buffer, subsequent calls return the same one
//	buf := buffers.GetOrCreate(conversationID, func() *Buffer {
//	    return NewBuffer(conversationID)
//	})
//
// GetOrCreate is atomic - the factory function is called at most once per key,
// even under concurrent access.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. The Range method iterates
// over a snapshot of the registry, allowing mutations during iteration without
// affecting the iteration itself:
//
//	r.Range(func(key string, value int) bool {
//	    // Safe to call r.Register() or r.Delete() here
//	    if value < 0 {
//	        r.Delete(key) // Won't affect current iteration
//	    }
//	    return true // continue iteration
//	})
package registry
