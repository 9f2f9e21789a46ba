package backend

import "sync"

// AuthHub fans auth state changes out to listeners
type AuthHub struct {
	mu        sync.Mutex
	next      int
	listeners map[int]AuthListener
}

// Subscribe registers fn and returns a function that removes it
func (h *AuthHub) Subscribe(fn AuthListener) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[int]AuthListener)
	}
	id := h.next
	h.next++
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		delete(h.listeners, id)
		h.mu.Unlock()
	}
}

// Emit calls every listener outside the lock
func (h *AuthHub) Emit(event AuthEvent, session *Session) {
	h.mu.Lock()
	fns := make([]AuthListener, 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(event, session)
	}
}
