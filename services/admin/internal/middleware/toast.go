package middleware

import (
	"sync"

	"blog-admin/pkg/logger"
)

// Toaster logs warnings and keeps them until drained, so the CLI can print
// them after a command finishes.
type Toaster struct {
	log *logger.Logger

	mu       sync.Mutex
	messages []string
}

func NewToaster(log *logger.Logger) *Toaster {
	return &Toaster{log: log}
}

func (t *Toaster) Warn(message string) {
	t.log.Warn("%s", message)

	t.mu.Lock()
	t.messages = append(t.messages, message)
	t.mu.Unlock()
}

func (t *Toaster) Messages() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.messages...)
}

// Drain returns the pending messages and forgets them.
func (t *Toaster) Drain() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.messages
	t.messages = nil
	return out
}
