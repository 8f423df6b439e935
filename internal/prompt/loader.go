// Package prompt loads the system prompt text that anchors every
// conversation sent to the model.
package prompt

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultSystemPrompt is used when no prompt file is configured, the file
// is missing, or it is empty. The assembler therefore never operates
// without a system turn.
const DefaultSystemPrompt = "You are a helpful AI assistant."

// Provider is the interface for loading the system prompt.
// Extracted for testability (mocked in orchestrator tests).
type Provider interface {
	Load() string
}

// Loader implements Provider with stat-based cache invalidation.
// On every Load() call it stats the file (~1µs, negligible vs LLM call).
// If the file changed, the content is re-read; otherwise the cached value
// is returned via the RLock fast path.
type Loader struct {
	path string

	mu       sync.RWMutex
	content  string
	modTime  time.Time
	notFound bool
}

// NewLoader creates a Loader for the given prompt file path.
// An empty path always yields DefaultSystemPrompt.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Compile-time interface check.
var _ Provider = (*Loader)(nil)

// Load returns the current prompt content, hot-reloading on file changes.
//
// Behavior:
//   - No path configured → DefaultSystemPrompt.
//   - File missing or unreadable → DefaultSystemPrompt.
//   - File empty → DefaultSystemPrompt.
//   - ModTime unchanged → cached content (RLock fast path).
//   - ModTime changed → re-read file + update cache (Lock).
//
// Load never fails: any I/O error degrades to the default prompt so the
// conversation flow is never blocked on the prompt file.
func (l *Loader) Load() string {
	if l.path == "" {
		return DefaultSystemPrompt
	}

	info, err := os.Stat(l.path)
	if err != nil {
		l.markNotFound()
		return DefaultSystemPrompt
	}

	modTime := info.ModTime()

	// Fast path: check if cached content is still valid.
	l.mu.RLock()
	if !l.notFound && l.modTime.Equal(modTime) && l.content != "" {
		cached := l.content
		l.mu.RUnlock()
		return cached
	}
	l.mu.RUnlock()

	// Slow path: re-read the file.
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.markNotFound()
		}
		return DefaultSystemPrompt
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		l.markNotFound()
		return DefaultSystemPrompt
	}

	l.mu.Lock()
	l.content = content
	l.modTime = modTime
	l.notFound = false
	l.mu.Unlock()

	return content
}

// markNotFound updates the cache to reflect a missing or empty file.
func (l *Loader) markNotFound() {
	l.mu.Lock()
	l.notFound = true
	l.content = ""
	l.modTime = time.Time{}
	l.mu.Unlock()
}

// Static is a Provider that always returns a fixed prompt. Used in tests
// and for configurations that inline the prompt text.
type Static string

// Load returns the static prompt, or DefaultSystemPrompt if empty.
func (s Static) Load() string {
	if s == "" {
		return DefaultSystemPrompt
	}
	return string(s)
}
