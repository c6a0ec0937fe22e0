// Package topics holds the operator's topic selection and source mode for the
// current console session.
package topics

import (
	"errors"
	"strings"
)

// DefaultMaxTopics is the number of topics the backend accepts per artifact.
const DefaultMaxTopics = 1

var (
	ErrEmpty      = errors.New("topic is empty")
	ErrAtCapacity = errors.New("topic limit reached")
	ErrOutOfRange = errors.New("topic index out of range")
)

// Registry is an ordered, bounded list of topics plus the selected source mode.
// It is owned by a single session and is not safe for concurrent use.
type Registry struct {
	max    int
	topics []string
	mode   SourceMode
}

// NewRegistry creates an empty registry holding at most limit topics.
// A non-positive limit falls back to DefaultMaxTopics.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultMaxTopics
	}
	return &Registry{max: limit}
}

// Add trims text and appends it.
func (r *Registry) Add(text string) error {
	topic := strings.TrimSpace(text)
	if topic == "" {
		return ErrEmpty
	}
	if len(r.topics) >= r.max {
		return ErrAtCapacity
	}
	r.topics = append(r.topics, topic)
	return nil
}

// CanAdd reports whether Add(text) would succeed.
func (r *Registry) CanAdd(text string) bool {
	return strings.TrimSpace(text) != "" && len(r.topics) < r.max
}

// RemoveAt deletes the topic at index, keeping the order of the rest.
func (r *Registry) RemoveAt(index int) error {
	if index < 0 || index >= len(r.topics) {
		return ErrOutOfRange
	}
	r.topics = append(r.topics[:index], r.topics[index+1:]...)
	return nil
}

// List returns a copy of the topics.
func (r *Registry) List() []string {
	out := make([]string, len(r.topics))
	copy(out, r.topics)
	return out
}

func (r *Registry) Len() int   { return len(r.topics) }
func (r *Registry) Cap() int   { return r.max }
func (r *Registry) Full() bool { return len(r.topics) >= r.max }

// Clear drops every topic. Only an explicit session reset calls this.
func (r *Registry) Clear() {
	r.topics = nil
}

// Mode returns the selected source mode.
func (r *Registry) Mode() SourceMode {
	return r.mode
}

// SetMode changes the source mode. It does not touch the topics.
func (r *Registry) SetMode(mode SourceMode) {
	r.mode = mode
}
