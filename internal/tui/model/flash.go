package model

import (
	"sync"
	"time"
)

// Flash is a short-lived status line message. It expires on read rather
// than by timer, so there is no goroutine to manage.
type Flash struct {
	mu       sync.RWMutex
	text     string
	deadline time.Time
}

// Set replaces the current message; it stays readable for d.
func (f *Flash) Set(text string, d time.Duration) {
	f.mu.Lock()
	f.text = text
	f.deadline = time.Now().Add(d)
	f.mu.Unlock()
}

// Get returns the message, or empty once the deadline has passed.
func (f *Flash) Get() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if time.Now().After(f.deadline) {
		return ""
	}
	return f.text
}

// Clear drops the message before its deadline.
func (f *Flash) Clear() {
	f.mu.Lock()
	f.text = ""
	f.mu.Unlock()
}
