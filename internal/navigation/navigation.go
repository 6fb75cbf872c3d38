// Package navigation models where the client "is": the location the current load arrived on,
// and the ability to rewrite it or to send the user back to the unauthenticated entry point.
//
// The CLI and TUI use [Memory]. A forced return to the entry point means the user is logged out:
// the CLI reports it, the TUI switches back to its landing view.
package navigation

import (
	"net/url"
	"sync"
)

// Navigator is the navigation port consumed by the session gateway and the request client.
type Navigator interface {
	Location() *url.URL // Location returns a copy of the current location
	Replace(u *url.URL) // Replace rewrites the visible location without a new load
	Home()              // Home navigates to the unauthenticated entry point
}

// Memory is an in-process [Navigator].
type Memory struct {
	mu       sync.Mutex
	entry    *url.URL
	location *url.URL
	history  []string
	homes    int
	notify   chan struct{}
}

// NewMemory creates a navigator whose entry point is entry and whose current location is current.
//
// A nil current starts the navigator at the entry point.
func NewMemory(entry, current *url.URL) *Memory {
	if entry == nil {
		entry = &url.URL{Path: "/"}
	}
	if current == nil {
		current = entry
	}
	return &Memory{
		entry:    clone(entry),
		location: clone(current),
		notify:   make(chan struct{}, 1),
	}
}

// Parse is [NewMemory] for string URLs.
func Parse(entry, current string) (*Memory, error) {
	e, err := url.Parse(entry)
	if err != nil {
		return nil, err
	}

	var c *url.URL
	if current != "" {
		if c, err = url.Parse(current); err != nil {
			return nil, err
		}
	}
	return NewMemory(e, c), nil
}

func (m *Memory) Location() *url.URL {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.location)
}

func (m *Memory) Replace(u *url.URL) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = clone(u)
	m.history = append(m.history, u.String())
}

// Home moves to the entry point and signals [Memory.Homes] without blocking.
func (m *Memory) Home() {
	m.mu.Lock()
	m.location = clone(m.entry)
	m.homes++
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Arrive starts a new load at u, e.g. when the login callback reaches the client.
func (m *Memory) Arrive(u *url.URL) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.location = clone(u)
}

// HomeCount reports how many times [Memory.Home] was called.
func (m *Memory) HomeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.homes
}

// Replaced returns every location passed to [Memory.Replace], oldest first.
func (m *Memory) Replaced() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

// Homes delivers a value after forced navigations. Bursts coalesce into one value.
func (m *Memory) Homes() <-chan struct{} { return m.notify }

func clone(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}
