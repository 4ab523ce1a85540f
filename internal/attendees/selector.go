// Package attendees tracks the usernames chosen for an event that is being
// created or edited.
package attendees

import (
	"slices"
	"strings"
	"sync"
)

// Selector is a set of usernames. The zero value is ready to use.
type Selector struct {
	mu     sync.Mutex
	chosen map[string]struct{}
}

// New returns a Selector holding initial.
func New(initial ...string) *Selector {
	s := &Selector{}
	for _, u := range initial {
		s.Include(u)
	}
	return s
}

// Toggle removes username if present and adds it otherwise. It reports whether
// username is selected afterwards. Blank names are ignored.
func (s *Selector) Toggle(username string) bool {
	username = strings.TrimSpace(username)
	if username == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chosen[username]; ok {
		delete(s.chosen, username)
		return false
	}
	s.add(username)
	return true
}

// Include adds username if it is not already selected.
func (s *Selector) Include(username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	s.mu.Lock()
	s.add(username)
	s.mu.Unlock()
}

// Contains reports whether username is selected.
func (s *Selector) Contains(username string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.chosen[strings.TrimSpace(username)]
	return ok
}

// Set returns the selection sorted, so callers get a stable order.
func (s *Selector) Set() []string {
	s.mu.Lock()
	out := make([]string, 0, len(s.chosen))
	for u := range s.chosen {
		out = append(out, u)
	}
	s.mu.Unlock()
	slices.Sort(out)
	return out
}

// Reset clears the selection.
func (s *Selector) Reset() {
	s.mu.Lock()
	clear(s.chosen)
	s.mu.Unlock()
}

// Len returns the number of selected usernames.
func (s *Selector) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chosen)
}

func (s *Selector) add(username string) {
	if s.chosen == nil {
		s.chosen = make(map[string]struct{})
	}
	s.chosen[username] = struct{}{}
}
