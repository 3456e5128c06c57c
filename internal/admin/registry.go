package admin

import (
	"sync"
	"time"

	"github.com/efarmaplus/storefront/internal/modal"
)

// Factory builds a fresh page bound to a session's document.
type Factory func(doc *modal.Document) Page

type session struct {
	doc      *modal.Document
	pages    map[string]Page
	lastSeen time.Time
}

// Registry keeps the per-session admin state: one document and one page
// per resource.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	sessions  map[string]*session
	now       func() time.Time
}

func NewRegistry(factories map[string]Factory) *Registry {
	return &Registry{
		factories: factories,
		sessions:  map[string]*session{},
		now:       time.Now,
	}
}

// Page returns the session's page for name, creating it on first use.
func (r *Registry) Page(sessionID, name string) (Page, bool) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessionLocked(sessionID)
	page, ok := s.pages[name]
	if !ok {
		page = factory(s.doc)
		s.pages[name] = page
	}
	return page, true
}

// Document returns the session's document, creating the session if needed.
func (r *Registry) Document(sessionID string) *modal.Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionLocked(sessionID).doc
}

func (r *Registry) sessionLocked(id string) *session {
	s, ok := r.sessions[id]
	if !ok {
		s = &session{doc: modal.NewDocument(), pages: map[string]Page{}}
		r.sessions[id] = s
	}
	s.lastSeen = r.now()
	return s
}

// End tears down every page of the session.
func (r *Registry) End(sessionID string) {
	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	r.mu.Unlock()
	if ok {
		teardown(s)
	}
}

// Sweep ends sessions idle for longer than idle and reports how many.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	var stale []*session

	r.mu.Lock()
	for id, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			stale = append(stale, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		teardown(s)
	}
	return len(stale)
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = map[string]*session{}
	r.mu.Unlock()
	for _, s := range all {
		teardown(s)
	}
}

func teardown(s *session) {
	for _, p := range s.pages {
		p.Teardown()
	}
}
