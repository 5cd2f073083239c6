// Package store is the process-wide state container of the admin client.
//
// State changes only through dispatched actions. Commits happen one at a
// time in dispatch order; actions dispatched by middleware while another
// action is in flight are queued behind it. Listeners run after the commit
// lock is released, see the committed snapshot, and receive commits in the
// order they were made: one goroutine delivers at a time, and commits made
// while it is delivering are handed to it instead of being delivered by
// their own dispatcher.
package store

import (
	"strings"
	"sync"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusFulfilled RequestStatus = "fulfilled"
	StatusRejected  RequestStatus = "rejected"
)

// SerializedError is the error of a rejected action that carries no value.
type SerializedError struct {
	Name    string
	Message string
}

type Meta struct {
	RequestID     string
	RequestStatus RequestStatus
	// RejectedWithValue is set when the server answered and Payload holds
	// its error.
	RejectedWithValue bool
	// Condition marks a rejection raised by cache policy, not by a request.
	Condition bool
	Arg       any
}

type Action struct {
	Type    string
	Payload any
	Error   *SerializedError
	Meta    Meta
}

func (a Action) IsPending() bool {
	return a.Meta.RequestStatus == StatusPending
}

func (a Action) IsFulfilled() bool {
	return a.Meta.RequestStatus == StatusFulfilled
}

func (a Action) IsRejected() bool {
	return a.Meta.RequestStatus == StatusRejected
}

func (a Action) IsRejectedWithValue() bool {
	return a.IsRejected() && a.Meta.RejectedWithValue
}

// HasPrefix reports whether the action belongs to the given slice or api.
func (a Action) HasPrefix(prefix string) bool {
	return strings.HasPrefix(a.Type, prefix+"/")
}

type Reducer[S any] func(state S, action Action) S

type DispatchFunc func(action Action) Action

// MiddlewareAPI is handed to middleware. Its Dispatch queues the action
// behind the one being processed and returns it unchanged.
type MiddlewareAPI[S any] interface {
	GetState() S
	Dispatch(action Action) Action
}

type Middleware[S any] func(api MiddlewareAPI[S]) func(next DispatchFunc) DispatchFunc

type Listener[S any] func(state S, action Action)

type commit[S any] struct {
	state  S
	action Action
}

type Store[S any] struct {
	mu       sync.Mutex
	state    S
	reducer  Reducer[S]
	dispatch DispatchFunc
	queue    []Action
	commits  []commit[S]
	// pending holds commits not yet delivered; notifying is set while a
	// goroutine is delivering them.
	pending   []commit[S]
	notifying bool

	listenersMu sync.RWMutex
	listeners   map[int]Listener[S]
	nextID      int
}

func New[S any](reducer Reducer[S], initial S, middleware ...Middleware[S]) *Store[S] {
	s := &Store[S]{
		state:     initial,
		reducer:   reducer,
		listeners: make(map[int]Listener[S]),
	}

	base := func(action Action) Action {
		s.state = s.reducer(s.state, action)
		s.commits = append(s.commits, commit[S]{state: s.state, action: action})
		return action
	}

	api := middlewareAPI[S]{store: s}
	dispatch := DispatchFunc(base)
	for i := len(middleware) - 1; i >= 0; i-- {
		dispatch = middleware[i](api)(dispatch)
	}
	s.dispatch = dispatch

	return s
}

// Dispatch commits action and every action queued while processing it, then
// notifies listeners. When another dispatch is already notifying, including
// one further up the calling listener's stack, the new commits are left to
// it and Dispatch returns without waiting for them to be delivered. It must
// not be called from middleware.
func (s *Store[S]) Dispatch(action Action) Action {
	s.mu.Lock()
	result := s.dispatch(action)
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.dispatch(next)
	}
	s.pending = append(s.pending, s.commits...)
	s.commits = nil
	if s.notifying {
		s.mu.Unlock()
		return result
	}

	s.notifying = true
	s.mu.Unlock()

	s.deliver()
	return result
}

// deliver notifies pending commits until none are left. The caller must have
// set notifying.
func (s *Store[S]) deliver() {
	done := false
	defer func() {
		if !done {
			s.mu.Lock()
			s.notifying = false
			s.mu.Unlock()
		}
	}()

	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		if len(batch) == 0 {
			s.notifying = false
			done = true
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.notify(batch)
	}
}

func (s *Store[S]) GetState() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every commit and returns its unsubscribe func.
func (s *Store[S]) Subscribe(fn Listener[S]) func() {
	s.listenersMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			delete(s.listeners, id)
			s.listenersMu.Unlock()
		})
	}
}

func (s *Store[S]) notify(commits []commit[S]) {
	if len(commits) == 0 {
		return
	}

	s.listenersMu.RLock()
	listeners := make([]Listener[S], 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenersMu.RUnlock()

	for _, c := range commits {
		for _, fn := range listeners {
			fn(c.state, c.action)
		}
	}
}

type middlewareAPI[S any] struct {
	store *Store[S]
}

// GetState is only called from middleware, which already holds the lock.
func (m middlewareAPI[S]) GetState() S {
	return m.store.state
}

func (m middlewareAPI[S]) Dispatch(action Action) Action {
	m.store.queue = append(m.store.queue, action)
	return action
}

// Combine runs each reducer in order over the same action.
func Combine[S any](reducers ...Reducer[S]) Reducer[S] {
	return func(state S, action Action) S {
		for _, r := range reducers {
			state = r(state, action)
		}
		return state
	}
}
