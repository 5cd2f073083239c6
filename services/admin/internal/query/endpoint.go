package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"blog-admin/services/admin/internal/store"

	"github.com/google/uuid"
)

// Void is the argument of queries that take none and the result of requests
// whose body is ignored.
type Void struct{}

type QueryDefinition[A, R any] struct {
	Query        func(arg A) (FetchArgs, error)
	ProvidesTags func(result R, err error, arg A) []Tag
}

type MutationDefinition[A, R any] struct {
	Query           func(arg A) (FetchArgs, error)
	InvalidatesTags func(result R, err error, arg A) []Tag
}

type QueryEndpoint[A, R any] struct {
	api *API
	ep  *endpoint
}

type MutationEndpoint[A, R any] struct {
	api *API
	ep  *endpoint
}

func DefineQuery[A, R any](a *API, name string, def QueryDefinition[A, R]) *QueryEndpoint[A, R] {
	ep := newEndpoint(name, kindQuery, def.Query, def.ProvidesTags)
	a.register(ep)
	return &QueryEndpoint[A, R]{api: a, ep: ep}
}

func DefineMutation[A, R any](a *API, name string, def MutationDefinition[A, R]) *MutationEndpoint[A, R] {
	ep := newEndpoint(name, kindMutation, def.Query, def.InvalidatesTags)
	a.register(ep)
	return &MutationEndpoint[A, R]{api: a, ep: ep}
}

func newEndpoint[A, R any](name string, kind endpointKind, query func(A) (FetchArgs, error), tags func(R, error, A) []Tag) *endpoint {
	return &endpoint{
		name: name,
		kind: kind,
		build: func(arg any) (FetchArgs, error) {
			typed, _ := arg.(A)
			return query(typed)
		},
		decode: func(raw []byte) (any, error) {
			return decodeJSON[R](raw)
		},
		tags: func(result any, err error, arg any) []Tag {
			if tags == nil {
				return nil
			}
			typedResult, _ := result.(R)
			typedArg, _ := arg.(A)
			return tags(typedResult, err, typedArg)
		},
	}
}

func decodeJSON[R any](raw []byte) (R, error) {
	var out R
	if _, void := any(out).(Void); void || len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}

// Result is the typed view of a cache or mutation entry.
type Result[R any] struct {
	Status  Status
	Data    R
	HasData bool
	Error   error
	Stale   bool
}

func (r Result[R]) IsUninitialized() bool {
	return r.Status == "" || r.Status == StatusUninitialized
}

// IsLoading is true for the first request of an entry, before any data.
func (r Result[R]) IsLoading() bool {
	return r.Status == StatusPending && !r.HasData
}

func (r Result[R]) IsFetching() bool {
	return r.Status == StatusPending
}

func (r Result[R]) IsSuccess() bool {
	return r.Status == StatusFulfilled
}

func (r Result[R]) IsError() bool {
	return r.Status == StatusRejected
}

// Settled reports whether the entry has a final answer that no pending
// refetch will replace.
func (r Result[R]) Settled() bool {
	return (r.IsSuccess() || r.IsError()) && !r.Stale
}

func resultOf[R any](status Status, data any, hasData bool, err error, stale bool) Result[R] {
	typed, _ := data.(R)
	if status == "" {
		status = StatusUninitialized
	}
	return Result[R]{Status: status, Data: typed, HasData: hasData, Error: err, Stale: stale}
}

func (q *QueryEndpoint[A, R]) Name() string {
	return q.ep.name
}

func (q *QueryEndpoint[A, R]) CacheKey(arg A) string {
	return SerializeQueryArgs(q.ep.name, arg)
}

// Select reads the cached result for arg without triggering a request.
func (q *QueryEndpoint[A, R]) Select(arg A) Result[R] {
	entry := q.api.state().Queries[q.CacheKey(arg)]
	return resultOf[R](entry.Status, entry.Data, entry.HasData, entry.Error, entry.Stale)
}

// Initiate returns the cached data when it is fresh and fetches otherwise.
func (q *QueryEndpoint[A, R]) Initiate(ctx context.Context, arg A) (R, error) {
	if r := q.Select(arg); r.IsSuccess() && !r.Stale {
		return r.Data, nil
	}
	return q.Refetch(ctx, arg)
}

// Refetch always goes to the network, sharing a request already in flight
// for the same argument.
func (q *QueryEndpoint[A, R]) Refetch(ctx context.Context, arg A) (R, error) {
	var zero R
	data, err := q.api.fetchQuery(ctx, q.ep, q.CacheKey(arg), arg)
	if err != nil {
		return zero, err
	}
	typed, _ := data.(R)
	return typed, nil
}

// Subscribe keeps the entry for arg fetched: it starts a request when the
// entry is missing, failed or stale, and refetches it after every
// invalidation until Unsubscribe is called.
func (q *QueryEndpoint[A, R]) Subscribe(arg A) *Subscription[A, R] {
	q.api.mustBeBound()
	s := &Subscription[A, R]{
		endpoint: q,
		arg:      arg,
		key:      q.CacheKey(arg),
		changes:  make(chan struct{}, 1),
	}

	prefix := q.api.reducerPath
	s.stop = q.api.listen(func(action store.Action) {
		if action.HasPrefix(prefix) {
			s.notify()
		}
	})
	q.api.subscribe(s.key)

	entry := q.api.state().Queries[s.key]
	switch {
	case entry.Status == StatusPending:
	case entry.Status == StatusFulfilled && !entry.Stale:
	default:
		go func() {
			_, _ = q.api.fetchQuery(context.Background(), q.ep, s.key, arg)
		}()
	}

	return s
}

type Subscription[A, R any] struct {
	endpoint *QueryEndpoint[A, R]
	arg      A
	key      string
	changes  chan struct{}
	stop     func()
	once     sync.Once
}

func (s *Subscription[A, R]) Key() string {
	return s.key
}

func (s *Subscription[A, R]) Result() Result[R] {
	return s.endpoint.Select(s.arg)
}

// Changes receives a value whenever the cache may have changed. Signals are
// coalesced; read Result after each one.
func (s *Subscription[A, R]) Changes() <-chan struct{} {
	return s.changes
}

// Wait blocks until the entry is settled or ctx is done.
func (s *Subscription[A, R]) Wait(ctx context.Context) (Result[R], error) {
	for {
		r := s.Result()
		if r.Settled() {
			return r, nil
		}
		select {
		case <-s.changes:
		case <-ctx.Done():
			return r, ctx.Err()
		}
	}
}

func (s *Subscription[A, R]) Refetch(ctx context.Context) (R, error) {
	return s.endpoint.Refetch(ctx, s.arg)
}

func (s *Subscription[A, R]) Unsubscribe() {
	s.once.Do(func() {
		s.stop()
		s.endpoint.api.unsubscribe(s.key)
	})
}

func (s *Subscription[A, R]) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

func (m *MutationEndpoint[A, R]) Name() string {
	return m.ep.name
}

// Trigger runs the mutation. Its result stays in the cache state until
// removed with a handle's Reset.
func (m *MutationEndpoint[A, R]) Trigger(ctx context.Context, arg A) (R, error) {
	return m.trigger(ctx, uuid.NewString(), arg)
}

func (m *MutationEndpoint[A, R]) trigger(ctx context.Context, requestID string, arg A) (R, error) {
	var zero R
	data, err := m.api.runMutation(ctx, m.ep, requestID, arg)
	if err != nil {
		return zero, err
	}
	typed, _ := data.(R)
	return typed, nil
}

// Use returns a handle that tracks the latest call made through it.
func (m *MutationEndpoint[A, R]) Use() *MutationHandle[A, R] {
	return &MutationHandle[A, R]{endpoint: m}
}

type MutationHandle[A, R any] struct {
	endpoint  *MutationEndpoint[A, R]
	mu        sync.Mutex
	requestID string
}

func (h *MutationHandle[A, R]) Trigger(ctx context.Context, arg A) (R, error) {
	requestID := uuid.NewString()
	h.mu.Lock()
	previous := h.requestID
	h.requestID = requestID
	h.mu.Unlock()

	if previous != "" {
		h.endpoint.api.removeMutationResult(previous)
	}
	return h.endpoint.trigger(ctx, requestID, arg)
}

// Result is the state of the latest call, uninitialized before the first.
func (h *MutationHandle[A, R]) Result() Result[R] {
	h.mu.Lock()
	requestID := h.requestID
	h.mu.Unlock()

	if requestID == "" {
		return Result[R]{Status: StatusUninitialized}
	}
	entry := h.endpoint.api.state().Mutations[requestID]
	return resultOf[R](entry.Status, entry.Data, entry.Status == StatusFulfilled, entry.Error, false)
}

func (h *MutationHandle[A, R]) Reset() {
	h.mu.Lock()
	requestID := h.requestID
	h.requestID = ""
	h.mu.Unlock()

	if requestID != "" {
		h.endpoint.api.removeMutationResult(requestID)
	}
}

func (a *API) removeMutationResult(requestID string) {
	a.mustBeBound()
	a.dispatch(store.Action{
		Type: a.actionType(removeMutation),
		Meta: store.Meta{RequestID: requestID},
	})
}
