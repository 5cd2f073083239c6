// Package query is the admin client's declarative data layer.
//
// Endpoints are declared once against an API. Query results are cached in
// store state under a key built from the endpoint name and its argument and
// labelled with tags. Mutations name the tags they invalidate; invalidated
// entries are marked stale and refetched when something is subscribed to
// them. Identical concurrent queries share a single request.
package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"blog-admin/pkg/logger"
	"blog-admin/services/admin/internal/apperr"
	"blog-admin/services/admin/internal/store"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

type endpointKind int

const (
	kindQuery endpointKind = iota
	kindMutation
)

type endpoint struct {
	name   string
	kind   endpointKind
	build  func(arg any) (FetchArgs, error)
	decode func(raw []byte) (any, error)
	tags   func(result any, err error, arg any) []Tag
}

type API struct {
	reducerPath string
	baseQuery   BaseQuery
	log         *logger.Logger

	mu        sync.RWMutex
	endpoints map[string]*endpoint

	subsMu sync.Mutex
	subs   map[string]int

	group singleflight.Group
	seq   atomic.Uint64

	dispatch func(store.Action) store.Action
	getState func() State
	listen   func(fn func(store.Action)) func()
}

func New(reducerPath string, baseQuery BaseQuery, log *logger.Logger) *API {
	return &API{
		reducerPath: reducerPath,
		baseQuery:   baseQuery,
		log:         log,
		endpoints:   make(map[string]*endpoint),
		subs:        make(map[string]int),
	}
}

func (a *API) ReducerPath() string {
	return a.reducerPath
}

// Bind attaches the API to the store that holds its state.
func Bind[S any](a *API, st *store.Store[S], selectState func(S) State) {
	a.dispatch = st.Dispatch
	a.getState = func() State {
		return selectState(st.GetState())
	}
	a.listen = func(fn func(store.Action)) func() {
		return st.Subscribe(func(_ S, action store.Action) {
			fn(action)
		})
	}
}

// Middleware turns mutation results into tag invalidations and refetches
// subscribed entries that became stale.
func Middleware[S any](a *API, selectState func(S) State) store.Middleware[S] {
	return func(mapi store.MiddlewareAPI[S]) func(next store.DispatchFunc) store.DispatchFunc {
		return func(next store.DispatchFunc) store.DispatchFunc {
			return func(action store.Action) store.Action {
				result := next(action)
				if !action.HasPrefix(a.reducerPath) {
					return result
				}

				switch action.Type {
				case a.actionType(mutationFulfilled), a.actionType(mutationRejected):
					arg := action.Meta.Arg.(ThunkArg)
					ep, ok := a.endpoint(arg.Endpoint)
					if !ok || ep.kind != kindMutation {
						break
					}
					var data any
					var err error
					if action.IsFulfilled() {
						data = action.Payload
					} else {
						err = rejectionError(action)
					}
					if tags := ep.tags(data, err, arg.Arg); len(tags) > 0 {
						mapi.Dispatch(a.InvalidateTags(tags...))
					}

				case a.actionType(invalidateTags):
					state := selectState(mapi.GetState())
					inv := action.Payload.(invalidation)
					seen := make(map[string]struct{})
					for _, tag := range inv.Tags {
						for key := range state.Provided[tag] {
							if _, dup := seen[key]; dup {
								continue
							}
							seen[key] = struct{}{}
							a.refetchIfSubscribed(state.Queries[key], key)
						}
					}

				case a.actionType(queryFulfilled), a.actionType(queryRejected):
					arg := action.Meta.Arg.(ThunkArg)
					entry := selectState(mapi.GetState()).Queries[arg.Key]
					if entry.Stale && entry.RequestID == action.Meta.RequestID {
						a.refetchIfSubscribed(entry, arg.Key)
					}
				}

				return result
			}
		}
	}
}

// InvalidateTags builds the action that marks every entry providing one of
// tags as stale.
func (a *API) InvalidateTags(tags ...Tag) store.Action {
	return store.Action{
		Type:    a.actionType(invalidateTags),
		Payload: invalidation{Tags: tags, Seq: a.seq.Add(1)},
	}
}

func (a *API) register(ep *endpoint) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.endpoints[ep.name]; exists {
		panic(fmt.Sprintf("query: endpoint %q declared twice", ep.name))
	}
	a.endpoints[ep.name] = ep
}

func (a *API) endpoint(name string) (*endpoint, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ep, ok := a.endpoints[name]
	return ep, ok
}

func (a *API) state() State {
	a.mustBeBound()
	return a.getState()
}

func (a *API) mustBeBound() {
	if a.dispatch == nil {
		panic("query: API used before Bind")
	}
}

func (a *API) subscribe(key string) {
	a.subsMu.Lock()
	a.subs[key]++
	a.subsMu.Unlock()
}

func (a *API) unsubscribe(key string) {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	if a.subs[key] <= 1 {
		delete(a.subs, key)
		return
	}
	a.subs[key]--
}

func (a *API) subscribed(key string) bool {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	return a.subs[key] > 0
}

// Subscriptions reports how many handles are subscribed to key.
func (a *API) Subscriptions(key string) int {
	a.subsMu.Lock()
	defer a.subsMu.Unlock()
	return a.subs[key]
}

func (a *API) refetchIfSubscribed(entry CacheEntry, key string) {
	if !a.subscribed(key) {
		return
	}
	ep, ok := a.endpoint(entry.EndpointName)
	if !ok {
		return
	}
	a.log.Info("Refetching %s after invalidation", key)
	go func() {
		_, _ = a.fetchQuery(context.Background(), ep, key, entry.Arg)
	}()
}

// fetchQuery coalesces concurrent calls for key. A cancelled caller stops
// waiting; the request itself runs to completion and is still cached.
func (a *API) fetchQuery(ctx context.Context, ep *endpoint, key string, arg any) (any, error) {
	a.mustBeBound()
	ch := a.group.DoChan(key, func() (any, error) {
		return a.runQuery(context.WithoutCancel(ctx), ep, key, arg)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *API) runQuery(ctx context.Context, ep *endpoint, key string, arg any) (any, error) {
	requestID := uuid.NewString()
	thunk := ThunkArg{Endpoint: ep.name, Key: key, Arg: arg, Seq: a.seq.Add(1)}

	a.dispatch(a.requestAction(queryPending, requestID, thunk, store.StatusPending))

	data, err := a.execute(ctx, ep, arg)
	// later callers must start a new request once this result is committed
	a.group.Forget(key)

	if err != nil {
		a.dispatch(a.rejectedAction(queryRejected, requestID, thunk, err))
		return nil, err
	}

	fulfilled := a.requestAction(queryFulfilled, requestID, thunk, store.StatusFulfilled)
	fulfilled.Payload = data
	a.dispatch(fulfilled)
	return data, nil
}

func (a *API) runMutation(ctx context.Context, ep *endpoint, requestID string, arg any) (any, error) {
	a.mustBeBound()
	thunk := ThunkArg{Endpoint: ep.name, Arg: arg, Seq: a.seq.Add(1)}

	a.dispatch(a.requestAction(mutationPending, requestID, thunk, store.StatusPending))

	data, err := a.execute(ctx, ep, arg)
	if err != nil {
		a.dispatch(a.rejectedAction(mutationRejected, requestID, thunk, err))
		return nil, err
	}

	fulfilled := a.requestAction(mutationFulfilled, requestID, thunk, store.StatusFulfilled)
	fulfilled.Payload = data
	a.dispatch(fulfilled)
	return data, nil
}

func (a *API) execute(ctx context.Context, ep *endpoint, arg any) (any, error) {
	args, err := ep.build(arg)
	if err != nil {
		return nil, err
	}

	raw, err := a.baseQuery(ctx, args)
	if err != nil {
		return nil, err
	}

	return ep.decode(raw)
}

func (a *API) requestAction(suffix, requestID string, thunk ThunkArg, status store.RequestStatus) store.Action {
	return store.Action{
		Type: a.actionType(suffix),
		Meta: store.Meta{
			RequestID:     requestID,
			RequestStatus: status,
			Arg:           thunk,
		},
	}
}

func (a *API) rejectedAction(suffix, requestID string, thunk ThunkArg, err error) store.Action {
	action := a.requestAction(suffix, requestID, thunk, store.StatusRejected)
	action.Payload = err
	action.Error = &store.SerializedError{Name: apperr.Name(err), Message: err.Error()}

	var fetchErr *apperr.FetchError
	action.Meta.RejectedWithValue = errors.As(err, &fetchErr)
	return action
}

// SerializeQueryArgs builds the cache key of an endpoint call.
func SerializeQueryArgs(endpointName string, arg any) string {
	data, err := json.Marshal(arg)
	if err != nil {
		return fmt.Sprintf("%s(%v)", endpointName, arg)
	}
	return endpointName + "(" + string(data) + ")"
}
