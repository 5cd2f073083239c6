package query

import (
	"errors"
	"time"

	"blog-admin/services/admin/internal/store"
)

type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusPending       Status = "pending"
	StatusFulfilled     Status = "fulfilled"
	StatusRejected      Status = "rejected"
)

// CacheEntry is the cached result of one endpoint called with one argument.
type CacheEntry struct {
	EndpointName string
	Arg          any
	Status       Status
	Data         any
	HasData      bool
	Error        error
	RequestID    string
	FulfilledAt  time.Time
	Tags         []Tag

	// Stale is set by invalidation and cleared by a response to a request
	// that started after the last invalidation.
	Stale          bool
	StartedSeq     uint64
	InvalidatedSeq uint64
}

type MutationEntry struct {
	EndpointName string
	Arg          any
	Status       Status
	Data         any
	Error        error
}

// State is the cache slice of the root state. Values are never mutated in
// place; every change produces new maps.
type State struct {
	Queries       map[string]CacheEntry
	Mutations     map[string]MutationEntry
	Provided      map[Tag]KeySet
	Invalidations map[Tag]int
	// LastInvalidated holds the sequence number of the latest invalidation
	// of each tag, so a response to a request started earlier is stale even
	// when its entry did not provide the tag yet.
	LastInvalidated map[Tag]uint64
}

func NewState() State {
	return State{
		Queries:         map[string]CacheEntry{},
		Mutations:       map[string]MutationEntry{},
		Provided:        map[Tag]KeySet{},
		Invalidations:   map[Tag]int{},
		LastInvalidated: map[Tag]uint64{},
	}
}

// KeysFor lists the cache keys currently providing tag.
func (s State) KeysFor(tag Tag) []string {
	keys := make([]string, 0, len(s.Provided[tag]))
	for key := range s.Provided[tag] {
		keys = append(keys, key)
	}
	return keys
}

// ThunkArg travels in Meta.Arg of every request action.
type ThunkArg struct {
	Endpoint string
	Key      string
	Arg      any
	Seq      uint64
}

type invalidation struct {
	Tags []Tag
	Seq  uint64
}

const (
	queryPending      = "executeQuery/pending"
	queryFulfilled    = "executeQuery/fulfilled"
	queryRejected     = "executeQuery/rejected"
	mutationPending   = "executeMutation/pending"
	mutationFulfilled = "executeMutation/fulfilled"
	mutationRejected  = "executeMutation/rejected"
	invalidateTags    = "invalidateTags"
)

func (a *API) actionType(suffix string) string {
	return a.reducerPath + "/" + suffix
}

// Reduce is the cache reducer; it ignores actions of other slices.
func (a *API) Reduce(state State, action store.Action) State {
	if !action.HasPrefix(a.reducerPath) {
		return state
	}
	if state.Queries == nil {
		state = NewState()
	}

	switch action.Type {
	case a.actionType(queryPending):
		arg := action.Meta.Arg.(ThunkArg)
		queries := cloneMap(state.Queries)
		entry := queries[arg.Key]
		entry.EndpointName = arg.Endpoint
		entry.Arg = arg.Arg
		entry.Status = StatusPending
		entry.RequestID = action.Meta.RequestID
		entry.StartedSeq = arg.Seq
		queries[arg.Key] = entry
		state.Queries = queries

	case a.actionType(queryFulfilled), a.actionType(queryRejected):
		arg := action.Meta.Arg.(ThunkArg)
		entry, ok := state.Queries[arg.Key]
		if !ok || entry.RequestID != action.Meta.RequestID {
			// superseded by a newer request for the same key
			return state
		}

		var data any
		var err error
		if action.IsFulfilled() {
			data = action.Payload
			entry.Status = StatusFulfilled
			entry.Data = data
			entry.HasData = true
			entry.Error = nil
			entry.FulfilledAt = time.Now()
		} else {
			err = rejectionError(action)
			entry.Status = StatusRejected
			entry.Error = err
		}
		var tags []Tag
		if ep, ok := a.endpoint(arg.Endpoint); ok {
			tags = ep.tags(data, err, arg.Arg)
		}
		for _, tag := range tags {
			if seq := state.LastInvalidated[tag]; seq > entry.InvalidatedSeq {
				entry.InvalidatedSeq = seq
			}
		}
		entry.Stale = entry.InvalidatedSeq > entry.StartedSeq
		state.Provided = reindex(state.Provided, arg.Key, entry.Tags, tags)
		entry.Tags = tags

		queries := cloneMap(state.Queries)
		queries[arg.Key] = entry
		state.Queries = queries

	case a.actionType(mutationPending):
		arg := action.Meta.Arg.(ThunkArg)
		mutations := cloneMap(state.Mutations)
		mutations[action.Meta.RequestID] = MutationEntry{
			EndpointName: arg.Endpoint,
			Arg:          arg.Arg,
			Status:       StatusPending,
		}
		state.Mutations = mutations

	case a.actionType(mutationFulfilled), a.actionType(mutationRejected):
		entry, ok := state.Mutations[action.Meta.RequestID]
		if !ok {
			return state
		}
		if action.IsFulfilled() {
			entry.Status = StatusFulfilled
			entry.Data = action.Payload
		} else {
			entry.Status = StatusRejected
			entry.Error = rejectionError(action)
		}
		mutations := cloneMap(state.Mutations)
		mutations[action.Meta.RequestID] = entry
		state.Mutations = mutations

	case a.actionType(invalidateTags):
		inv := action.Payload.(invalidation)
		counts := cloneMap(state.Invalidations)
		last := cloneMap(state.LastInvalidated)
		queries := cloneMap(state.Queries)
		for _, tag := range inv.Tags {
			counts[tag]++
			if inv.Seq > last[tag] {
				last[tag] = inv.Seq
			}
			for key := range state.Provided[tag] {
				entry := queries[key]
				entry.Stale = true
				if inv.Seq > entry.InvalidatedSeq {
					entry.InvalidatedSeq = inv.Seq
				}
				queries[key] = entry
			}
		}
		state.Invalidations = counts
		state.LastInvalidated = last
		state.Queries = queries

	case a.actionType(removeMutation):
		if _, ok := state.Mutations[action.Meta.RequestID]; !ok {
			return state
		}
		mutations := cloneMap(state.Mutations)
		delete(mutations, action.Meta.RequestID)
		state.Mutations = mutations
	}

	return state
}

const removeMutation = "removeMutationResult"

func rejectionError(action store.Action) error {
	if err, ok := action.Payload.(error); ok {
		return err
	}
	if action.Error != nil {
		return errors.New(action.Error.Message)
	}
	return errors.New("rejected")
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
