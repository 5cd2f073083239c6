// Package app composes the admin client: the edit-target slice, the blog
// API cache and the error-reporting middleware in one store.
package app

import (
	"fmt"
	"net/http"
	"time"

	"blog-admin/pkg/config"
	"blog-admin/pkg/logger"
	"blog-admin/services/admin/internal/blog"
	"blog-admin/services/admin/internal/middleware"
	"blog-admin/services/admin/internal/query"
	"blog-admin/services/admin/internal/store"
)

type RootState struct {
	Blog    blog.State  `json:"blog"`
	BlogAPI query.State `json:"blogApi"`
}

type Store = store.Store[RootState]

type App struct {
	Store    *Store
	Service  *blog.Service
	Notifier middleware.Notifier
	Log      *logger.Logger
}

func New(cfg *config.Config, log *logger.Logger, notifier middleware.Notifier) (*App, error) {
	baseQuery, err := query.FetchBaseQuery(
		cfg.BlogAPIURL,
		query.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		query.WithBearerToken(cfg.BlogAPIToken),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blog api client: %w", err)
	}

	return NewWithBaseQuery(baseQuery, log, notifier), nil
}

// NewWithBaseQuery wires the store around an existing base query.
func NewWithBaseQuery(baseQuery query.BaseQuery, log *logger.Logger, notifier middleware.Notifier) *App {
	service := blog.NewService(baseQuery, log)
	st := NewStore(service, notifier)

	return &App{
		Store:    st,
		Service:  service,
		Notifier: notifier,
		Log:      log,
	}
}

func NewStore(service *blog.Service, notifier middleware.Notifier) *Store {
	api := service.API
	reducer := func(state RootState, action store.Action) RootState {
		state.Blog = blog.Reducer(state.Blog, action)
		state.BlogAPI = api.Reduce(state.BlogAPI, action)
		return state
	}

	initial := RootState{BlogAPI: query.NewState()}
	st := store.New(reducer, initial,
		query.Middleware(api, SelectBlogAPI),
		middleware.ErrorLogger[RootState](notifier),
	)
	query.Bind(api, st, SelectBlogAPI)
	return st
}

func SelectBlog(s RootState) blog.State {
	return s.Blog
}

func SelectBlogAPI(s RootState) query.State {
	return s.BlogAPI
}

// EditTarget is the id of the post the form edits, empty when creating.
func (a *App) EditTarget() string {
	return SelectBlog(a.Store.GetState()).PostID
}

func (a *App) Dispatch(action store.Action) store.Action {
	return a.Store.Dispatch(action)
}
