package blog

import "blog-admin/services/admin/internal/store"

const SliceName = "blog"

const (
	startEditPost  = SliceName + "/startEditPost"
	cancelEditPost = SliceName + "/cancelEditPost"
)

// State holds the id of the post the form is editing. Empty means the form
// creates a new post.
type State struct {
	PostID string `json:"postId"`
}

func StartEditPost(id string) store.Action {
	return store.Action{Type: startEditPost, Payload: id}
}

func CancelEditPost() store.Action {
	return store.Action{Type: cancelEditPost}
}

func Reducer(state State, action store.Action) State {
	switch action.Type {
	case startEditPost:
		id, _ := action.Payload.(string)
		return State{PostID: id}
	case cancelEditPost:
		return State{}
	}
	return state
}

// Editing reports whether the form targets an existing post.
func (s State) Editing() bool {
	return s.PostID != ""
}
