package blog

import (
	"testing"

	"blog-admin/services/admin/internal/store"

	"github.com/stretchr/testify/assert"
)

func TestReducer(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		action store.Action
		want   State
	}{
		{"start edit", State{}, StartEditPost("7"), State{PostID: "7"}},
		{"switch target", State{PostID: "7"}, StartEditPost("9"), State{PostID: "9"}},
		{"cancel", State{PostID: "7"}, CancelEditPost(), State{}},
		{"cancel when idle", State{}, CancelEditPost(), State{}},
		{"other action", State{PostID: "7"}, store.Action{Type: "blogApi/invalidateTags"}, State{PostID: "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reducer(tt.state, tt.action))
		})
	}
}

func TestState_Editing(t *testing.T) {
	assert.False(t, State{}.Editing())
	assert.True(t, State{PostID: "1"}.Editing())
}
