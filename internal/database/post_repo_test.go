package database

import (
	"context"
	"testing"

	"github.com/shubh-37/post-scheduler/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name     string
		opts     ListOptions
		contains []string
		args     []any
	}{
		{
			name:     "no filters",
			opts:     ListOptions{},
			contains: []string{"FROM posts ORDER BY", "scheduled_year ASC NULLS LAST"},
		},
		{
			name:     "status and search",
			opts:     ListOptions{Status: "queued", Search: " launch "},
			contains: []string{"WHERE status = $1 AND message ILIKE $2"},
			args:     []any{"queued", "%launch%"},
		},
		{
			name:     "descending with limit",
			opts:     ListOptions{Sort: SortDescending, Limit: 5},
			contains: []string{"scheduled_day DESC NULLS LAST", "created_at DESC", "LIMIT $1"},
			args:     []any{5},
		},
		{
			name:     "search escapes wildcards",
			opts:     ListOptions{Search: "50%_off"},
			contains: []string{"WHERE message ILIKE $1"},
			args:     []any{`%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(tt.opts)
			for _, s := range tt.contains {
				assert.Contains(t, query, s)
			}
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestBuildListQueryOmitsWhereWhenEmpty(t *testing.T) {
	query, _ := buildListQuery(ListOptions{Search: "   "})
	assert.NotContains(t, query, "WHERE")
}

func TestMalformedIDIsNotFound(t *testing.T) {
	repo := NewPostRepository(nil)
	ctx := context.Background()

	for _, id := range []string{"not-a-uuid", "abc", ""} {
		_, err := repo.GetByID(ctx, id)
		require.ErrorIs(t, err, ErrPostNotFound, id)
		require.ErrorIs(t, repo.Update(ctx, &models.Post{ID: id}), ErrPostNotFound, id)
		require.ErrorIs(t, repo.UpdateStatus(ctx, id, models.StatusQueued), ErrPostNotFound, id)
		require.ErrorIs(t, repo.Delete(ctx, id), ErrPostNotFound, id)
	}
}
