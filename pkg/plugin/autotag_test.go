package plugin

import (
	"context"
	"testing"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoTag(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		in   bookmark.Bookmark
		want string
	}{
		{
			name: "bare host",
			in:   bookmark.Bookmark{URL: "https://go.dev/doc"},
			want: ",go.dev,",
		},
		{
			name: "www stripped",
			in:   bookmark.Bookmark{URL: "https://www.rust-lang.org/learn"},
			want: ",rust-lang.org,",
		},
		{
			name: "port dropped",
			in:   bookmark.Bookmark{URL: "http://localhost:8080/admin"},
			want: ",localhost,",
		},
		{
			name: "existing tags kept",
			in:   bookmark.Bookmark{URL: "https://go.dev", Tags: ",lang,"},
			want: ",go.dev,lang,",
		},
		{
			name: "host already tagged",
			in:   bookmark.Bookmark{URL: "https://go.dev", Tags: ",go.dev,"},
			want: ",go.dev,",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.in
			require.NoError(t, AutoTag{}.PreMutate(ctx, store.OpAdd, &b))
			assert.Equal(t, tt.want, b.Tags)
		})
	}
}

func TestAutoTagLeavesOtherOperationsAlone(t *testing.T) {
	b := bookmark.Bookmark{URL: "https://go.dev", Tags: bookmark.EmptyTags}
	require.NoError(t, AutoTag{}.PreMutate(context.Background(), store.OpUpdate, &b))
	assert.Equal(t, bookmark.EmptyTags, b.Tags)
}

func TestAutoTagSkipsHostlessURLs(t *testing.T) {
	for _, raw := range []string{"not a url at all", "file:///etc/hosts", ""} {
		b := bookmark.Bookmark{URL: raw, Tags: bookmark.EmptyTags}
		require.NoError(t, AutoTag{}.PreMutate(context.Background(), store.OpAdd, &b))
		assert.Equal(t, bookmark.EmptyTags, b.Tags, "url %q", raw)
	}
}
