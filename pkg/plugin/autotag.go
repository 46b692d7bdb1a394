package plugin

import (
	"context"
	"net/url"
	"strings"

	"github.com/averin/marque/pkg/bookmark"
	"github.com/averin/marque/pkg/store"
)

// AutoTag tags every new bookmark with the host of its URL, so
// "https://www.rust-lang.org/learn" picks up "rust-lang.org".
type AutoTag struct{}

// Name identifies the builtin.
func (AutoTag) Name() string { return "autotag" }

// PreMutate appends the host tag on add. Other operations and URLs
// without a usable host pass through untouched.
func (AutoTag) PreMutate(_ context.Context, op store.Op, b *bookmark.Bookmark) error {
	if op != store.OpAdd {
		return nil
	}
	host := hostTag(b.URL)
	if host == "" {
		return nil
	}
	b.Tags = bookmark.CanonicalTags(append(b.TagList(), host))
	return nil
}

// PostMutate is a no-op.
func (AutoTag) PostMutate(context.Context, store.Op, bookmark.Bookmark) error { return nil }

// hostTag extracts the tag-worthy host of a URL: lowercased, without a
// leading "www." or a port.
func hostTag(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
