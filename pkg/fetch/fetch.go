// Package fetch retrieves page metadata for a URL so new bookmarks can
// be filled in without typing the title by hand.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

var (
	// ErrBadStatus indicates the page answered with a non-OK status.
	ErrBadStatus = errors.New("unexpected response status")
	// ErrNotHTML indicates the resource is not an HTML page.
	ErrNotHTML = errors.New("resource is not html")
)

const (
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout   = 15 * time.Second
	defaultMaxBody   = 256 << 10
)

// Metadata is what a page says about itself.
type Metadata struct {
	Title       string
	Description string
	Keywords    []string
}

// Config configures a Fetcher.
type Config struct {
	// UserAgent overrides the default browser-like agent string.
	UserAgent string
	// Timeout bounds the whole request.
	Timeout time.Duration
	// MaxBody caps how much of the page is read while parsing.
	MaxBody int64
	Logger  zerolog.Logger
}

// Fetcher downloads pages and extracts their metadata.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    zerolog.Logger
}

// New creates a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = defaultMaxBody
	}

	return &Fetcher{
		client:    &http.Client{Timeout: cfg.Timeout},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBody,
		logger:    cfg.Logger.With().Str("component", "fetch").Logger(),
	}
}

// Fetch downloads rawURL and extracts its metadata.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return Metadata{}, fmt.Errorf("%w: %s", ErrNotHTML, ct)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse html: %w", err)
	}

	meta := extract(doc)
	f.logger.Debug().Str("url", rawURL).Str("title", meta.Title).Msg("page metadata fetched")
	return meta, nil
}

// extract walks the document collecting the title, the description and
// any declared keywords. Open Graph values fill gaps the plain tags
// leave.
func extract(doc *html.Node) Metadata {
	var meta Metadata
	var ogTitle, ogDesc string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if meta.Title == "" && n.FirstChild != nil {
					meta.Title = collapseSpace(n.FirstChild.Data)
				}
			case "meta":
				var name, property, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "name":
						name = strings.ToLower(attr.Val)
					case "property":
						property = strings.ToLower(attr.Val)
					case "content":
						content = attr.Val
					}
				}

				switch {
				case name == "description":
					meta.Description = collapseSpace(content)
				case name == "keywords":
					meta.Keywords = splitKeywords(content)
				case property == "og:title":
					ogTitle = collapseSpace(content)
				case property == "og:description":
					ogDesc = collapseSpace(content)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = ogTitle
	}
	if meta.Description == "" {
		meta.Description = ogDesc
	}
	return meta
}

// collapseSpace trims the text and squeezes internal whitespace runs,
// which page titles are full of.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitKeywords(s string) []string {
	var keywords []string
	for _, part := range strings.Split(s, ",") {
		if kw := strings.TrimSpace(part); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
