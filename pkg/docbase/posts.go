package docbase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size the API uses when per_page is omitted.
const DefaultPerPage = 20

// Create creates post on the server and returns the stored post, including
// its id, url, author and comments.
func (c *Client) Create(ctx context.Context, post *Post) (*Post, error) {
	if post == nil {
		return nil, fmt.Errorf("post is required")
	}

	var res postResponse
	if err := c.doRequest(ctx, http.MethodPost, c.indexURL("posts"), newPostPayload(post), &res); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return res.toPost()
}

// CreatePost builds a post from the given fields and creates it.
func (c *Client) CreatePost(ctx context.Context, title, body string, opts ...PostOption) (*Post, error) {
	post, err := NewPost(title, body, opts...)
	if err != nil {
		return nil, err
	}
	return c.Create(ctx, post)
}

// Update saves post, which must already exist on the server, and returns
// the updated post.
func (c *Client) Update(ctx context.Context, post *Post) (*Post, error) {
	id, err := resolvePostID(post)
	if err != nil {
		return nil, err
	}

	var res postResponse
	if err := c.doRequest(ctx, http.MethodPatch, c.resourceURL("posts", id), newPostPayload(post), &res); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}

	return res.toPost()
}

// Delete deletes a post. A nil error means the post was deleted.
func (c *Client) Delete(ctx context.Context, ref PostRef) error {
	id, err := resolvePostID(ref)
	if err != nil {
		return err
	}

	if err := c.doRequest(ctx, http.MethodDelete, c.resourceURL("posts", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	return nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, ref PostRef) (*Post, error) {
	id, err := resolvePostID(ref)
	if err != nil {
		return nil, err
	}
	return c.getPost(ctx, c.resourceURL("posts", id))
}

func (c *Client) getPost(ctx context.Context, endpoint string) (*Post, error) {
	var res postResponse
	if err := c.get(ctx, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return res.toPost()
}

// SearchOptions selects a page of posts.
type SearchOptions struct {
	// Query is a DocBase search query. Empty lists every post.
	Query string

	// Page is the 1-based page number. Values below 2 request the first page.
	Page int

	// PerPage is the page size. Zero means DefaultPerPage.
	PerPage int
}

func (o SearchOptions) params() url.Values {
	params := url.Values{}

	if o.Page > 1 {
		params.Set("page", strconv.Itoa(o.Page))
	}
	if o.PerPage > 0 && o.PerPage != DefaultPerPage {
		params.Set("per_page", strconv.Itoa(o.PerPage))
	}
	if o.Query != "" {
		params.Set("q", o.Query)
	}

	return params
}

// SearchPosts returns one page of posts matching opts.
func (c *Client) SearchPosts(ctx context.Context, opts SearchOptions) (*PostSearchResult, error) {
	return c.searchPage(ctx, c.indexURL("posts"), opts.params())
}

// EachPost calls fn for every post matching opts, following next page links
// until the last page. It stops at the first error returned by fn.
func (c *Client) EachPost(ctx context.Context, opts SearchOptions, fn func(*Post) error) error {
	page, err := c.SearchPosts(ctx, opts)
	if err != nil {
		return err
	}

	for {
		for _, p := range page.Posts {
			if err := fn(p); err != nil {
				return err
			}
		}

		if !page.HasNext() {
			return nil
		}

		if page, err = page.Next(ctx); err != nil {
			return err
		}
	}
}

// PostsOptions selects one of the lookup modes of Posts. The first field
// that is set wins: ID, then URL, then the search fields.
type PostsOptions struct {
	ID  int64
	URL string

	Query   string
	Page    int
	PerPage int
}

// PostsResult holds exactly one of a single post or a page of posts.
type PostsResult struct {
	Post   *Post
	Search *PostSearchResult
}

// Posts looks up posts in one of three modes:
//
//  1. opts.ID is set: the post with that id is fetched and every other
//     option is ignored.
//  2. opts.URL is set: the URL is fetched as described by PostsFromURL.
//  3. Otherwise the posts collection is searched with Query, Page and
//     PerPage.
func (c *Client) Posts(ctx context.Context, opts PostsOptions) (*PostsResult, error) {
	if opts.ID != 0 {
		post, err := c.GetPost(ctx, PostID(opts.ID))
		if err != nil {
			return nil, err
		}
		return &PostsResult{Post: post}, nil
	}

	if opts.URL != "" {
		return c.PostsFromURL(ctx, opts.URL)
	}

	search, err := c.SearchPosts(ctx, SearchOptions{
		Query:   opts.Query,
		Page:    opts.Page,
		PerPage: opts.PerPage,
	})
	if err != nil {
		return nil, err
	}
	return &PostsResult{Search: search}, nil
}

var postResourcePath = regexp.MustCompile(`^/[0-9]+/?$`)

// PostsFromURL fetches a URL under the posts collection, such as a
// next_page link. A URL whose path is a single post resource
// (.../posts/{id}) returns that post; any other URL under the collection is
// read as a listing. URLs outside the collection fail with ErrInvalidURL.
//
// Only the path is inspected, so a listing URL whose query string ends in
// digits is still a listing. Callers that know which kind of URL they hold
// should use PostFromURL or SearchPostsURL instead.
func (c *Client) PostsFromURL(ctx context.Context, rawURL string) (*PostsResult, error) {
	rest, err := c.postsURLRemainder(rawURL)
	if err != nil {
		return nil, err
	}

	path := rest
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	if postResourcePath.MatchString(path) {
		post, err := c.getPost(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return &PostsResult{Post: post}, nil
	}

	search, err := c.searchPage(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return &PostsResult{Search: search}, nil
}

// PostFromURL fetches a single post URL.
func (c *Client) PostFromURL(ctx context.Context, rawURL string) (*Post, error) {
	if _, err := c.postsURLRemainder(rawURL); err != nil {
		return nil, err
	}
	return c.getPost(ctx, rawURL)
}

// SearchPostsURL fetches a listing URL, such as PostSearchResult.NextPageURL.
func (c *Client) SearchPostsURL(ctx context.Context, rawURL string) (*PostSearchResult, error) {
	if _, err := c.postsURLRemainder(rawURL); err != nil {
		return nil, err
	}
	return c.searchPage(ctx, rawURL, nil)
}

// postsURLRemainder returns the part of rawURL after the posts collection
// URL.
func (c *Client) postsURLRemainder(rawURL string) (string, error) {
	index := c.indexURL("posts")

	if !strings.HasPrefix(rawURL, index) {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	rest := strings.TrimPrefix(rawURL, index)
	if rest != "" && rest[0] != '/' && rest[0] != '?' {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	return rest, nil
}

func (c *Client) searchPage(ctx context.Context, endpoint string, params url.Values) (*PostSearchResult, error) {
	var res searchResponse
	if err := c.get(ctx, endpoint, params, &res); err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}
	return c.newPostSearchResult(&res)
}
