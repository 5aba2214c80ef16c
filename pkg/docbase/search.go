package docbase

import (
	"context"
)

// PostSearchResult is one page of posts together with links to the
// neighbouring pages.
type PostSearchResult struct {
	Posts []*Post

	// PreviousPageURL and NextPageURL are empty on the first and last page.
	PreviousPageURL string
	NextPageURL     string

	// Total is the number of posts across all pages.
	Total int

	client *Client
}

func (c *Client) newPostSearchResult(res *searchResponse) (*PostSearchResult, error) {
	result := &PostSearchResult{
		Posts:  make([]*Post, 0, len(res.Posts)),
		Total:  res.Meta.Total,
		client: c,
	}
	if res.Meta.PreviousPage != nil {
		result.PreviousPageURL = *res.Meta.PreviousPage
	}
	if res.Meta.NextPage != nil {
		result.NextPageURL = *res.Meta.NextPage
	}

	for i := range res.Posts {
		p, err := res.Posts[i].toPost()
		if err != nil {
			return nil, err
		}
		result.Posts = append(result.Posts, p)
	}

	return result, nil
}

// Len returns the number of posts on this page.
func (r *PostSearchResult) Len() int {
	return len(r.Posts)
}

// HasNext reports whether there is a page after this one.
func (r *PostSearchResult) HasNext() bool {
	return r.NextPageURL != ""
}

// HasPrevious reports whether there is a page before this one.
func (r *PostSearchResult) HasPrevious() bool {
	return r.PreviousPageURL != ""
}

// Next fetches the next page. On the last page it returns an empty result
// without a request.
func (r *PostSearchResult) Next(ctx context.Context) (*PostSearchResult, error) {
	return r.fetch(ctx, r.NextPageURL)
}

// Previous fetches the previous page. On the first page it returns an empty
// result without a request.
func (r *PostSearchResult) Previous(ctx context.Context) (*PostSearchResult, error) {
	return r.fetch(ctx, r.PreviousPageURL)
}

func (r *PostSearchResult) fetch(ctx context.Context, pageURL string) (*PostSearchResult, error) {
	if pageURL == "" || r.client == nil {
		return &PostSearchResult{client: r.client}, nil
	}
	return r.client.searchPage(ctx, pageURL, nil)
}
