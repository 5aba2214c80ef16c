package docbase

import "fmt"

// postResponse is the body of a post returned by the API.
type postResponse struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	Draft     bool          `json:"draft"`
	Scope     string        `json:"scope"`
	URL       string        `json:"url"`
	CreatedAt string        `json:"created_at"`
	Tags      []tagResponse `json:"tags"`
	Groups    []Group       `json:"groups"`
	Comments  []Comment     `json:"comments"`
	User      *User         `json:"user"`
}

type tagResponse struct {
	Name string `json:"name"`
}

// toPost converts the response into a Post. Groups are only assigned when
// the response scope is group.
func (r *postResponse) toPost() (*Post, error) {
	scope, err := ParseScope(r.Scope)
	if err != nil {
		return nil, fmt.Errorf("error reading post %d: %w", r.ID, err)
	}

	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t.Name)
	}

	p, err := NewPost(r.Title, r.Body,
		WithDraft(r.Draft),
		WithScope(scope),
		WithTags(tags...),
	)
	if err != nil {
		return nil, err
	}

	p.ID = r.ID

	if p.Scope() == ScopeGroup {
		if err := p.SetGroups(r.Groups...); err != nil {
			return nil, err
		}
	}

	p.Comments = make([]Comment, len(r.Comments))
	copy(p.Comments, r.Comments)

	if r.User != nil {
		u := *r.User
		p.User = &u
	}
	p.URL = r.URL
	p.CreatedAt = r.CreatedAt

	return p, nil
}

// postPayload is the request body of create and update calls.
type postPayload struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Draft  bool     `json:"draft"`
	Notice bool     `json:"notice"`
	Tags   []string `json:"tags"`
	Scope  Scope    `json:"scope"`

	// Groups is only set for group scoped posts.
	Groups *[]any `json:"groups,omitempty"`
}

func newPostPayload(p *Post) postPayload {
	payload := postPayload{
		Title:  p.Title,
		Body:   p.Body,
		Draft:  p.Draft,
		Notice: p.Notice,
		Tags:   p.Tags(),
		Scope:  p.Scope(),
	}

	if p.Scope() == ScopeGroup {
		ids := make([]any, 0, len(p.groups))
		for _, g := range p.groups {
			ids = append(ids, groupIDValue(g.ID))
		}
		payload.Groups = &ids
	}

	return payload
}

// searchResponse is the body of a post listing.
type searchResponse struct {
	Posts []postResponse `json:"posts"`
	Meta  struct {
		PreviousPage *string `json:"previous_page"`
		NextPage     *string `json:"next_page"`
		Total        int     `json:"total"`
	} `json:"meta"`
}
