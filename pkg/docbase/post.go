package docbase

import (
	"sort"
	"time"
)

// Scope is the disclosure level of a post.
type Scope string

const (
	ScopeEveryone Scope = "everyone"
	ScopeGroup    Scope = "group"
	ScopePrivate  Scope = "private"
)

// ParseScope returns the Scope named by s.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeEveryone, ScopeGroup, ScopePrivate:
		return Scope(s), nil
	default:
		return "", &InvalidScopeError{Scope: s}
	}
}

// Post is a DocBase document.
//
// Scope, groups and tags are only reachable through their mutators so the
// coupling between them holds: groups exist only while the scope is
// ScopeGroup, and tags are always a set.
type Post struct {
	Title  string
	Body   string
	Draft  bool
	Notice bool

	// ID is zero until the post has been created on the server.
	ID int64

	// Server assigned fields, populated when the post is read from the API.
	Comments  []Comment
	User      *User
	URL       string
	CreatedAt string

	scope  Scope
	groups []Group
	tags   map[string]struct{}
}

// PostOption configures a post built by NewPost.
type PostOption func(*postSettings)

type postSettings struct {
	draft     bool
	notice    bool
	scope     string
	groups    []Group
	hasGroups bool
	tags      []string
}

// WithDraft saves the post as a draft.
func WithDraft(draft bool) PostOption {
	return func(s *postSettings) { s.draft = draft }
}

// WithNotice controls whether members are notified. Default true.
func WithNotice(notice bool) PostOption {
	return func(s *postSettings) { s.notice = notice }
}

// WithScope sets the disclosure scope. Default ScopeEveryone.
func WithScope(scope Scope) PostOption {
	return func(s *postSettings) { s.scope = string(scope) }
}

// WithGroups sets the groups allowed to read the post. The post scope must
// be ScopeGroup.
func WithGroups(groups ...Group) PostOption {
	return func(s *postSettings) {
		s.groups = append(s.groups, groups...)
		s.hasGroups = true
	}
}

// WithTags sets the tags of the post.
func WithTags(tags ...string) PostOption {
	return func(s *postSettings) { s.tags = append(s.tags, tags...) }
}

// NewPost builds a post that has not been saved yet. The scope option is
// applied before the groups option regardless of their order.
func NewPost(title, body string, opts ...PostOption) (*Post, error) {
	s := postSettings{
		notice: true,
		scope:  string(ScopeEveryone),
	}
	for _, opt := range opts {
		opt(&s)
	}

	p := &Post{
		Title:  title,
		Body:   body,
		Draft:  s.draft,
		Notice: s.notice,
		scope:  ScopeEveryone,
	}

	scope, err := ParseScope(s.scope)
	if err != nil {
		return nil, err
	}
	if err := p.SetScope(scope); err != nil {
		return nil, err
	}

	if s.hasGroups {
		if err := p.SetGroups(s.groups...); err != nil {
			return nil, err
		}
	}

	p.SetTags(s.tags...)

	return p, nil
}

// CreatedTime parses CreatedAt.
func (p *Post) CreatedTime() (time.Time, error) {
	return parseTimestamp(p.CreatedAt)
}

// Scope returns the disclosure scope of the post.
func (p *Post) Scope() Scope {
	if p.scope == "" {
		return ScopeEveryone
	}
	return p.scope
}

// SetScope changes the disclosure scope. Leaving ScopeGroup clears the
// post's groups.
func (p *Post) SetScope(scope Scope) error {
	if _, err := ParseScope(string(scope)); err != nil {
		return err
	}

	if scope != ScopeGroup {
		p.groups = nil
	}
	p.scope = scope

	return nil
}

// Groups returns the groups allowed to read the post.
func (p *Post) Groups() ([]Group, error) {
	if p.Scope() != ScopeGroup {
		return nil, ErrGroupScope
	}

	groups := make([]Group, len(p.groups))
	copy(groups, p.groups)

	return groups, nil
}

// SetGroups replaces the groups allowed to read the post. Groups with the
// same ID collapse into the first one given.
func (p *Post) SetGroups(groups ...Group) error {
	if p.Scope() != ScopeGroup {
		return ErrGroupScope
	}

	seen := make(map[string]struct{}, len(groups))
	set := make([]Group, 0, len(groups))
	for _, g := range groups {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		set = append(set, g)
	}
	p.groups = set

	return nil
}

// Tags returns the tags of the post in sorted order.
func (p *Post) Tags() []string {
	tags := make([]string, 0, len(p.tags))
	for t := range p.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return tags
}

// HasTag reports whether the post is tagged with tag.
func (p *Post) HasTag(tag string) bool {
	_, ok := p.tags[tag]
	return ok
}

// SetTags replaces the tags of the post. Duplicates are dropped.
func (p *Post) SetTags(tags ...string) {
	p.tags = make(map[string]struct{}, len(tags))
	for _, t := range tags {
		p.tags[t] = struct{}{}
	}
}
