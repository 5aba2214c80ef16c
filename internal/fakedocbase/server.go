// Package fakedocbase provides an in-memory fake of the DocBase REST API for
// tests.
//
// The server keeps posts, comments, groups, tags and attachments of a single
// team in memory, checks the X-DocBaseToken header of every request and
// records each request so tests can assert on method, path, query, headers
// and body. A failure can be queued to make the next request return an
// arbitrary status code.
package fakedocbase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const tokenHeader = "X-DocBaseToken"

// Request is a request received by the server.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// JSON decodes the request body into v.
func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// User is a team member as returned by the API.
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Group is a team group as returned by the API.
type Group struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Tag is a tag as returned by the API.
type Tag struct {
	Name string `json:"name"`
}

// Comment is a comment as returned by the API.
type Comment struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	User      User   `json:"user"`
}

// Post is a post as returned by the API.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Draft     bool      `json:"draft"`
	URL       string    `json:"url"`
	CreatedAt string    `json:"created_at"`
	Scope     string    `json:"scope"`
	Tags      []Tag     `json:"tags"`
	User      User      `json:"user"`
	Comments  []Comment `json:"comments"`
	Groups    []Group   `json:"groups"`
}

// Attachment is an uploaded file as returned by the API.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	URL       string `json:"url"`
	Markdown  string `json:"markdown"`
	CreatedAt string `json:"created_at"`

	// Content is the decoded upload; it is not part of the API response.
	Content []byte `json:"-"`
}

type postInput struct {
	Title  *string  `json:"title"`
	Body   *string  `json:"body"`
	Draft  *bool    `json:"draft"`
	Notice *bool    `json:"notice"`
	Tags   []string `json:"tags"`
	Scope  *string  `json:"scope"`
	Groups []int64  `json:"groups"`
}

type commentInput struct {
	Body   string `json:"body"`
	Notice bool   `json:"notice"`
}

type attachmentInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type failure struct {
	status int
	body   string
}

// Server is a fake DocBase API server.
type Server struct {
	*httptest.Server

	Team  string
	Token string

	// Me is the author of posts and comments created through the server.
	Me User

	// Teams is returned verbatim by GET /teams.
	Teams []map[string]any

	mu          sync.Mutex
	posts       map[int64]*Post
	groups      []Group
	attachments map[string]*Attachment
	requests    []Request
	failures    []failure
	nextID      int64
	now         func() time.Time
}

// New starts a fake server for team that accepts token.
func New(team, token string) *Server {
	s := &Server{
		Team:  team,
		Token: token,
		Me: User{
			ID:              1,
			Name:            "danny",
			ProfileImageURL: "https://image.docbase.io/uploads/aaa.gif",
		},
		Teams: []map[string]any{
			{"domain": team, "name": team},
		},
		posts:       make(map[int64]*Post),
		attachments: make(map[string]*Attachment),
		nextID:      1,
		now:         time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /teams", s.handleTeams)
	mux.HandleFunc("GET /teams/{team}/posts", s.handleListPosts)
	mux.HandleFunc("POST /teams/{team}/posts", s.handleCreatePost)
	mux.HandleFunc("GET /teams/{team}/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PATCH /teams/{team}/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /teams/{team}/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("POST /teams/{team}/posts/{id}/comments", s.handleCreateComment)
	mux.HandleFunc("DELETE /teams/{team}/comments/{id}", s.handleDeleteComment)
	mux.HandleFunc("GET /teams/{team}/groups", s.handleGroups)
	mux.HandleFunc("GET /teams/{team}/tags", s.handleTags)
	mux.HandleFunc("POST /teams/{team}/attachments", s.handleUpload)

	s.Server = httptest.NewServer(s.middleware(mux))
	return s
}

// SetNow replaces the clock used for created_at timestamps.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddGroup registers a group of the team.
func (s *Server) AddGroup(id int64, name string) Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := Group{ID: id, Name: name}
	s.groups = append(s.groups, g)
	return g
}

// AddPost stores p as is, assigning an id and url when they are empty, and
// returns the stored copy.
func (s *Server) AddPost(p Post) Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == 0 {
		p.ID = s.allocID()
	} else if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	if p.URL == "" {
		p.URL = s.postURL(p.ID)
	}
	if p.Scope == "" {
		p.Scope = "everyone"
	}
	if p.User.ID == 0 {
		p.User = s.Me
	}
	if p.Tags == nil {
		p.Tags = []Tag{}
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
	if p.Groups == nil {
		p.Groups = []Group{}
	}

	stored := p
	s.posts[p.ID] = &stored
	return stored
}

// Post returns the stored post with id.
func (s *Server) Post(id int64) (Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, false
	}
	return *p, true
}

// Attachment returns the stored attachment with the given name.
func (s *Server) Attachment(name string) (Attachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.attachments {
		if a.Name == name {
			return *a, true
		}
	}
	return Attachment{}, false
}

// Fail makes the next request return status with a DocBase error body.
func (s *Server) Fail(status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, _ := json.Marshal(map[string]any{
		"error":    strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_")),
		"messages": []string{message},
	})
	s.failures = append(s.failures, failure{status: status, body: string(body)})
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// PostsURL returns the URL of the posts collection.
func (s *Server) PostsURL() string {
	return fmt.Sprintf("%s/teams/%s/posts", s.URL, s.Team)
}

func (s *Server) postURL(id int64) string {
	return fmt.Sprintf("https://%s.docbase.io/posts/%d", s.Team, id)
}

func (s *Server) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) timestamp() string {
	return s.now().Format("2006-01-02T15:04:05-07:00")
}

func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		var fail *failure
		if len(s.failures) > 0 {
			fail = &s.failures[0]
			s.failures = s.failures[1:]
		}
		s.mu.Unlock()

		if fail != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			io.WriteString(w, fail.body)
			return
		}

		if r.Header.Get(tokenHeader) != s.Token {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error":    code,
		"messages": []string{message},
	})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (s *Server) checkTeam(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("team") != s.Team {
		writeError(w, http.StatusNotFound, "not_found", "team not found")
		return false
	}
	return true
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Teams)
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}

	q := r.URL.Query()
	page := atoiDefault(q.Get("page"), 1)
	perPage := atoiDefault(q.Get("per_page"), 20)
	query := q.Get("q")

	s.mu.Lock()
	matched := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		if query == "" || matches(p, query) {
			matched = append(matched, *p)
		}
	}
	s.mu.Unlock()

	// Newest first, like the real API.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	start := (page - 1) * perPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + perPage
	if end > len(matched) {
		end = len(matched)
	}

	meta := map[string]any{
		"previous_page": nil,
		"next_page":     nil,
		"total":         len(matched),
	}
	if page > 1 {
		meta["previous_page"] = s.pageURL(query, page-1, perPage)
	}
	if end < len(matched) {
		meta["next_page"] = s.pageURL(query, page+1, perPage)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"posts": matched[start:end],
		"meta":  meta,
	})
}

func (s *Server) pageURL(query string, page, perPage int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	if query != "" {
		v.Set("q", query)
	}
	return s.PostsURL() + "?" + v.Encode()
}

func matches(p *Post, query string) bool {
	if strings.HasPrefix(query, "tag:") {
		name := strings.TrimPrefix(query, "tag:")
		for _, t := range p.Tags {
			if t.Name == name {
				return true
			}
		}
		return false
	}
	return strings.Contains(p.Title, query) || strings.Contains(p.Body, query)
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}

	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if in.Title == nil || *in.Title == "" || in.Body == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "title and body are required")
		return
	}

	s.mu.Lock()
	p := &Post{
		ID:        s.allocID(),
		User:      s.Me,
		CreatedAt: s.timestamp(),
		Scope:     "everyone",
		Comments:  []Comment{},
	}
	p.URL = s.postURL(p.ID)
	if err := s.apply(p, &in); err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.posts[p.ID] = p
	out := *p
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}

// apply copies the given fields onto p. Callers hold s.mu.
func (s *Server) apply(p *Post, in *postInput) error {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Body != nil {
		p.Body = *in.Body
	}
	if in.Draft != nil {
		p.Draft = *in.Draft
	}
	if in.Scope != nil {
		switch *in.Scope {
		case "everyone", "group", "private":
			p.Scope = *in.Scope
		default:
			return fmt.Errorf("invalid scope %q", *in.Scope)
		}
	}
	if in.Tags != nil {
		p.Tags = make([]Tag, 0, len(in.Tags))
		for _, t := range in.Tags {
			p.Tags = append(p.Tags, Tag{Name: t})
		}
	}
	if p.Tags == nil {
		p.Tags = []Tag{}
	}

	if p.Scope != "group" {
		p.Groups = []Group{}
		return nil
	}
	if in.Groups != nil {
		p.Groups = make([]Group, 0, len(in.Groups))
		for _, id := range in.Groups {
			g, ok := s.group(id)
			if !ok {
				return fmt.Errorf("group %d not found", id)
			}
			p.Groups = append(p.Groups, g)
		}
	}
	if len(p.Groups) == 0 {
		return fmt.Errorf("groups are required for group scope")
	}
	return nil
}

func (s *Server) group(id int64) (Group, bool) {
	for _, g := range s.groups {
		if g.ID == id {
			return g, true
		}
	}
	return Group{}, false
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}

	p, ok := s.Post(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}

	var in postInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}
	updated := *p
	if err := s.apply(&updated, &in); err != nil {
		s.mu.Unlock()
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	s.posts[id] = &updated
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}
	id, ok := pathID(r)

	s.mu.Lock()
	_, exists := s.posts[id]
	if ok && exists {
		delete(s.posts, id)
	}
	s.mu.Unlock()

	if !ok || !exists {
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}

	var in commentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if in.Body == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "body is required")
		return
	}

	s.mu.Lock()
	p, ok := s.posts[id]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "not_found", "post not found")
		return
	}
	c := Comment{
		ID:        s.allocID(),
		Body:      in.Body,
		CreatedAt: s.timestamp(),
		User:      s.Me,
	}
	p.Comments = append(p.Comments, c)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}
	id, ok := pathID(r)

	s.mu.Lock()
	found := false
	if ok {
		for _, p := range s.posts {
			for i, c := range p.Comments {
				if c.ID == id {
					p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
					found = true
					break
				}
			}
			if found {
				break
			}
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "not_found", "comment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}

	s.mu.Lock()
	groups := make([]Group, len(s.groups))
	copy(groups, s.groups)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}

	s.mu.Lock()
	seen := make(map[string]struct{})
	for _, p := range s.posts {
		for _, t := range p.Tags {
			seen[t.Name] = struct{}{}
		}
	}
	s.mu.Unlock()

	tags := make([]Tag, 0, len(seen))
	for name := range seen {
		tags = append(tags, Tag{Name: name})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	writeJSON(w, http.StatusOK, tags)
}
