package archive

import (
	"bytes"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/kit494way/docbase-go/pkg/docbase"
)

const delimiter = "---\n"

// frontMatter is the YAML header of an archived post.
//
// Example:
//
//	---
//	id: 1
//	title: memo title
//	url: https://kray.docbase.io/posts/1
//	draft: false
//	scope: group
//	groups:
//	  - id: "1"
//	    name: DocBase
//	tags: [rails, ruby]
//	author: danny
//	created: "2015-03-10T12:01:58+09:00"
//	---
type frontMatter struct {
	ID      int64       `yaml:"id"`
	Title   string      `yaml:"title"`
	URL     string      `yaml:"url,omitempty"`
	Draft   bool        `yaml:"draft"`
	Scope   string      `yaml:"scope"`
	Groups  []groupMeta `yaml:"groups,omitempty"`
	Tags    []string    `yaml:"tags,flow"`
	Author  string      `yaml:"author,omitempty"`
	Created string      `yaml:"created,omitempty"`
}

type groupMeta struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// Render writes post as Markdown with a YAML front matter header. The body
// is written verbatim after the header.
func Render(post *docbase.Post) ([]byte, error) {
	if post == nil {
		return nil, fmt.Errorf("post is required")
	}

	fm := frontMatter{
		ID:    post.ID,
		Title: post.Title,
		URL:   post.URL,
		Draft: post.Draft,
		Scope: string(post.Scope()),
		Tags:  post.Tags(),
	}

	if post.Scope() == docbase.ScopeGroup {
		groups, err := post.Groups()
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			fm.Groups = append(fm.Groups, groupMeta{ID: g.ID, Name: g.Name})
		}
	}

	if post.User != nil {
		fm.Author = post.User.Name
	}

	if post.CreatedAt != "" {
		created, err := post.CreatedTime()
		if err != nil {
			return nil, fmt.Errorf("error rendering post %d: %w", post.ID, err)
		}
		fm.Created = created.Format(time.RFC3339)
	}

	header, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("error encoding front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.Write(header)
	buf.WriteString(delimiter)
	buf.WriteString(post.Body)

	return buf.Bytes(), nil
}

// Parse reads a post written by Render. The created date is accepted in any
// format dateparse understands, so hand edited files can be read back. The
// header may use CRLF line endings; the body is returned byte for byte.
func Parse(data []byte) (*docbase.Post, error) {
	header, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return nil, fmt.Errorf("error decoding front matter: %w", err)
	}

	scope := docbase.ScopeEveryone
	if fm.Scope != "" {
		s, err := docbase.ParseScope(fm.Scope)
		if err != nil {
			return nil, err
		}
		scope = s
	}

	post, err := docbase.NewPost(fm.Title, string(body),
		docbase.WithDraft(fm.Draft),
		docbase.WithScope(scope),
		docbase.WithTags(fm.Tags...),
	)
	if err != nil {
		return nil, err
	}
	post.ID = fm.ID
	post.URL = fm.URL

	if scope == docbase.ScopeGroup {
		groups := make([]docbase.Group, 0, len(fm.Groups))
		for _, g := range fm.Groups {
			groups = append(groups, docbase.Group{ID: g.ID, Name: g.Name})
		}
		if err := post.SetGroups(groups...); err != nil {
			return nil, err
		}
	}

	if fm.Author != "" {
		post.User = &docbase.User{Name: fm.Author}
	}

	if fm.Created != "" {
		created, err := dateparse.ParseAny(fm.Created)
		if err != nil {
			return nil, fmt.Errorf("invalid created date %q: %w", fm.Created, err)
		}
		post.CreatedAt = created.Format(time.RFC3339)
	}

	return post, nil
}

// splitFrontMatter separates the YAML header from the body. The header is
// returned with LF line endings.
func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	line, rest := cutLine(data)
	if string(line) != "---" {
		return nil, nil, fmt.Errorf("missing front matter opening '---'")
	}

	start := len(data) - len(rest)
	for len(rest) > 0 {
		line, next := cutLine(rest)
		if string(line) == "---" {
			header := data[start : len(data)-len(rest)]
			return bytes.ReplaceAll(header, []byte("\r\n"), []byte("\n")), next, nil
		}
		rest = next
	}

	return nil, nil, fmt.Errorf("missing front matter closing '---'")
}

// cutLine returns the first line of data without its line ending, and the
// remaining bytes.
func cutLine(data []byte) ([]byte, []byte) {
	line, rest, _ := bytes.Cut(data, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r")), rest
}
