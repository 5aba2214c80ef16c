package docbase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postFixture = `{
  "id": 1,
  "title": "memo title",
  "body": "memo body",
  "draft": false,
  "url": "https://kray.docbase.io/posts/1",
  "created_at": "2015-03-10T12:01:58+09:00",
  "scope": "group",
  "tags": [
    {"name": "rails"},
    {"name": "ruby"},
    {"name": "rails"}
  ],
  "user": {
    "id": 1,
    "name": "danny",
    "profile_image_url": "https://image.docbase.io/uploads/aaa.gif"
  },
  "comments": [
    {
      "id": 1,
      "body": "Good!",
      "created_at": "2015-03-10T12:01:58+09:00",
      "user": {
        "id": 1,
        "name": "danny",
        "profile_image_url": "https://image.docbase.io/uploads/aaa.gif"
      }
    }
  ],
  "groups": [
    {"id": 1, "name": "DocBase"},
    {"id": 2, "name": "Design"}
  ]
}`

func TestPostResponse_ToPost(t *testing.T) {
	var res postResponse
	require.NoError(t, json.Unmarshal([]byte(postFixture), &res))

	p, err := res.toPost()
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "memo title", p.Title)
	assert.Equal(t, "memo body", p.Body)
	assert.False(t, p.Draft)
	assert.True(t, p.Notice)
	assert.Equal(t, "https://kray.docbase.io/posts/1", p.URL)
	assert.Equal(t, "2015-03-10T12:01:58+09:00", p.CreatedAt)
	assert.Equal(t, ScopeGroup, p.Scope())
	assert.Equal(t, []string{"rails", "ruby"}, p.Tags())

	groups, err := p.Groups()
	require.NoError(t, err)
	assert.Equal(t, []Group{{ID: "1", Name: "DocBase"}, {ID: "2", Name: "Design"}}, groups)

	require.NotNil(t, p.User)
	assert.Equal(t, "danny", p.User.Name)

	require.Len(t, p.Comments, 1)
	assert.Equal(t, "Good!", p.Comments[0].Body)
	assert.Equal(t, int64(1), p.Comments[0].User.ID)
}

func TestPostResponse_ToPost_GroupsIgnoredOutsideGroupScope(t *testing.T) {
	res := postResponse{
		ID:     7,
		Scope:  "everyone",
		Groups: []Group{{ID: "1", Name: "DocBase"}},
	}

	p, err := res.toPost()
	require.NoError(t, err)
	assert.Equal(t, ScopeEveryone, p.Scope())

	_, err = p.Groups()
	assert.ErrorIs(t, err, ErrGroupScope)
}

func TestPostResponse_ToPost_InvalidScope(t *testing.T) {
	res := postResponse{ID: 7, Scope: "public"}

	_, err := res.toPost()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidScope)
	assert.Contains(t, err.Error(), "post 7")
}

func TestNewPostPayload(t *testing.T) {
	tests := []struct {
		name string
		post func(t *testing.T) *Post
		want string
	}{
		{
			name: "defaults",
			post: func(t *testing.T) *Post {
				p, err := NewPost("title", "body")
				require.NoError(t, err)
				return p
			},
			want: `{
				"title": "title",
				"body": "body",
				"draft": false,
				"notice": true,
				"tags": [],
				"scope": "everyone"
			}`,
		},
		{
			name: "group scope",
			post: func(t *testing.T) *Post {
				p, err := NewPost("title", "body",
					WithDraft(true),
					WithNotice(false),
					WithTags("b", "a"),
					WithScope(ScopeGroup),
					WithGroups(Group{ID: "2", Name: "Design"}, Group{ID: "1", Name: "DocBase"}))
				require.NoError(t, err)
				return p
			},
			want: `{
				"title": "title",
				"body": "body",
				"draft": true,
				"notice": false,
				"tags": ["a", "b"],
				"scope": "group",
				"groups": [2, 1]
			}`,
		},
		{
			name: "group scope without groups",
			post: func(t *testing.T) *Post {
				p, err := NewPost("title", "body", WithScope(ScopeGroup))
				require.NoError(t, err)
				return p
			},
			want: `{
				"title": "title",
				"body": "body",
				"draft": false,
				"notice": true,
				"tags": [],
				"scope": "group",
				"groups": []
			}`,
		},
		{
			name: "non canonical group ids",
			post: func(t *testing.T) *Post {
				p, err := NewPost("title", "body",
					WithScope(ScopeGroup),
					WithGroups(Group{ID: "007"}, Group{ID: "+5"}, Group{ID: "3"}))
				require.NoError(t, err)
				return p
			},
			want: `{
				"title": "title",
				"body": "body",
				"draft": false,
				"notice": true,
				"tags": [],
				"scope": "group",
				"groups": ["007", "+5", 3]
			}`,
		},
		{
			name: "private",
			post: func(t *testing.T) *Post {
				p, err := NewPost("title", "body", WithScope(ScopePrivate))
				require.NoError(t, err)
				return p
			},
			want: `{
				"title": "title",
				"body": "body",
				"draft": false,
				"notice": true,
				"tags": [],
				"scope": "private"
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(newPostPayload(tt.post(t)))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestNewPostPayload_RoundTrip(t *testing.T) {
	var res postResponse
	require.NoError(t, json.Unmarshal([]byte(postFixture), &res))
	p, err := res.toPost()
	require.NoError(t, err)

	data, err := json.Marshal(newPostPayload(p))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"title": "memo title",
		"body": "memo body",
		"draft": false,
		"notice": true,
		"tags": ["rails", "ruby"],
		"scope": "group",
		"groups": [1, 2]
	}`, string(data))
}

func TestNewPostPayload_RoundTrip_StringGroupIDs(t *testing.T) {
	var res postResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": 2,
		"title": "agents",
		"body": "",
		"scope": "group",
		"tags": [],
		"groups": [{"id": "007", "name": "Agents"}, {"id": 8, "name": "Eight"}]
	}`), &res))

	p, err := res.toPost()
	require.NoError(t, err)

	data, err := json.Marshal(newPostPayload(p))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, []any{"007", float64(8)}, body["groups"])
}
