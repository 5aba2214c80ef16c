package docbase

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_Equal(t *testing.T) {
	a := Group{ID: "1", Name: "DocBase"}
	b := Group{ID: "1", Name: "DocBase (renamed)"}
	c := Group{ID: "2", Name: "DocBase"}

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))

	// Groups are keyed by ID wherever they are collected.
	p, err := NewPost("t", "b", WithScope(ScopeGroup), WithGroups(a, b, c))
	require.NoError(t, err)
	groups, err := p.Groups()
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestGroup_JSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Group
	}{
		{
			name: "numeric id",
			data: `{"id": 1, "name": "DocBase"}`,
			want: Group{ID: "1", Name: "DocBase"},
		},
		{
			name: "string id",
			data: `{"id": "abc", "name": "Design"}`,
			want: Group{ID: "abc", Name: "Design"},
		},
		{
			name: "large numeric id",
			data: `{"id": 9007199254740993, "name": "Big"}`,
			want: Group{ID: "9007199254740993", Name: "Big"},
		},
		{
			name: "zero padded string id",
			data: `{"id": "007", "name": "Agents"}`,
			want: Group{ID: "007", Name: "Agents"},
		},
		{
			name: "signed string id",
			data: `{"id": "+5", "name": "Plus"}`,
			want: Group{ID: "+5", Name: "Plus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Group
			require.NoError(t, json.Unmarshal([]byte(tt.data), &g))
			assert.Equal(t, tt.want, g)

			out, err := json.Marshal(g)
			require.NoError(t, err)
			assert.JSONEq(t, tt.data, string(out))
		})
	}

	var g Group
	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &g))
}

func TestComment_CreatedTime(t *testing.T) {
	c := Comment{CreatedAt: "2020-03-21T15:00:00+09:00"}

	got, err := c.CreatedTime()
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2020, 3, 21, 6, 0, 0, 0, time.UTC)))

	_, err = Comment{}.CreatedTime()
	assert.Error(t, err)

	_, err = Comment{CreatedAt: "not a date"}.CreatedTime()
	assert.Error(t, err)
}

func TestAttachment_CreatedTime(t *testing.T) {
	a := Attachment{CreatedAt: "2020-03-21 15:00:00"}

	got, err := a.CreatedTime()
	require.NoError(t, err)
	assert.Equal(t, 2020, got.Year())
	assert.Equal(t, 15, got.Hour())
}

func TestDecodeTeams(t *testing.T) {
	raw := []map[string]any{
		{"domain": "kray", "name": "kray", "extra": 1},
		{"domain": "docbase", "name": "DocBase"},
	}

	teams, err := DecodeTeams(raw)
	require.NoError(t, err)
	assert.Equal(t, []Team{
		{Domain: "kray", Name: "kray"},
		{Domain: "docbase", Name: "DocBase"},
	}, teams)

	_, err = DecodeTeams([]map[string]any{{"domain": []int{1}}})
	assert.Error(t, err)
}
