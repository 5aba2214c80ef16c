package docbase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mitchellh/mapstructure"
)

// Group is a named set of users that can be granted access to group scoped
// posts. Two groups are the same group when their IDs are equal.
type Group struct {
	ID   string
	Name string
}

// Equal reports whether g and other identify the same group.
func (g Group) Equal(other Group) bool {
	return g.ID == other.ID
}

// UnmarshalJSON accepts both numeric and string group ids.
func (g *Group) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID   json.RawMessage `json:"id"`
		Name string          `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return fmt.Errorf("invalid group id: %w", err)
	}

	g.ID = id
	g.Name = raw.Name
	return nil
}

// MarshalJSON writes numeric ids as JSON numbers.
func (g Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   any    `json:"id"`
		Name string `json:"name"`
	}{
		ID:   groupIDValue(g.ID),
		Name: g.Name,
	})
}

func decodeID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", err
	}

	switch id := v.(type) {
	case nil:
		return "", nil
	case json.Number:
		return id.String(), nil
	case string:
		return id, nil
	default:
		return "", fmt.Errorf("unexpected type %T", v)
	}
}

// groupIDValue returns the wire form of a group id. Only ids in canonical
// decimal form are sent as numbers; "007" or "+5" stay strings.
func groupIDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return json.Number(id)
	}
	return id
}

// User is a member of a team.
type User struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Comment is a comment on a post.
type Comment struct {
	ID        int64  `json:"id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	User      User   `json:"user"`
}

// CreatedTime parses CreatedAt.
func (c Comment) CreatedTime() (time.Time, error) {
	return parseTimestamp(c.CreatedAt)
}

// Attachment is an uploaded file that can be referenced from a post body.
type Attachment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Size      int64  `json:"size"`
	URL       string `json:"url"`
	Markdown  string `json:"markdown"`
	CreatedAt string `json:"created_at"`
}

// CreatedTime parses CreatedAt.
func (a Attachment) CreatedTime() (time.Time, error) {
	return parseTimestamp(a.CreatedAt)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("error parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// Team is a typed view of an entry returned by Client.Teams.
type Team struct {
	Domain string `mapstructure:"domain"`
	Name   string `mapstructure:"name"`
}

// DecodeTeams converts raw team data into Team values. Unknown keys are
// ignored.
func DecodeTeams(raw []map[string]any) ([]Team, error) {
	teams := make([]Team, 0, len(raw))
	for i, r := range raw {
		var t Team
		if err := mapstructure.Decode(r, &t); err != nil {
			return nil, fmt.Errorf("error decoding team %d: %w", i, err)
		}
		teams = append(teams, t)
	}
	return teams, nil
}
