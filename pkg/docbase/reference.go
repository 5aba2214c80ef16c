package docbase

import (
	"context"
	"fmt"
)

// Groups lists the groups of the team the token's user belongs to.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.get(ctx, c.indexURL("groups"), nil, &groups); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// Tags lists the tag names of the team.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	var tags []tagResponse
	if err := c.get(ctx, c.indexURL("tags"), nil, &tags); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}

	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}

// Teams lists the teams the token's user belongs to, as returned by the API.
// Use DecodeTeams for a typed view.
func (c *Client) Teams(ctx context.Context) ([]map[string]any, error) {
	var teams []map[string]any
	if err := c.get(ctx, c.indexURL("teams"), nil, &teams); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}
