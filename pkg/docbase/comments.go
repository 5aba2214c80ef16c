package docbase

import (
	"context"
	"fmt"
	"net/http"
)

// CommentOption configures a comment.
type CommentOption func(*commentPayload)

type commentPayload struct {
	Body   string `json:"body"`
	Notice bool   `json:"notice"`
}

// WithCommentNotice controls whether the post's participants are notified.
// Default true.
func WithCommentNotice(notice bool) CommentOption {
	return func(p *commentPayload) { p.Notice = notice }
}

// Comment adds a comment with the given message to a post.
func (c *Client) Comment(ctx context.Context, ref PostRef, message string, opts ...CommentOption) (*Comment, error) {
	id, err := resolvePostID(ref)
	if err != nil {
		return nil, err
	}

	payload := commentPayload{
		Body:   message,
		Notice: true,
	}
	for _, opt := range opts {
		opt(&payload)
	}

	endpoint := c.resourceURL("posts", id) + "/comments"

	var comment Comment
	if err := c.doRequest(ctx, http.MethodPost, endpoint, payload, &comment); err != nil {
		return nil, fmt.Errorf("failed to comment on post: %w", err)
	}

	return &comment, nil
}

// DeleteComment deletes a comment. A nil error means the comment was
// deleted.
func (c *Client) DeleteComment(ctx context.Context, ref CommentRef) error {
	id, err := resolveCommentID(ref)
	if err != nil {
		return err
	}

	if err := c.doRequest(ctx, http.MethodDelete, c.resourceURL("comments", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}
