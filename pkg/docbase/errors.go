package docbase

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidScope is matched by every *InvalidScopeError.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrGroupScope is returned when a post's groups are read or written
	// while its scope is not ScopeGroup.
	ErrGroupScope = errors.New("to use post groups, post scope must be 'group'")

	// ErrInvalidURL is returned when a page URL does not belong to the posts
	// collection of the configured team.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrNotPersisted is returned when an operation needs the id of a post
	// or comment that has not been created on the server yet.
	ErrNotPersisted = errors.New("resource has no id")
)

// InvalidScopeError reports a scope outside of everyone, group and private.
type InvalidScopeError struct {
	Scope string
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf(
		"scope must be one of the following, 'private', 'group' or 'everyone', but '%s' was passed",
		e.Scope)
}

func (e *InvalidScopeError) Is(target error) bool {
	return target == ErrInvalidScope
}

// HTTPError is returned for any response with a non-2xx status code. The
// response is not classified further.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Status)

	// DocBase reports failures as {"error": "...", "messages": ["..."]}.
	var apiErr struct {
		Error    string   `json:"error"`
		Messages []string `json:"messages"`
	}
	if err := json.Unmarshal(e.Body, &apiErr); err == nil {
		if apiErr.Error != "" {
			msg += ": " + apiErr.Error
		}
		if len(apiErr.Messages) > 0 {
			msg += " (" + strings.Join(apiErr.Messages, "; ") + ")"
		}
	}

	return msg
}

// FileError is returned when a local file cannot be read for upload.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("error reading file %q: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
