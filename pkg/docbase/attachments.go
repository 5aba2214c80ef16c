package docbase

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"
)

type attachmentPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// FileUpload uploads the file at path and returns the stored attachment.
// Its Markdown field can be pasted into a post body. Failing to read the
// file returns a *FileError.
func (c *Client) FileUpload(ctx context.Context, path string) (*Attachment, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}

	payload := attachmentPayload{
		Name:    filepath.Base(path),
		Content: base64.StdEncoding.EncodeToString(data),
	}

	c.logger.Debug("uploading file", "name", payload.Name, "size", len(data))

	var attachment Attachment
	if err := c.doRequest(ctx, http.MethodPost, c.indexURL("attachments"), payload, &attachment); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &attachment, nil
}
