package fakedocbase

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.checkTeam(w, r) {
		return
	}

	var in attachmentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	content, err := base64.StdEncoding.DecodeString(in.Content)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "content must be base64 encoded")
		return
	}

	s.mu.Lock()
	id := fmt.Sprintf("%d%s", s.allocID(), path.Ext(in.Name))
	a := &Attachment{
		ID:        id,
		Name:      in.Name,
		Size:      int64(len(content)),
		URL:       fmt.Sprintf("https://image.docbase.io/uploads/%s", id),
		CreatedAt: s.timestamp(),
		Content:   content,
	}
	a.Markdown = fmt.Sprintf("![%s](%s)", a.Name, a.URL)
	s.attachments[id] = a
	out := *a
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, out)
}
