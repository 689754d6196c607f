package api

import (
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"github.com/okian/freshpoint/internal/domain/types"
)

// handlePostComment handles POST /comment. JSON bodies are decoded as
// {"message": ...} where message may be any JSON value; anything else is
// parsed as a URL-encoded form. A body without a message echoes an empty
// response.
func (s *Server) handlePostComment(w http.ResponseWriter, r *http.Request) error {
	const op = "api.post_comment"

	body, err := s.readBody(w, r, op)
	if err != nil {
		return err
	}

	var message string
	if isJSON(r) {
		var payload types.CommentPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return WrapKind(op, ErrBadRequest, Detail("body is not valid JSON", err))
		}
		message = payload.Text()
	} else {
		form, err := url.ParseQuery(string(body))
		if err != nil {
			return WrapKind(op, ErrBadRequest, Detail("body is not a valid form", err))
		}
		message = form.Get("message")
	}

	msg := s.deps.Comment(r.Context(), message)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msg))
	return nil
}
