package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

// readBody reads the whole request body up to the server limit. An absent
// or zero-length body is ErrMissingBody.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, NewKind(op, ErrMissingBody)
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, WrapKind(op, ErrBodyTooLarge, err)
		}
		return nil, WrapKind(op, ErrBadRequest, err)
	}
	if len(body) == 0 {
		return nil, NewKind(op, ErrMissingBody)
	}
	return body, nil
}

// isJSON reports whether the request declares a JSON media type.
func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
