package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/okian/freshpoint/internal/domain/types"
)

// handlePostJoin handles POST /join.
func (s *Server) handlePostJoin(w http.ResponseWriter, r *http.Request) error {
	const op = "api.post_join"

	body, err := s.readBody(w, r, op)
	if err != nil {
		return err
	}

	var req types.JoinRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return WrapKind(op, ErrBadRequest, Detail("body is not valid JSON", err))
	}

	out, err := s.deps.Join(r.Context(), req.A, req.B)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	writeJSON(w, http.StatusOK, types.JoinResponse{Result: out})
	return nil
}
