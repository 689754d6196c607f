package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleGetFreshPoint handles GET /freshpoint/{id}.
func (s *Server) handleGetFreshPoint(w http.ResponseWriter, r *http.Request) error {
	const op = "api.get_freshpoint"

	raw := chi.URLParam(r, "id")
	index, err := parseIndex(raw)
	if err != nil {
		return WrapKind(op, ErrBadRequest, Detail(fmt.Sprintf("id %q is not a non-negative integer", raw), err))
	}

	env, err := s.deps.FreshPoint(r.Context(), index)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, env)
	return nil
}

// parseIndex accepts only canonical base-10 digits: "0" or a number without
// sign or leading zeros.
func parseIndex(raw string) (int, error) {
	if raw == "" || (len(raw) > 1 && raw[0] == '0') {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(raw)
}
