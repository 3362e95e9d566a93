package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/darmiel/rtcmint/internal/api/presenter"
)

// handleIssue mints a credential for the provider named in the path. The provider is
// resolved before the body is read.
func (s *Server) handleIssue(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	cred, err := s.tokenService.Issue(r.Context(), provider, r.Body)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	presenter.JSON(w, r, cred.Body(), http.StatusOK)
}
