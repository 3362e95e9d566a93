package api

import (
	"net/http"

	"github.com/darmiel/rtcmint/internal/api/presenter"
	"github.com/darmiel/rtcmint/internal/buildinfo"
	"github.com/darmiel/rtcmint/internal/core"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version, commit hash and
// the enabled providers and asset classes.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.GetBuildInfo()
	for _, id := range core.Providers() {
		info.Providers = append(info.Providers, id.String())
	}
	info.AssetClasses = s.assets.Classes()
	presenter.JSON(w, r, info, http.StatusOK)
}
