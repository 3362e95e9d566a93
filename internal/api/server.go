package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/darmiel/rtcmint/internal/api/middleware"
	"github.com/darmiel/rtcmint/internal/api/presenter"
	"github.com/darmiel/rtcmint/internal/assets"
	"github.com/darmiel/rtcmint/internal/service"
)

type Server struct {
	tokenService *service.TokenService
	assets       *assets.Server
}

func NewServer(tokenService *service.TokenService, assetServer *assets.Server) *Server {
	return &Server{
		tokenService: tokenService,
		assets:       assetServer,
	}
}

func (s *Server) Routes() http.Handler {
	// raw paths reach the handlers so traversal attempts fail filename validation
	// instead of being cleaned into a redirect
	r := mux.NewRouter().UseEncodedPath().SkipClean(true)
	r.NotFoundHandler = http.HandlerFunc(handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(handleMethodNotAllowed)

	// public routes
	r.HandleFunc(HealthCheckRoute, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(AboutRoute, s.handleAbout).Methods(http.MethodGet)

	// token routes
	r.HandleFunc(IssueTokenRoute, s.handleIssue).Methods(http.MethodPost)
	r.HandleFunc(LegacyIssueTokenRoute, s.handleIssue).Methods(http.MethodPost)

	// asset routes
	r.HandleFunc(AssetRoute, s.handleAsset).Methods(http.MethodGet, http.MethodHead)

	return middleware.RecoverMiddleware(
		middleware.CorrelationIDMiddleware(
			middleware.LoggingMiddleware(
				r)))
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	presenter.Error(w, r, "Not found", http.StatusNotFound)
}

func handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	presenter.Error(w, r, "Method not allowed", http.StatusMethodNotAllowed)
}
