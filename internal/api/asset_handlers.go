package api

import (
	"io"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/rtcmint/internal/api/presenter"
)

// handleAsset streams a full asset or a single byte range of it.
func (s *Server) handleAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)

	class, err := url.PathUnescape(vars["class"])
	if err != nil {
		presenter.Error(w, r, "Not found", http.StatusNotFound)
		return
	}
	filename, err := url.PathUnescape(vars["filename"])
	if err != nil {
		presenter.Error(w, r, "Invalid filename", http.StatusBadRequest)
		return
	}

	resp, err := s.assets.Serve(ctx, class, filename, r.Header.Get("Range"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.Status)

	if r.Method == http.MethodHead {
		return
	}

	// the body reader honours ctx, so a client disconnect stops the copy
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		log.Ctx(ctx).Debug().
			Err(err).
			Int64("written", n).
			Int64("expected", resp.ContentLength).
			Msg("asset stream aborted")
	}
}
