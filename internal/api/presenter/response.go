package presenter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/rtcmint/internal/api/middleware"
	"github.com/darmiel/rtcmint/internal/core"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	resp := ErrorResponse{
		Error:         msg,
		CorrelationID: middleware.CorrelationCtx(r.Context()),
	}
	JSON(w, r, resp, status)
}

// StatusOf maps an error kind to its HTTP status code.
func StatusOf(kind core.Kind) int {
	switch kind {
	case core.KindClientInput:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable
	default:
		// configuration and internal errors
		return http.StatusInternalServerError
	}
}

// Err writes err to the client. Only the caller-facing message of a *core.Error is
// exposed; anything else becomes a generic internal error.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	var e *core.Error
	if !errors.As(err, &e) {
		Error(w, r, "Internal server error", http.StatusInternalServerError)
		return
	}

	status := StatusOf(e.Kind)
	if e.Kind == core.KindRangeNotSatisfiable {
		// 416 carries the resource length and no body
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(e.Size, 10))
		w.WriteHeader(status)
		return
	}
	Error(w, r, e.Message, status)
}
