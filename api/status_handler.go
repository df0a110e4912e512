package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type statusHandler struct {
	responder Responder
	logger    zerolog.Logger
}

func newStatusHandler() statusHandler {
	logger := log.With().Str("handlerName", "statusHandler").Logger()

	return statusHandler{
		responder: NewResponder(logger),
		logger:    logger,
	}
}

// root
// @Summary API root
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router / [get]
func (h statusHandler) root() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, StatusResponse{Status: "ok"})
	}
}

// health reports liveness only; it does not touch the database.
// @Summary Health check
// @Tags Status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /health [get]
func (h statusHandler) health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.responder.WriteJSON(w, StatusResponse{Status: "healthy"})
	}
}
