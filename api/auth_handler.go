package api

import (
	"mime"
	"net/http"

	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxFormMemory = 1 << 20

type authHandler struct {
	responder Responder
	logger    zerolog.Logger
	auth      Authenticator
}

func newAuthHandler(auth Authenticator) authHandler {
	logger := log.With().Str("handlerName", "authHandler").Logger()

	return authHandler{
		responder: NewResponder(logger),
		logger:    logger,
		auth:      auth,
	}
}

// login exchanges the admin username and password for an access token
// @Summary Log in
// @Description Accepts an OAuth2 password form and returns a bearer token valid for 60 minutes
// @Tags Auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Admin username"
// @Param password formData string true "Admin password"
// @Success 200 {object} TokenResponse
// @Failure 401 {object} ErrorResponse "Unauthorized - Invalid credentials"
// @Failure 422 {object} ErrorResponse "Unprocessable Entity - Missing form field"
// @Router /auth/login [post]
func (h authHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := parseLoginForm(w, r); err != nil {
			h.logger.Warn().Err(err).Str("contentType", r.Header.Get("Content-Type")).Msg("unreadable login form")
			h.responder.WriteError(w, errs.NewMalformedPayloadError("form", err))
			return
		}

		for _, field := range []string{"username", "password"} {
			if !r.PostForm.Has(field) {
				h.logger.Info().
					Str("field", field).
					Str("contentType", r.Header.Get("Content-Type")).
					Msg("login form incomplete")
				h.responder.WriteError(w, errs.NewMissingRequiredFieldError(field))
				return
			}
		}

		token, err := h.auth.Login(r.PostForm.Get("username"), r.PostForm.Get("password"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, TokenResponse{AccessToken: token, TokenType: services.TokenType})
	}
}

func parseLoginForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormMemory)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return r.ParseMultipartForm(maxFormMemory)
	}
	return r.ParseForm()
}
