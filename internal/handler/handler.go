package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"medikart/internal/middleware"
	"medikart/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies read by decodeJSON.
const maxBodyBytes = 1 << 20

// MessageResponse is returned by endpoints that have nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// statusFor maps an error kind onto an HTTP status code.
func statusFor(kind model.ErrorKind) int {
	switch kind {
	case model.KindAuthentication:
		return http.StatusUnauthorized
	case model.KindAuthorization:
		return http.StatusForbidden
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError translates err into a structured error response. Anything
// that is not a DomainError is reported as an internal error without detail.
func writeError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	de, ok := model.AsDomainError(err)
	if !ok {
		logger.Error().Err(err).Msg("handler error")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{
			Error:   model.ErrCodeInternalError,
			Message: "Internal server error",
		})
		return
	}

	status := statusFor(de.Kind)
	logger.Debug().
		Str("code", de.Code).
		Int("status", status).
		Msg(de.Message)
	writeJSON(w, status, model.ErrorResponse{Error: de.Code, Message: de.Message})
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "Request body is required")
		}
		return model.NewDomainError(model.KindValidation, model.ErrCodeInvalidJSON, "Invalid request body")
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, model.ErrInvalidID
	}
	return id, nil
}

// caller returns the authenticated user or an authentication error.
func caller(r *http.Request) (*model.User, error) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return nil, model.ErrUnauthorised
	}
	return user, nil
}

// NotFound answers requests that match no route.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, model.ErrorResponse{Error: "NOT_FOUND", Message: "Route not found"})
}

// MethodNotAllowed answers requests whose route exists under another method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, model.ErrorResponse{Error: "METHOD_NOT_ALLOWED", Message: "Method not allowed"})
}
