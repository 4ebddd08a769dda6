package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/coban-api/internal/api/shared"
	"github.com/phrazzld/coban-api/internal/domain"
	"github.com/phrazzld/coban-api/internal/domain/pairing"
	"github.com/phrazzld/coban-api/internal/service/game"
	"github.com/phrazzld/coban-api/internal/service/score_session"
	"github.com/phrazzld/coban-api/internal/store"
)

// errNotFound marks a lookup that found nothing at the HTTP layer.
var errNotFound = errors.New("not found")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, game.ErrGameNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, errNotFound):
		return http.StatusNotFound

	// Conflict errors: the request is valid but the game is in the wrong state
	case errors.Is(err, game.ErrGameNotComplete),
		errors.Is(err, game.ErrFinishInProgress),
		errors.Is(err, pairing.ErrGameComplete),
		errors.Is(err, pairing.ErrNothingToRetry),
		errors.Is(err, pairing.ErrNotInRetryMode):
		return http.StatusConflict

	case errors.Is(err, game.ErrTooManyGames):
		return http.StatusTooManyRequests

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyUserID),
		errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrInvalidExerciseType),
		errors.Is(err, game.ErrInvalidGame),
		errors.Is(err, pairing.ErrUnknownCard),
		errors.Is(err, score_session.ErrInvalidResultBatch),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, score_session.ErrStorageUnavailable),
		errors.Is(err, store.ErrStorageUnavailable):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return "Game not found"
	case errors.Is(err, errNotFound):
		return "Not found"
	case errors.Is(err, game.ErrGameNotComplete):
		return "Game is not complete"
	case errors.Is(err, game.ErrFinishInProgress):
		return "Game is already being finished"
	case errors.Is(err, pairing.ErrGameComplete):
		return "Game is already complete"
	case errors.Is(err, pairing.ErrNothingToRetry):
		return "No words to retry"
	case errors.Is(err, game.ErrTooManyGames):
		return "Too many active games"
	case errors.Is(err, pairing.ErrUnknownCard):
		return "Unknown card"
	case errors.Is(err, score_session.ErrInvalidResultBatch):
		return "Invalid result batch"
	case errors.Is(err, domain.ErrInvalidLevel):
		return "Invalid level"
	case errors.Is(err, domain.ErrInvalidExerciseType):
		return "Invalid exercise type"
	case errors.Is(err, game.ErrInvalidGame):
		return "Invalid game request"
	case errors.Is(err, domain.ErrEmptyUserID):
		return "User ID is required"
	case errors.Is(err, score_session.ErrStorageUnavailable),
		errors.Is(err, store.ErrStorageUnavailable):
		return "Score storage is unavailable"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	}
	return "An unexpected error occurred"
}

// SanitizeValidationError turns validator output into a message naming the
// first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	field := fe.Field()
	if ns := fe.Namespace(); strings.Contains(ns, ".") {
		field = ns[strings.Index(ns, ".")+1:]
	}
	return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid entry"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the response for err. defaultMsg replaces the
// generic message for errors that map to 500.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}

// HandleValidationError writes a 400 for a request that failed decoding or
// validation.
func HandleValidationError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}
	shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request body", err)
}
