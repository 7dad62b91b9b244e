package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/plantogether/internal/application"
	"github.com/example/plantogether/internal/event"
)

var (
	errBadRequestBody      = errors.New("Nieprawidłowy format żądania.")
	errInvalidEventID      = errors.New("Nieprawidłowy identyfikator wydarzenia.")
	errMissingSessionToken = errors.New("Brak tokenu sesji.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application and domain errors into localized
// HTTP responses. Membership state conflicts come back as 400 with a stable
// error_code so clients can branch on them.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	if code, message, ok := membershipConflict(err); ok {
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: code, Message: message})
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Brak uprawnień do wykonania tej operacji.",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "Nieprawidłowy e-mail lub hasło.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Nie znaleziono zasobu."})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Użytkownik o tym adresie e-mail już istnieje."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Dane formularza zawierają błędy.",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Wystąpił błąd serwera."})
	}
}

func membershipConflict(err error) (code, message string, ok bool) {
	switch {
	case errors.Is(err, event.ErrAlreadyCreator):
		return "EVENT_ALREADY_CREATOR", "Jesteś twórcą wydarzenia.", true
	case errors.Is(err, event.ErrAlreadyParticipant):
		return "EVENT_ALREADY_PARTICIPANT", "Już jesteś uczestnikiem tego wydarzenia.", true
	case errors.Is(err, event.ErrCreatorCannotLeave):
		return "EVENT_CREATOR_CANNOT_LEAVE", "Twórca nie może opuścić własnego wydarzenia.", true
	case errors.Is(err, event.ErrNotParticipant):
		return "EVENT_NOT_PARTICIPANT", "Nie jesteś uczestnikiem tego wydarzenia.", true
	case errors.Is(err, event.ErrTargetNotParticipant):
		return "EVENT_TARGET_NOT_PARTICIPANT", "Ten użytkownik nie jest uczestnikiem wydarzenia.", true
	case errors.Is(err, event.ErrNotCreator):
		return "EVENT_NOT_CREATOR", "Tylko twórca wydarzenia może to zrobić.", true
	}
	return "", "", false
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Nieprawidłowe żądanie."
	case http.StatusUnauthorized:
		return "Wymagane uwierzytelnienie."
	case http.StatusForbidden:
		return "Brak uprawnień do wykonania tej operacji."
	case http.StatusNotFound:
		return "Nie znaleziono zasobu."
	case http.StatusConflict:
		return "Żądanie jest w konflikcie ze stanem zasobu."
	case http.StatusUnprocessableEntity:
		return "Dane formularza zawierają błędy."
	default:
		return "Wystąpił błąd serwera."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
